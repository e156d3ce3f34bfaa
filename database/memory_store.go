package database

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"demobank/models"

	"github.com/google/uuid"
)

// MemoryStore хранит все данные в памяти процесса. Используется в тестах
// и в демонстрационном режиме без внешней базы данных. Один мьютекс
// покрывает все операции, поэтому каждая проводка атомарна, а читатели
// получают копии и не могут изменить внутреннее состояние.
type MemoryStore struct {
	mu sync.Mutex

	users        map[uint]models.User
	accounts     map[uint]models.BankAccount
	transactions map[uint][]models.Transaction

	nextUserID        uint
	nextAccountID     uint
	nextTransactionID uint
}

// NewMemoryStore создает пустое хранилище в памяти
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:             make(map[uint]models.User),
		accounts:          make(map[uint]models.BankAccount),
		transactions:      make(map[uint][]models.Transaction),
		nextUserID:        1,
		nextAccountID:     1,
		nextTransactionID: 1,
	}
}

// Ping проверяет доступность хранилища
func (s *MemoryStore) Ping() error {
	return nil
}

// CreateUser сохраняет нового пользователя
func (s *MemoryStore) CreateUser(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return fmt.Errorf("%w: пользователь с email %s уже существует", models.ErrStorage, user.Email)
		}
	}

	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	user.ID = s.nextUserID
	s.nextUserID++

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	s.users[user.ID] = *user
	return nil
}

// GetUserByID находит пользователя по идентификатору
func (s *MemoryStore) GetUserByID(id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("пользователь не найден")
	}
	return &user, nil
}

// GetUserByEmail находит пользователя по email
func (s *MemoryStore) GetUserByEmail(email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			found := user
			return &found, nil
		}
	}
	return nil, fmt.Errorf("пользователь не найден")
}

// ListUsersByRole возвращает пользователей с указанной ролью
func (s *MemoryStore) ListUsersByRole(role models.Role) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []models.User
	for _, user := range s.users {
		if user.Role == role {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// CountUsers возвращает общее количество пользователей
func (s *MemoryStore) CountUsers() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.users)), nil
}

// CreateAccount сохраняет новый банковский счет
func (s *MemoryStore) CreateAccount(account *models.BankAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[account.HolderID]; !ok {
		return fmt.Errorf("%w: владелец счета %d не найден", models.ErrStorage, account.HolderID)
	}
	for _, existing := range s.accounts {
		if existing.Number == account.Number {
			return fmt.Errorf("%w: счет с номером %s уже существует", models.ErrStorage, account.Number)
		}
	}

	account.ID = s.nextAccountID
	s.nextAccountID++

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	stored := *account
	stored.Holder = models.User{}
	stored.Transactions = nil
	s.accounts[stored.ID] = stored
	return nil
}

// GetAccount находит счет по идентификатору
func (s *MemoryStore) GetAccount(id uint) (*models.BankAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	return s.copyAccountLocked(account), nil
}

// GetAccountsByHolder возвращает все счета владельца
func (s *MemoryStore) GetAccountsByHolder(holderID uint) ([]models.BankAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var accounts []models.BankAccount
	for _, account := range s.accounts {
		if account.HolderID == holderID {
			accounts = append(accounts, *s.copyAccountLocked(account))
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

// ListAccounts возвращает все счета банка
func (s *MemoryStore) ListAccounts() ([]models.BankAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var accounts []models.BankAccount
	for _, account := range s.accounts {
		accounts = append(accounts, *s.copyAccountLocked(account))
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

// GetBalance возвращает текущий остаток по счету
func (s *MemoryStore) GetBalance(accountID uint) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return 0, models.ErrAccountNotFound
	}
	return account.Balance, nil
}

// PostTransaction атомарно проводит операцию по счету.
// Под мьютексом выполняются проверка остатка, запись проводки
// и обновление баланса, поэтому частичных результатов не бывает.
func (s *MemoryStore) PostTransaction(accountID uint, kind models.TransactionKind, amount float64, description string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, models.ErrAccountNotFound
	}

	if kind == models.KindWithdrawal && amount > account.Balance {
		return nil, models.ErrInsufficientFunds
	}

	newBalance := models.ApplyAmount(account.Balance, kind, amount)
	now := time.Now()

	created := models.Transaction{
		ID:            s.nextTransactionID,
		Reference:     uuid.NewString(),
		AccountID:     account.ID,
		Kind:          kind,
		Amount:        amount,
		Description:   description,
		BalanceBefore: account.Balance,
		BalanceAfter:  newBalance,
		CreatedAt:     now,
	}
	s.nextTransactionID++
	s.transactions[account.ID] = append(s.transactions[account.ID], created)

	account.Balance = newBalance
	account.UpdatedAt = now
	s.accounts[account.ID] = account

	result := created
	return &result, nil
}

// ListTransactions возвращает историю операций по счету с учетом фильтра
func (s *MemoryStore) ListTransactions(accountID uint, filter models.TransactionFilter) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[accountID]; !ok {
		return nil, models.ErrAccountNotFound
	}

	// Проводки хранятся в порядке создания, он же порядок (created_at, id)
	var result []models.Transaction
	for i := range s.transactions[accountID] {
		t := s.transactions[accountID][i]
		if filter.Matches(&t) {
			result = append(result, t)
		}
	}

	if filter.SortOrder() == models.OrderDesc {
		for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
			result[i], result[j] = result[j], result[i]
		}
	}
	return result, nil
}

// copyAccountLocked возвращает копию счета с заполненным владельцем.
// Вызывается только под мьютексом.
func (s *MemoryStore) copyAccountLocked(account models.BankAccount) *models.BankAccount {
	out := account
	out.Transactions = nil
	if holder, ok := s.users[account.HolderID]; ok {
		out.Holder = holder
	}
	return &out
}

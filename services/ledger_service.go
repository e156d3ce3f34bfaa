package services

import (
	"errors"
	"log"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"demobank/models"
	"demobank/utils"

	"github.com/go-playground/validator/v10"
)

// LedgerStore описывает хранилище счетов и проводок. Проверка остатка,
// запись проводки и обновление баланса в PostTransaction выполняются
// как единое атомарное действие.
type LedgerStore interface {
	CreateAccount(account *models.BankAccount) error
	GetAccount(id uint) (*models.BankAccount, error)
	GetAccountsByHolder(holderID uint) ([]models.BankAccount, error)
	ListAccounts() ([]models.BankAccount, error)
	GetBalance(accountID uint) (float64, error)
	PostTransaction(accountID uint, kind models.TransactionKind, amount float64, description string) (*models.Transaction, error)
	ListTransactions(accountID uint, filter models.TransactionFilter) ([]models.Transaction, error)
	Ping() error
}

type BankAccountDTO struct {
	ID        uint    `json:"id"`
	Holder    UserDTO `json:"holder"`
	Balance   float64 `json:"balance"`
	Title     string  `json:"title"`
	Number    string  `json:"number"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// TransactionDTO представляет проведенную операцию в ответе API
type TransactionDTO struct {
	ID            uint    `json:"id"`
	Reference     string  `json:"reference"`
	AccountID     uint    `json:"account_id"`
	Kind          string  `json:"kind"`
	Amount        float64 `json:"amount"`
	Description   string  `json:"description,omitempty"`
	BalanceBefore float64 `json:"balance_before"`
	BalanceAfter  float64 `json:"balance_after"`
	CreatedAt     string  `json:"created_at"`
}

// BalanceDTO представляет текущий остаток по счету
type BalanceDTO struct {
	AccountID uint    `json:"account_id"`
	Balance   float64 `json:"balance"`
}

// TransactionRequest представляет данные для проведения операции по счету.
// Поле Type используется только универсальным эндпоинтом проведения операций.
type TransactionRequest struct {
	Type        string  `json:"type" validate:"omitempty,max=20"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description" validate:"omitempty,max=255"`
}

// LedgerService предоставляет методы для работы со счетами и проводками
type LedgerService struct {
	store     LedgerStore
	validator *validator.Validate
	email     *EmailService
}

// NewLedgerService создает новый экземпляр LedgerService
func NewLedgerService(store LedgerStore, email *EmailService) *LedgerService {
	return &LedgerService{
		store:     store,
		validator: validator.New(),
		email:     email,
	}
}

// Store возвращает используемое хранилище
func (s *LedgerService) Store() LedgerStore {
	return s.store
}

// OpenAccount открывает новый счет для пользователя
func (s *LedgerService) OpenAccount(holderID uint, bank, title string) (*models.BankAccount, error) {
	// Устанавливаем значения по умолчанию
	if bank == "" {
		bank = "Go Bank"
	}
	if title == "" {
		title = "Go White"
	}

	account := &models.BankAccount{
		Number:    s.generateAccountNumber(),
		Bank:      bank,
		Balance:   0,
		Title:     title,
		HolderID:  holderID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.store.CreateAccount(account); err != nil {
		return nil, err
	}

	// Отправляем уведомление об открытии счета
	if created, err := s.store.GetAccount(account.ID); err == nil {
		if err := s.email.SendAccountOpenedNotification(created.Holder.Email, created.Number); err != nil {
			log.Printf("Ошибка отправки уведомления: %v", err)
		}
	}

	return account, nil
}

// generateAccountNumber генерирует номер банковского счета
func (s *LedgerService) generateAccountNumber() string {
	// Генерируем 20 случайных цифр
	var number strings.Builder
	for i := 0; i < 20; i++ {
		number.WriteString(strconv.Itoa(rand.Intn(10)))
	}

	return number.String()
}

// GetAccountByID возвращает банковский счет по ID
func (s *LedgerService) GetAccountByID(id uint) (*models.BankAccount, error) {
	return s.store.GetAccount(id)
}

// GetAccountsByUserID возвращает список банковских счетов пользователя
func (s *LedgerService) GetAccountsByUserID(userID uint) ([]BankAccountDTO, error) {
	accounts, err := s.store.GetAccountsByHolder(userID)
	if err != nil {
		return nil, err
	}

	dtos := make([]BankAccountDTO, len(accounts))
	for i, account := range accounts {
		dtos[i] = s.toBankAccountDTO(&account)
	}
	return dtos, nil
}

// GetAllAccounts возвращает все счета банка
func (s *LedgerService) GetAllAccounts() ([]BankAccountDTO, error) {
	accounts, err := s.store.ListAccounts()
	if err != nil {
		return nil, err
	}

	dtos := make([]BankAccountDTO, len(accounts))
	for i, account := range accounts {
		dtos[i] = s.toBankAccountDTO(&account)
	}
	return dtos, nil
}

// GetBalance возвращает текущий остаток по счету
func (s *LedgerService) GetBalance(accountID uint) (*BalanceDTO, error) {
	balance, err := s.store.GetBalance(accountID)
	if err != nil {
		return nil, err
	}
	return &BalanceDTO{AccountID: accountID, Balance: balance}, nil
}

// Deposit пополняет банковский счет
func (s *LedgerService) Deposit(accountID uint, request TransactionRequest) (*TransactionDTO, error) {
	return s.post(accountID, models.KindDeposit, request)
}

// Withdraw снимает средства с банковского счета
func (s *LedgerService) Withdraw(accountID uint, request TransactionRequest) (*TransactionDTO, error) {
	return s.post(accountID, models.KindWithdrawal, request)
}

// Post проводит операцию с типом из запроса
func (s *LedgerService) Post(accountID uint, request TransactionRequest) (*TransactionDTO, error) {
	kind, err := models.ParseTransactionKind(request.Type)
	if err != nil {
		s.record(request.Type, err)
		return nil, err
	}
	return s.post(accountID, kind, request)
}

// post выполняет общую часть проведения операции: валидацию запроса,
// атомарную запись в хранилище и уведомление владельца
func (s *LedgerService) post(accountID uint, kind models.TransactionKind, request TransactionRequest) (*TransactionDTO, error) {
	// Валидируем запрос
	if err := s.validator.Struct(request); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "max":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно содержать максимум "+e.Param()+" символов")
			}
		}
		return nil, errors.New(strings.Join(errorMessages, "; "))
	}

	// Проверяем сумму операции до обращения к хранилищу
	if math.IsNaN(request.Amount) || math.IsInf(request.Amount, 0) || request.Amount <= 0 {
		s.record(string(kind), models.ErrInvalidAmount)
		return nil, models.ErrInvalidAmount
	}

	created, err := s.store.PostTransaction(accountID, kind, request.Amount, request.Description)
	s.record(string(kind), err)
	if err != nil {
		return nil, err
	}

	s.notify(accountID, kind, created.Amount)

	dto := s.toTransactionDTO(created)
	return &dto, nil
}

// GetTransactions возвращает историю операций по счету с учетом фильтра
func (s *LedgerService) GetTransactions(accountID uint, filter models.TransactionFilter) ([]TransactionDTO, error) {
	transactions, err := s.store.ListTransactions(accountID, filter)
	if err != nil {
		return nil, err
	}

	dtos := make([]TransactionDTO, len(transactions))
	for i := range transactions {
		dtos[i] = s.toTransactionDTO(&transactions[i])
	}
	return dtos, nil
}

// record фиксирует результат операции в метриках
func (s *LedgerService) record(kind string, err error) {
	utils.GetMetrics().RecordTransaction(kind, err)
	if errors.Is(err, models.ErrInsufficientFunds) {
		utils.GetMetrics().RecordInsufficientFunds()
	}
}

// notify отправляет владельцу счета уведомление о проведенной операции
func (s *LedgerService) notify(accountID uint, kind models.TransactionKind, amount float64) {
	account, err := s.store.GetAccount(accountID)
	if err != nil {
		log.Printf("Ошибка при получении счета для уведомления: %v", err)
		return
	}

	operation := "Пополнение"
	if kind == models.KindWithdrawal {
		operation = "Снятие"
	}

	if err := s.email.SendTransactionNotification(account.Holder.Email, account.Number, amount, operation); err != nil {
		log.Printf("Ошибка отправки уведомления: %v", err)
	}
}

// toBankAccountDTO конвертирует модель BankAccount в DTO
func (s *LedgerService) toBankAccountDTO(account *models.BankAccount) BankAccountDTO {
	return BankAccountDTO{
		ID: account.ID,
		Holder: UserDTO{
			ID:        account.Holder.ID,
			FirstName: account.Holder.FirstName,
			LastName:  account.Holder.LastName,
			Email:     account.Holder.Email,
		},
		Balance:   account.Balance,
		Title:     account.Title,
		Number:    account.Number,
		CreatedAt: account.CreatedAt.Format(time.RFC3339),
		UpdatedAt: account.UpdatedAt.Format(time.RFC3339),
	}
}

// toTransactionDTO конвертирует модель Transaction в DTO
func (s *LedgerService) toTransactionDTO(t *models.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:            t.ID,
		Reference:     t.Reference,
		AccountID:     t.AccountID,
		Kind:          string(t.Kind),
		Amount:        t.Amount,
		Description:   t.Description,
		BalanceBefore: t.BalanceBefore,
		BalanceAfter:  t.BalanceAfter,
		CreatedAt:     t.CreatedAt.Format(time.RFC3339),
	}
}

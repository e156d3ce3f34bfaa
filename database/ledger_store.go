package database

import (
	"errors"
	"fmt"
	"time"

	"demobank/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateAccount сохраняет новый банковский счет
func (d *Database) CreateAccount(account *models.BankAccount) error {
	if err := d.DB.Create(account).Error; err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	return nil
}

// GetAccount находит счет по идентификатору
func (d *Database) GetAccount(id uint) (*models.BankAccount, error) {
	var account models.BankAccount
	if err := d.DB.Preload("Holder").First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	return &account, nil
}

// GetAccountsByHolder возвращает все счета владельца
func (d *Database) GetAccountsByHolder(holderID uint) ([]models.BankAccount, error) {
	var accounts []models.BankAccount
	if err := d.DB.Preload("Holder").Where("holder_id = ?", holderID).Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	return accounts, nil
}

// ListAccounts возвращает все счета банка
func (d *Database) ListAccounts() ([]models.BankAccount, error) {
	var accounts []models.BankAccount
	if err := d.DB.Preload("Holder").Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	return accounts, nil
}

// GetBalance возвращает текущий остаток по счету
func (d *Database) GetBalance(accountID uint) (float64, error) {
	var account models.BankAccount
	if err := d.DB.First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, models.ErrAccountNotFound
		}
		return 0, fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	return account.Balance, nil
}

// PostTransaction атомарно проводит операцию по счету.
// Проверка остатка, запись проводки и обновление баланса выполняются
// внутри одной транзакции базы данных под пер-счетным мьютексом.
func (d *Database) PostTransaction(accountID uint, kind models.TransactionKind, amount float64, description string) (*models.Transaction, error) {
	// Шаг 1: сериализуем конкурентные операции по одному счету
	d.locks.Lock(accountID)
	defer d.locks.Unlock(accountID)

	var created models.Transaction

	err := d.DB.Transaction(func(tx *gorm.DB) error {
		// Шаг 2: читаем счет, в postgres дополнительно блокируем строку
		q := tx
		if d.rowLock {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var account models.BankAccount
		if err := q.First(&account, accountID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrAccountNotFound
			}
			return fmt.Errorf("%w: %v", models.ErrStorage, err)
		}

		// Шаг 3: проверяем достаточность средств до любых записей
		if kind == models.KindWithdrawal && amount > account.Balance {
			return models.ErrInsufficientFunds
		}

		newBalance := models.ApplyAmount(account.Balance, kind, amount)
		now := time.Now()

		// Шаг 4: записываем проводку со снимками баланса
		created = models.Transaction{
			Reference:     uuid.NewString(),
			AccountID:     account.ID,
			Kind:          kind,
			Amount:        amount,
			Description:   description,
			BalanceBefore: account.Balance,
			BalanceAfter:  newBalance,
			CreatedAt:     now,
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("%w: %v", models.ErrStorage, err)
		}

		// Шаг 5: обновляем остаток по счету
		account.Balance = newBalance
		account.UpdatedAt = now
		if err := tx.Omit(clause.Associations).Save(&account).Error; err != nil {
			return fmt.Errorf("%w: %v", models.ErrStorage, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

// ListTransactions возвращает историю операций по счету с учетом фильтра
func (d *Database) ListTransactions(accountID uint, filter models.TransactionFilter) ([]models.Transaction, error) {
	var account models.BankAccount
	if err := d.DB.First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: %v", models.ErrStorage, err)
	}

	query := d.DB.Where("account_id = ?", accountID)
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at <= ?", filter.To)
	}

	order := "created_at ASC, id ASC"
	if filter.SortOrder() == models.OrderDesc {
		order = "created_at DESC, id DESC"
	}

	var transactions []models.Transaction
	if err := query.Order(order).Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	return transactions, nil
}

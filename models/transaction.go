package models

import (
	"strings"
	"time"
)

// TransactionKind представляет тип транзакции
type TransactionKind string

const (
	KindDeposit    TransactionKind = "DEPOSIT"
	KindWithdrawal TransactionKind = "WITHDRAWAL"
)

// ParseTransactionKind разбирает тип транзакции из внешнего представления.
// Регистр не учитывается: фронтенд присылает "deposit"/"withdrawal".
func ParseTransactionKind(s string) (TransactionKind, error) {
	switch TransactionKind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindDeposit:
		return KindDeposit, nil
	case KindWithdrawal:
		return KindWithdrawal, nil
	default:
		return "", ErrInvalidKind
	}
}

// Порядок сортировки истории транзакций
const (
	OrderAsc  = "ASC"
	OrderDesc = "DESC"
)

// Transaction — неизменяемая запись об одном изменении баланса.
// После создания запись никогда не обновляется и не удаляется.
type Transaction struct {
	ID            uint            `gorm:"primaryKey;autoIncrement"`
	Reference     string          `gorm:"column:reference;unique;not null;size:36"`
	AccountID     uint            `gorm:"column:account_id;not null;index"`
	Kind          TransactionKind `gorm:"column:kind;not null;size:20"`
	Amount        float64         `gorm:"column:amount;type:decimal(20,2);not null"`
	Description   string          `gorm:"column:description;size:255"`
	BalanceBefore float64         `gorm:"column:balance_before;type:decimal(20,2);not null"`
	BalanceAfter  float64         `gorm:"column:balance_after;type:decimal(20,2);not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// TransactionFilter описывает параметры выборки истории транзакций.
// Пустое значение поля означает «без ограничения».
type TransactionFilter struct {
	Kind  TransactionKind // фильтр по типу; "" — все типы
	From  time.Time       // нижняя граница created_at (включительно)
	To    time.Time       // верхняя граница created_at (включительно)
	Order string          // OrderAsc или OrderDesc; по умолчанию OrderDesc
}

// SortOrder возвращает нормализованный порядок сортировки.
func (f TransactionFilter) SortOrder() string {
	if strings.EqualFold(f.Order, OrderAsc) {
		return OrderAsc
	}
	return OrderDesc
}

// Matches проверяет, попадает ли транзакция под фильтр.
func (f TransactionFilter) Matches(t *Transaction) bool {
	if f.Kind != "" && t.Kind != f.Kind {
		return false
	}
	if !f.From.IsZero() && t.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.CreatedAt.After(f.To) {
		return false
	}
	return true
}

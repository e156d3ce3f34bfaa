package services

import (
	"errors"
	"strconv"
	"time"

	"demobank/models"
	"demobank/utils"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
)

// StatementService формирует выписки по счетам в формате XML
type StatementService struct {
	store   LedgerStore
	hmacKey []byte
}

// NewStatementService создает новый экземпляр StatementService
func NewStatementService(store LedgerStore, hmacKey string) *StatementService {
	return &StatementService{
		store:   store,
		hmacKey: []byte(hmacKey),
	}
}

// BuildStatement формирует подписанную XML-выписку по счету.
// Возвращает документ и HMAC-подпись его содержимого.
func (s *StatementService) BuildStatement(accountID uint, filter models.TransactionFilter) ([]byte, string, error) {
	account, err := s.store.GetAccount(accountID)
	if err != nil {
		return nil, "", err
	}

	transactions, err := s.store.ListTransactions(accountID, filter)
	if err != nil {
		return nil, "", err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	statement := doc.CreateElement("statement")
	statement.CreateAttr("generated", time.Now().Format(time.RFC3339))

	// Блок с данными счета
	acc := statement.CreateElement("account")
	acc.CreateElement("number").SetText(account.Number)
	acc.CreateElement("holder").SetText(account.Holder.FirstName + " " + account.Holder.LastName)
	acc.CreateElement("balance").SetText(formatMoney(account.Balance))

	// Блок с проводками
	ops := statement.CreateElement("transactions")
	ops.CreateAttr("count", strconv.Itoa(len(transactions)))

	totalDeposits := decimal.Zero
	totalWithdrawals := decimal.Zero

	for i := range transactions {
		t := transactions[i]

		op := ops.CreateElement("transaction")
		op.CreateAttr("reference", t.Reference)
		op.CreateElement("kind").SetText(string(t.Kind))
		op.CreateElement("amount").SetText(formatMoney(t.Amount))
		op.CreateElement("balance_after").SetText(formatMoney(t.BalanceAfter))
		op.CreateElement("date").SetText(t.CreatedAt.Format(time.RFC3339))
		if t.Description != "" {
			op.CreateElement("description").SetText(t.Description)
		}

		switch t.Kind {
		case models.KindDeposit:
			totalDeposits = totalDeposits.Add(decimal.NewFromFloat(t.Amount))
		case models.KindWithdrawal:
			totalWithdrawals = totalWithdrawals.Add(decimal.NewFromFloat(t.Amount))
		}
	}

	// Итоги за период
	totals := statement.CreateElement("totals")
	totals.CreateElement("deposits").SetText(totalDeposits.StringFixed(2))
	totals.CreateElement("withdrawals").SetText(totalWithdrawals.StringFixed(2))

	doc.Indent(2)
	data, err := doc.WriteToBytes()
	if err != nil {
		return nil, "", errors.New("ошибка при формировании выписки")
	}

	signature := utils.GenerateHMAC(string(data), s.hmacKey)
	return data, signature, nil
}

// formatMoney форматирует денежную сумму с двумя знаками после запятой
func formatMoney(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

package services

import (
	"errors"
	"testing"

	"demobank/models"
	"demobank/utils"

	"github.com/beevik/etree"
)

func TestBuildStatement(t *testing.T) {
	ledger, accountID := newTestLedger(t)
	mustDeposit(t, ledger, accountID, 5000)
	mustDeposit(t, ledger, accountID, 2000)
	if _, err := ledger.Withdraw(accountID, TransactionRequest{Amount: 500, Description: "наличные"}); err != nil {
		t.Fatalf("Withdraw returned error: %v", err)
	}

	statements := NewStatementService(ledger.Store(), "test-statement-key")
	data, signature, err := statements.BuildStatement(accountID, models.TransactionFilter{Order: models.OrderAsc})
	if err != nil {
		t.Fatalf("BuildStatement returned error: %v", err)
	}

	// Подпись соответствует содержимому
	if !utils.ValidateHMAC(string(data), signature, []byte("test-statement-key")) {
		t.Error("statement signature does not verify")
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		t.Fatalf("statement is not valid XML: %v", err)
	}

	root := doc.SelectElement("statement")
	if root == nil {
		t.Fatal("statement root element missing")
	}

	ops := root.SelectElement("transactions")
	if ops == nil {
		t.Fatal("transactions element missing")
	}
	if got := ops.SelectAttrValue("count", ""); got != "3" {
		t.Errorf("transaction count attribute: got %q want 3", got)
	}
	if got := len(ops.SelectElements("transaction")); got != 3 {
		t.Errorf("transaction elements: got %d want 3", got)
	}

	// Итоги за период считаются точной арифметикой
	totals := root.SelectElement("totals")
	if totals == nil {
		t.Fatal("totals element missing")
	}
	if got := totals.SelectElement("deposits").Text(); got != "7000.00" {
		t.Errorf("total deposits: got %q want 7000.00", got)
	}
	if got := totals.SelectElement("withdrawals").Text(); got != "500.00" {
		t.Errorf("total withdrawals: got %q want 500.00", got)
	}

	// Баланс счета в шапке совпадает с текущим остатком
	acc := root.SelectElement("account")
	if acc == nil {
		t.Fatal("account element missing")
	}
	if got := acc.SelectElement("balance").Text(); got != "6500.00" {
		t.Errorf("account balance in statement: got %q want 6500.00", got)
	}
}

func TestBuildStatementHonorsFilter(t *testing.T) {
	ledger, accountID := newTestLedger(t)
	mustDeposit(t, ledger, accountID, 5000)
	if _, err := ledger.Withdraw(accountID, TransactionRequest{Amount: 500}); err != nil {
		t.Fatalf("Withdraw returned error: %v", err)
	}

	statements := NewStatementService(ledger.Store(), "test-statement-key")
	data, _, err := statements.BuildStatement(accountID, models.TransactionFilter{
		Kind:  models.KindWithdrawal,
		Order: models.OrderAsc,
	})
	if err != nil {
		t.Fatalf("BuildStatement returned error: %v", err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		t.Fatalf("statement is not valid XML: %v", err)
	}
	ops := doc.SelectElement("statement").SelectElement("transactions")
	if got := ops.SelectAttrValue("count", ""); got != "1" {
		t.Errorf("filtered statement count: got %q want 1", got)
	}
}

func TestBuildStatementUnknownAccount(t *testing.T) {
	ledger, _ := newTestLedger(t)
	statements := NewStatementService(ledger.Store(), "test-statement-key")

	if _, _, err := statements.BuildStatement(999, models.TransactionFilter{}); !errors.Is(err, models.ErrAccountNotFound) {
		t.Errorf("statement for unknown account: got %v want ErrAccountNotFound", err)
	}
}

func TestStatementSignatureChangesWithContent(t *testing.T) {
	ledger, accountID := newTestLedger(t)
	mustDeposit(t, ledger, accountID, 100)

	statements := NewStatementService(ledger.Store(), "test-statement-key")
	data, signature, err := statements.BuildStatement(accountID, models.TransactionFilter{})
	if err != nil {
		t.Fatalf("BuildStatement returned error: %v", err)
	}

	// Подмена содержимого инвалидирует подпись
	tampered := string(data) + " "
	if utils.ValidateHMAC(tampered, signature, []byte("test-statement-key")) {
		t.Error("signature must not verify for tampered content")
	}
	// И чужой ключ тоже
	if utils.ValidateHMAC(string(data), signature, []byte("another-key")) {
		t.Error("signature must not verify with a different key")
	}
}

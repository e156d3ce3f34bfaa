package database

import (
	"errors"
	"testing"

	"demobank/models"
)

func newStoreWithAccount(t *testing.T) (*MemoryStore, uint) {
	t.Helper()

	store := NewMemoryStore()
	user := &models.User{
		FirstName: "Борис",
		LastName:  "Петров",
		Email:     "bob@example.com",
		Password:  "hash",
	}
	if err := store.CreateUser(user); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	account := &models.BankAccount{
		Bank:     "Go Bank",
		Number:   "11112222333344445555",
		Title:    "Go White",
		HolderID: user.ID,
	}
	if err := store.CreateAccount(account); err != nil {
		t.Fatalf("CreateAccount returned error: %v", err)
	}
	return store, account.ID
}

func TestMemoryStorePostTransaction(t *testing.T) {
	store, accountID := newStoreWithAccount(t)

	txn, err := store.PostTransaction(accountID, models.KindDeposit, 5000, "пополнение")
	if err != nil {
		t.Fatalf("PostTransaction returned error: %v", err)
	}
	if !models.SameMoney(txn.BalanceBefore, 0) || !models.SameMoney(txn.BalanceAfter, 5000) {
		t.Errorf("snapshots: got %v -> %v want 0 -> 5000", txn.BalanceBefore, txn.BalanceAfter)
	}

	got, err := store.GetBalance(accountID)
	if err != nil {
		t.Fatalf("GetBalance returned error: %v", err)
	}
	if !models.SameMoney(got, 5000) {
		t.Errorf("balance: got %v want 5000", got)
	}
}

func TestMemoryStoreRejectedWithdrawalLeavesStateUnchanged(t *testing.T) {
	store, accountID := newStoreWithAccount(t)
	if _, err := store.PostTransaction(accountID, models.KindDeposit, 100, ""); err != nil {
		t.Fatalf("PostTransaction returned error: %v", err)
	}

	if _, err := store.PostTransaction(accountID, models.KindWithdrawal, 500, ""); !errors.Is(err, models.ErrInsufficientFunds) {
		t.Fatalf("overdraft withdrawal: got %v want ErrInsufficientFunds", err)
	}

	balance, err := store.GetBalance(accountID)
	if err != nil {
		t.Fatalf("GetBalance returned error: %v", err)
	}
	if !models.SameMoney(balance, 100) {
		t.Errorf("balance after rejected withdrawal: got %v want 100", balance)
	}
	txns, err := store.ListTransactions(accountID, models.TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions returned error: %v", err)
	}
	if len(txns) != 1 {
		t.Errorf("transaction count after rejected withdrawal: got %d want 1", len(txns))
	}
}

func TestMemoryStoreCopyOnReturn(t *testing.T) {
	store, accountID := newStoreWithAccount(t)
	if _, err := store.PostTransaction(accountID, models.KindDeposit, 100, ""); err != nil {
		t.Fatalf("PostTransaction returned error: %v", err)
	}

	// Изменение возвращенного счета не должно затрагивать хранилище
	account, err := store.GetAccount(accountID)
	if err != nil {
		t.Fatalf("GetAccount returned error: %v", err)
	}
	account.Balance = 999999

	fresh, err := store.GetAccount(accountID)
	if err != nil {
		t.Fatalf("GetAccount returned error: %v", err)
	}
	if !models.SameMoney(fresh.Balance, 100) {
		t.Errorf("stored balance mutated through returned copy: got %v want 100", fresh.Balance)
	}

	// То же для истории проводок
	txns, err := store.ListTransactions(accountID, models.TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions returned error: %v", err)
	}
	txns[0].Amount = -1
	txns[0].BalanceAfter = -1

	again, err := store.ListTransactions(accountID, models.TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions returned error: %v", err)
	}
	if !models.SameMoney(again[0].Amount, 100) || !models.SameMoney(again[0].BalanceAfter, 100) {
		t.Errorf("stored transaction mutated through returned copy: %+v", again[0])
	}
}

func TestMemoryStoreHistoryAppendOnly(t *testing.T) {
	store, accountID := newStoreWithAccount(t)

	var previous []models.Transaction
	for i := 0; i < 5; i++ {
		if _, err := store.PostTransaction(accountID, models.KindDeposit, 10, ""); err != nil {
			t.Fatalf("PostTransaction returned error: %v", err)
		}

		current, err := store.ListTransactions(accountID, models.TransactionFilter{Order: models.OrderAsc})
		if err != nil {
			t.Fatalf("ListTransactions returned error: %v", err)
		}
		if len(current) != len(previous)+1 {
			t.Fatalf("history length after append: got %d want %d", len(current), len(previous)+1)
		}
		// Ранее выданные записи не меняются и не переупорядочиваются
		for j := range previous {
			if current[j].ID != previous[j].ID || current[j].Reference != previous[j].Reference ||
				!models.SameMoney(current[j].BalanceAfter, previous[j].BalanceAfter) {
				t.Fatalf("previously returned record %d changed: %+v vs %+v", j, current[j], previous[j])
			}
		}
		previous = current
	}
}

func TestMemoryStoreDuplicateEmail(t *testing.T) {
	store, _ := newStoreWithAccount(t)

	err := store.CreateUser(&models.User{
		FirstName: "Борис",
		LastName:  "Петров",
		Email:     "bob@example.com",
		Password:  "hash",
	})
	if !errors.Is(err, models.ErrStorage) {
		t.Errorf("duplicate email: got %v want ErrStorage", err)
	}
}

func TestMemoryStoreDuplicateAccountNumber(t *testing.T) {
	store, accountID := newStoreWithAccount(t)

	account, err := store.GetAccount(accountID)
	if err != nil {
		t.Fatalf("GetAccount returned error: %v", err)
	}
	err = store.CreateAccount(&models.BankAccount{
		Bank:     "Go Bank",
		Number:   account.Number,
		Title:    "Copy",
		HolderID: account.HolderID,
	})
	if !errors.Is(err, models.ErrStorage) {
		t.Errorf("duplicate account number: got %v want ErrStorage", err)
	}
}

func TestMemoryStoreUnknownAccount(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.GetAccount(42); !errors.Is(err, models.ErrAccountNotFound) {
		t.Errorf("GetAccount: got %v want ErrAccountNotFound", err)
	}
	if _, err := store.GetBalance(42); !errors.Is(err, models.ErrAccountNotFound) {
		t.Errorf("GetBalance: got %v want ErrAccountNotFound", err)
	}
	if _, err := store.PostTransaction(42, models.KindDeposit, 1, ""); !errors.Is(err, models.ErrAccountNotFound) {
		t.Errorf("PostTransaction: got %v want ErrAccountNotFound", err)
	}
	if _, err := store.ListTransactions(42, models.TransactionFilter{}); !errors.Is(err, models.ErrAccountNotFound) {
		t.Errorf("ListTransactions: got %v want ErrAccountNotFound", err)
	}
}

func TestMemoryStoreAccountsByHolder(t *testing.T) {
	store, accountID := newStoreWithAccount(t)

	account, err := store.GetAccount(accountID)
	if err != nil {
		t.Fatalf("GetAccount returned error: %v", err)
	}

	accounts, err := store.GetAccountsByHolder(account.HolderID)
	if err != nil {
		t.Fatalf("GetAccountsByHolder returned error: %v", err)
	}
	if len(accounts) != 1 || accounts[0].ID != accountID {
		t.Errorf("GetAccountsByHolder: got %+v want single account %d", accounts, accountID)
	}
	if accounts[0].Holder.Email != "bob@example.com" {
		t.Errorf("holder should be populated on returned accounts, got %+v", accounts[0].Holder)
	}
}

package services

import (
	"testing"

	"demobank/config"
	"demobank/database"
	"demobank/models"
)

func TestSeedServiceRun(t *testing.T) {
	store := database.NewMemoryStore()
	users := NewUserService(store)
	ledger := NewLedgerService(store, NewEmailService(&config.Config{}))

	if err := NewSeedService(users, ledger).Run(); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	// Создан работник банка
	bankers, err := store.ListUsersByRole(models.RoleBanker)
	if err != nil {
		t.Fatalf("ListUsersByRole returned error: %v", err)
	}
	if len(bankers) != 1 {
		t.Fatalf("seeded bankers: got %d want 1", len(bankers))
	}

	// Начальные остатки объяснены историей проводок
	accounts, err := store.ListAccounts()
	if err != nil {
		t.Fatalf("ListAccounts returned error: %v", err)
	}
	if len(accounts) == 0 {
		t.Fatal("seeding created no accounts")
	}
	for _, account := range accounts {
		history, err := store.ListTransactions(account.ID, models.TransactionFilter{Order: models.OrderAsc})
		if err != nil {
			t.Fatalf("ListTransactions returned error: %v", err)
		}
		if ok, expected := VerifyAccount(account, history); !ok {
			t.Errorf("seeded account %d inconsistent: balance %v, history explains %v", account.ID, account.Balance, expected)
		}
	}
}

func TestSeedServiceSkipsNonEmptyStore(t *testing.T) {
	store := database.NewMemoryStore()
	users := NewUserService(store)
	ledger := NewLedgerService(store, NewEmailService(&config.Config{}))

	if err := store.CreateUser(&models.User{FirstName: "Тест", LastName: "Тестов", Email: "t@example.com", Password: "hash"}); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	if err := NewSeedService(users, ledger).Run(); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	count, err := store.CountUsers()
	if err != nil {
		t.Fatalf("CountUsers returned error: %v", err)
	}
	if count != 1 {
		t.Errorf("non-empty store must not be reseeded: got %d users want 1", count)
	}
}

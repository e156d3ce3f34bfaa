package services

import (
	"log"
	"time"

	"demobank/models"
	"demobank/utils"
)

// ConsistencyService периодически сверяет остатки по счетам
// с историей проводок
type ConsistencyService struct {
	store    LedgerStore
	interval time.Duration
	stop     chan struct{}
}

// NewConsistencyService создает новый экземпляр ConsistencyService
func NewConsistencyService(store LedgerStore) *ConsistencyService {
	return &ConsistencyService{
		store:    store,
		interval: 5 * time.Minute,
		stop:     make(chan struct{}),
	}
}

// Start запускает периодическую сверку балансов
func (s *ConsistencyService) Start() {
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.RunOnce(); err != nil {
					log.Printf("Ошибка при сверке балансов: %v", err)
				}
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop останавливает сверку
func (s *ConsistencyService) Stop() {
	close(s.stop)
}

// RunOnce выполняет один проход сверки по всем счетам
func (s *ConsistencyService) RunOnce() error {
	start := time.Now()

	accounts, err := s.store.ListAccounts()
	if err != nil {
		utils.LogOperation("сверка балансов", start, err)
		return err
	}

	mismatches := 0
	for i := range accounts {
		account := accounts[i]

		transactions, err := s.store.ListTransactions(account.ID, models.TransactionFilter{Order: models.OrderAsc})
		if err != nil {
			utils.LogOperation("сверка балансов", start, err)
			return err
		}

		if ok, expected := VerifyAccount(account, transactions); !ok {
			mismatches++
			utils.LogError("Расхождение по счету %d (%s): остаток %.2f, по проводкам %.2f",
				account.ID, account.Number, account.Balance, expected)
		}
	}

	utils.GetMetrics().RecordAudit(mismatches)
	utils.LogOperation("сверка балансов", start, nil)
	return nil
}

// VerifyAccount проверяет согласованность счета с историей его проводок.
// История должна образовывать непрерывную цепочку снимков баланса,
// а итоговая сумма совпадать с текущим остатком.
// Возвращает признак согласованности и остаток, ожидаемый по проводкам.
func VerifyAccount(account models.BankAccount, transactions []models.Transaction) (bool, float64) {
	expected := models.SumSigned(transactions)

	prev := 0.0
	for i := range transactions {
		t := transactions[i]
		if !models.SameMoney(t.BalanceBefore, prev) {
			return false, expected
		}
		if !models.SameMoney(t.BalanceAfter, models.ApplyAmount(t.BalanceBefore, t.Kind, t.Amount)) {
			return false, expected
		}
		prev = t.BalanceAfter
	}

	return models.SameMoney(account.Balance, expected), expected
}

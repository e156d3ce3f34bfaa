package services

import (
	"log"

	"demobank/models"
)

// SeedService наполняет пустое хранилище демонстрационными данными
type SeedService struct {
	users  *UserService
	ledger *LedgerService
}

// demoCustomer описывает демонстрационного клиента
type demoCustomer struct {
	firstName string
	lastName  string
	email     string
	password  string
	opening   float64
}

// NewSeedService создает новый экземпляр SeedService
func NewSeedService(users *UserService, ledger *LedgerService) *SeedService {
	return &SeedService{
		users:  users,
		ledger: ledger,
	}
}

// Run создает демонстрационных пользователей и счета.
// Данные создаются только в пустом хранилище, повторный запуск ничего не делает.
func (s *SeedService) Run() error {
	count, err := s.users.CountUsers()
	if err != nil {
		return err
	}
	if count > 0 {
		log.Printf("Хранилище уже содержит данные, демонстрационное наполнение пропущено")
		return nil
	}

	// Банковский работник
	if _, err := s.users.CreateUserInternal(CreateUserRequest{
		FirstName: "Ольга",
		LastName:  "Смирнова",
		Email:     "banker@gobank.ru",
		Password:  "banker12345",
		Role:      models.RoleBanker,
	}); err != nil {
		return err
	}

	customers := []demoCustomer{
		{"Алиса", "Иванова", "alice@example.com", "alice12345", 5000},
		{"Борис", "Петров", "bob@example.com", "bob12345678", 1500},
	}

	for _, c := range customers {
		user, err := s.users.CreateUserInternal(CreateUserRequest{
			FirstName: c.firstName,
			LastName:  c.lastName,
			Email:     c.email,
			Password:  c.password,
		})
		if err != nil {
			return err
		}

		account, err := s.ledger.OpenAccount(user.ID, "", "")
		if err != nil {
			return err
		}

		// Начальный остаток проводится через журнал, чтобы история
		// операций объясняла текущий баланс
		if c.opening > 0 {
			if _, err := s.ledger.Deposit(account.ID, TransactionRequest{
				Amount:      c.opening,
				Description: "Начальное пополнение",
			}); err != nil {
				return err
			}
		}

		log.Printf("Создан демонстрационный клиент %s со счетом %s", c.email, account.Number)
	}

	return nil
}

package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"demobank/services"

	"github.com/gorilla/mux"
)

// CustomerDetailsResponse представляет клиента вместе с его счетами
type CustomerDetailsResponse struct {
	User     services.UserResponse     `json:"user"`
	Accounts []services.BankAccountDTO `json:"accounts"`
}

// BankerController обрабатывает запросы банковских работников
type BankerController struct {
	users  *services.UserService
	ledger *services.LedgerService
}

// NewBankerController создает новый экземпляр BankerController
func NewBankerController(users *services.UserService, ledger *services.LedgerService) *BankerController {
	return &BankerController{
		users:  users,
		ledger: ledger,
	}
}

// GetCustomers обрабатывает запрос на получение списка клиентов банка
func (c *BankerController) GetCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := c.users.GetCustomers()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(customers)
}

// GetCustomer обрабатывает запрос на получение клиента и его счетов
func (c *BankerController) GetCustomer(w http.ResponseWriter, r *http.Request) {
	// Получаем ID клиента из URL
	vars := mux.Vars(r)
	customerID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		http.Error(w, "Invalid customer ID", http.StatusBadRequest)
		return
	}

	user, err := c.users.FindByID(uint(customerID))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	accounts, err := c.ledger.GetAccountsByUserID(user.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := CustomerDetailsResponse{
		User: services.UserResponse{
			ID:        user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
			Role:      string(user.Role),
		},
		Accounts: accounts,
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// GetAllAccounts обрабатывает запрос на получение всех счетов банка
func (c *BankerController) GetAllAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := c.ledger.GetAllAccounts()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(accounts)
}

package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"demobank/middleware"
	"demobank/models"
	"demobank/services"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// errAccessDenied возвращается при попытке доступа к чужому счету
var errAccessDenied = errors.New("нет доступа к данному счету")

// CreateAccountRequest представляет данные для открытия дополнительного счета.
// Начальный остаток не принимается: счет открывается пустым,
// а средства зачисляются отдельной проводкой.
type CreateAccountRequest struct {
	BankName string `json:"bank_name" validate:"omitempty,min=2,max=100"`
	Title    string `json:"title" validate:"omitempty,min=2,max=100"`
}

// AccountController обрабатывает запросы, связанные со счетами и проводками
type AccountController struct {
	ledger     *services.LedgerService
	statements *services.StatementService
	validator  *validator.Validate
}

// NewAccountController создает новый экземпляр AccountController
func NewAccountController(ledger *services.LedgerService, statements *services.StatementService) *AccountController {
	return &AccountController{
		ledger:     ledger,
		statements: statements,
		validator:  validator.New(),
	}
}

// validateRequest валидирует DTO и возвращает ошибки валидации
func (c *AccountController) validateRequest(dto interface{}) error {
	if err := c.validator.Struct(dto); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				errorMessages = append(errorMessages, "поле "+e.Field()+" обязательно")
			case "min":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно содержать минимум "+e.Param()+" символов")
			case "max":
				errorMessages = append(errorMessages, "поле "+e.Field()+" должно содержать максимум "+e.Param()+" символов")
			}
		}
		return errors.New(strings.Join(errorMessages, "; "))
	}
	return nil
}

// parseAccountID извлекает идентификатор счета из URL
func parseAccountID(r *http.Request) (uint, error) {
	vars := mux.Vars(r)
	accountID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		return 0, errors.New("Invalid account ID")
	}
	return uint(accountID), nil
}

// validateAccountAccess проверяет, что счет существует и доступен пользователю.
// Счет доступен его владельцу и банковскому работнику.
func (c *AccountController) validateAccountAccess(r *http.Request, accountID, userID uint) error {
	account, err := c.ledger.GetAccountByID(accountID)
	if err != nil {
		return err
	}

	if account.HolderID == userID {
		return nil
	}
	if role, err := middleware.GetRoleFromContext(r); err == nil && role == models.RoleBanker {
		return nil
	}

	return errAccessDenied
}

// writeLedgerError преобразует ошибку журнала операций в HTTP-ответ
func (c *AccountController) writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrAccountNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrInvalidKind),
		errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrInsufficientFunds):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, errAccessDenied):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, models.ErrStorage):
		http.Error(w, models.ErrStorage.Error(), http.StatusInternalServerError)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// CreateAccount обрабатывает запрос на открытие дополнительного счета
func (c *AccountController) CreateAccount(w http.ResponseWriter, r *http.Request) {
	// Получаем ID пользователя из контекста (установлен middleware)
	userID, ok := r.Context().Value("user_id").(uint)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var dto CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Валидируем DTO
	if err := c.validateRequest(dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Открываем счет
	account, err := c.ledger.OpenAccount(userID, dto.BankName, dto.Title)
	if err != nil {
		c.writeLedgerError(w, err)
		return
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":      account.ID,
		"number":  account.Number,
		"title":   account.Title,
		"balance": account.Balance,
	})
}

// GetAccounts обрабатывает запрос на получение списка счетов пользователя
func (c *AccountController) GetAccounts(w http.ResponseWriter, r *http.Request) {
	// Получаем ID пользователя из контекста (установлен middleware)
	userID, ok := r.Context().Value("user_id").(uint)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Получаем список счетов пользователя
	accounts, err := c.ledger.GetAccountsByUserID(userID)
	if err != nil {
		c.writeLedgerError(w, err)
		return
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(accounts)
}

// GetBalance обрабатывает запрос на получение остатка по счету
func (c *AccountController) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(uint)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	accountID, err := parseAccountID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Проверяем доступ к счету
	if err := c.validateAccountAccess(r, accountID, userID); err != nil {
		c.writeLedgerError(w, err)
		return
	}

	balance, err := c.ledger.GetBalance(accountID)
	if err != nil {
		c.writeLedgerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(balance)
}

// Deposit обрабатывает запрос на пополнение счета
func (c *AccountController) Deposit(w http.ResponseWriter, r *http.Request) {
	c.handleTransaction(w, r, models.KindDeposit)
}

// Withdraw обрабатывает запрос на снятие средств со счета
func (c *AccountController) Withdraw(w http.ResponseWriter, r *http.Request) {
	c.handleTransaction(w, r, models.KindWithdrawal)
}

// handleTransaction выполняет общую часть пополнения и снятия
func (c *AccountController) handleTransaction(w http.ResponseWriter, r *http.Request, kind models.TransactionKind) {
	// Получаем ID пользователя из контекста (установлен middleware)
	userID, ok := r.Context().Value("user_id").(uint)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	accountID, err := parseAccountID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var dto services.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Проверяем доступ к счету
	if err := c.validateAccountAccess(r, accountID, userID); err != nil {
		c.writeLedgerError(w, err)
		return
	}

	// Проводим операцию
	var transaction *services.TransactionDTO
	if kind == models.KindDeposit {
		transaction, err = c.ledger.Deposit(accountID, dto)
	} else {
		transaction, err = c.ledger.Withdraw(accountID, dto)
	}
	if err != nil {
		c.writeLedgerError(w, err)
		return
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(transaction)
}

// PostTransaction обрабатывает запрос на проведение операции с типом из тела
func (c *AccountController) PostTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(uint)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	accountID, err := parseAccountID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var dto services.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Проверяем доступ к счету
	if err := c.validateAccountAccess(r, accountID, userID); err != nil {
		c.writeLedgerError(w, err)
		return
	}

	// Проводим операцию
	transaction, err := c.ledger.Post(accountID, dto)
	if err != nil {
		c.writeLedgerError(w, err)
		return
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(transaction)
}

// GetTransactions обрабатывает запрос на получение истории операций по счету
func (c *AccountController) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(uint)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	accountID, err := parseAccountID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Проверяем доступ к счету
	if err := c.validateAccountAccess(r, accountID, userID); err != nil {
		c.writeLedgerError(w, err)
		return
	}

	// Разбираем параметры фильтра
	filter, err := parseHistoryFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	transactions, err := c.ledger.GetTransactions(accountID, filter)
	if err != nil {
		c.writeLedgerError(w, err)
		return
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(transactions)
}

// GetStatement обрабатывает запрос на получение XML-выписки по счету
func (c *AccountController) GetStatement(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(uint)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	accountID, err := parseAccountID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Проверяем доступ к счету
	if err := c.validateAccountAccess(r, accountID, userID); err != nil {
		c.writeLedgerError(w, err)
		return
	}

	// Разбираем параметры фильтра
	filter, err := parseHistoryFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Выписка формируется в хронологическом порядке
	filter.Order = models.OrderAsc

	statement, signature, err := c.statements.BuildStatement(accountID, filter)
	if err != nil {
		c.writeLedgerError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("X-Statement-Signature", signature)
	w.WriteHeader(http.StatusOK)
	w.Write(statement)
}

// parseHistoryFilter разбирает параметры фильтра истории из строки запроса
func parseHistoryFilter(r *http.Request) (models.TransactionFilter, error) {
	var filter models.TransactionFilter
	query := r.URL.Query()

	if v := query.Get("type"); v != "" {
		kind, err := models.ParseTransactionKind(v)
		if err != nil {
			return filter, err
		}
		filter.Kind = kind
	}

	filter.Order = query.Get("order")

	if v := query.Get("from"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			return filter, errors.New("неверный формат параметра from")
		}
		filter.From = t
	}
	if v := query.Get("to"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			return filter, errors.New("неверный формат параметра to")
		}
		filter.To = t
	}

	return filter, nil
}

// parseTimeParam принимает время в RFC3339 или просто дату
func parseTimeParam(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

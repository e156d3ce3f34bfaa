package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"demobank/config"
	"demobank/controllers"
	"demobank/database"
	"demobank/services"
)

// newTestApp собирает приложение поверх хранилища в памяти
func newTestApp(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-secret-key"
	cfg.JWT.ExpiresIn = 1
	cfg.Statement.HMACKey = "test-statement-key"

	store := database.NewMemoryStore()
	emailService := services.NewEmailService(cfg)
	userService := services.NewUserService(store)
	ledgerService := services.NewLedgerService(store, emailService)
	statementService := services.NewStatementService(store, cfg.Statement.HMACKey)

	authController := controllers.NewAuthController(userService, ledgerService, cfg)
	accountController := controllers.NewAccountController(ledgerService, statementService)
	bankerController := controllers.NewBankerController(userService, ledgerService)

	return setupRouter(authController, accountController, bankerController, []byte(cfg.JWT.SecretKey))
}

func TestSignUpAndDepositFlow(t *testing.T) {
	router := newTestApp(t)

	// Регистрация открывает клиенту счет и выдает токен
	body, _ := json.Marshal(map[string]string{
		"firstName": "Алиса",
		"lastName":  "Иванова",
		"email":     "alice@example.com",
		"password":  "Passw0rd!",
	})
	req := httptest.NewRequest("POST", "/api/auth/signUp", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("signUp: got %d want %d, body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	var auth controllers.AuthResponse
	if err := json.NewDecoder(rr.Body).Decode(&auth); err != nil {
		t.Fatalf("failed to decode signUp response: %v", err)
	}
	if auth.Token.Token == "" {
		t.Fatal("signUp response has no token")
	}
	if auth.Account.ID == 0 {
		t.Fatal("signUp did not provision an account")
	}

	// Выданный токен открывает доступ к счетам
	req = httptest.NewRequest("GET", "/api/bank/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+auth.Token.Token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("accounts with token: got %d want %d", rr.Code, http.StatusOK)
	}

	// Вход с теми же учетными данными
	body, _ = json.Marshal(map[string]string{
		"email":    "alice@example.com",
		"password": "Passw0rd!",
	})
	req = httptest.NewRequest("POST", "/api/auth/signIn", bytes.NewReader(body))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("signIn: got %d want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	router := newTestApp(t)

	req := httptest.NewRequest("GET", "/api/bank/accounts", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("accounts without token: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestSignUpRejectsWeakPassword(t *testing.T) {
	router := newTestApp(t)

	// Пароль без цифр и спецсимволов не проходит валидацию
	body, _ := json.Marshal(map[string]string{
		"firstName": "Алиса",
		"lastName":  "Иванова",
		"email":     "alice@example.com",
		"password":  "password",
	})
	req := httptest.NewRequest("POST", "/api/auth/signUp", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("weak password: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}

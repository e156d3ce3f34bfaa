package main

import (
	"fmt"
	"log"
	"net/http"

	"demobank/config"
	"demobank/controllers"
	"demobank/database"
	"demobank/middleware"
	"demobank/models"
	"demobank/services"
	"demobank/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
)

// setupRouter собирает маршруты публичного API
func setupRouter(authController *controllers.AuthController, accountController *controllers.AccountController, bankerController *controllers.BankerController, jwtKey []byte) *mux.Router {
	router := mux.NewRouter()

	// Публичные маршруты для аутентификации
	auth := router.PathPrefix("/api/auth").Subrouter()
	auth.Use(middleware.RateLimitMiddleware)
	auth.HandleFunc("/signUp", authController.SignUp).Methods("POST")
	auth.HandleFunc("/signIn", authController.SignIn).Methods("POST")

	// Защищенные маршруты
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.AuthMiddleware(jwtKey))
	protected.Use(middleware.LoggingMiddleware)

	// Маршруты для работы с банковскими счетами
	protected.HandleFunc("/bank/accounts", accountController.CreateAccount).Methods("POST")
	protected.HandleFunc("/bank/accounts", accountController.GetAccounts).Methods("GET")
	protected.HandleFunc("/bank/accounts/{id}/balance", accountController.GetBalance).Methods("GET")
	protected.HandleFunc("/bank/accounts/{id}/deposit", accountController.Deposit).Methods("POST")
	protected.HandleFunc("/bank/accounts/{id}/withdraw", accountController.Withdraw).Methods("POST")
	protected.HandleFunc("/bank/accounts/{id}/transactions", accountController.PostTransaction).Methods("POST")
	protected.HandleFunc("/bank/accounts/{id}/transactions", accountController.GetTransactions).Methods("GET")
	protected.HandleFunc("/bank/accounts/{id}/statement", accountController.GetStatement).Methods("GET")

	// Маршруты банковских работников
	banker := protected.PathPrefix("/bank/staff").Subrouter()
	banker.Use(middleware.RequireRole(models.RoleBanker))
	banker.HandleFunc("/customers", bankerController.GetCustomers).Methods("GET")
	banker.HandleFunc("/customers/{id}", bankerController.GetCustomer).Methods("GET")
	banker.HandleFunc("/accounts", bankerController.GetAllAccounts).Methods("GET")

	return router
}

// startOpsServer запускает служебный сервер с проверкой здоровья и метриками
func startOpsServer(cfg *config.Config, store services.LedgerStore) {
	gin.SetMode(gin.ReleaseMode)
	ops := gin.New()
	ops.Use(middleware.Logger(), middleware.Recovery(), middleware.CORSMiddleware(), middleware.RateLimit())

	ops.GET("/healthz", func(c *gin.Context) {
		if err := store.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	ops.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetMetrics().GetMetricsSnapshot())
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.OpsPort)
		log.Printf("Служебный сервер запущен на порту %s", addr)
		if err := ops.Run(addr); err != nil {
			log.Fatalf("Ошибка запуска служебного сервера: %v", err)
		}
	}()
}

func main() {
	// Инициализируем конфигурацию
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Выбираем хранилище
	var (
		ledgerStore services.LedgerStore
		userStore   services.UserStore
	)
	switch cfg.DB.Driver {
	case config.DriverMemory:
		store := database.NewMemoryStore()
		ledgerStore = store
		userStore = store
		log.Println("Используется хранилище в памяти")
	default:
		db, err := database.Connect(cfg)
		if err != nil {
			log.Fatalf("Ошибка подключения к базе данных: %v", err)
		}
		defer db.Close()
		ledgerStore = db
		userStore = db
	}

	// Инициализируем сервисы
	emailService := services.NewEmailService(cfg)
	userService := services.NewUserService(userStore)
	ledgerService := services.NewLedgerService(ledgerStore, emailService)
	statementService := services.NewStatementService(ledgerStore, cfg.Statement.HMACKey)

	// Наполняем пустое хранилище демонстрационными данными
	if cfg.Seed.Enabled {
		if err := services.NewSeedService(userService, ledgerService).Run(); err != nil {
			log.Fatalf("Ошибка наполнения демонстрационными данными: %v", err)
		}
	}

	// Запускаем периодическую сверку балансов
	consistency := services.NewConsistencyService(ledgerStore)
	consistency.Start()
	defer consistency.Stop()
	log.Println("Сверка балансов запущена")

	// Инициализируем контроллеры
	authController := controllers.NewAuthController(userService, ledgerService, cfg)
	accountController := controllers.NewAccountController(ledgerService, statementService)
	bankerController := controllers.NewBankerController(userService, ledgerService)

	// Создаем роутер
	router := setupRouter(authController, accountController, bankerController, []byte(cfg.JWT.SecretKey))

	// Запускаем служебный сервер
	startOpsServer(cfg, ledgerStore)

	// Запускаем сервер
	port := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Сервер запущен на порту %s", port)
	if err := http.ListenAndServe(port, middleware.CORS(router)); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}

package database

import (
	"errors"
	"fmt"
	"log"
	"time"

	"demobank/config"
	"demobank/models"
	"demobank/utils"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database инкапсулирует подключение к базе данных
type Database struct {
	DB *gorm.DB

	// пер-счетные мьютексы для сериализации проводок
	locks *utils.KeyedMutex

	// блокировка строки SELECT ... FOR UPDATE доступна только в postgres
	rowLock bool
}

// Connect устанавливает соединение с базой данных и применяет миграции
func Connect(cfg *config.Config) (*Database, error) {
	var dialector gorm.Dialector

	switch cfg.DB.Driver {
	case config.DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.DBName)
		dialector = postgres.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DB.SQLitePath)
	default:
		return nil, fmt.Errorf("неподдерживаемый драйвер базы данных: %s", cfg.DB.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения экземпляра базы данных: %v", err)
	}

	// Настройка пула соединений
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := runMigrations(cfg); err != nil {
		return nil, fmt.Errorf("ошибка применения миграций: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.BankAccount{}, &models.Transaction{}); err != nil {
		return nil, fmt.Errorf("ошибка автомиграции моделей: %v", err)
	}

	log.Printf("Подключение к базе данных установлено (драйвер: %s)", cfg.DB.Driver)

	return &Database{
		DB:      db,
		locks:   utils.NewKeyedMutex(),
		rowLock: cfg.DB.Driver == config.DriverPostgres,
	}, nil
}

// runMigrations применяет SQL-миграции для выбранного драйвера
func runMigrations(cfg *config.Config) error {
	var sourceURL, databaseURL string

	switch cfg.DB.Driver {
	case config.DriverPostgres:
		sourceURL = "file://migrations/postgres"
		databaseURL = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.DBName)
	case config.DriverSQLite:
		sourceURL = "file://migrations/sqlite"
		databaseURL = fmt.Sprintf("sqlite3://%s", cfg.DB.SQLitePath)
	}

	m, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		return fmt.Errorf("ошибка инициализации миграций: %v", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("ошибка выполнения миграций: %v", err)
	}

	return nil
}

// Close закрывает соединение с базой данных
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping проверяет доступность базы данных
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	return nil
}

// CreateUser сохраняет нового пользователя
func (d *Database) CreateUser(user *models.User) error {
	if err := d.DB.Create(user).Error; err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	return nil
}

// GetUserByID находит пользователя по идентификатору
func (d *Database) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := d.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("пользователь не найден")
		}
		return nil, fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	return &user, nil
}

// GetUserByEmail находит пользователя по email
func (d *Database) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := d.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("пользователь не найден")
		}
		return nil, fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	return &user, nil
}

// ListUsersByRole возвращает пользователей с указанной ролью
func (d *Database) ListUsersByRole(role models.Role) ([]models.User, error) {
	var users []models.User
	if err := d.DB.Where("role = ?", role).Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	return users, nil
}

// CountUsers возвращает общее количество пользователей
func (d *Database) CountUsers() (int64, error) {
	var count int64
	if err := d.DB.Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	return count, nil
}

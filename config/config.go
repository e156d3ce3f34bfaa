package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Драйверы хранилища
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config представляет конфигурацию приложения
type Config struct {
	Server struct {
		Port    int // порт публичного API
		OpsPort int // порт служебного сервера (healthz, metrics)
	}
	DB struct {
		Driver     string // postgres | sqlite | memory
		Host       string
		Port       int
		User       string
		Password   string
		DBName     string
		SQLitePath string // путь к файлу базы для драйвера sqlite
	}
	JWT struct {
		SecretKey string
		ExpiresIn int // в часах
	}
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
		Enabled  bool // выключено по умолчанию: демо работает без почтового сервера
	}
	Statement struct {
		HMACKey string // ключ подписи выгружаемых выписок
	}
	Seed struct {
		Enabled bool // засеивать демо-данные при пустой базе
	}
}

// NewConfig загружает конфигурацию: значения по умолчанию,
// затем необязательный config.yaml, затем переменные окружения
// (SERVER_PORT, DB_DRIVER, JWT_SECRET_KEY и т.д.).
func NewConfig() (*Config, error) {
	v := viper.New()

	// Значения по умолчанию
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.ops_port", 8081)

	v.SetDefault("db.driver", DriverSQLite)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.dbname", "bank_db")
	v.SetDefault("db.sqlite_path", "bank.db")

	v.SetDefault("jwt.secret_key", "your-secret-key-here")
	v.SetDefault("jwt.expires_in", 24)

	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "your-email@gmail.com")
	v.SetDefault("smtp.password", "your-app-password")
	v.SetDefault("smtp.from", "your-email@gmail.com")
	v.SetDefault("smtp.enabled", false)

	v.SetDefault("statement.hmac_key", "your-statement-hmac-key-here")

	v.SetDefault("seed.enabled", true)

	// Необязательный файл конфигурации рядом с бинарником
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %v", err)
		}
	}

	// Переменные окружения: db.driver -> DB_DRIVER
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	cfg.Server.Port = v.GetInt("server.port")
	cfg.Server.OpsPort = v.GetInt("server.ops_port")

	cfg.DB.Driver = strings.ToLower(v.GetString("db.driver"))
	cfg.DB.Host = v.GetString("db.host")
	cfg.DB.Port = v.GetInt("db.port")
	cfg.DB.User = v.GetString("db.user")
	cfg.DB.Password = v.GetString("db.password")
	cfg.DB.DBName = v.GetString("db.dbname")
	cfg.DB.SQLitePath = v.GetString("db.sqlite_path")

	cfg.JWT.SecretKey = v.GetString("jwt.secret_key")
	cfg.JWT.ExpiresIn = v.GetInt("jwt.expires_in")

	cfg.SMTP.Host = v.GetString("smtp.host")
	cfg.SMTP.Port = v.GetInt("smtp.port")
	cfg.SMTP.Username = v.GetString("smtp.username")
	cfg.SMTP.Password = v.GetString("smtp.password")
	cfg.SMTP.From = v.GetString("smtp.from")
	cfg.SMTP.Enabled = v.GetBool("smtp.enabled")

	cfg.Statement.HMACKey = v.GetString("statement.hmac_key")

	cfg.Seed.Enabled = v.GetBool("seed.enabled")

	switch cfg.DB.Driver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return nil, fmt.Errorf("неизвестный драйвер базы данных: %s", cfg.DB.Driver)
	}

	return cfg, nil
}

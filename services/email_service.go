package services

import (
	"fmt"
	"time"

	"demobank/config"
	"demobank/utils"

	"gopkg.in/gomail.v2"
)

// EmailService предоставляет методы для отправки email
type EmailService struct {
	dialer  *gomail.Dialer
	from    string
	enabled bool
}

// NewEmailService создает новый экземпляр EmailService
func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)

	return &EmailService{
		dialer:  dialer,
		from:    cfg.SMTP.From,
		enabled: cfg.SMTP.Enabled,
	}
}

// SendEmail отправляет email
func (s *EmailService) SendEmail(to, subject, body string) error {
	// В демонстрационном режиме почта отключена
	if !s.enabled {
		utils.LogDebug("Отправка почты отключена, письмо для %s пропущено", to)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("ошибка отправки email: %v", err)
	}

	return nil
}

// SendTransactionNotification отправляет уведомление о транзакции
func (s *EmailService) SendTransactionNotification(to, accountNumber string, amount float64, transactionType string) error {
	subject := "Уведомление о транзакции"
	body := fmt.Sprintf(`
		<h2>Уведомление о транзакции</h2>
		<p>Счет: %s</p>
		<p>Тип операции: %s</p>
		<p>Сумма: %.2f</p>
		<p>Дата: %s</p>
	`, accountNumber, transactionType, amount, time.Now().Format("02.01.2006 15:04:05"))

	return s.SendEmail(to, subject, body)
}

// SendAccountOpenedNotification отправляет уведомление об открытии счета
func (s *EmailService) SendAccountOpenedNotification(to, accountNumber string) error {
	subject := "Ваш счет открыт"
	body := fmt.Sprintf(`
		<h2>Поздравляем!</h2>
		<p>Для вас открыт новый счет %s.</p>
		<p>Спасибо, что выбрали наш банк!</p>
		<p>С уважением,<br>Команда банка</p>
	`, accountNumber)

	return s.SendEmail(to, subject, body)
}

package models

import "errors"

// Закрытый перечень ошибок леджера. Контроллеры сопоставляют их
// с HTTP-статусами через errors.Is, вместо разбора текста сообщений.
var (
	// ErrAccountNotFound — банковский счет не существует
	ErrAccountNotFound = errors.New("банковский счет не найден")
	// ErrInvalidKind — неизвестный тип транзакции
	ErrInvalidKind = errors.New("недопустимый тип транзакции")
	// ErrInvalidAmount — сумма отсутствует, не число, ноль или отрицательная
	ErrInvalidAmount = errors.New("недопустимая сумма операции")
	// ErrInsufficientFunds — сумма снятия превышает текущий баланс
	ErrInsufficientFunds = errors.New("недостаточно средств на счете")
	// ErrStorage — сбой нижележащего хранилища; оборачивает исходную ошибку
	ErrStorage = errors.New("ошибка хранилища")
)

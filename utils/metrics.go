package utils

import (
	"errors"
	"sync"
	"time"
)

// Metrics содержит метрики приложения
type Metrics struct {
	mu sync.RWMutex

	// Метрики запросов
	TotalRequests   int64
	FailedRequests  int64
	RequestLatency  time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time

	// Метрики транзакций
	TotalTransactions   int64
	TotalDeposits       int64
	TotalWithdrawals    int64
	FailedTransactions  int64
	InsufficientRejects int64
	LastTransactionTime time.Time

	// Метрики проверки целостности
	AuditRuns       int64
	AuditMismatches int64
	LastAuditTime   time.Time

	// Метрики ошибок
	ErrorCount    int64
	LastErrorTime time.Time
	ErrorTypes    map[string]int64
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// GetMetrics возвращает экземпляр метрик
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			ErrorTypes: make(map[string]int64),
		}
	})
	return metrics
}

// RecordRequest записывает метрики запроса
func (m *Metrics) RecordRequest(duration time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests++
	m.RequestLatency += duration
	m.AverageLatency = m.RequestLatency / time.Duration(m.TotalRequests)
	m.LastRequestTime = time.Now()

	if failed {
		m.FailedRequests++
	}
}

// RecordTransaction записывает метрики операции леджера
func (m *Metrics) RecordTransaction(kind string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastTransactionTime = time.Now()

	if err != nil {
		m.FailedTransactions++
		m.recordErrorLocked(err)
		return
	}

	m.TotalTransactions++
	switch kind {
	case "DEPOSIT":
		m.TotalDeposits++
	case "WITHDRAWAL":
		m.TotalWithdrawals++
	}
}

// RecordInsufficientFunds записывает отклонение снятия из-за нехватки средств
func (m *Metrics) RecordInsufficientFunds() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsufficientRejects++
}

// RecordAudit записывает метрики прогона проверки целостности
func (m *Metrics) RecordAudit(mismatches int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AuditRuns++
	m.AuditMismatches += int64(mismatches)
	m.LastAuditTime = time.Now()
}

// RecordError записывает метрики ошибки
func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordErrorLocked(err)
}

func (m *Metrics) recordErrorLocked(err error) {
	m.ErrorCount++
	m.LastErrorTime = time.Now()

	errorType := "unknown"
	if err != nil {
		// Разворачиваем обертки, чтобы группировать по корневой ошибке
		root := err
		for errors.Unwrap(root) != nil {
			root = errors.Unwrap(root)
		}
		errorType = root.Error()
	}

	m.ErrorTypes[errorType]++
}

// GetMetricsSnapshot возвращает снимок текущих метрик
func (m *Metrics) GetMetricsSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	errorTypes := make(map[string]int64, len(m.ErrorTypes))
	for k, v := range m.ErrorTypes {
		errorTypes[k] = v
	}

	return map[string]interface{}{
		"total_requests":        m.TotalRequests,
		"failed_requests":       m.FailedRequests,
		"average_latency":       m.AverageLatency.String(),
		"total_transactions":    m.TotalTransactions,
		"total_deposits":        m.TotalDeposits,
		"total_withdrawals":     m.TotalWithdrawals,
		"failed_transactions":   m.FailedTransactions,
		"insufficient_rejects":  m.InsufficientRejects,
		"last_transaction_time": m.LastTransactionTime,
		"audit_runs":            m.AuditRuns,
		"audit_mismatches":      m.AuditMismatches,
		"last_audit_time":       m.LastAuditTime,
		"error_count":           m.ErrorCount,
		"last_error_time":       m.LastErrorTime,
		"error_types":           errorTypes,
	}
}

// ResetMetrics сбрасывает все метрики
func (m *Metrics) ResetMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests = 0
	m.FailedRequests = 0
	m.RequestLatency = 0
	m.AverageLatency = 0
	m.TotalTransactions = 0
	m.TotalDeposits = 0
	m.TotalWithdrawals = 0
	m.FailedTransactions = 0
	m.InsufficientRejects = 0
	m.AuditRuns = 0
	m.AuditMismatches = 0
	m.ErrorCount = 0
	m.ErrorTypes = make(map[string]int64)
}

package utils

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// GenerateHMAC создает HMAC-SHA256 подпись для данных
func GenerateHMAC(data string, key []byte) string {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// ValidateHMAC проверяет HMAC-подпись устойчивым к таймингу сравнением
func ValidateHMAC(data string, signature string, key []byte) bool {
	expected := GenerateHMAC(data, key)
	return hmac.Equal([]byte(signature), []byte(expected))
}

// GenerateSecureToken генерирует безопасный случайный токен
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %v", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

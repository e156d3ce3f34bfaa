package utils

import "testing"

func TestGenerateAndValidateHMAC(t *testing.T) {
	key := []byte("test-key")
	signature := GenerateHMAC("statement body", key)
	if signature == "" {
		t.Fatal("GenerateHMAC returned empty signature")
	}

	if !ValidateHMAC("statement body", signature, key) {
		t.Error("signature must verify for the original data and key")
	}
	if ValidateHMAC("statement body ", signature, key) {
		t.Error("signature must not verify for modified data")
	}
	if ValidateHMAC("statement body", signature, []byte("other-key")) {
		t.Error("signature must not verify with a different key")
	}
}

func TestGenerateHMACDeterministic(t *testing.T) {
	key := []byte("test-key")
	if GenerateHMAC("data", key) != GenerateHMAC("data", key) {
		t.Error("HMAC of the same data and key must be stable")
	}
	if GenerateHMAC("data", key) == GenerateHMAC("other", key) {
		t.Error("HMAC of different data must differ")
	}
}

func TestGenerateSecureToken(t *testing.T) {
	first, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatalf("GenerateSecureToken returned error: %v", err)
	}
	second, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatalf("GenerateSecureToken returned error: %v", err)
	}
	if first == "" || first == second {
		t.Errorf("tokens must be non-empty and unique: %q vs %q", first, second)
	}
}

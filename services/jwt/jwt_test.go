package jwt

import "testing"

func TestGenerateAndValidate(t *testing.T) {
	token, err := GenerateToken(42, "secret")
	if err != nil {
		t.Fatalf("could not generate token: %v", err)
	}

	claims, err := ValidateAndGetClaims(token, "secret")
	if err != nil {
		t.Fatalf("could not validate token: %v", err)
	}
	id, ok := claims["id"].(float64)
	if !ok || uint(id) != 42 {
		t.Errorf("claims id = %v, want 42", claims["id"])
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(42, "secret")
	if err != nil {
		t.Fatalf("could not generate token: %v", err)
	}
	if _, err := ValidateAndGetClaims(token, "other"); err == nil {
		t.Error("token signed with another secret must not validate")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	if _, err := ValidateAndGetClaims("not.a.jwt", "secret"); err == nil {
		t.Error("garbage must not validate")
	}
}

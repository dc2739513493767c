package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/clinic-service/internal/domain"
)

const testSecret = "test-secret-key-for-unit-tests"

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, 60)

	before := time.Now()
	token, exp, err := tm.GenerateToken("u-1", domain.RoleDoctor)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("GenerateToken returned empty token")
	}

	claims, err := tm.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.SubjectID != "u-1" {
		t.Errorf("SubjectID = %q, want %q", claims.SubjectID, "u-1")
	}
	if claims.Role != domain.RoleDoctor {
		t.Errorf("Role = %q, want %q", claims.Role, domain.RoleDoctor)
	}
	if claims.IssuedAt == nil || claims.IssuedAt.Time.Before(before.Add(-time.Second)) {
		t.Errorf("IssuedAt = %v, want >= %v", claims.IssuedAt, before)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.Time.After(claims.IssuedAt.Time) {
		t.Error("ExpiresAt must be after IssuedAt")
	}

	wantExp := before.Add(60 * time.Minute)
	if exp.Before(wantExp.Add(-time.Minute)) || exp.After(wantExp.Add(time.Minute)) {
		t.Errorf("exp = %v, want about %v", exp, wantExp)
	}
}

func TestTokenManager_SignsWithHS256(t *testing.T) {
	tm := NewTokenManager(testSecret, 60)
	token, _, err := tm.GenerateToken("u-1", domain.RolePatient)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	parsed, _, err := new(jwt.Parser).ParseUnverified(token, &Claims{})
	if err != nil {
		t.Fatalf("ParseUnverified: %v", err)
	}
	if parsed.Method.Alg() != "HS256" {
		t.Errorf("alg = %q, want HS256", parsed.Method.Alg())
	}
}

func TestTokenManager_DefaultTTL(t *testing.T) {
	tm := NewTokenManager(testSecret, 0)
	if tm.ttl != 60*time.Minute {
		t.Errorf("ttl = %v, want 60m", tm.ttl)
	}
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("other-secret", 60).GenerateToken("u-1", domain.RoleDoctor)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := NewTokenManager(testSecret, 60).VerifyToken(token); err == nil {
		t.Fatal("VerifyToken accepted a token signed with a different secret")
	}
}

func TestTokenManager_RejectsTamperedToken(t *testing.T) {
	tm := NewTokenManager(testSecret, 60)
	token, _, err := tm.GenerateToken("u-1", domain.RoleDoctor)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	// flip one character in the signature segment
	last := token[len(token)-1]
	flipped := byte('A')
	if last == 'A' {
		flipped = 'B'
	}
	tampered := token[:len(token)-1] + string(flipped)

	if _, err := tm.VerifyToken(tampered); err == nil {
		t.Fatal("VerifyToken accepted a tampered token")
	}
}

func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager(testSecret, 60)

	claims := &Claims{
		SubjectID: "u-1",
		Role:      domain.RoleDoctor,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	if _, err := tm.VerifyToken(token); err == nil {
		t.Fatal("VerifyToken accepted an expired token")
	}
}

func TestTokenManager_RejectsMissingExpiry(t *testing.T) {
	tm := NewTokenManager(testSecret, 60)

	claims := &Claims{SubjectID: "u-1", Role: domain.RoleDoctor}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	if _, err := tm.VerifyToken(token); err == nil {
		t.Fatal("VerifyToken accepted a token without an expiry claim")
	}
}

func TestTokenManager_RejectsMissingSubject(t *testing.T) {
	tm := NewTokenManager(testSecret, 60)

	claims := &Claims{
		Role: domain.RoleDoctor,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	if _, err := tm.VerifyToken(token); err == nil {
		t.Fatal("VerifyToken accepted a token without subjectId")
	}
}

func TestTokenManager_RejectsOtherSigningMethods(t *testing.T) {
	tm := NewTokenManager(testSecret, 60)

	claims := &Claims{
		SubjectID: "u-1",
		Role:      domain.RoleDoctor,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	if _, err := tm.VerifyToken(token); err == nil {
		t.Fatal("VerifyToken accepted an HS384 token")
	}
}

func TestClaims_CanonicalSubjectFieldName(t *testing.T) {
	tm := NewTokenManager(testSecret, 60)
	token, _, err := tm.GenerateToken("u-1", domain.RoleDoctor)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	// the payload must carry the subject under "subjectId" and nothing else
	parsed, _, err := new(jwt.Parser).ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		t.Fatalf("ParseUnverified: %v", err)
	}
	payload, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("unexpected claims type")
	}
	if payload["subjectId"] != "u-1" {
		t.Errorf(`payload["subjectId"] = %v, want "u-1"`, payload["subjectId"])
	}
	if _, exists := payload["id"]; exists {
		t.Error(`payload must not carry the legacy "id" field`)
	}
	if payload["role"] != "doctor" {
		t.Errorf(`payload["role"] = %v, want "doctor"`, payload["role"])
	}
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	tm := NewTokenManager(testSecret, 60)
	for _, token := range []string{"", "garbage", "a.b", strings.Repeat("x", 512)} {
		if _, err := tm.VerifyToken(token); err == nil {
			t.Errorf("VerifyToken(%q) accepted malformed input", token)
		}
	}
}

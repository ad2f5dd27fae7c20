package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

func newEdKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate ed25519 key: %v", err)
	}
	return pub, priv
}

func newHSManager(t *testing.T, secret string) *Manager {
	t.Helper()
	m, err := NewManager(Config{SigningMethod: MethodHS256, PrivateKey: []byte(secret)})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestIssueAndParseRoundTrip(t *testing.T) {
	m := newHSManager(t, "abc123")

	token, err := m.Issue("acct-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.AccountID != "acct-1" {
		t.Fatalf("expected account id acct-1, got %q", claims.AccountID)
	}
	if claims.Access != PurposeAuth {
		t.Fatalf("expected purpose auth, got %q", claims.Access)
	}
	if claims.ExpiresAt != nil {
		t.Fatal("session tokens must not carry an expiry")
	}
}

func TestIssueProducesDistinctTokens(t *testing.T) {
	m := newHSManager(t, "abc123")

	a, err := m.Issue("acct-1")
	if err != nil {
		t.Fatalf("issue a: %v", err)
	}
	b, err := m.Issue("acct-1")
	if err != nil {
		t.Fatalf("issue b: %v", err)
	}
	if a == b {
		t.Fatal("expected two issues for the same account to differ")
	}
}

func TestParseRejectsForeignPurpose(t *testing.T) {
	m := newHSManager(t, "abc123")

	token, err := m.IssueWithPurpose("acct-1", "reset")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign purpose, got %v", err)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	signer := newHSManager(t, "abc123")
	verifier := newHSManager(t, "other-secret")

	token, err := signer.Issue("acct-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	m := newHSManager(t, "abc123")

	for _, in := range []string{"", "not.a.jwt", "abc", "eyJhbGciOiJub25lIn0.eyJhaWQiOiJ4IiwiYWNjZXNzIjoiYXV0aCJ9."} {
		if _, err := m.Parse(in); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", in, err)
		}
	}
}

func TestParseRejectsWrongAlgorithm(t *testing.T) {
	pub, _ := newEdKeys(t)
	m, err := NewManager(Config{SigningMethod: MethodEd25519, PublicKey: pub})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	claims := SessionClaims{AccountID: "acct-1", Access: PurposeAuth}
	tok := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims)
	token, err := tok.SignedString([]byte("secret-secret-secret-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := m.Parse(token); err == nil {
		t.Fatal("expected wrong algorithm to be rejected")
	}
}

func TestParseIssuerMismatch(t *testing.T) {
	_, priv := newEdKeys(t)
	m, err := NewManager(Config{
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     priv.Public().(ed25519.PublicKey),
		Issuer:        "gotodo",
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	token, err := m.Issue("acct-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Parse(token); err != nil {
		t.Fatalf("expected valid token to parse: %v", err)
	}

	wrong := SessionClaims{AccountID: "acct-1", Access: PurposeAuth, RegisteredClaims: gjwt.RegisteredClaims{
		Issuer:   "other",
		IssuedAt: gjwt.NewNumericDate(time.Now()),
	}}
	badTok, _ := gjwt.NewWithClaims(gjwt.SigningMethodEdDSA, wrong).SignedString(priv)
	if _, err := m.Parse(badTok); err == nil {
		t.Fatal("expected wrong issuer to fail")
	}
}

func TestParseRejectsFutureIAT(t *testing.T) {
	m := newHSManager(t, "abc123")

	future := SessionClaims{AccountID: "acct-1", Access: PurposeAuth, RegisteredClaims: gjwt.RegisteredClaims{
		IssuedAt: gjwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, _ := gjwt.NewWithClaims(gjwt.SigningMethodHS256, future).SignedString([]byte("abc123"))
	if _, err := m.Parse(token); err == nil {
		t.Fatal("expected far-future iat to be rejected")
	}
}

func TestKeyRotationWithVerifyKeys(t *testing.T) {
	pubOld, privOld := newEdKeys(t)
	pubNew, privNew := newEdKeys(t)

	oldSigner, err := NewManager(Config{
		SigningMethod: MethodEd25519,
		PrivateKey:    privOld,
		PublicKey:     pubOld,
		KeyID:         "old",
	})
	if err != nil {
		t.Fatalf("old signer: %v", err)
	}
	newSigner, err := NewManager(Config{
		SigningMethod: MethodEd25519,
		PrivateKey:    privNew,
		KeyID:         "new",
		VerifyKeys:    map[string][]byte{"old": pubOld, "new": pubNew},
	})
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}

	oldToken, err := oldSigner.Issue("acct-1")
	if err != nil {
		t.Fatalf("issue old: %v", err)
	}
	if _, err := newSigner.Parse(oldToken); err != nil {
		t.Fatalf("expected token under retired kid to verify: %v", err)
	}
}

func TestNewManagerRejectsBadConfig(t *testing.T) {
	cases := []Config{
		{SigningMethod: MethodHS256},
		{SigningMethod: "rs512", PrivateKey: []byte("x")},
		{SigningMethod: MethodEd25519},
		{SigningMethod: MethodHS256, PrivateKey: []byte("x"), MaxFutureIAT: -time.Second},
	}
	for i, cfg := range cases {
		if _, err := NewManager(cfg); err == nil {
			t.Fatalf("case %d: expected config error", i)
		}
	}
}

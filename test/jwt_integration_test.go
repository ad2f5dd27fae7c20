//go:build integration
// +build integration

package test

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	goTodo "github.com/MrEthical07/goTodo"
	"github.com/MrEthical07/goTodo/jwt"
	gjwt "github.com/golang-jwt/jwt/v5"
)

func TestEd25519KeyRotation(t *testing.T) {
	pubOld, privOld, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	pubNew, privNew, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, done := mode.setup(t)
			defer done()
			ctx := context.Background()

			oldEngine := newEngine(t, rdb, func(cfg *goTodo.Config) {
				cfg.Token.SigningMethod = "ed25519"
				cfg.Token.PrivateKey = privOld
				cfg.Token.KeyID = "k1"
				cfg.Token.VerifyKeys = map[string][]byte{"k1": pubOld}
			})
			_, oldToken, err := oldEngine.Register(ctx, goTodo.RegisterRequest{Email: "rot@it.io", Password: "pw"})
			if err != nil {
				t.Fatalf("Register failed: %v", err)
			}

			rotated := newEngine(t, rdb, func(cfg *goTodo.Config) {
				cfg.Token.SigningMethod = "ed25519"
				cfg.Token.PrivateKey = privNew
				cfg.Token.KeyID = "k2"
				cfg.Token.VerifyKeys = map[string][]byte{"k1": pubOld, "k2": pubNew}
			})
			if _, err := rotated.Authenticate(ctx, oldToken); err != nil {
				t.Fatalf("token signed with retired key should still verify: %v", err)
			}
			_, newToken, err := rotated.Login(ctx, "rot@it.io", "pw")
			if err != nil {
				t.Fatalf("Login failed: %v", err)
			}
			if _, err := oldEngine.Authenticate(ctx, newToken); !errors.Is(err, goTodo.ErrUnauthorized) {
				t.Fatalf("old engine must reject unknown kid, got %v", err)
			}
		})
	}
}

func TestUnknownKidRejected(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	manager, err := jwt.NewManager(jwt.Config{
		SigningMethod: jwt.MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
		Issuer:        "gotodo",
		KeyID:         "k1",
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	token, err := manager.Issue("acct-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := manager.Parse(token); err != nil {
		t.Fatalf("Parse valid token failed: %v", err)
	}

	forged := gjwt.NewWithClaims(gjwt.SigningMethodEdDSA, jwt.SessionClaims{
		AccountID: "acct-1",
		Access:    jwt.PurposeAuth,
		RegisteredClaims: gjwt.RegisteredClaims{
			Issuer:   "gotodo",
			IssuedAt: gjwt.NewNumericDate(time.Now()),
		},
	})
	forged.Header["kid"] = "unknown"
	signed, err := forged.SignedString(priv)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	if _, err := manager.Parse(signed); !errors.Is(err, jwt.ErrInvalidToken) {
		t.Fatalf("expected unknown kid to fail, got %v", err)
	}
}

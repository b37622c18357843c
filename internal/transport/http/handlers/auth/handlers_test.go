package authhandler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"paymaster/internal/domain/auth"
	"paymaster/internal/platform/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	hash, err := auth.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	return config.Config{
		JWTSecret:        "login-test-secret",
		TokenTTL:         time.Hour,
		OperatorName:     "payroll-admin",
		OperatorPassHash: hash,
	}
}

func postLogin(t *testing.T, handler *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.HandleLogin(rec, req)
	return rec
}

func TestLoginSuccess(t *testing.T) {
	cfg := testConfig(t)
	handler := NewHandler(cfg)

	rec := postLogin(t, handler, `{"operator": "payroll-admin", "password": "correct horse"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			Token     string `json:"token"`
			ExpiresIn int    `json:"expiresIn"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Success || envelope.Data.Token == "" {
		t.Fatalf("expected token in response, got %s", rec.Body.String())
	}
	if envelope.Data.ExpiresIn != 3600 {
		t.Fatalf("expected expiresIn 3600, got %d", envelope.Data.ExpiresIn)
	}

	claims, err := auth.ParseToken(cfg.JWTSecret, envelope.Data.Token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.Operator != "payroll-admin" {
		t.Fatalf("expected operator payroll-admin, got %s", claims.Operator)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	handler := NewHandler(testConfig(t))
	rec := postLogin(t, handler, `{"operator": "payroll-admin", "password": "wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLoginWrongOperator(t *testing.T) {
	handler := NewHandler(testConfig(t))
	rec := postLogin(t, handler, `{"operator": "intruder", "password": "correct horse"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLoginDisabledWithoutCredential(t *testing.T) {
	cfg := testConfig(t)
	cfg.OperatorPassHash = ""
	handler := NewHandler(cfg)

	rec := postLogin(t, handler, `{"operator": "payroll-admin", "password": "correct horse"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestLoginBadJSON(t *testing.T) {
	handler := NewHandler(testConfig(t))
	rec := postLogin(t, handler, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

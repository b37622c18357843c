package authhandler

import (
	"encoding/json"
	"net/http"

	"paymaster/internal/domain/auth"
	"paymaster/internal/platform/config"
	"paymaster/internal/transport/http/api"
	"paymaster/internal/transport/http/middleware"
)

type Handler struct {
	Cfg config.Config
}

func NewHandler(cfg config.Config) *Handler {
	return &Handler{Cfg: cfg}
}

type loginPayload struct {
	Operator string `json:"operator"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON payload", requestID)
		return
	}

	if h.Cfg.OperatorPassHash == "" {
		api.Fail(w, http.StatusServiceUnavailable, "auth_disabled", "no operator credential configured", requestID)
		return
	}
	if payload.Operator != h.Cfg.OperatorName || auth.CheckPassword(h.Cfg.OperatorPassHash, payload.Password) != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "operator name or password is incorrect", requestID)
		return
	}

	token, err := auth.GenerateToken(h.Cfg.JWTSecret, payload.Operator, h.Cfg.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "could not issue token", requestID)
		return
	}

	api.Success(w, map[string]any{
		"token":     token,
		"expiresIn": int(h.Cfg.TokenTTL.Seconds()),
	}, requestID)
}

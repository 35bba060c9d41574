package stubapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type AuthHandler struct {
	store    *Store
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.Logger
}

func NewAuthHandler(store *Store, secret []byte, tokenTTL time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{store: store, secret: secret, tokenTTL: tokenTTL, logger: logger}
}

type loginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequestDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponseDTO struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid JSON body")
		return
	}

	errs := map[string][]string{}
	if req.Email == "" {
		errs["email"] = append(errs["email"], "email is required")
	}
	if req.Password == "" {
		errs["password"] = append(errs["password"], "password is required")
	}
	if len(errs) > 0 {
		respondValidation(w, h.logger, errs)
		return
	}

	user, err := h.store.Authenticate(req.Email, req.Password)
	if err != nil {
		respondError(w, h.logger, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := h.mintToken(user.ID)
	if err != nil {
		h.logger.Error("minting token failed", zap.Error(err))
		respondError(w, h.logger, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, authResponseDTO{Token: token, User: user})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid JSON body")
		return
	}

	errs := map[string][]string{}
	if req.Name == "" {
		errs["name"] = append(errs["name"], "name is required")
	}
	if req.Email == "" {
		errs["email"] = append(errs["email"], "email is required")
	}
	if len(req.Password) < 6 {
		errs["password"] = append(errs["password"], "password must be at least 6 characters")
	}
	if len(errs) > 0 {
		respondValidation(w, h.logger, errs)
		return
	}

	user, err := h.store.Register(req.Name, req.Email, req.Password)
	if errors.Is(err, ErrEmailTaken) {
		respondValidation(w, h.logger, map[string][]string{"email": {"email already registered"}})
		return
	}
	if err != nil {
		respondError(w, h.logger, http.StatusInternalServerError, "internal server error")
		return
	}

	// Auto-login: registration hands back a token right away.
	token, err := h.mintToken(user.ID)
	if err != nil {
		h.logger.Error("minting token failed", zap.Error(err))
		respondError(w, h.logger, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, h.logger, http.StatusCreated, authResponseDTO{Token: token, User: user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// Tokens are stateless; the client discards its copy regardless.
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) mintToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

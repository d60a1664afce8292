package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aurorahealth/medscheduler/internal/users"
	"github.com/aurorahealth/medscheduler/pkg/logging"
)

// Handler provides registration and login endpoints.
type Handler struct {
	store  *users.Store
	issuer *TokenIssuer
	logger *logging.Logger
}

// NewHandler creates the auth HTTP handler.
func NewHandler(store *users.Store, issuer *TokenIssuer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, issuer: issuer, logger: logger}
}

// RegisterRoutes mounts the public auth endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
}

// RegisterProtectedRoutes mounts endpoints that require a valid token.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/me", h.me)
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	Specialty string `json:"specialty,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	role, err := users.ParseRole(req.Role)
	if err != nil {
		http.Error(w, "invalid role", http.StatusBadRequest)
		return
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user := &users.User{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Role:         role,
		Specialty:    req.Specialty,
		Phone:        req.Phone,
	}
	if err := h.store.Create(r.Context(), user); err != nil {
		switch {
		case errors.Is(err, users.ErrEmailTaken):
			http.Error(w, "email already registered", http.StatusConflict)
		default:
			h.logger.Error("auth handler: register", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user.Public())
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        users.Public `json:"user"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.store.GetByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, users.ErrNotFound) {
		h.logger.Error("auth handler: login lookup", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if user == nil || !CheckPassword(user.PasswordHash, req.Password) {
		http.Error(w, "invalid email or password", http.StatusUnauthorized)
		return
	}

	token, err := h.issuer.Issue(user.ID, user.Role)
	if err != nil {
		h.logger.Error("auth handler: issue token", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(h.issuer.TTL().Seconds()),
		User:        user.Public(),
	})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing authorization header", http.StatusUnauthorized)
		return
	}
	user, err := h.store.GetByID(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		h.logger.Error("auth handler: me", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user.Public())
}

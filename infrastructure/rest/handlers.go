package rest

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"messenger/auth"
	"messenger/contract"
	"messenger/domain"
	"messenger/errors"
	"messenger/services"
	"net/http"
	"time"

	"github.com/samber/lo"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sendRequest struct {
	Receiver string `json:"receiver"`
	Text     string `json:"text"`
}

type Handler struct {
	log         *slog.Logger
	authService services.IAuthService
	router      contract.IRouter
	history     contract.IHistoryResolver
}

func NewHandler(log *slog.Logger, authService services.IAuthService,
	router contract.IRouter, history contract.IHistoryResolver) *Handler {
	return &Handler{log: log, authService: authService, router: router, history: history}
}

func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Messenger is running"))
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	userID, err := h.authService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if stderrors.Is(err, errors.ErrUserAlreadyExists) {
			writeJSON(w, http.StatusConflict, map[string]string{"message": "User already exists"})
			return
		}
		h.writeError(w, err)
		return
	}

	h.log.Info("User registered", "identity", req.Email, "user_id", userID)
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Signup successful", "userId": userID})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if stderrors.Is(err, errors.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
			return
		}
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Login successful", "token": token.String()})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"email": identity.String()})
}

// SendMessage routes a message on behalf of the authenticated caller.
// The body carries no sender: it always comes from the verified token.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}
	sender, _ := auth.IdentityFromContext(r.Context())

	message, err := h.router.Route(r.Context(), sender, domain.Identity(req.Receiver), req.Text)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message   string    `json:"message"`
		ID        string    `json:"id"`
		Timestamp time.Time `json:"timestamp"`
	}{"Message sent", message.ID.String(), message.SentAt})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.IdentityFromContext(r.Context())
	other := domain.Identity(r.URL.Query().Get("user2"))

	messages, err := h.history.History(r.Context(), caller, other)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(messages, func(m domain.Message, _ int) MessagePayload {
		return fromMessage(m)
	}))
}

// writeError hides internal details behind a generic message on 5xx.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := errors.MapToHTTPStatus(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		h.log.Error("Request failed", "error", err)
		message = "Server error"
	}
	writeJSON(w, status, map[string]string{"message": message, "code": errors.Code(err)})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

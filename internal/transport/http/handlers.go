package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/kasatkinanv/token-lease-service/internal/service"
)

// Handlers агрегирует зависимости HTTP-слоя.
type Handlers struct {
	service *service.Service
}

func NewHandlers(svc *service.Service) *Handlers {
	return &Handlers{service: svc}
}

type tokenRequest struct {
	Token string `json:"token"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// writeJSON — единый ответ JSON с нужным Content-Type.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeTokenID — строгий разбор тела {"token":"<uuid>"}: неизвестные поля
// запрещены, идентификатор обязан быть валидным UUID.
// Возвращает канонизированную форму идентификатора.
func decodeTokenID(r *http.Request) (string, error) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var in tokenRequest
	if err := dec.Decode(&in); err != nil {
		return "", fmt.Errorf("%w: %v", errInvalidArgument, err)
	}

	id, err := uuid.Parse(in.Token)
	if err != nil {
		return "", fmt.Errorf("%w: malformed token id", errInvalidArgument)
	}

	return id.String(), nil
}

// GenerateToken — POST /token/generateToken.
// Создаёт токен; идентификатор клиенту не возвращается.
func (h *Handlers) GenerateToken(w http.ResponseWriter, r *http.Request) {
	if err := h.service.GenerateToken(r.Context()); err != nil {
		WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "token successfully generated"})
}

// AcquireToken — GET /token/acquireToken.
func (h *Handlers) AcquireToken(w http.ResponseWriter, r *http.Request) {
	id, err := h.service.AcquireToken(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: id})
}

// KeepAlive — PUT /token/keepAlive.
func (h *Handlers) KeepAlive(w http.ResponseWriter, r *http.Request) {
	id, err := decodeTokenID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if err := h.service.KeepAlive(r.Context(), id); err != nil {
		WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("token %s has received keep alive signal", id),
	})
}

// UnblockToken — PUT /token/unblockToken.
func (h *Handlers) UnblockToken(w http.ResponseWriter, r *http.Request) {
	id, err := decodeTokenID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if err := h.service.UnblockToken(r.Context(), id); err != nil {
		WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("token %s has been unblocked", id),
	})
}

// DeleteToken — DELETE /token/deleteToken.
func (h *Handlers) DeleteToken(w http.ResponseWriter, r *http.Request) {
	id, err := decodeTokenID(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if err := h.service.DeleteToken(r.Context(), id); err != nil {
		WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("token %s has been deleted", id),
	})
}

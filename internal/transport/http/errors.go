// Package http содержит HTTP-слой сервиса аренды токенов.
// Здесь выполняется только маппинг данных и ошибок доменного слоя (service)
// в HTTP. Вся логика переходов состояний находится в пакете service.
//
// Маппинг ошибок (каждому виду — свой статус, без схлопывания в общий 400):
//   - ErrNotFound -> 404 not_found;
//   - ErrNotAssigned -> 412 not_assigned;
//   - ErrPoolExhausted -> 429 pool_exhausted;
//   - storage.ErrUnavailable -> 503 unavailable;
//   - битое тело запроса / не-UUID -> 400 invalid_argument;
//   - дедлайн запроса -> 504 deadline_exceeded;
//   - прочее -> 500 internal без утечки деталей (подробности — в логи).
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kasatkinanv/token-lease-service/internal/service"
	"github.com/kasatkinanv/token-lease-service/internal/storage"
)

// errInvalidArgument — локальная ошибка разбора входных данных.
var errInvalidArgument = errors.New("invalid argument")

// APIError — единый формат ошибки для клиента.
// Code — короткий стабильный код для машиночитаемой обработки.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе об ошибке.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// toHTTP конвертирует ошибку доменного слоя в HTTP-статус и унифицированный ответ.
func toHTTP(err error) (int, ErrorResponse) {
	status, code, msg := http.StatusInternalServerError, "internal", "internal error"

	switch {
	case errors.Is(err, service.ErrNotFound):
		status, code, msg = http.StatusNotFound, "not_found", "token not found"
	case errors.Is(err, service.ErrNotAssigned):
		status, code, msg = http.StatusPreconditionFailed, "not_assigned", "token is not assigned"
	case errors.Is(err, service.ErrPoolExhausted):
		status, code, msg = http.StatusTooManyRequests, "pool_exhausted", "no available tokens"
	case errors.Is(err, errInvalidArgument):
		status, code, msg = http.StatusBadRequest, "invalid_argument", "invalid argument"
	case errors.Is(err, storage.ErrUnavailable):
		status, code, msg = http.StatusServiceUnavailable, "unavailable", "store unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		status, code, msg = http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	}

	return status, ErrorResponse{Error: APIError{Code: code, Message: msg}}
}

// WriteError — хелпер для хендлеров: пишет статус/тело,
// добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := toHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

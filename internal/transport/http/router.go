package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kasatkinanv/token-lease-service/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
	// Ready сообщает готовность сервиса для /healthz; nil — всегда готов.
	Ready func() bool
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(h *Handlers, opts Options) http.Handler {
	r := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	r.Use(
		middleware.Recover(),           // безопасно ловим паники
		middleware.RequestID(),         // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)
	if opts.Timeout > 0 {
		r.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	// Пять операций пула; пути — внешний контракт сервиса.
	r.Route("/token", func(rt chi.Router) {
		rt.Post("/generateToken", h.GenerateToken)
		rt.Get("/acquireToken", h.AcquireToken)
		rt.Put("/keepAlive", h.KeepAlive)
		rt.Put("/unblockToken", h.UnblockToken)
		rt.Delete("/deleteToken", h.DeleteToken)
	})

	// Служебные эндпоинты.
	r.Get("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if opts.Ready == nil || opts.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kasatkinanv/token-lease-service/internal/config"
	"github.com/kasatkinanv/token-lease-service/internal/storage"
)

// Monitor — фоновый обработчик событий истечения ключей: единственный
// потребитель потока expired-событий хранилища, превращающий истёкшие
// таймеры в переходы состояний.
//
//   - истёк таймер назначения — токен возвращается в пул свободных с таймером
//     простоя, равным остатку lease-таймера; если остатка нет, событие
//     пропускается — токен удалит его собственное lease-событие;
//   - истёк lease-таймер — полное удаление токена независимо от состояния;
//   - истёкший таймер простоя самостоятельного обработчика не имеет:
//     у простаивающего токена он заводится с тем же сроком, что и
//     lease-таймер, так что зачистку выполняет lease-событие.
//
// На одно хранилище должен работать ровно один монитор (инвариант
// развёртывания). Дублирующие мониторы разобрали бы одни и те же события
// повторно, но не некорректно: удаление и понижение идемпотентны.
type Monitor struct {
	storage storage.Storage
	service *Service
	backoff time.Duration
	log     *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor создаёт монитор истечений. Запуск — явным вызовом Start.
func NewMonitor(st storage.Storage, svc *Service, cfg config.MonitorConfig, lg *slog.Logger) *Monitor {
	if lg == nil {
		lg = slog.Default()
	}

	return &Monitor{
		storage: st,
		service: svc,
		backoff: cfg.RetryBackoff,
		log:     lg.With(slog.String("component", "expiry_monitor")),
	}
}

// Start запускает цикл монитора в отдельной горутине.
// Повторный Start без Stop не поддерживается.
func (m *Monitor) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	go m.run(ctx)
}

// Stop останавливает монитор и дожидается завершения цикла.
// Начатое событие доводится до конца: отмена прерывает только ожидание
// следующего события, а не применение текущего.
func (m *Monitor) Stop() {
	if m.cancel == nil {
		return
	}

	m.cancel()
	<-m.done
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)

	m.log.Info("monitor_started", slog.Duration("retry_backoff", m.backoff))

	for {
		sub, err := m.storage.SubscribeExpired(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}

			m.log.Error("expiry_subscribe_failed", slog.String("err", err.Error()))
			if !m.sleep(ctx) {
				break
			}

			continue
		}

		m.consume(ctx, sub)
		_ = sub.Close()

		if ctx.Err() != nil {
			break
		}

		// Поток потерян: события за время разрыва не буферизуются и пропадают.
		monitorResubscribesTotal.Inc()
		m.log.Warn("expiry_stream_lost", slog.Duration("retry_backoff", m.backoff))
		if !m.sleep(ctx) {
			break
		}
	}

	m.log.Info("monitor_stopped")
}

// consume читает события до отмены контекста или потери соединения.
func (m *Monitor) consume(ctx context.Context, sub storage.ExpiredEvents) {
	for {
		key, err := sub.Next(ctx)
		if err != nil {
			// Отмену и разрыв различает run по ctx.Err().
			return
		}

		// Начатое событие применяется целиком даже при одновременной отмене;
		// Stop ждёт завершения через done.
		if err := m.handleExpired(context.WithoutCancel(ctx), key); err != nil {
			monitorEventErrorsTotal.Inc()
			m.log.Error("expiry_event_failed",
				slog.String("key", key),
				slog.String("err", err.Error()),
			)
		}
	}
}

func (m *Monitor) handleExpired(ctx context.Context, key string) error {
	member, kind, ok := splitTimerKey(key)
	if !ok {
		// Чужой ключ в общей базе.
		return nil
	}

	switch kind {
	case timerAssigned:
		monitorEventsTotal.WithLabelValues("assigned").Inc()
		return m.demote(ctx, member)
	case timerLease:
		monitorEventsTotal.WithLabelValues("lease").Inc()

		err := m.service.DeleteToken(ctx, idFromMember(member))
		if errors.Is(err, ErrNotFound) {
			// Уже удалён другим путём.
			m.log.Debug("token_already_deleted", slog.String("member", member))
			return nil
		}

		return err
	default:
		// timerUnassigned: обрабатывается lease-событием того же токена.
		monitorEventsTotal.WithLabelValues("unassigned").Inc()
		return nil
	}
}

// demote возвращает токен с истёкшей арендой в пул свободных.
func (m *Monitor) demote(ctx context.Context, member string) error {
	const op = "service.monitor.demote"

	remaining, err := m.storage.TTL(ctx, leaseKey(member))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Жить токену нечем — зачистку выполнит его lease-событие.
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}
	if remaining <= 0 {
		return nil
	}

	if err := m.storage.AddToSet(ctx, storage.SetUnassigned, member); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := m.storage.RemoveFromSet(ctx, storage.SetAssigned, member); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	// Ключ обычно уже удалён самим истечением; подстраховка от гонки
	// с чужим недоделанным назначением.
	if err := m.storage.DeleteKey(ctx, assignedKey(member)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := m.storage.SaveTTL(ctx, unassignedKey(member), markerValue, remaining); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m.log.Info("token_demoted",
		slog.String("member", member),
		slog.Duration("idle_ttl", remaining),
	)

	return nil
}

// sleep ждёт бэкофф или отмену; false — пора завершаться.
func (m *Monitor) sleep(ctx context.Context) bool {
	t := time.NewTimer(m.backoff)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

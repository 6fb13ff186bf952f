package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kasatkinanv/token-lease-service/internal/storage"
	"github.com/kasatkinanv/token-lease-service/pkg/log"
)

// GenerateToken создаёт новый токен: случайный идентификатор, членство в
// реестре и множестве свободных, lease-таймер и таймер простоя с полным
// временем жизни. Идентификатор вызывающему не возвращается — получить токен
// можно только через AcquireToken.
func (s *Service) GenerateToken(ctx context.Context) error {
	const op = "service.pool.GenerateToken"

	lg := log.From(ctx)

	for attempt := 0; attempt < s.cfg.GenerateMaxAttempts; attempt++ {
		id := uuid.NewString()
		member := tokenMember(id)

		exists, err := s.storage.IsSetMember(ctx, storage.SetRegistry, member)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if exists {
			lg.Warn("token_id_collision", slog.String("op", op), slog.String("token", id))
			continue
		}

		if err := s.storage.AddToSet(ctx, storage.SetUnassigned, member); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := s.storage.AddToSet(ctx, storage.SetRegistry, member); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := s.storage.SaveTTL(ctx, unassignedKey(member), markerValue, s.cfg.TokenTTL); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := s.storage.SaveTTL(ctx, leaseKey(member), markerValue, s.cfg.TokenTTL); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		lg.Info("token_generated",
			slog.String("token", id),
			slog.Duration("ttl", s.cfg.TokenTTL),
		)

		return nil
	}

	return fmt.Errorf("%s: %w", op, ErrTokenCollision)
}

// AcquireToken атомарно извлекает произвольный свободный токен и переводит
// его в аренду. Возвращает идентификатор токена.
func (s *Service) AcquireToken(ctx context.Context) (string, error) {
	const op = "service.pool.AcquireToken"

	member, err := s.storage.PopFromSet(ctx, storage.SetUnassigned)
	if err != nil {
		if errors.Is(err, storage.ErrEmptySet) {
			return "", fmt.Errorf("%s: %w", op, ErrPoolExhausted)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.assign(ctx, member); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	id := idFromMember(member)
	log.From(ctx).Info("token_assigned",
		slog.String("token", id),
		slog.Duration("active_ttl", s.cfg.ActiveTTL),
	)

	return id, nil
}

// assign переводит уже изъятый из Unassigned токен в аренду: членство в
// Assigned, свежий таймер назначения, удаление таймера простоя и гарантия,
// что lease-таймер переживёт выдаваемую аренду.
func (s *Service) assign(ctx context.Context, member string) error {
	const op = "service.pool.assign"

	if err := s.storage.AddToSet(ctx, storage.SetAssigned, member); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.storage.SaveTTL(ctx, assignedKey(member), markerValue, s.cfg.ActiveTTL); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.storage.DeleteKey(ctx, unassignedKey(member)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.storage.EnsureTTLAtLeast(ctx, leaseKey(member), s.cfg.ActiveTTL); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, err)
		}

		// Lease-таймер истёк между извлечением и выдачей: пересоздаём его на
		// длительность аренды — токен обязан пережить аренду, которую выдаёт.
		// Окно гонки с lease-событием монитора известно и задокументировано.
		if err := s.storage.SaveTTL(ctx, leaseKey(member), markerValue, s.cfg.ActiveTTL); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// KeepAlive продлевает жизнь токена. Арендованному токену таймер назначения
// продлевается аддитивно (текущий остаток + инкремент, не сброс). Свободный
// токен неявно переводится в аренду — повторно проходит процедуру назначения.
// В обоих случаях lease-таймер продлевается на инкремент.
func (s *Service) KeepAlive(ctx context.Context, id string) error {
	const op = "service.pool.KeepAlive"

	lg := log.From(ctx)
	member := tokenMember(id)

	known, err := s.storage.IsSetMember(ctx, storage.SetRegistry, member)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !known {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	assigned, err := s.storage.IsSetMember(ctx, storage.SetAssigned, member)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	switch {
	case assigned:
		newTTL, err := s.storage.ExtendTTLBy(ctx, assignedKey(member), s.cfg.KeepAliveIncrement)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				// Таймер назначения истёк между проверкой и продлением —
				// токен уже разбирает монитор.
				return fmt.Errorf("%s: %w", op, ErrNotFound)
			}

			return fmt.Errorf("%s: %w", op, err)
		}

		lg.Info("keep_alive_assigned",
			slog.String("token", id),
			slog.Duration("assigned_ttl", newTTL),
		)
	default:
		unassigned, err := s.storage.IsSetMember(ctx, storage.SetUnassigned, member)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if unassigned {
			// Неявное повышение: keep-alive по простаивающему токену снова
			// делает его арендованным.
			if err := s.storage.RemoveFromSet(ctx, storage.SetUnassigned, member); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			if err := s.assign(ctx, member); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}

			lg.Info("keep_alive_promoted", slog.String("token", id))
		}
		// Токен в реестре, но ни в одном множестве — переходное окно между
		// шагами чужой операции; продлеваем только lease-таймер.
	}

	newTTL, err := s.storage.ExtendTTLBy(ctx, leaseKey(member), s.cfg.KeepAliveIncrement)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("keep_alive_lease",
		slog.String("token", id),
		slog.Duration("lease_ttl", newTTL),
	)

	return nil
}

// UnblockToken возвращает арендованный токен в пул свободных. Новый таймер
// простоя получает TTL, равный остатку lease-таймера на момент вызова:
// простаивать токен может не дольше, чем ему осталось жить.
func (s *Service) UnblockToken(ctx context.Context, id string) error {
	const op = "service.pool.UnblockToken"

	member := tokenMember(id)

	known, err := s.storage.IsSetMember(ctx, storage.SetRegistry, member)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !known {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	assigned, err := s.storage.IsSetMember(ctx, storage.SetAssigned, member)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !assigned {
		return fmt.Errorf("%s: %w", op, ErrNotAssigned)
	}

	remaining, err := s.storage.TTL(ctx, leaseKey(member))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Lease-таймер уже истёк: токен вот-вот удалит монитор,
			// возвращать в пул нечего.
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}
	if remaining <= 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	if err := s.storage.RemoveFromSet(ctx, storage.SetAssigned, member); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.storage.DeleteKey(ctx, assignedKey(member)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.storage.AddToSet(ctx, storage.SetUnassigned, member); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.storage.SaveTTL(ctx, unassignedKey(member), markerValue, remaining); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("token_unblocked",
		slog.String("token", id),
		slog.Duration("idle_ttl", remaining),
	)

	return nil
}

// DeleteToken безусловно удаляет токен из обоих множеств, реестра и все три
// таймер-ключа. Идемпотентен к частично вычищенному токену: отсутствие
// отдельных записей не считается ошибкой, важен только реестр.
func (s *Service) DeleteToken(ctx context.Context, id string) error {
	const op = "service.pool.DeleteToken"

	member := tokenMember(id)

	known, err := s.storage.IsSetMember(ctx, storage.SetRegistry, member)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !known {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	for _, set := range []string{storage.SetUnassigned, storage.SetAssigned, storage.SetRegistry} {
		if err := s.storage.RemoveFromSet(ctx, set, member); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	for _, key := range []string{assignedKey(member), unassignedKey(member), leaseKey(member)} {
		if err := s.storage.DeleteKey(ctx, key); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	log.From(ctx).Info("token_deleted", slog.String("token", id))

	return nil
}

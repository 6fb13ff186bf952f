// storage задаёт контракт хранилища, на котором живёт всё состояние пула:
// именованные множества, ключи с TTL и поток событий истечения ключей.
// Контракт намеренно узкий — ровно те примитивы, атомарностью которых
// определяется корректность операций пула (см. redisstore для сетевой
// реализации и memstore для детерминированного фейка в тестах).
package storage

import (
	"context"
	"errors"
	"time"
)

// Имена множеств — персистентная схема данных, разделяемая всеми
// экземплярами сервиса. Элементы множеств имеют вид "token:<id>".
const (
	// SetRegistry — реестр всех известных токенов.
	SetRegistry = "Token"
	// SetUnassigned — токены, доступные для выдачи.
	SetUnassigned = "Unassigned"
	// SetAssigned — токены, находящиеся в аренде.
	SetAssigned = "Assigned"
)

// NoExpiry — значение TTL для ключа без срока жизни.
const NoExpiry = time.Duration(-1)

var (
	// ErrNotFound — ключ отсутствует в хранилище.
	ErrNotFound = errors.New("key not found")

	// ErrEmptySet — попытка извлечь элемент из пустого множества.
	ErrEmptySet = errors.New("set is empty")

	// ErrUnavailable — временная потеря связи с хранилищем.
	// Монитор истечений ретраит её с фиксированным бэкоффом;
	// операции пула отдают её наверх без повторов.
	ErrUnavailable = errors.New("store unavailable")
)

// ExpiredEvents — живая подписка на события истечения ключей.
// Гарантия доставки at-least-once действует только пока подписка жива;
// события, случившиеся в разрыве соединения, теряются.
type ExpiredEvents interface {
	// Next блокируется до следующего истёкшего ключа, отмены контекста
	// или потери соединения (ErrUnavailable).
	Next(ctx context.Context) (string, error)
	// Close завершает подписку.
	Close() error
}

// SetStorage — операции над именованными множествами.
type SetStorage interface {
	// AddToSet добавляет элемент в множество (идемпотентно).
	AddToSet(ctx context.Context, set, member string) error
	// RemoveFromSet удаляет элемент из множества (отсутствие — не ошибка).
	RemoveFromSet(ctx context.Context, set, member string) error
	// IsSetMember проверяет принадлежность элемента множеству.
	IsSetMember(ctx context.Context, set, member string) (bool, error)
	// PopFromSet атомарно извлекает произвольный элемент множества.
	// Два конкурентных вызова никогда не получат один и тот же элемент.
	PopFromSet(ctx context.Context, set string) (string, error)
}

// KeyStorage — операции над ключами с TTL.
type KeyStorage interface {
	// SaveTTL записывает ключ со значением и сроком жизни.
	SaveTTL(ctx context.Context, key, value string, ttl time.Duration) error
	// DeleteKey удаляет ключ (отсутствие — не ошибка).
	DeleteKey(ctx context.Context, key string) error
	// TTL возвращает остаток жизни ключа: ErrNotFound для отсутствующего,
	// NoExpiry для ключа без срока, иначе положительный остаток.
	TTL(ctx context.Context, key string) (time.Duration, error)
	// ExtendTTLBy атомарно прибавляет delta к текущему остатку TTL
	// и возвращает новый остаток. ErrNotFound, если ключ уже исчез.
	ExtendTTLBy(ctx context.Context, key string, delta time.Duration) (time.Duration, error)
	// EnsureTTLAtLeast атомарно поднимает TTL до min, если текущий остаток
	// меньше; возвращает итоговый остаток. ErrNotFound для исчезнувшего ключа.
	EnsureTTLAtLeast(ctx context.Context, key string, min time.Duration) (time.Duration, error)
}

// Storage задаёт полный контракт хранилища пула.
type Storage interface {
	SetStorage
	KeyStorage

	// SubscribeExpired открывает подписку на имена истёкших ключей.
	SubscribeExpired(ctx context.Context) (ExpiredEvents, error)

	// Close освобождает соединения.
	Close()
}

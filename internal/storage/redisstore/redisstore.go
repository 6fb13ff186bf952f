// redisstore — реализация storage.Storage поверх Redis.
//
// Соответствие контракту:
//   - множества — SADD/SREM/SISMEMBER/SPOP (атомарность SPOP гарантирует,
//     что один элемент не достанется двум конкурентным вызовам);
//   - ключи с TTL — SET PX/DEL/TTL; продления TTL выполняются Lua-скриптами,
//     чтобы «прочитай остаток, запиши новый» было одной атомарной операцией;
//   - события истечения — keyspace notifications (__keyevent@<db>__:expired);
//     при создании клиента включается notify-keyspace-events "Ex".
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kasatkinanv/token-lease-service/internal/storage"
)

// extendByScript прибавляет ARGV[1] секунд к текущему остатку TTL.
// Возвращает новый остаток, либо -2 (ключа нет), либо -1 (ключ без TTL).
var extendByScript = redis.NewScript(`
local ttl = redis.call("TTL", KEYS[1])
if ttl < 0 then
	return ttl
end
local new = ttl + tonumber(ARGV[1])
redis.call("EXPIRE", KEYS[1], new)
return new
`)

// ensureAtLeastScript поднимает TTL до ARGV[1] секунд, если текущий остаток меньше.
var ensureAtLeastScript = redis.NewScript(`
local ttl = redis.call("TTL", KEYS[1])
if ttl < 0 then
	return ttl
end
local min = tonumber(ARGV[1])
if ttl < min then
	redis.call("EXPIRE", KEYS[1], min)
	return min
end
return ttl
`)

type Storage struct {
	rdb *redis.Client
	db  int
}

// New создаёт клиент Redis из URL (например, redis://:pass@host:6379/0)
// с fail-fast проверкой соединения и включает события истечения ключей.
func New(ctx context.Context, redisURL string) (*Storage, error) {
	const op = "storage.redisstore.New"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Без этого Redis не публикует expired-события и монитор слепнет.
	if err := rdb.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{rdb: rdb, db: opt.DB}, nil
}

// Close закрывает соединения клиента.
func (s *Storage) Close() {
	_ = s.rdb.Close()
}

// Проверка на соответствие интерфейсу Storage.
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) AddToSet(ctx context.Context, set, member string) error {
	const op = "storage.redisstore.AddToSet"

	if err := s.rdb.SAdd(ctx, set, member).Err(); err != nil {
		return wrap(op, err)
	}

	return nil
}

func (s *Storage) RemoveFromSet(ctx context.Context, set, member string) error {
	const op = "storage.redisstore.RemoveFromSet"

	if err := s.rdb.SRem(ctx, set, member).Err(); err != nil {
		return wrap(op, err)
	}

	return nil
}

func (s *Storage) IsSetMember(ctx context.Context, set, member string) (bool, error) {
	const op = "storage.redisstore.IsSetMember"

	ok, err := s.rdb.SIsMember(ctx, set, member).Result()
	if err != nil {
		return false, wrap(op, err)
	}

	return ok, nil
}

func (s *Storage) PopFromSet(ctx context.Context, set string) (string, error) {
	const op = "storage.redisstore.PopFromSet"

	member, err := s.rdb.SPop(ctx, set).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%s: %w", op, storage.ErrEmptySet)
	}
	if err != nil {
		return "", wrap(op, err)
	}

	return member, nil
}

func (s *Storage) SaveTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	const op = "storage.redisstore.SaveTTL"

	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return wrap(op, err)
	}

	return nil
}

func (s *Storage) DeleteKey(ctx context.Context, key string) error {
	const op = "storage.redisstore.DeleteKey"

	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return wrap(op, err)
	}

	return nil
}

func (s *Storage) TTL(ctx context.Context, key string) (time.Duration, error) {
	const op = "storage.redisstore.TTL"

	d, err := s.rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, wrap(op, err)
	}

	// go-redis отдаёт ответы -2 («ключа нет») и -1 («без TTL») как «сырые»
	// значения time.Duration, без умножения на секунду.
	switch d {
	case -2:
		return 0, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	case -1:
		return storage.NoExpiry, nil
	}

	return d, nil
}

func (s *Storage) ExtendTTLBy(ctx context.Context, key string, delta time.Duration) (time.Duration, error) {
	const op = "storage.redisstore.ExtendTTLBy"

	return s.runTTLScript(ctx, op, extendByScript, key, delta)
}

func (s *Storage) EnsureTTLAtLeast(ctx context.Context, key string, min time.Duration) (time.Duration, error) {
	const op = "storage.redisstore.EnsureTTLAtLeast"

	return s.runTTLScript(ctx, op, ensureAtLeastScript, key, min)
}

func (s *Storage) runTTLScript(ctx context.Context, op string, script *redis.Script, key string, arg time.Duration) (time.Duration, error) {
	res, err := script.Run(ctx, s.rdb, []string{key}, int64(arg/time.Second)).Int64()
	if err != nil {
		return 0, wrap(op, err)
	}

	switch res {
	case -2:
		return 0, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	case -1:
		return storage.NoExpiry, nil
	}

	return time.Duration(res) * time.Second, nil
}

func (s *Storage) SubscribeExpired(ctx context.Context) (storage.ExpiredEvents, error) {
	const op = "storage.redisstore.SubscribeExpired"

	pubsub := s.rdb.PSubscribe(ctx, fmt.Sprintf("__keyevent@%d__:expired", s.db))

	// Дожидаемся подтверждения подписки, чтобы не считать её живой вслепую.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, wrap(op, err)
	}

	return &subscription{pubsub: pubsub}, nil
}

type subscription struct {
	pubsub *redis.PubSub
}

func (s *subscription) Next(ctx context.Context) (string, error) {
	const op = "storage.redisstore.subscription.Next"

	msg, err := s.pubsub.ReceiveMessage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		return "", fmt.Errorf("%s: %w: %v", op, storage.ErrUnavailable, err)
	}

	return msg.Payload, nil
}

func (s *subscription) Close() error {
	return s.pubsub.Close()
}

// wrap помечает сетевые ошибки как storage.ErrUnavailable,
// остальные заворачивает как есть.
func wrap(op string, err error) error {
	var netErr net.Error
	if errors.Is(err, redis.ErrClosed) || errors.Is(err, io.EOF) || errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %v", op, storage.ErrUnavailable, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

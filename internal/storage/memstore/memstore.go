// memstore — детерминированный in-memory двойник storage.Storage для тестов.
//
// Время не течёт само: тест сдвигает часы методом Advance, и только в этот
// момент истёкшие ключи удаляются и рассылаются подписчикам в
// лексикографическом порядке. PopFromSet выбирает минимальный по сортировке
// элемент — контракт допускает произвольный выбор, тестам нужен предсказуемый.
// FailNext и BreakSubscriptions позволяют инъецировать отказ хранилища
// и разрыв подписки.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kasatkinanv/token-lease-service/internal/storage"
)

type entry struct {
	value      string
	expiresAt  time.Time
	persistent bool
}

type Storage struct {
	mu      sync.Mutex
	now     time.Time
	sets    map[string]map[string]struct{}
	keys    map[string]entry
	subs    map[*subscription]struct{}
	nextErr error
}

func New() *Storage {
	return &Storage{
		now:  time.Unix(1_700_000_000, 0).UTC(),
		sets: make(map[string]map[string]struct{}),
		keys: make(map[string]entry),
		subs: make(map[*subscription]struct{}),
	}
}

var _ storage.Storage = (*Storage)(nil)

// FailNext заставляет следующую операцию хранилища вернуть err.
func (s *Storage) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextErr = err
}

// Now возвращает текущее показание часов фейка.
func (s *Storage) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Advance сдвигает часы на d и доставляет события по всем истёкшим ключам.
func (s *Storage) Advance(d time.Duration) {
	s.mu.Lock()
	s.now = s.now.Add(d)

	var expired []string
	for key, e := range s.keys {
		if !e.persistent && !e.expiresAt.After(s.now) {
			expired = append(expired, key)
		}
	}
	sort.Strings(expired)

	for _, key := range expired {
		delete(s.keys, key)
	}

	subs := make([]*subscription, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, key := range expired {
		for _, sub := range subs {
			sub.deliver(key)
		}
	}
}

// BreakSubscriptions разрывает все живые подписки: их Next вернёт
// storage.ErrUnavailable, как при потере соединения.
func (s *Storage) BreakSubscriptions() {
	s.mu.Lock()
	subs := make([]*subscription, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
		delete(s.subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.breakConn()
	}
}

// Subscribers возвращает число живых подписок (для тестов).
func (s *Storage) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Storage) takeErr() error {
	err := s.nextErr
	s.nextErr = nil
	return err
}

func (s *Storage) AddToSet(_ context.Context, set, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return err
	}

	m, ok := s.sets[set]
	if !ok {
		m = make(map[string]struct{})
		s.sets[set] = m
	}
	m[member] = struct{}{}

	return nil
}

func (s *Storage) RemoveFromSet(_ context.Context, set, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return err
	}

	delete(s.sets[set], member)

	return nil
}

func (s *Storage) IsSetMember(_ context.Context, set, member string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return false, err
	}

	_, ok := s.sets[set][member]

	return ok, nil
}

func (s *Storage) PopFromSet(_ context.Context, set string) (string, error) {
	const op = "storage.memstore.PopFromSet"

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return "", err
	}

	m := s.sets[set]
	if len(m) == 0 {
		return "", fmt.Errorf("%s: %w", op, storage.ErrEmptySet)
	}

	members := make([]string, 0, len(m))
	for member := range m {
		members = append(members, member)
	}
	sort.Strings(members)

	picked := members[0]
	delete(m, picked)

	return picked, nil
}

// SetMembers возвращает отсортированное содержимое множества (для тестов).
func (s *Storage) SetMembers(set string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := make([]string, 0, len(s.sets[set]))
	for member := range s.sets[set] {
		members = append(members, member)
	}
	sort.Strings(members)

	return members
}

func (s *Storage) SaveTTL(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return err
	}

	s.keys[key] = entry{
		value:      value,
		expiresAt:  s.now.Add(ttl),
		persistent: ttl <= 0,
	}

	return nil
}

func (s *Storage) DeleteKey(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return err
	}

	delete(s.keys, key)

	return nil
}

func (s *Storage) TTL(_ context.Context, key string) (time.Duration, error) {
	const op = "storage.memstore.TTL"

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return 0, err
	}

	e, ok := s.keys[key]
	if !ok {
		return 0, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if e.persistent {
		return storage.NoExpiry, nil
	}

	return e.expiresAt.Sub(s.now), nil
}

func (s *Storage) ExtendTTLBy(_ context.Context, key string, delta time.Duration) (time.Duration, error) {
	const op = "storage.memstore.ExtendTTLBy"

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return 0, err
	}

	e, ok := s.keys[key]
	if !ok {
		return 0, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if e.persistent {
		return storage.NoExpiry, nil
	}

	e.expiresAt = e.expiresAt.Add(delta)
	s.keys[key] = e

	return e.expiresAt.Sub(s.now), nil
}

func (s *Storage) EnsureTTLAtLeast(_ context.Context, key string, min time.Duration) (time.Duration, error) {
	const op = "storage.memstore.EnsureTTLAtLeast"

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return 0, err
	}

	e, ok := s.keys[key]
	if !ok {
		return 0, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if e.persistent {
		return storage.NoExpiry, nil
	}

	if remaining := e.expiresAt.Sub(s.now); remaining >= min {
		return remaining, nil
	}

	e.expiresAt = s.now.Add(min)
	s.keys[key] = e

	return min, nil
}

func (s *Storage) SubscribeExpired(_ context.Context) (storage.ExpiredEvents, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeErr(); err != nil {
		return nil, err
	}

	sub := &subscription{
		st: s,
		ch: make(chan string, 128),
	}
	s.subs[sub] = struct{}{}

	return sub, nil
}

func (s *Storage) Close() {
	s.BreakSubscriptions()
}

type subscription struct {
	st     *Storage
	ch     chan string
	mu     sync.Mutex
	broken bool
}

func (s *subscription) deliver(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken {
		return
	}

	select {
	case s.ch <- key:
	default: // переполнение буфера — событие теряется, как и в настоящем pubsub
	}
}

func (s *subscription) breakConn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken {
		return
	}
	s.broken = true
	close(s.ch)
}

func (s *subscription) Next(ctx context.Context) (string, error) {
	const op = "storage.memstore.subscription.Next"

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case key, ok := <-s.ch:
		if !ok {
			return "", fmt.Errorf("%s: %w", op, storage.ErrUnavailable)
		}
		return key, nil
	}
}

func (s *subscription) Close() error {
	s.st.mu.Lock()
	delete(s.st.subs, s)
	s.st.mu.Unlock()

	s.breakConn()

	return nil
}

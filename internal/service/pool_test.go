package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/kasatkinanv/token-lease-service/internal/config"
	"github.com/kasatkinanv/token-lease-service/internal/storage"
	"github.com/kasatkinanv/token-lease-service/internal/storage/memstore"
)

func testTokensCfg() config.TokensConfig {
	return config.TokensConfig{
		TokenTTL:            300 * time.Second,
		ActiveTTL:           60 * time.Second,
		KeepAliveIncrement:  300 * time.Second,
		GenerateMaxAttempts: 10,
	}
}

func newTestService(t *testing.T) (*Service, *memstore.Storage) {
	t.Helper()
	st := memstore.New()
	return New(st, testTokensCfg()), st
}

// singleMember возвращает единственный элемент реестра.
func singleMember(t *testing.T, st *memstore.Storage) string {
	t.Helper()
	members := st.SetMembers(storage.SetRegistry)
	require.Len(t, members, 1)
	return members[0]
}

func TestGenerateToken_SeedsStateAndTimers(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.GenerateToken(ctx))

	member := singleMember(t, st)
	require.Equal(t, []string{member}, st.SetMembers(storage.SetUnassigned))
	require.Empty(t, st.SetMembers(storage.SetAssigned))

	// Идентификатор — валидный UUID под префиксом "token:".
	_, err := uuid.Parse(idFromMember(member))
	require.NoError(t, err)

	leaseTTL, err := st.TTL(ctx, leaseKey(member))
	require.NoError(t, err)
	require.Equal(t, 300*time.Second, leaseTTL)

	idleTTL, err := st.TTL(ctx, unassignedKey(member))
	require.NoError(t, err)
	require.Equal(t, 300*time.Second, idleTTL)

	_, err = st.TTL(ctx, assignedKey(member))
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAcquireToken_MovesToAssigned(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.GenerateToken(ctx))
	member := singleMember(t, st)

	id, err := svc.AcquireToken(ctx)
	require.NoError(t, err)
	require.Equal(t, idFromMember(member), id)

	require.Empty(t, st.SetMembers(storage.SetUnassigned))
	require.Equal(t, []string{member}, st.SetMembers(storage.SetAssigned))

	assignedTTL, err := st.TTL(ctx, assignedKey(member))
	require.NoError(t, err)
	require.Equal(t, 60*time.Second, assignedTTL)

	_, err = st.TTL(ctx, unassignedKey(member))
	require.ErrorIs(t, err, storage.ErrNotFound)

	// Lease-таймер не укорачивается: 300 >= 60.
	leaseTTL, err := st.TTL(ctx, leaseKey(member))
	require.NoError(t, err)
	require.Equal(t, 300*time.Second, leaseTTL)
}

func TestAcquireToken_ExtendsShortLease(t *testing.T) {
	t.Parallel()

	st := memstore.New()
	cfg := testTokensCfg()
	cfg.TokenTTL = 30 * time.Second // короче длительности аренды
	svc := New(st, cfg)
	ctx := context.Background()

	require.NoError(t, svc.GenerateToken(ctx))
	member := singleMember(t, st)

	_, err := svc.AcquireToken(ctx)
	require.NoError(t, err)

	// Токен обязан пережить выданную аренду.
	leaseTTL, err := st.TTL(ctx, leaseKey(member))
	require.NoError(t, err)
	require.Equal(t, 60*time.Second, leaseTTL)
}

func TestAcquireToken_EmptyPool(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	_, err := svc.AcquireToken(context.Background())
	require.ErrorIs(t, err, ErrPoolExhausted)
}

func TestAcquireToken_Concurrent_DistinctTokens(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	const n = 20
	for i := 0; i < n; i++ {
		require.NoError(t, svc.GenerateToken(ctx))
	}

	var (
		mu  sync.Mutex
		ids = make(map[string]struct{})
		wg  sync.WaitGroup
	)

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			id, err := svc.AcquireToken(ctx)
			require.NoError(t, err)

			mu.Lock()
			ids[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	// Ни один токен не выдан дважды.
	require.Len(t, ids, n)
}

func TestKeepAlive_Assigned_AdditiveExtension(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.GenerateToken(ctx))
	member := singleMember(t, st)
	id, err := svc.AcquireToken(ctx)
	require.NoError(t, err)

	// Часть аренды уже прожита: остаток 50s, lease — 290s.
	st.Advance(10 * time.Second)

	require.NoError(t, svc.KeepAlive(ctx, id))

	// Продление аддитивное: остаток + инкремент, а не сброс на инкремент.
	assignedTTL, err := st.TTL(ctx, assignedKey(member))
	require.NoError(t, err)
	require.Equal(t, 50*time.Second+300*time.Second, assignedTTL)

	leaseTTL, err := st.TTL(ctx, leaseKey(member))
	require.NoError(t, err)
	require.Equal(t, 290*time.Second+300*time.Second, leaseTTL)
}

func TestKeepAlive_Unassigned_Promotes(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.GenerateToken(ctx))
	member := singleMember(t, st)
	id := idFromMember(member)

	require.NoError(t, svc.KeepAlive(ctx, id))

	// Неявное повышение: токен стал арендованным со свежим таймером назначения.
	require.Empty(t, st.SetMembers(storage.SetUnassigned))
	require.Equal(t, []string{member}, st.SetMembers(storage.SetAssigned))

	assignedTTL, err := st.TTL(ctx, assignedKey(member))
	require.NoError(t, err)
	require.Equal(t, 60*time.Second, assignedTTL)

	_, err = st.TTL(ctx, unassignedKey(member))
	require.ErrorIs(t, err, storage.ErrNotFound)

	leaseTTL, err := st.TTL(ctx, leaseKey(member))
	require.NoError(t, err)
	require.Equal(t, 600*time.Second, leaseTTL)
}

func TestKeepAlive_UnknownToken(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	err := svc.KeepAlive(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUnblockToken_ReturnsToPoolWithRemainingLease(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.GenerateToken(ctx))
	member := singleMember(t, st)
	id, err := svc.AcquireToken(ctx)
	require.NoError(t, err)

	st.Advance(20 * time.Second) // lease: осталось 280s

	require.NoError(t, svc.UnblockToken(ctx, id))

	require.Equal(t, []string{member}, st.SetMembers(storage.SetUnassigned))
	require.Empty(t, st.SetMembers(storage.SetAssigned))

	_, err = st.TTL(ctx, assignedKey(member))
	require.ErrorIs(t, err, storage.ErrNotFound)

	// Простой ограничен остатком жизни токена.
	idleTTL, err := st.TTL(ctx, unassignedKey(member))
	require.NoError(t, err)
	require.Equal(t, 280*time.Second, idleTTL)
}

func TestUnblockToken_Errors(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)
	ctx := context.Background()

	err := svc.UnblockToken(ctx, uuid.NewString())
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.GenerateToken(ctx))
	member := singleMember(t, st)

	// Токен свободен — возвращать нечего.
	err = svc.UnblockToken(ctx, idFromMember(member))
	require.ErrorIs(t, err, ErrNotAssigned)
}

func TestDeleteToken_RemovesEverything(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.GenerateToken(ctx))
	member := singleMember(t, st)
	id, err := svc.AcquireToken(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteToken(ctx, id))

	require.Empty(t, st.SetMembers(storage.SetRegistry))
	require.Empty(t, st.SetMembers(storage.SetUnassigned))
	require.Empty(t, st.SetMembers(storage.SetAssigned))

	for _, key := range []string{leaseKey(member), assignedKey(member), unassignedKey(member)} {
		_, err := st.TTL(ctx, key)
		require.ErrorIs(t, err, storage.ErrNotFound)
	}

	// Последующие операции над тем же id — NotFound.
	require.ErrorIs(t, svc.KeepAlive(ctx, id), ErrNotFound)
	require.ErrorIs(t, svc.UnblockToken(ctx, id), ErrNotFound)
	require.ErrorIs(t, svc.DeleteToken(ctx, id), ErrNotFound)
}

func TestDeleteToken_Unknown(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	err := svc.DeleteToken(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, ErrNotFound)
}

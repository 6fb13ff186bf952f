package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kasatkinanv/token-lease-service/internal/config"
	"github.com/kasatkinanv/token-lease-service/internal/storage"
	"github.com/kasatkinanv/token-lease-service/internal/storage/memstore"
)

func newTestMonitor(t *testing.T) (*Monitor, *Service, *memstore.Storage) {
	t.Helper()

	st := memstore.New()
	svc := New(st, testTokensCfg())
	lg := slog.New(slog.NewTextHandler(io.Discard, nil))
	mon := NewMonitor(st, svc, config.MonitorConfig{RetryBackoff: 10 * time.Millisecond}, lg)

	mon.Start(context.Background())
	t.Cleanup(mon.Stop)

	// Даём циклу оформить подписку до первых событий.
	require.Eventually(t, func() bool {
		return st.Subscribers() == 1
	}, time.Second, time.Millisecond)

	return mon, svc, st
}

func TestMonitor_AssignmentExpiry_DemotesWithRemainingLease(t *testing.T) {
	t.Parallel()

	_, svc, st := newTestMonitor(t)
	ctx := context.Background()

	require.NoError(t, svc.GenerateToken(ctx))
	member := singleMember(t, st)
	_, err := svc.AcquireToken(ctx)
	require.NoError(t, err)

	// Аренда истекает, lease-таймеру остаётся жить 240s.
	st.Advance(60 * time.Second)

	require.Eventually(t, func() bool {
		members := st.SetMembers(storage.SetUnassigned)
		return len(members) == 1 && members[0] == member
	}, time.Second, time.Millisecond)

	require.Empty(t, st.SetMembers(storage.SetAssigned))

	idleTTL, err := st.TTL(ctx, unassignedKey(member))
	require.NoError(t, err)
	require.Equal(t, 240*time.Second, idleTTL)
}

func TestMonitor_LeaseExpiry_DeletesToken(t *testing.T) {
	t.Parallel()

	_, svc, st := newTestMonitor(t)
	ctx := context.Background()

	require.NoError(t, svc.GenerateToken(ctx))

	// Истекают и lease-таймер, и таймер простоя; зачистку выполняет
	// lease-событие, парное событие простоя монитор игнорирует.
	st.Advance(300 * time.Second)

	require.Eventually(t, func() bool {
		return len(st.SetMembers(storage.SetRegistry)) == 0
	}, time.Second, time.Millisecond)

	require.Empty(t, st.SetMembers(storage.SetUnassigned))
	require.Empty(t, st.SetMembers(storage.SetAssigned))
}

func TestMonitor_AssignmentExpiry_LeaseGone_Skips(t *testing.T) {
	t.Parallel()

	_, _, st := newTestMonitor(t)
	ctx := context.Background()

	// Арендованный токен без lease-таймера: понижать его бессмысленно.
	member := tokenMember("11111111-1111-1111-1111-111111111111")
	require.NoError(t, st.AddToSet(ctx, storage.SetRegistry, member))
	require.NoError(t, st.AddToSet(ctx, storage.SetAssigned, member))
	require.NoError(t, st.SaveTTL(ctx, assignedKey(member), "active", 10*time.Second))

	st.Advance(10 * time.Second)

	require.Never(t, func() bool {
		return len(st.SetMembers(storage.SetUnassigned)) != 0
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func TestMonitor_ForeignKeys_Ignored(t *testing.T) {
	t.Parallel()

	_, svc, st := newTestMonitor(t)
	ctx := context.Background()

	require.NoError(t, svc.GenerateToken(ctx))
	require.NoError(t, st.SaveTTL(ctx, "cache:session:42", "x", 5*time.Second))

	st.Advance(5 * time.Second)

	// Чужой ключ не трогает состояние пула.
	require.Never(t, func() bool {
		return len(st.SetMembers(storage.SetRegistry)) != 1
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func TestMonitor_ResubscribesAfterStreamLoss(t *testing.T) {
	t.Parallel()

	_, svc, st := newTestMonitor(t)
	ctx := context.Background()

	st.BreakSubscriptions()

	require.Eventually(t, func() bool {
		return st.Subscribers() == 1
	}, time.Second, time.Millisecond)

	// Новая подписка полноценно обрабатывает события.
	require.NoError(t, svc.GenerateToken(ctx))
	st.Advance(300 * time.Second)

	require.Eventually(t, func() bool {
		return len(st.SetMembers(storage.SetRegistry)) == 0
	}, time.Second, time.Millisecond)
}

func TestMonitor_StopUnblocksPendingRead(t *testing.T) {
	t.Parallel()

	st := memstore.New()
	svc := New(st, testTokensCfg())
	lg := slog.New(slog.NewTextHandler(io.Discard, nil))
	mon := NewMonitor(st, svc, config.MonitorConfig{RetryBackoff: 10 * time.Millisecond}, lg)

	mon.Start(context.Background())
	require.Eventually(t, func() bool {
		return st.Subscribers() == 1
	}, time.Second, time.Millisecond)

	done := make(chan struct{})
	go func() {
		mon.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop in time")
	}
}

func TestMonitor_StopWithoutStart(t *testing.T) {
	t.Parallel()

	st := memstore.New()
	mon := NewMonitor(st, New(st, testTokensCfg()), config.MonitorConfig{RetryBackoff: time.Second}, nil)

	mon.Stop() // no-op
}

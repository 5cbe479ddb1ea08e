package hub

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/stacktactoe-backend/internal/room"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(context.Background(), Options{})
	t.Cleanup(h.Shutdown)
	return h
}

func acquire(t *testing.T, h *Hub, id string) *room.Room {
	t.Helper()
	rm, err := h.Acquire(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, rm)
	return rm
}

func count(t *testing.T, h *Hub) int {
	t.Helper()
	n, err := h.Count(context.Background())
	require.NoError(t, err)
	return n
}

func waitClosed(t *testing.T, rm *room.Room) {
	t.Helper()
	select {
	case <-rm.Done():
	case <-time.After(time.Second):
		t.Fatalf("room %s was not closed", rm.ID())
	}
}

func TestHub_Acquire_Get_SamePointer(t *testing.T) {
	h := newTestHub(t)

	rm1 := acquire(t, h, "zed123")
	rm2 := acquire(t, h, "zed123")
	assert.Same(t, rm1, rm2)

	got, err := h.Get(context.Background(), "zed123")
	require.NoError(t, err)
	assert.Same(t, rm1, got)
	assert.Equal(t, 1, count(t, h))

	reply := make(chan *room.Room, 1)
	h.Inbox() <- GetRoom{ID: "nope", Reply: reply}
	assert.Nil(t, <-reply)
}

func TestHub_ReleaseDeletesOnLastReference(t *testing.T) {
	h := newTestHub(t)

	rm := acquire(t, h, "abc")
	acquire(t, h, "abc")

	h.Release(rm)
	assert.Equal(t, 1, count(t, h))

	h.Release(rm)
	assert.Equal(t, 0, count(t, h))
	waitClosed(t, rm)

	again := acquire(t, h, "abc")
	assert.NotSame(t, rm, again)
}

func TestHub_StaleReleaseIgnored(t *testing.T) {
	h := newTestHub(t)

	old := acquire(t, h, "abc")
	h.Release(old)
	fresh := acquire(t, h, "abc")

	h.Release(old)
	got, err := h.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Same(t, fresh, got)
}

func TestHub_GeneratedIDsAreUnique(t *testing.T) {
	h := newTestHub(t)
	pattern := regexp.MustCompile(`^[a-z0-9]{6}$`)

	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		rm := acquire(t, h, "")
		require.Regexp(t, pattern, rm.ID())
		_, dup := seen[rm.ID()]
		require.False(t, dup, "duplicate id %s", rm.ID())
		seen[rm.ID()] = struct{}{}
	}
	assert.Equal(t, 1000, count(t, h))
}

func TestHub_ExplicitIDs(t *testing.T) {
	h := newTestHub(t)

	rm := acquire(t, h, "  lobby  ")
	assert.Equal(t, "lobby", rm.ID())

	_, err := h.Acquire(context.Background(), strings.Repeat("x", MaxIDLength+1))
	assert.ErrorIs(t, err, ErrInvalidRoomID)

	rm = acquire(t, h, strings.Repeat("x", MaxIDLength))
	assert.Len(t, rm.ID(), MaxIDLength)
}

func TestHub_ShutdownClosesRooms(t *testing.T) {
	h := NewHub(context.Background(), Options{})
	a := acquire(t, h, "a")
	b := acquire(t, h, "b")

	h.Shutdown()
	waitClosed(t, a)
	waitClosed(t, b)

	_, err := h.Acquire(context.Background(), "c")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestHub_AcquireAfterTimeoutIsReleased(t *testing.T) {
	h := newTestHub(t)

	// Park the hub on an unread reply so the acquire below queues behind it.
	blocked := make(chan *room.Room)
	h.Inbox() <- GetRoom{ID: "x", Reply: blocked}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := h.Acquire(ctx, "late")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	<-blocked
	require.Eventually(t, func() bool {
		n, err := h.Count(context.Background())
		return err == nil && n == 0
	}, time.Second, 5*time.Millisecond)
}

func TestGenerateID(t *testing.T) {
	id, err := GenerateID()
	require.NoError(t, err)
	assert.Len(t, id, IDLength)
	assert.Equal(t, strings.ToLower(id), id)
}

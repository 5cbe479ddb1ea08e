package hub

import (
	"context"

	"github.com/DoyleJ11/stacktactoe-backend/internal/room"
)

func (h *Hub) send(ctx context.Context, m HubMsg) error {
	select {
	case h.inbox <- m:
		return nil
	case <-h.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Acquire gets or creates the room and takes a reference on it. Every
// successful call must be paired with Release.
func (h *Hub) Acquire(ctx context.Context, id string) (*room.Room, error) {
	reply := make(chan AcquireResult, 1)
	if err := h.send(ctx, Acquire{ID: id, Reply: reply}); err != nil {
		return nil, err
	}
	select {
	case res := <-reply:
		return res.Room, res.Err
	case <-h.done:
		return nil, ErrClosed
	case <-ctx.Done():
		go h.releaseLate(reply)
		return nil, ctx.Err()
	}
}

// releaseLate gives back a reference the hub granted after the caller
// stopped waiting for it.
func (h *Hub) releaseLate(reply <-chan AcquireResult) {
	select {
	case res := <-reply:
		if res.Err == nil {
			h.Release(res.Room)
		}
	case <-h.done:
	}
}

// Release never blocks past hub shutdown.
func (h *Hub) Release(rm *room.Room) {
	if rm == nil {
		return
	}
	_ = h.send(context.Background(), Release{ID: rm.ID(), Room: rm})
}

// Get returns nil when no room has that id.
func (h *Hub) Get(ctx context.Context, id string) (*room.Room, error) {
	reply := make(chan *room.Room, 1)
	if err := h.send(ctx, GetRoom{ID: id, Reply: reply}); err != nil {
		return nil, err
	}
	select {
	case rm := <-reply:
		return rm, nil
	case <-h.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Hub) Count(ctx context.Context) (int, error) {
	reply := make(chan int, 1)
	if err := h.send(ctx, CountRooms{Reply: reply}); err != nil {
		return 0, err
	}
	select {
	case n := <-reply:
		return n, nil
	case <-h.done:
		return 0, ErrClosed
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Shutdown closes every room and stops the hub.
func (h *Hub) Shutdown() {
	_ = h.send(context.Background(), ShutdownHub{})
	<-h.done
}

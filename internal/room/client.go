package room

import (
	"context"

	"github.com/DoyleJ11/stacktactoe-backend/internal/engine"
	"github.com/DoyleJ11/stacktactoe-backend/internal/seats"
)

// Send enqueues m, giving up when ctx ends or the room has stopped.
func (r *Room) Send(ctx context.Context, m Msg) error {
	select {
	case r.inbox <- m:
		return nil
	case <-r.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Room) Join(ctx context.Context, connID, name string, outbox chan Event) (seats.Slot, error) {
	reply := make(chan JoinResult, 1)
	if err := r.Send(ctx, Join{ConnID: connID, Name: name, Outbox: outbox, Reply: reply}); err != nil {
		return seats.SlotNone, err
	}
	select {
	case res := <-reply:
		return res.Slot, res.Err
	case <-r.done:
		return seats.SlotNone, ErrClosed
	case <-ctx.Done():
		go r.leaveLate(connID, reply)
		return seats.SlotNone, ctx.Err()
	}
}

// leaveLate undoes a join the room accepted after the caller gave up on it.
func (r *Room) leaveLate(connID string, reply <-chan JoinResult) {
	select {
	case res := <-reply:
		if res.Err == nil {
			select {
			case r.inbox <- Leave{ConnID: connID}:
			case <-r.done:
			}
		}
	case <-r.done:
	}
}

func (r *Room) Place(ctx context.Context, connID string, cmd engine.Command) error {
	reply := make(chan error, 1)
	if err := r.Send(ctx, Place{ConnID: connID, Cmd: cmd, Reply: reply}); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-r.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Room) State(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if err := r.Send(ctx, GetState{Reply: reply}); err != nil {
		return View{}, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-r.done:
		return View{}, ErrClosed
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

// Package ws serves the game over websocket connections. Each connection
// gets a reader goroutine that forwards requests to its room and a writer
// goroutine that drains the room's events.
package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/stacktactoe-backend/internal/hub"
	"github.com/DoyleJ11/stacktactoe-backend/internal/room"
	"github.com/DoyleJ11/stacktactoe-backend/internal/types"
)

const (
	writeTimeout   = 3 * time.Second
	requestTimeout = 5 * time.Second
	leaveTimeout   = 2 * time.Second
)

var errOutboxClosed = errors.New("outbox closed")

type Options struct {
	OriginPatterns []string
	OutboxSize     int
	Logger         *zap.Logger
}

func Handler(h *hub.Hub, opts Options) http.HandlerFunc {
	if opts.OutboxSize <= 0 {
		opts.OutboxSize = 32
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			opts.Logger.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		s := &session{
			id:   uuid.NewString(),
			hub:  h,
			conn: conn,
			out:  make(chan room.Event, opts.OutboxSize),
			acks: make(chan types.ServerMessage, 16),
		}
		s.log = opts.Logger.With(zap.String("conn", s.id))
		s.log.Debug("connection opened")

		// Whichever loop finishes first takes the other one down with it.
		connCtx, cancel := context.WithCancel(r.Context())
		defer cancel()
		g, ctx := errgroup.WithContext(connCtx)
		g.Go(func() error {
			defer cancel()
			return s.writeLoop(ctx)
		})
		g.Go(func() error {
			defer cancel()
			return s.readLoop(ctx)
		})
		err = g.Wait()

		s.leave()
		s.log.Debug("connection closed", zap.Error(err))
	}
}

type session struct {
	id   string
	hub  *hub.Hub
	conn *websocket.Conn
	log  *zap.Logger

	// Only the read goroutine touches room.
	room *room.Room
	out  chan room.Event
	acks chan types.ServerMessage
}

func (s *session) readLoop(ctx context.Context) error {
	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			return err
		}

		cm, err := decodeEnvelope(data)
		if err != nil {
			s.reply(ctx, ack("", nil, err))
			continue
		}
		req, err := decodeRequest(cm)
		if err != nil {
			s.reply(ctx, ack(cm.ID, nil, err))
			continue
		}

		res, err := s.handle(ctx, req)
		if err == nil && cm.ID == "" {
			continue
		}
		s.reply(ctx, ack(cm.ID, res, err))
	}
}

func (s *session) handle(ctx context.Context, req request) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	if j, ok := req.(joinRequest); ok {
		return s.join(ctx, j)
	}
	if s.room == nil {
		return nil, room.ErrNotJoined
	}

	switch r := req.(type) {
	case placeRequest:
		if err := s.room.Place(ctx, s.id, r.Cmd); err != nil {
			return nil, err
		}
		return types.OKAck{OK: true}, nil
	case sayRequest:
		return types.OKAck{OK: true}, s.room.Send(ctx, room.Say{ConnID: s.id, Kind: r.Kind, Text: r.Text})
	case decideRequest:
		return types.OKAck{OK: true}, s.room.Send(ctx, room.Decide{ConnID: s.id, Choice: r.Choice})
	}
	return nil, errUnknownType
}

func (s *session) join(ctx context.Context, j joinRequest) (any, error) {
	if s.room != nil {
		return nil, room.ErrAlreadyJoined
	}
	rm, err := s.hub.Acquire(ctx, j.Room)
	if err != nil {
		return nil, err
	}
	slot, err := rm.Join(ctx, s.id, j.Name, s.out)
	if err != nil {
		// The room may still seat us if the join was queued before ctx ended.
		s.sendLeave(rm)
		s.hub.Release(rm)
		return nil, err
	}
	s.room = rm
	s.log.Info("joined room", zap.String("room", rm.ID()), zap.String("slot", string(slot)))
	return types.JoinAck{OK: true, Slot: string(slot), RoomID: rm.ID()}, nil
}

// leave reports the disconnect to the room and drops the hub reference.
func (s *session) leave() {
	if s.room == nil {
		return
	}
	s.sendLeave(s.room)
	s.hub.Release(s.room)
	s.room = nil
}

func (s *session) sendLeave(rm *room.Room) {
	ctx, cancel := context.WithTimeout(context.Background(), leaveTimeout)
	defer cancel()
	if err := rm.Send(ctx, room.Leave{ConnID: s.id}); err != nil {
		s.log.Debug("leave not delivered", zap.Error(err))
	}
}

func (s *session) reply(ctx context.Context, msg types.ServerMessage) {
	select {
	case s.acks <- msg:
	case <-ctx.Done():
	}
}

func (s *session) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-s.acks:
			if err := s.write(ctx, msg); err != nil {
				return err
			}
		case evt, ok := <-s.out:
			if !ok {
				// The room let go of us: slow consumer or a leave decision.
				return errOutboxClosed
			}
			if err := s.write(ctx, encodeEvent(evt)); err != nil {
				return err
			}
		}
	}
}

func (s *session) write(ctx context.Context, msg types.ServerMessage) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, s.conn, msg)
}

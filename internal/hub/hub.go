// Package hub owns the room registry. A single goroutine serializes room
// creation and deletion while the rooms themselves run independently.
package hub

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	mrand "math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/stacktactoe-backend/internal/archive"
	"github.com/DoyleJ11/stacktactoe-backend/internal/engine"
	"github.com/DoyleJ11/stacktactoe-backend/internal/room"
)

var ErrInvalidRoomID = errors.New("invalid_room")
var ErrClosed = errors.New("unavailable")

const (
	IDLength    = 6
	MaxIDLength = 32
)

type HubMsg interface{ isHubMsg() }

// Acquire returns the room for ID, creating it if needed, and takes a
// reference on it. An empty ID asks the hub to generate a fresh one.
type Acquire struct {
	ID    string
	Reply chan AcquireResult
}

type AcquireResult struct {
	Room *room.Room
	Err  error
}

// Release drops a reference taken by Acquire. Room guards against releasing
// a newer room that reuses the same ID.
type Release struct {
	ID   string
	Room *room.Room
}

type GetRoom struct {
	ID    string
	Reply chan *room.Room
}

type CountRooms struct {
	Reply chan int
}

type ShutdownHub struct{}

func (Acquire) isHubMsg()     {}
func (Release) isHubMsg()     {}
func (GetRoom) isHubMsg()     {}
func (CountRooms) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

type Options struct {
	Logger   *zap.Logger
	Recorder archive.Recorder
	// NewRand seeds each room's coin flips. Rooms never share a source.
	NewRand   func() *mrand.Rand
	Now       func() time.Time
	InboxSize int
	// RoomInboxSize is passed through to every room.
	RoomInboxSize int
}

type entry struct {
	room *room.Room
	refs int
}

type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*entry
	opts   Options
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewHub(parent context.Context, opts Options) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Recorder == nil {
		opts.Recorder = archive.Nop{}
	}
	if opts.NewRand == nil {
		opts.NewRand = engine.NewRand
	}
	if opts.InboxSize <= 0 {
		opts.InboxSize = 64
	}
	h := &Hub{
		inbox:  make(chan HubMsg, opts.InboxSize),
		rooms:  make(map[string]*entry),
		opts:   opts,
		log:    opts.Logger,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Done is closed after the hub goroutine exits and every room was closed.
func (h *Hub) Done() <-chan struct{} { return h.done }

func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Acquire:
				msg.Reply <- h.acquire(msg.ID)

			case Release:
				h.release(msg.ID, msg.Room)

			case GetRoom:
				var rm *room.Room
				if e := h.rooms[msg.ID]; e != nil {
					rm = e.room
				}
				msg.Reply <- rm // may be nil

			case CountRooms:
				msg.Reply <- len(h.rooms)

			case ShutdownHub:
				h.shutdown()
				h.cancel()
				return
			}
		}
	}
}

func (h *Hub) acquire(id string) AcquireResult {
	id = strings.TrimSpace(id)
	if len(id) > MaxIDLength {
		return AcquireResult{Err: ErrInvalidRoomID}
	}

	if id == "" {
		for {
			c, err := GenerateID()
			if err != nil {
				return AcquireResult{Err: err}
			}
			if h.rooms[c] == nil {
				id = c
				break
			}
			h.log.Debug("collision on room id, regenerating", zap.String("room", c))
		}
	}

	e := h.rooms[id]
	if e == nil {
		e = &entry{room: room.New(h.ctx, id, room.Options{
			Rand:      h.opts.NewRand(),
			Logger:    h.log,
			Recorder:  h.opts.Recorder,
			Now:       h.opts.Now,
			InboxSize: h.opts.RoomInboxSize,
		})}
		h.rooms[id] = e
		h.log.Info("room created", zap.String("room", id), zap.Int("rooms", len(h.rooms)))
	}
	e.refs++
	return AcquireResult{Room: e.room}
}

func (h *Hub) release(id string, rm *room.Room) {
	e := h.rooms[id]
	if e == nil || e.room != rm {
		return
	}
	e.refs--
	if e.refs > 0 {
		return
	}
	delete(h.rooms, id)
	e.room.Close()
	h.log.Info("room deleted", zap.String("room", id), zap.Int("rooms", len(h.rooms)))
}

func (h *Hub) shutdown() {
	for _, e := range h.rooms {
		e.room.Close()
	}
	for _, e := range h.rooms {
		<-e.room.Done()
	}
	clear(h.rooms)
	h.log.Debug("hub stopped")
}

// GenerateID returns a random lowercase base36 room id.
func GenerateID() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"

	code := make([]byte, IDLength)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

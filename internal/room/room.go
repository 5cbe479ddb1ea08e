// Package room runs one game room per goroutine. Every inbound command is
// handled to completion before the next one is read, so seat changes, moves
// and post-match decisions never interleave within a room.
package room

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/stacktactoe-backend/internal/archive"
	"github.com/DoyleJ11/stacktactoe-backend/internal/chat"
	"github.com/DoyleJ11/stacktactoe-backend/internal/engine"
	"github.com/DoyleJ11/stacktactoe-backend/internal/seats"
)

var ErrSpectator = errors.New("spectator")
var ErrNotJoined = errors.New("not_joined")
var ErrAlreadyJoined = errors.New("already_joined")
var ErrClosed = errors.New("unavailable")

const (
	DefaultName = "Guest"
	MaxNameLen  = 50
)

type Options struct {
	Rand      *rand.Rand
	Logger    *zap.Logger
	Recorder  archive.Recorder
	Now       func() time.Time
	InboxSize int
}

type client struct {
	id      string
	name    string
	out     chan Event
	dropped bool
}

type Room struct {
	id      string
	inbox   chan Msg
	version int

	game      *engine.Game
	table     *seats.Table
	decisions map[engine.Color]Decision
	chat      *chat.Log
	clients   map[string]*client

	matchStarted time.Time
	commands     int

	rng *rand.Rand
	log *zap.Logger
	rec archive.Recorder
	now func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func New(parent context.Context, id string, opts Options) *Room {
	ctx, cancel := context.WithCancel(parent)

	if opts.Rand == nil {
		opts.Rand = engine.NewRand()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Recorder == nil {
		opts.Recorder = archive.Nop{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.InboxSize <= 0 {
		opts.InboxSize = 64
	}

	r := &Room{
		id:        id,
		inbox:     make(chan Msg, opts.InboxSize),
		game:      engine.NewGame(),
		table:     seats.NewTable(),
		decisions: map[engine.Color]Decision{},
		chat:      chat.NewLog(),
		clients:   make(map[string]*client),
		rng:       opts.Rand,
		log:       opts.Logger.With(zap.String("room", id)),
		rec:       opts.Recorder,
		now:       opts.Now,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	go r.loop()
	return r
}

func (r *Room) ID() string { return r.id }

// Done is closed once the room goroutine has exited.
func (r *Room) Done() <-chan struct{} { return r.done }

// Close stops the room without waiting for queued messages.
func (r *Room) Close() { r.cancel() }

func (r *Room) loop() {
	defer close(r.done)
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.handleJoin(msg)
			case Leave:
				r.handleLeave(msg.ConnID)
			case Place:
				msg.Reply <- r.handlePlace(msg)
			case Say:
				r.handleSay(msg)
			case Decide:
				r.handleDecide(msg)
			case GetState:
				msg.Reply <- r.view()
			case Shutdown:
				r.shutdown()
				r.cancel()
				return
			}
		}
	}
}

func (r *Room) shutdown() {
	for id, c := range r.clients {
		r.drop(c)
		delete(r.clients, id)
	}
	r.log.Debug("room stopped")
}

func (r *Room) handleJoin(msg Join) {
	if _, exists := r.clients[msg.ConnID]; exists {
		msg.Reply <- JoinResult{RoomID: r.id, Err: ErrAlreadyJoined}
		return
	}

	name := displayName(msg.Name)
	c := &client{id: msg.ConnID, name: name, out: msg.Outbox}
	r.clients[c.id] = c

	slot := r.table.Assign(seats.Participant{ID: c.id, Name: name})
	msg.Reply <- JoinResult{Slot: slot, RoomID: r.id}
	r.log.Info("participant joined", zap.String("conn", c.id), zap.String("name", name), zap.String("slot", string(slot)))

	r.send(c, Event{Type: EvtAssign, Slot: slot})

	switch {
	case r.table.Full() && r.game.Phase() == engine.PhaseWaiting:
		r.startMatch()
		r.broadcast(Event{Type: EvtStartGame, Snapshot: r.bump()})
	case r.game.Phase() == engine.PhaseInProgress:
		snap := r.bump()
		r.send(c, Event{Type: EvtStartGame, Snapshot: snap})
		r.broadcastExcept(c.id, Event{Type: EvtUpdateState, Snapshot: snap})
	default:
		r.broadcast(Event{Type: EvtUpdateState, Snapshot: r.bump()})
	}

	r.send(c, Event{Type: EvtChatInit, History: r.chat.History()})
}

func (r *Room) handleLeave(connID string) {
	c, ok := r.clients[connID]
	if !ok {
		return
	}
	slot := r.table.SlotOf(connID)
	delete(r.clients, connID)
	r.drop(c)
	r.log.Info("participant left", zap.String("conn", connID), zap.String("slot", string(slot)))

	switch {
	case slot == seats.SlotSpectator:
		r.table.RemoveSpectator(connID)
		r.broadcast(Event{Type: EvtUpdateState, Snapshot: r.bump()})

	case slot.Seated() && r.game.Phase() == engine.PhaseFinished:
		r.decide(slot.Color(), DecisionLeave)

	case slot.Seated():
		before := r.slots()
		r.table.Vacate(slot.Color())
		r.reseat()
		if r.game.Phase() == engine.PhaseInProgress {
			r.log.Info("match abandoned", zap.String("seat", string(slot)))
			r.game.Abandon()
		}
		if r.table.Full() {
			r.startMatch()
		}
		r.notifySlotChanges(before)
		r.broadcastState()
	}
}

func (r *Room) handlePlace(msg Place) error {
	if _, ok := r.clients[msg.ConnID]; !ok {
		return ErrNotJoined
	}
	slot := r.table.SlotOf(msg.ConnID)
	if !slot.Seated() {
		return ErrSpectator
	}

	events, err := r.game.Apply(slot.Color(), msg.Cmd)
	if err != nil {
		return err
	}
	r.commands++

	if engine.ContainsEvent(events, engine.EvtGameCompleted) {
		r.decisions = map[engine.Color]Decision{}
		r.recordResult()
		r.log.Info("match finished", zap.String("winner", string(r.game.Winner)), zap.Int("commands", r.commands))
		r.broadcast(Event{Type: EvtGameOver, Winner: r.game.Winner, Snapshot: r.bump()})
		return nil
	}

	r.broadcast(Event{Type: EvtUpdateState, Snapshot: r.bump()})
	return nil
}

func (r *Room) handleSay(msg Say) {
	c, ok := r.clients[msg.ConnID]
	if !ok {
		return
	}
	slot := r.table.SlotOf(msg.ConnID)
	m, ok := chat.NewMessage(msg.Kind, c.name, string(slot), msg.Text, r.now())
	if !ok {
		return
	}
	r.chat.Append(m)

	evt := EvtChatMessage
	if msg.Kind == chat.KindCheer {
		evt = EvtCheer
	}
	r.broadcast(Event{Type: evt, Message: &m})
}

func (r *Room) startMatch() {
	if _, err := r.game.Start(r.rng); err != nil {
		return
	}
	r.matchStarted = r.now()
	r.commands = 0
	r.log.Info("match started", zap.String("first", string(r.game.CurrentTurn)))
}

func (r *Room) recordResult() {
	res := archive.Result{
		RoomID:     r.id,
		Winner:     string(r.game.Winner),
		Commands:   r.commands,
		StartedAt:  r.matchStarted,
		FinishedAt: r.now(),
	}
	if o := r.table.Seat(engine.Blue); o != nil {
		res.BlueName = o.Name
	}
	if o := r.table.Seat(engine.Orange); o != nil {
		res.OrangeName = o.Name
	}
	r.rec.Record(res)
}

// bump advances the state version and returns a fresh snapshot.
func (r *Room) bump() *Snapshot {
	r.version++
	return r.snapshot()
}

func (r *Room) broadcastState() {
	if r.game.Started {
		r.broadcast(Event{Type: EvtStartGame, Snapshot: r.bump()})
		return
	}
	r.broadcast(Event{Type: EvtUpdateState, Snapshot: r.bump()})
}

func (r *Room) slots() map[string]seats.Slot {
	out := make(map[string]seats.Slot, len(r.clients))
	for id := range r.clients {
		out[id] = r.table.SlotOf(id)
	}
	return out
}

// notifySlotChanges sends assign to every connected participant whose slot
// differs from before.
func (r *Room) notifySlotChanges(before map[string]seats.Slot) {
	for id, c := range r.clients {
		if after := r.table.SlotOf(id); after != before[id] {
			r.send(c, Event{Type: EvtAssign, Slot: after})
		}
	}
}

func (r *Room) broadcast(evt Event) {
	for _, c := range r.clients {
		r.send(c, evt)
	}
}

func (r *Room) broadcastExcept(connID string, evt Event) {
	for id, c := range r.clients {
		if id != connID {
			r.send(c, evt)
		}
	}
}

func (r *Room) send(c *client, evt Event) {
	if c.dropped || c.out == nil {
		return
	}
	select {
	case c.out <- evt:
	default:
		// Slow client: close its outbox so the transport hangs up and sends Leave.
		r.log.Warn("dropping slow client", zap.String("conn", c.id))
		r.drop(c)
	}
}

func (r *Room) drop(c *client) {
	if c.dropped || c.out == nil {
		return
	}
	c.dropped = true
	close(c.out)
}

func displayName(name string) string {
	name = chat.Truncate(strings.TrimSpace(name), MaxNameLen)
	if name == "" {
		return DefaultName
	}
	return name
}

func (r *Room) reseat() {
	for _, ch := range r.table.Reseat() {
		r.log.Info("seat backfilled", zap.String("conn", ch.ID), zap.String("slot", string(ch.Slot)))
	}
}

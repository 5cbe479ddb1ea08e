package room

import (
	"github.com/DoyleJ11/stacktactoe-backend/internal/chat"
	"github.com/DoyleJ11/stacktactoe-backend/internal/engine"
	"github.com/DoyleJ11/stacktactoe-backend/internal/seats"
)

type Msg interface{ isRoomMsg() }

// Join registers a connection. Outbox receives every event addressed to it;
// the room closes Outbox when the participant is removed.
type Join struct {
	ConnID string
	Name   string
	Outbox chan Event
	Reply  chan JoinResult
}

func (Join) isRoomMsg() {}

type JoinResult struct {
	Slot   seats.Slot
	RoomID string
	Err    error
}

// Leave is sent by the transport when a connection goes away.
type Leave struct{ ConnID string }

func (Leave) isRoomMsg() {}

type Place struct {
	ConnID string
	Cmd    engine.Command
	Reply  chan error
}

func (Place) isRoomMsg() {}

// Say carries both chat messages and cheers.
type Say struct {
	ConnID string
	Kind   chat.Kind
	Text   string
}

func (Say) isRoomMsg() {}

type Decide struct {
	ConnID string
	Choice Decision
}

func (Decide) isRoomMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

type EventType string

const (
	EvtAssign      EventType = "assign"
	EvtStartGame   EventType = "start_game"
	EvtUpdateState EventType = "update_state"
	EvtGameOver    EventType = "game_over"
	EvtChatMessage EventType = "chat_message"
	EvtCheer       EventType = "cheer"
	EvtChatInit    EventType = "chat_init"
)

// Event is one outbound message for a participant. Only the fields relevant
// to Type are set.
type Event struct {
	Type     EventType
	Slot     seats.Slot
	Snapshot *Snapshot
	Winner   engine.Color
	Message  *chat.Message
	History  []chat.Message
}

// Package types holds the websocket wire envelopes and their payloads.
package types

import (
	"encoding/json"

	"github.com/DoyleJ11/stacktactoe-backend/internal/engine"
)

// Client message types.
const (
	MsgJoin     = "join"
	MsgPlace    = "place_piece"
	MsgChat     = "chat_message"
	MsgCheer    = "cheer"
	MsgDecision = "submit_decision"
)

// place_piece actions.
const (
	ActionPlaceFromHand = "place_from_hand"
	ActionMoveOnBoard   = "move_on_board"
)

// MsgAck answers a client message that carried an id.
const MsgAck = "ack"

type ClientMessage struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

type ServerMessage struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

type JoinData struct {
	Room string `json:"room"`
	Name string `json:"name"`
}

// PlaceData is either {"action":"place_from_hand","size","to"} or
// {"action":"move_on_board","from","to"}.
type PlaceData struct {
	Action string       `json:"action"`
	Size   string       `json:"size,omitempty"`
	From   *engine.Cell `json:"from,omitempty"`
	To     *engine.Cell `json:"to,omitempty"`
}

type ChatData struct {
	Text string `json:"text"`
}

type DecisionData struct {
	Choice string `json:"choice"`
}

type JoinAck struct {
	OK     bool   `json:"ok"`
	Slot   string `json:"slot"`
	RoomID string `json:"roomId"`
}

type OKAck struct {
	OK bool `json:"ok"`
}

type AssignData struct {
	Slot string `json:"slot"`
}

type GameOverData struct {
	Winner string `json:"winner"`
	State  any    `json:"state"`
}


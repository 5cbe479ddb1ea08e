package ws

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/DoyleJ11/stacktactoe-backend/internal/chat"
	"github.com/DoyleJ11/stacktactoe-backend/internal/engine"
	"github.com/DoyleJ11/stacktactoe-backend/internal/hub"
	"github.com/DoyleJ11/stacktactoe-backend/internal/room"
	"github.com/DoyleJ11/stacktactoe-backend/internal/types"
)

var (
	errBadJSON     = errors.New("bad_json")
	errUnknownType = errors.New("unknown_type")
)

// request is a decoded client message.
type request interface{ isRequest() }

type joinRequest struct{ Room, Name string }

type placeRequest struct{ Cmd engine.Command }

type sayRequest struct {
	Kind chat.Kind
	Text string
}

type decideRequest struct{ Choice room.Decision }

func (joinRequest) isRequest()   {}
func (placeRequest) isRequest()  {}
func (sayRequest) isRequest()    {}
func (decideRequest) isRequest() {}

func decodeEnvelope(data []byte) (types.ClientMessage, error) {
	var cm types.ClientMessage
	if err := json.Unmarshal(data, &cm); err != nil {
		return types.ClientMessage{}, errBadJSON
	}
	return cm, nil
}

func decodeRequest(cm types.ClientMessage) (request, error) {
	switch cm.Type {
	case types.MsgJoin:
		var d types.JoinData
		if err := unmarshalData(cm.Data, &d); err != nil {
			return nil, err
		}
		return joinRequest{Room: d.Room, Name: d.Name}, nil

	case types.MsgPlace:
		var d types.PlaceData
		if err := unmarshalData(cm.Data, &d); err != nil {
			return nil, err
		}
		cmd, err := toEngineCommand(d)
		if err != nil {
			return nil, err
		}
		return placeRequest{Cmd: cmd}, nil

	case types.MsgChat, types.MsgCheer:
		var d types.ChatData
		if err := unmarshalData(cm.Data, &d); err != nil {
			return nil, err
		}
		kind := chat.KindChat
		if cm.Type == types.MsgCheer {
			kind = chat.KindCheer
		}
		return sayRequest{Kind: kind, Text: d.Text}, nil

	case types.MsgDecision:
		var d types.DecisionData
		if err := unmarshalData(cm.Data, &d); err != nil {
			return nil, err
		}
		choice, err := room.ParseDecision(d.Choice)
		if err != nil {
			return nil, engine.ErrBadCommand
		}
		return decideRequest{Choice: choice}, nil

	default:
		return nil, errUnknownType
	}
}

// unmarshalData treats a missing payload as an empty object.
func unmarshalData(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errBadJSON
	}
	return nil
}

func toEngineCommand(d types.PlaceData) (engine.Command, error) {
	if d.To == nil {
		return nil, engine.ErrBadCommand
	}
	switch d.Action {
	case types.ActionPlaceFromHand:
		return engine.NewPlaceFromHand(d.Size, *d.To)
	case types.ActionMoveOnBoard:
		if d.From == nil {
			return nil, engine.ErrBadCommand
		}
		return engine.NewMoveOnBoard(*d.From, *d.To)
	default:
		return nil, engine.ErrBadCommand
	}
}

// reasons lists every error with a wire reason, most specific first.
var reasons = []error{
	engine.ErrNotStarted,
	engine.ErrGameOver,
	engine.ErrWrongTurn,
	engine.ErrNoPiece,
	engine.ErrIllegal,
	engine.ErrEmptyStack,
	engine.ErrNotYours,
	engine.ErrBadCommand,
	room.ErrSpectator,
	room.ErrNotJoined,
	room.ErrAlreadyJoined,
	room.ErrClosed,
	hub.ErrInvalidRoomID,
	hub.ErrClosed,
	errBadJSON,
	errUnknownType,
}

// reason maps err to the string sent in the ack's error field.
func reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r) {
			return r.Error()
		}
	}
	if errors.Is(err, engine.ErrUnsupportedCommand) {
		return engine.ErrBadCommand.Error()
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return room.ErrClosed.Error()
	}
	return "internal"
}

func encodeEvent(evt room.Event) types.ServerMessage {
	msg := types.ServerMessage{Type: string(evt.Type)}
	switch evt.Type {
	case room.EvtAssign:
		msg.Data = types.AssignData{Slot: string(evt.Slot)}
	case room.EvtStartGame, room.EvtUpdateState:
		msg.Data = evt.Snapshot
	case room.EvtGameOver:
		msg.Data = types.GameOverData{Winner: string(evt.Winner), State: evt.Snapshot}
	case room.EvtChatMessage, room.EvtCheer:
		msg.Data = evt.Message
	case room.EvtChatInit:
		history := evt.History
		if history == nil {
			history = []chat.Message{}
		}
		msg.Data = history
	}
	return msg
}

func ack(id string, data any, err error) types.ServerMessage {
	msg := types.ServerMessage{Type: types.MsgAck, ID: id, Data: data}
	if err != nil {
		msg.Data = nil
		msg.Error = reason(err)
	}
	return msg
}

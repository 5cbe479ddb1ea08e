package engine

import (
	"errors"
	"math/rand"
)

// Rejection reasons. The error text is what clients see in the ack.
var ErrNotStarted = errors.New("not_started")
var ErrGameOver = errors.New("game_over")
var ErrWrongTurn = errors.New("not_your_turn")
var ErrNoPiece = errors.New("no piece")
var ErrIllegal = errors.New("illegal")
var ErrEmptyStack = errors.New("empty")
var ErrNotYours = errors.New("not yours")
var ErrUnsupportedCommand = errors.New("unsupported command")
var ErrAlreadyStarted = errors.New("already started")

type Color string

const (
	None   Color = ""
	Blue   Color = "Blue"
	Orange Color = "Orange"
)

// Colors lists the seats in assignment order.
var Colors = [2]Color{Blue, Orange}

func (c Color) Opponent() Color {
	switch c {
	case Blue:
		return Orange
	case Orange:
		return Blue
	default:
		return None
	}
}

// Tint is the lowercase color tag stamped on pieces.
func (c Color) Tint() string {
	switch c {
	case Blue:
		return "blue"
	case Orange:
		return "orange"
	default:
		return ""
	}
}

func (c Color) Valid() bool { return c == Blue || c == Orange }

type Phase string

const (
	PhaseWaiting    Phase = "waiting"
	PhaseInProgress Phase = "in_progress"
	PhaseFinished   Phase = "finished"
)

type EventType string

const (
	EvtGameStarted   EventType = "GameStarted"
	EvtPiecePlaced   EventType = "PiecePlaced"
	EvtPieceMoved    EventType = "PieceMoved"
	EvtTurnAdvanced  EventType = "TurnAdvanced"
	EvtGameCompleted EventType = "GameCompleted"
	EvtGameReset     EventType = "GameReset"
)

type Event struct {
	Type   EventType
	Color  Color
	Size   Size
	From   Cell
	To     Cell
	Winner Color
}

// Game is the per-room turn engine. It is not safe for concurrent use; the
// owning room serializes access.
type Game struct {
	Board       Board
	CurrentTurn Color
	Winner      Color
	Started     bool

	hands map[Color]Inventory
}

func (g *Game) Phase() Phase {
	switch {
	case g.Winner != None:
		return PhaseFinished
	case g.Started:
		return PhaseInProgress
	default:
		return PhaseWaiting
	}
}

// Hand returns the remaining inventory for a seat color.
func (g *Game) Hand(c Color) Inventory { return g.hands[c] }

// Start moves a waiting game into play with a random first turn.
func (g *Game) Start(rng *rand.Rand) ([]Event, error) {
	if g.Phase() != PhaseWaiting {
		return nil, ErrAlreadyStarted
	}
	g.CurrentTurn = randomColor(rng)
	g.Started = true
	return []Event{{Type: EvtGameStarted, Color: g.CurrentTurn}}, nil
}

// Apply validates cmd for the acting seat and mutates the game only when the
// command is accepted.
func (g *Game) Apply(actor Color, cmd Command) ([]Event, error) {
	if g.Winner != None {
		return nil, ErrGameOver
	}
	if !g.Started {
		return nil, ErrNotStarted
	}
	if actor != g.CurrentTurn {
		return nil, ErrWrongTurn
	}

	var events []Event

	switch c := cmd.(type) {
	case PlaceFromHand:
		if g.hands == nil {
			g.hands = map[Color]Inventory{Blue: DefaultInventory(), Orange: DefaultInventory()}
		}
		hand := g.hands[actor]
		if hand.Count(c.Size) <= 0 {
			return nil, ErrNoPiece
		}
		dst := g.Board.At(c.To)
		if !CanPlace(dst, c.Size) {
			return nil, ErrIllegal
		}

		dst.Push(Piece{Owner: actor, Size: c.Size, Color: actor.Tint()})
		hand.take(c.Size)
		g.hands[actor] = hand
		events = append(events, Event{Type: EvtPiecePlaced, Color: actor, Size: c.Size, To: c.To})

	case MoveOnBoard:
		src := g.Board.At(c.From)
		top, ok := src.Peek()
		if !ok {
			return nil, ErrEmptyStack
		}
		if top.Owner != actor {
			return nil, ErrNotYours
		}
		dst := g.Board.At(c.To)
		if !CanPlace(dst, top.Size) {
			return nil, ErrIllegal
		}

		src.Pop()
		dst.Push(top)
		events = append(events, Event{Type: EvtPieceMoved, Color: actor, Size: top.Size, From: c.From, To: c.To})

	default:
		return nil, ErrUnsupportedCommand
	}

	if w := CheckWinner(&g.Board); w != None {
		g.Winner = w
		g.Started = false
		return append(events, Event{Type: EvtGameCompleted, Winner: w}), nil
	}

	g.CurrentTurn = actor.Opponent()
	return append(events, Event{Type: EvtTurnAdvanced, Color: g.CurrentTurn}), nil
}

// Reset clears the board and both hands. The next match starts immediately
// when both seats are filled, otherwise the game waits for players.
func (g *Game) Reset(bothSeated bool, rng *rand.Rand) []Event {
	g.Board.Clear()
	g.hands = map[Color]Inventory{Blue: DefaultInventory(), Orange: DefaultInventory()}
	g.Winner = None
	g.Started = false
	g.CurrentTurn = None

	events := []Event{{Type: EvtGameReset}}
	if bothSeated {
		started, _ := g.Start(rng)
		events = append(events, started...)
	}
	return events
}

// Abandon ends an unfinished match without a winner.
func (g *Game) Abandon() []Event { return g.Reset(false, nil) }

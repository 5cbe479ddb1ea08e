package room

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/DoyleJ11/stacktactoe-backend/internal/engine"
)

var ErrBadDecision = errors.New("bad_decision")

// Decision is a seated player's choice after a match ends.
type Decision string

const (
	DecisionNone     Decision = ""
	DecisionRematch  Decision = "rematch"
	DecisionSpectate Decision = "spectate"
	DecisionLeave    Decision = "leave"
)

func ParseDecision(s string) (Decision, error) {
	switch d := Decision(s); d {
	case DecisionRematch, DecisionSpectate, DecisionLeave:
		return d, nil
	default:
		return DecisionNone, fmt.Errorf("%w: %q", ErrBadDecision, s)
	}
}

func (r *Room) handleDecide(msg Decide) {
	if _, ok := r.clients[msg.ConnID]; !ok {
		return
	}
	if r.game.Phase() != engine.PhaseFinished || msg.Choice == DecisionNone {
		return
	}
	slot := r.table.SlotOf(msg.ConnID)
	if !slot.Seated() {
		return
	}
	r.decide(slot.Color(), msg.Choice)
}

// decide records the choice for seat c (last write wins) and resolves once
// the other seat is empty or has decided too.
func (r *Room) decide(c engine.Color, d Decision) {
	r.decisions[c] = d
	r.log.Debug("decision recorded", zap.String("seat", string(c)), zap.String("choice", string(d)))

	other := c.Opponent()
	if r.table.Occupied(other) && r.decisions[other] == DecisionNone {
		return
	}
	r.resolve()
}

// resolve applies every recorded decision, backfills vacated seats from the
// spectator queue and starts the next match.
func (r *Room) resolve() {
	before := r.slots()

	for _, c := range engine.Colors {
		switch r.decisions[c] {
		case DecisionLeave:
			o, ok := r.table.Vacate(c)
			if !ok {
				continue
			}
			// A participant still connected after choosing leave is let go.
			if cl, connected := r.clients[o.ID]; connected {
				delete(r.clients, o.ID)
				delete(before, o.ID)
				r.drop(cl)
			}
		case DecisionSpectate:
			o, ok := r.table.Vacate(c)
			if !ok {
				continue
			}
			if _, connected := r.clients[o.ID]; connected {
				r.table.Queue.Enqueue(o.Participant)
			}
		}
	}

	r.reseat()
	r.decisions = map[engine.Color]Decision{}
	r.game.Reset(false, r.rng)
	if r.table.Full() {
		r.startMatch()
	}

	r.log.Info("post-match resolved",
		zap.Bool("started", r.game.Started),
		zap.Int("spectators", r.table.Queue.Len()))

	r.notifySlotChanges(before)
	r.broadcastState()
}

package room

import (
	"github.com/DoyleJ11/stacktactoe-backend/internal/engine"
	"github.com/DoyleJ11/stacktactoe-backend/internal/seats"
)

// Snapshot is the client-facing game state. Connection ids are left out.
type Snapshot struct {
	Board          [engine.BoardSize][engine.BoardSize][]engine.Piece `json:"board"`
	Players        map[engine.Color]*PlayerView                       `json:"players"`
	CurrentTurn    *engine.Color                                      `json:"currentTurn"`
	Winner         *engine.Color                                      `json:"winner"`
	Started        bool                                               `json:"started"`
	SpectatorCount int                                                `json:"spectatorCount"`
}

type PlayerView struct {
	Slot   seats.Slot       `json:"slot"`
	Name   string           `json:"name"`
	Color  string           `json:"color"`
	Pieces engine.Inventory `json:"pieces"`
}

// View is the internal state exposed for diagnostics and tests.
type View struct {
	ID           string
	Version      int
	Phase        engine.Phase
	Participants int
	Decisions    map[engine.Color]Decision
	Queue        []seats.Participant
	Snapshot     Snapshot
}

func (r *Room) snapshot() *Snapshot {
	s := &Snapshot{
		Players:        map[engine.Color]*PlayerView{},
		CurrentTurn:    colorPtr(r.game.CurrentTurn),
		Winner:         colorPtr(r.game.Winner),
		Started:        r.game.Started,
		SpectatorCount: r.table.Queue.Len(),
	}
	for row := 0; row < engine.BoardSize; row++ {
		for col := 0; col < engine.BoardSize; col++ {
			s.Board[row][col] = r.game.Board[row][col].Pieces()
		}
	}
	for _, c := range engine.Colors {
		o := r.table.Seat(c)
		if o == nil {
			s.Players[c] = nil
			continue
		}
		s.Players[c] = &PlayerView{
			Slot:   seats.SlotFor(c),
			Name:   o.Name,
			Color:  c.Tint(),
			Pieces: r.game.Hand(c),
		}
	}
	return s
}

func (r *Room) view() View {
	decisions := make(map[engine.Color]Decision, len(r.decisions))
	for c, d := range r.decisions {
		decisions[c] = d
	}
	return View{
		ID:           r.id,
		Version:      r.version,
		Phase:        r.game.Phase(),
		Participants: len(r.clients),
		Decisions:    decisions,
		Queue:        r.table.Queue.Items(),
		Snapshot:     *r.snapshot(),
	}
}

func colorPtr(c engine.Color) *engine.Color {
	if c == engine.None {
		return nil
	}
	return &c
}

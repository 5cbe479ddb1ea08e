// Package seats assigns room participants to the Blue and Orange seats or to
// the spectator queue, and backfills vacated seats from that queue.
package seats

import "github.com/DoyleJ11/stacktactoe-backend/internal/engine"

type Slot string

const (
	SlotNone      Slot = ""
	SlotBlue      Slot = "Blue"
	SlotOrange    Slot = "Orange"
	SlotSpectator Slot = "spectator"
)

func SlotFor(c engine.Color) Slot {
	switch c {
	case engine.Blue:
		return SlotBlue
	case engine.Orange:
		return SlotOrange
	default:
		return SlotNone
	}
}

// Color is None for spectators.
func (s Slot) Color() engine.Color {
	switch s {
	case SlotBlue:
		return engine.Blue
	case SlotOrange:
		return engine.Orange
	default:
		return engine.None
	}
}

func (s Slot) Seated() bool { return s == SlotBlue || s == SlotOrange }

type Participant struct {
	ID   string
	Name string
}

type Occupant struct {
	Participant
	Color engine.Color
}

// Change records a participant whose slot was changed by the table.
type Change struct {
	Participant
	Slot Slot
}

type Table struct {
	seats map[engine.Color]*Occupant
	Queue *Queue
}

func NewTable() *Table {
	return &Table{
		seats: map[engine.Color]*Occupant{},
		Queue: NewQueue(),
	}
}

// Assign seats p in Blue, then Orange, otherwise queues it as a spectator.
func (t *Table) Assign(p Participant) Slot {
	for _, c := range engine.Colors {
		if t.seats[c] == nil {
			t.seats[c] = &Occupant{Participant: p, Color: c}
			return SlotFor(c)
		}
	}
	t.Queue.Enqueue(p)
	return SlotSpectator
}

// Reseat fills vacant seats (Blue first) from the head of the queue.
func (t *Table) Reseat() []Change {
	var changes []Change
	for _, c := range engine.Colors {
		if t.seats[c] != nil {
			continue
		}
		p, ok := t.Queue.Dequeue()
		if !ok {
			break
		}
		t.seats[c] = &Occupant{Participant: p, Color: c}
		changes = append(changes, Change{Participant: p, Slot: SlotFor(c)})
	}
	return changes
}

// Seat returns the occupant of c, or nil when vacant.
func (t *Table) Seat(c engine.Color) *Occupant { return t.seats[c] }

func (t *Table) Occupied(c engine.Color) bool { return t.seats[c] != nil }

func (t *Table) Full() bool { return t.Occupied(engine.Blue) && t.Occupied(engine.Orange) }

func (t *Table) Vacate(c engine.Color) (Occupant, bool) {
	o := t.seats[c]
	if o == nil {
		return Occupant{}, false
	}
	delete(t.seats, c)
	return *o, true
}

func (t *Table) SlotOf(id string) Slot {
	for _, c := range engine.Colors {
		if o := t.seats[c]; o != nil && o.ID == id {
			return SlotFor(c)
		}
	}
	if t.Queue.Contains(id) {
		return SlotSpectator
	}
	return SlotNone
}

func (t *Table) RemoveSpectator(id string) bool { return t.Queue.Remove(id) }

package engine

import (
	"math/rand"
	"time"
)

func NewGame() *Game {
	return &Game{
		hands: map[Color]Inventory{Blue: DefaultInventory(), Orange: DefaultInventory()},
	}
}

// NewRand returns a time-seeded source for callers that don't inject one.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

func randomColor(rng *rand.Rand) Color {
	if rng == nil {
		rng = NewRand()
	}
	if rng.Intn(2) == 0 {
		return Blue
	}
	return Orange
}

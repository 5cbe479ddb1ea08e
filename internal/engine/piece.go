package engine

import "fmt"

type Size string

const (
	Small  Size = "small"
	Medium Size = "medium"
	Large  Size = "large"
)

// Sizes in ascending rank.
var Sizes = [3]Size{Small, Medium, Large}

// Rank orders sizes for the cover rule; 0 means unknown.
func (s Size) Rank() int {
	switch s {
	case Small:
		return 1
	case Medium:
		return 2
	case Large:
		return 3
	default:
		return 0
	}
}

func ParseSize(s string) (Size, error) {
	size := Size(s)
	if size.Rank() == 0 {
		return "", fmt.Errorf("%w: unknown size %q", ErrBadCommand, s)
	}
	return size, nil
}

// Piece is immutable once pushed onto a stack.
type Piece struct {
	Owner Color  `json:"owner"`
	Size  Size   `json:"size"`
	Color string `json:"color"`
}

const PiecesPerSize = 2

type Inventory struct {
	Small  int `json:"small"`
	Medium int `json:"medium"`
	Large  int `json:"large"`
}

func DefaultInventory() Inventory {
	return Inventory{Small: PiecesPerSize, Medium: PiecesPerSize, Large: PiecesPerSize}
}

func (inv Inventory) Count(s Size) int {
	switch s {
	case Small:
		return inv.Small
	case Medium:
		return inv.Medium
	case Large:
		return inv.Large
	default:
		return 0
	}
}

// take removes one piece of size s; it never goes below zero.
func (inv *Inventory) take(s Size) bool {
	var n *int
	switch s {
	case Small:
		n = &inv.Small
	case Medium:
		n = &inv.Medium
	case Large:
		n = &inv.Large
	default:
		return false
	}
	if *n <= 0 {
		return false
	}
	*n--
	return true
}

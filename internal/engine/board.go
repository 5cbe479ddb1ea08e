package engine

const BoardSize = 3

type Cell struct {
	R int `json:"r"`
	C int `json:"c"`
}

func (c Cell) Valid() bool {
	return c.R >= 0 && c.R < BoardSize && c.C >= 0 && c.C < BoardSize
}

type Board [BoardSize][BoardSize]Stack

// At panics on an out-of-range cell; commands validate cells on construction.
func (b *Board) At(c Cell) *Stack { return &b[c.R][c.C] }

func (b *Board) Clear() { *b = Board{} }

// CanPlace reports whether a piece of the given size may go on s: the stack
// must be empty or its top strictly smaller.
func CanPlace(s *Stack, size Size) bool {
	top, ok := s.Peek()
	if !ok {
		return true
	}
	return size.Rank() > top.Size.Rank()
}

// Lines holds the 8 winning lines: rows, then columns, then diagonals.
var Lines = [8][3]Cell{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// CheckWinner returns the owner of the first line whose three top pieces
// share an owner, or None.
func CheckWinner(b *Board) Color {
	for _, line := range Lines {
		first := b.At(line[0]).TopOwner()
		if first == None {
			continue
		}
		if b.At(line[1]).TopOwner() == first && b.At(line[2]).TopOwner() == first {
			return first
		}
	}
	return None
}

package engine

// Stack is the LIFO pile of pieces on one cell. Only the top piece can be
// covered or moved.
type Stack struct {
	pieces []Piece
}

func (s *Stack) Push(p Piece) { s.pieces = append(s.pieces, p) }

func (s *Stack) Peek() (Piece, bool) {
	if len(s.pieces) == 0 {
		return Piece{}, false
	}
	return s.pieces[len(s.pieces)-1], true
}

func (s *Stack) Pop() (Piece, bool) {
	top, ok := s.Peek()
	if !ok {
		return Piece{}, false
	}
	s.pieces = s.pieces[:len(s.pieces)-1]
	return top, true
}

func (s *Stack) Len() int { return len(s.pieces) }

// Pieces returns a copy, bottom first.
func (s *Stack) Pieces() []Piece {
	out := make([]Piece, len(s.pieces))
	copy(out, s.pieces)
	return out
}

// TopOwner is None for an empty stack.
func (s *Stack) TopOwner() Color {
	top, ok := s.Peek()
	if !ok {
		return None
	}
	return top.Owner
}

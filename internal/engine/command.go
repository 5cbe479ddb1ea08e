package engine

import (
	"errors"
	"fmt"
)

var ErrBadCommand = errors.New("bad_command")

// Command is either PlaceFromHand or MoveOnBoard. Build them with the New*
// constructors so sizes and cells are checked up front.
type Command interface{ isCommand() }

type PlaceFromHand struct {
	Size Size
	To   Cell
}

func (PlaceFromHand) isCommand() {}

type MoveOnBoard struct {
	From Cell
	To   Cell
}

func (MoveOnBoard) isCommand() {}

func NewPlaceFromHand(size string, to Cell) (PlaceFromHand, error) {
	s, err := ParseSize(size)
	if err != nil {
		return PlaceFromHand{}, err
	}
	if !to.Valid() {
		return PlaceFromHand{}, fmt.Errorf("%w: cell %v out of range", ErrBadCommand, to)
	}
	return PlaceFromHand{Size: s, To: to}, nil
}

func NewMoveOnBoard(from, to Cell) (MoveOnBoard, error) {
	if !from.Valid() || !to.Valid() {
		return MoveOnBoard{}, fmt.Errorf("%w: cell out of range", ErrBadCommand)
	}
	return MoveOnBoard{From: from, To: to}, nil
}

package engine

import (
	"errors"
	"math/rand"
	"testing"
)

func startedGame(turn Color) *Game {
	g := NewGame()
	g.Started = true
	g.CurrentTurn = turn
	return g
}

func place(t *testing.T, size string, r, c int) PlaceFromHand {
	t.Helper()
	cmd, err := NewPlaceFromHand(size, Cell{R: r, C: c})
	if err != nil {
		t.Fatalf("build place: %v", err)
	}
	return cmd
}

func move(t *testing.T, fr, fc, tr, tc int) MoveOnBoard {
	t.Helper()
	cmd, err := NewMoveOnBoard(Cell{R: fr, C: fc}, Cell{R: tr, C: tc})
	if err != nil {
		t.Fatalf("build move: %v", err)
	}
	return cmd
}

func TestApply_RejectsBeforeMutating(t *testing.T) {
	cases := []struct {
		name    string
		setup   func() *Game
		actor   Color
		cmd     func(t *testing.T) Command
		wantErr error
	}{
		{
			name:    "waiting game",
			setup:   NewGame,
			actor:   Blue,
			cmd:     func(t *testing.T) Command { return place(t, "small", 0, 0) },
			wantErr: ErrNotStarted,
		},
		{
			name: "finished game",
			setup: func() *Game {
				g := NewGame()
				g.Winner = Orange
				return g
			},
			actor:   Blue,
			cmd:     func(t *testing.T) Command { return place(t, "small", 0, 0) },
			wantErr: ErrGameOver,
		},
		{
			name:    "wrong turn",
			setup:   func() *Game { return startedGame(Orange) },
			actor:   Blue,
			cmd:     func(t *testing.T) Command { return place(t, "small", 0, 0) },
			wantErr: ErrWrongTurn,
		},
		{
			name: "no piece left",
			setup: func() *Game {
				g := startedGame(Blue)
				g.hands[Blue] = Inventory{Small: 0, Medium: 2, Large: 2}
				return g
			},
			actor:   Blue,
			cmd:     func(t *testing.T) Command { return place(t, "small", 0, 0) },
			wantErr: ErrNoPiece,
		},
		{
			name: "cover equal size",
			setup: func() *Game {
				g := startedGame(Blue)
				g.Board.At(Cell{1, 1}).Push(Piece{Owner: Orange, Size: Medium, Color: "orange"})
				return g
			},
			actor:   Blue,
			cmd:     func(t *testing.T) Command { return place(t, "medium", 1, 1) },
			wantErr: ErrIllegal,
		},
		{
			name:    "move from empty",
			setup:   func() *Game { return startedGame(Blue) },
			actor:   Blue,
			cmd:     func(t *testing.T) Command { return move(t, 0, 0, 1, 1) },
			wantErr: ErrEmptyStack,
		},
		{
			name: "move opponent piece",
			setup: func() *Game {
				g := startedGame(Blue)
				g.Board.At(Cell{0, 0}).Push(Piece{Owner: Orange, Size: Large, Color: "orange"})
				return g
			},
			actor:   Blue,
			cmd:     func(t *testing.T) Command { return move(t, 0, 0, 1, 1) },
			wantErr: ErrNotYours,
		},
		{
			name: "move onto larger",
			setup: func() *Game {
				g := startedGame(Blue)
				g.Board.At(Cell{0, 0}).Push(Piece{Owner: Blue, Size: Small, Color: "blue"})
				g.Board.At(Cell{2, 2}).Push(Piece{Owner: Orange, Size: Large, Color: "orange"})
				return g
			},
			actor:   Blue,
			cmd:     func(t *testing.T) Command { return move(t, 0, 0, 2, 2) },
			wantErr: ErrIllegal,
		},
		{
			name: "move onto itself",
			setup: func() *Game {
				g := startedGame(Blue)
				g.Board.At(Cell{0, 0}).Push(Piece{Owner: Blue, Size: Large, Color: "blue"})
				return g
			},
			actor:   Blue,
			cmd:     func(t *testing.T) Command { return move(t, 0, 0, 0, 0) },
			wantErr: ErrIllegal,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := tc.setup()
			before := g.Board
			beforeTurn := g.CurrentTurn
			beforeHand := g.Hand(tc.actor)

			events, err := g.Apply(tc.actor, tc.cmd(t))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("want %v, got %v", tc.wantErr, err)
			}
			if events != nil {
				t.Fatalf("rejected command emitted events: %+v", events)
			}
			if g.CurrentTurn != beforeTurn {
				t.Fatalf("turn changed on rejection: %s -> %s", beforeTurn, g.CurrentTurn)
			}
			if g.Hand(tc.actor) != beforeHand {
				t.Fatalf("hand changed on rejection")
			}
			for r := 0; r < BoardSize; r++ {
				for c := 0; c < BoardSize; c++ {
					if g.Board[r][c].Len() != before[r][c].Len() {
						t.Fatalf("board changed at (%d,%d)", r, c)
					}
				}
			}
		})
	}
}

func TestApply_TurnAlternates(t *testing.T) {
	g := startedGame(Blue)

	events, err := g.Apply(Blue, place(t, "small", 0, 0))
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if g.CurrentTurn != Orange {
		t.Fatalf("want Orange to move, got %s", g.CurrentTurn)
	}
	if !ContainsEvent(events, EvtPiecePlaced) || !ContainsEvent(events, EvtTurnAdvanced) {
		t.Fatalf("missing events: %+v", events)
	}

	if _, err := g.Apply(Orange, place(t, "medium", 0, 0)); err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if g.CurrentTurn != Blue {
		t.Fatalf("want Blue to move, got %s", g.CurrentTurn)
	}

	if _, err := g.Apply(Blue, move(t, 0, 0, 2, 2)); !errors.Is(err, ErrNotYours) {
		t.Fatalf("covered piece should not be movable, got %v", err)
	}
}

func TestApply_InventoryConservation(t *testing.T) {
	g := startedGame(Blue)

	if _, err := g.Apply(Blue, place(t, "large", 1, 1)); err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	want := Inventory{Small: 2, Medium: 2, Large: 1}
	if got := g.Hand(Blue); got != want {
		t.Fatalf("blue hand: got %+v, want %+v", got, want)
	}
	if got := g.Hand(Orange); got != DefaultInventory() {
		t.Fatalf("orange hand changed: %+v", got)
	}

	if _, err := g.Apply(Orange, place(t, "small", 0, 0)); err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	// Blue moves its large piece; no hand changes.
	if _, err := g.Apply(Blue, move(t, 1, 1, 0, 0)); err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if got := g.Hand(Blue); got != want {
		t.Fatalf("move changed blue hand: %+v", got)
	}
	if got := g.Hand(Orange); got != (Inventory{Small: 1, Medium: 2, Large: 2}) {
		t.Fatalf("move changed orange hand: %+v", got)
	}
	if g.Board.At(Cell{1, 1}).Len() != 0 || g.Board.At(Cell{0, 0}).Len() != 2 {
		t.Fatalf("move did not relocate the top piece")
	}
}

func TestApply_HandNeverNegative(t *testing.T) {
	g := startedGame(Blue)
	cells := []Cell{{0, 0}, {2, 2}, {1, 2}}
	for i, cell := range cells {
		g.CurrentTurn = Blue
		_, err := g.Apply(Blue, place(t, "small", cell.R, cell.C))
		if i < PiecesPerSize && err != nil {
			t.Fatalf("placement %d: unexpected err %v", i, err)
		}
		if i == PiecesPerSize && !errors.Is(err, ErrNoPiece) {
			t.Fatalf("third small: want ErrNoPiece, got %v", err)
		}
	}
	if g.Hand(Blue).Small != 0 {
		t.Fatalf("small count = %d, want 0", g.Hand(Blue).Small)
	}
}

func TestApply_EndToEndRowWin(t *testing.T) {
	g := startedGame(Blue)

	steps := []struct {
		actor Color
		r, c  int
	}{
		{Blue, 0, 0},
		{Orange, 1, 1},
		{Blue, 0, 1},
		{Orange, 2, 2},
	}
	for _, s := range steps {
		events, err := g.Apply(s.actor, place(t, "large", s.r, s.c))
		if err != nil {
			t.Fatalf("%s at (%d,%d): %v", s.actor, s.r, s.c, err)
		}
		if ContainsEvent(events, EvtGameCompleted) {
			t.Fatalf("unexpected winner after %s at (%d,%d)", s.actor, s.r, s.c)
		}
	}

	// Blue has already used both large pieces.
	if _, err := g.Apply(Blue, place(t, "large", 0, 2)); !errors.Is(err, ErrNoPiece) {
		t.Fatalf("third large: want ErrNoPiece, got %v", err)
	}
	if g.CurrentTurn != Blue {
		t.Fatalf("rejected placement moved the turn to %s", g.CurrentTurn)
	}

	events, err := g.Apply(Blue, place(t, "medium", 0, 2))
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if !ContainsEvent(events, EvtGameCompleted) {
		t.Fatalf("expected EvtGameCompleted")
	}
	if g.Winner != Blue || g.Started {
		t.Fatalf("winner=%q started=%v, want Blue/false", g.Winner, g.Started)
	}
	if g.Phase() != PhaseFinished {
		t.Fatalf("phase = %s, want finished", g.Phase())
	}
	if _, err := g.Apply(Orange, place(t, "small", 2, 0)); !errors.Is(err, ErrGameOver) {
		t.Fatalf("want ErrGameOver after win, got %v", err)
	}
}

func TestStart_RandomTurnAndPhase(t *testing.T) {
	seen := map[Color]bool{}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 64; i++ {
		g := NewGame()
		if g.Phase() != PhaseWaiting {
			t.Fatalf("new game phase = %s", g.Phase())
		}
		if _, err := g.Start(rng); err != nil {
			t.Fatalf("start: %v", err)
		}
		if !g.CurrentTurn.Valid() {
			t.Fatalf("turn = %q", g.CurrentTurn)
		}
		seen[g.CurrentTurn] = true
		if _, err := g.Start(rng); !errors.Is(err, ErrAlreadyStarted) {
			t.Fatalf("second start: want ErrAlreadyStarted, got %v", err)
		}
	}
	if !seen[Blue] || !seen[Orange] {
		t.Fatalf("first turn never varied: %v", seen)
	}
}

func TestReset(t *testing.T) {
	cases := []struct {
		name        string
		bothSeated  bool
		wantStarted bool
	}{
		{name: "both seats filled", bothSeated: true, wantStarted: true},
		{name: "one seat empty", bothSeated: false, wantStarted: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := startedGame(Blue)
			if _, err := g.Apply(Blue, place(t, "large", 0, 0)); err != nil {
				t.Fatalf("unexpected err %v", err)
			}
			g.Winner = Blue
			g.Started = false

			events := g.Reset(tc.bothSeated, rand.New(rand.NewSource(1)))
			if !ContainsEvent(events, EvtGameReset) {
				t.Fatalf("expected EvtGameReset")
			}
			if ContainsEvent(events, EvtGameStarted) != tc.wantStarted {
				t.Fatalf("GameStarted emitted = %v, want %v", !tc.wantStarted, tc.wantStarted)
			}
			if g.Winner != None || g.Started != tc.wantStarted {
				t.Fatalf("winner=%q started=%v", g.Winner, g.Started)
			}
			if tc.wantStarted && !g.CurrentTurn.Valid() {
				t.Fatalf("started without a turn")
			}
			if !tc.wantStarted && g.CurrentTurn != None {
				t.Fatalf("waiting game has turn %q", g.CurrentTurn)
			}
			if g.Board.At(Cell{0, 0}).Len() != 0 {
				t.Fatalf("board not cleared")
			}
			for _, c := range Colors {
				if g.Hand(c) != DefaultInventory() {
					t.Fatalf("%s hand = %+v after reset", c, g.Hand(c))
				}
			}
		})
	}
}

func TestCommandConstructors(t *testing.T) {
	if _, err := NewPlaceFromHand("huge", Cell{0, 0}); !errors.Is(err, ErrBadCommand) {
		t.Fatalf("unknown size: want ErrBadCommand, got %v", err)
	}
	if _, err := NewPlaceFromHand("small", Cell{3, 0}); !errors.Is(err, ErrBadCommand) {
		t.Fatalf("out of range: want ErrBadCommand, got %v", err)
	}
	if _, err := NewMoveOnBoard(Cell{0, -1}, Cell{0, 0}); !errors.Is(err, ErrBadCommand) {
		t.Fatalf("negative cell: want ErrBadCommand, got %v", err)
	}
	cmd, err := NewMoveOnBoard(Cell{0, 1}, Cell{2, 2})
	if err != nil || cmd.From != (Cell{0, 1}) || cmd.To != (Cell{2, 2}) {
		t.Fatalf("got %+v, %v", cmd, err)
	}
}

func TestAbandon(t *testing.T) {
	g := startedGame(Orange)
	if _, err := g.Apply(Orange, place(t, "small", 2, 2)); err != nil {
		t.Fatalf("unexpected err %v", err)
	}

	g.Abandon()
	if g.Phase() != PhaseWaiting || g.Winner != None {
		t.Fatalf("phase=%s winner=%q after abandon", g.Phase(), g.Winner)
	}
	if g.Board.At(Cell{2, 2}).Len() != 0 || g.Hand(Orange) != DefaultInventory() {
		t.Fatalf("abandon kept match state")
	}
}

func TestApply_MoveOntoItselfIsIllegal(t *testing.T) {
	g := startedGame(Blue)
	if _, err := g.Apply(Blue, place(t, "large", 1, 1)); err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if _, err := g.Apply(Orange, place(t, "small", 0, 0)); err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	mv, err := NewMoveOnBoard(Cell{1, 1}, Cell{1, 1})
	if err != nil {
		t.Fatalf("unexpected err %v", err)
	}
	if _, err := g.Apply(Blue, mv); !errors.Is(err, ErrIllegal) {
		t.Fatalf("want ErrIllegal, got %v", err)
	}
}

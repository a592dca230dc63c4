//
// ChessLib - a chess data structure and move generation library in GO
//
// MIT License
//
// Copyright (c) 2017-2020 Rudy Alex Kohn
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//

package position

import (
	"os"
	"testing"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"

	"github.com/rudzen/chesslib/internal/config"
	myLogging "github.com/rudzen/chesslib/internal/logging"
	. "github.com/rudzen/chesslib/pkg/types"
)

var logTest *logging.Logger

// Setup the tests
func TestMain(m *testing.M) {
	config.Setup()
	logTest = myLogging.GetTestLog()
	code := m.Run()
	os.Exit(code)
}

func TestPositionCreation(t *testing.T) {
	fen := "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	p, err := NewPositionFen(fen)
	assert.NoError(t, err)
	assert.Equal(t, SqA1.Bb()|SqH1.Bb()|SqA8.Bb()|SqH8.Bb(), p.PiecesBb(White, Rook)|p.PiecesBb(Black, Rook))
	assert.Equal(t, SqB1.Bb()|SqG1.Bb()|SqB8.Bb()|SqG8.Bb(), p.PiecesBb(White, Knight)|p.PiecesBb(Black, Knight))
	assert.Equal(t, SqC1.Bb()|SqF1.Bb()|SqC8.Bb()|SqF8.Bb(), p.PiecesBb(White, Bishop)|p.PiecesBb(Black, Bishop))
	assert.Equal(t, SqD1.Bb()|SqD8.Bb(), p.PiecesBb(White, Queen)|p.PiecesBb(Black, Queen))
	assert.Equal(t, SqE1.Bb()|SqE8.Bb(), p.PiecesBb(White, King)|p.PiecesBb(Black, King))
	assert.Equal(t, Rank2_Bb|Rank7_Bb, p.PiecesBb(White, Pawn)|p.PiecesBb(Black, Pawn))
	assert.Equal(t, White, p.NextPlayer())
	assert.Equal(t, CastlingAny, p.CastlingRights())
	assert.Equal(t, SqNone, p.GetEnPassantSquare())
	assert.Equal(t, 0, p.HalfMoveClock())
	assert.Equal(t, SqE1, p.KingSquare(White))
	assert.Equal(t, SqE8, p.KingSquare(Black))
	assert.Equal(t, Value(0), p.Material(White)-p.Material(Black))
	assert.Equal(t, BbZero, p.Checkers())
	assert.Equal(t, fen, p.StringFen())
}

func TestPositionEquality(t *testing.T) {
	p1 := NewPosition()
	p2, _ := NewPositionFen(StartFen)
	assert.Equal(t, p1.ZobristKey(), p2.ZobristKey())
	assert.Equal(t, p1.PawnKey(), p2.PawnKey())
	assert.Equal(t, p1.MaterialKey(), p2.MaterialKey())
	assert.Equal(t, p1.StringFen(), p2.StringFen())
	assert.NotEqual(t, Key(0), p1.ZobristKey())
}

func TestBoardInvariants(t *testing.T) {
	p := NewPosition()
	checkBoardInvariants(t, p)
	// a few moves and the invariants still hold
	moves := []Move{
		CreateMove(SqE2, SqE4, Normal, PtNone),
		CreateMove(SqD7, SqD5, Normal, PtNone),
		CreateMove(SqE4, SqD5, Normal, PtNone), // capture
		CreateMove(SqD8, SqD5, Normal, PtNone), // capture
	}
	for _, m := range moves {
		p.DoMove(m)
		checkBoardInvariants(t, p)
	}
}

func checkBoardInvariants(t *testing.T, p *Position) {
	t.Helper()
	// square array and bitboards agree
	all := BbZero
	for sq := SqA1; sq <= SqH8; sq++ {
		if p.GetPiece(sq) != PieceNone {
			all.PushSquare(sq)
		}
	}
	assert.Equal(t, all, p.OccupiedAll())
	assert.Equal(t, p.OccupiedBb(White)|p.OccupiedBb(Black), p.OccupiedAll())
	assert.Equal(t, BbZero, p.OccupiedBb(White)&p.OccupiedBb(Black))
	// exactly one king per color
	assert.Equal(t, 1, p.PiecesBb(White, King).PopCount())
	assert.Equal(t, 1, p.PiecesBb(Black, King).PopCount())
	// piece count sums match the occupied bitboard
	count := 0
	for pc := WhiteKing; pc < PieceLength; pc++ {
		count += p.board.PieceCount(pc)
	}
	assert.Equal(t, p.OccupiedAll().PopCount(), count)
}

func TestDoMoveUndoMove(t *testing.T) {
	fen := "r3k2r/1ppn3p/2q1q1n1/8/2q1Pp2/6R1/p1p2PPP/1R4K1 b kq e3 0 1"
	p, err := NewPositionFen(fen)
	assert.NoError(t, err)

	beforeKey := p.ZobristKey()
	beforePawnKey := p.PawnKey()
	beforeMaterialKey := p.MaterialKey()
	beforeState := *p.st()
	beforeFen := p.StringFen()

	moves := []Move{
		CreateMove(SqF4, SqE3, EnPassant, PtNone),
		CreateMove(SqG3, SqE3, Normal, PtNone),  // capture
		CreateMove(SqC2, SqB1, Promotion, Queen), // capture and promote
	}
	for _, m := range moves {
		p.DoMove(m)
	}
	assert.NotEqual(t, beforeFen, p.StringFen())

	for range moves {
		p.UndoMove()
	}

	assert.Equal(t, beforeFen, p.StringFen())
	assert.Equal(t, beforeKey, p.ZobristKey())
	assert.Equal(t, beforePawnKey, p.PawnKey())
	assert.Equal(t, beforeMaterialKey, p.MaterialKey())
	assert.Equal(t, beforeState, *p.st())
	assert.Equal(t, 0, p.historyCounter)
}

func TestDoMoveUndoMoveCastling(t *testing.T) {
	fen := "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1"
	p, err := NewPositionFen(fen)
	assert.NoError(t, err)
	beforeKey := p.ZobristKey()
	beforeFen := p.StringFen()

	// castling is encoded as king-from to rook-from
	p.DoMove(CreateMove(SqE1, SqH1, Castling, PtNone))
	assert.Equal(t, WhiteKing, p.GetPiece(SqG1))
	assert.Equal(t, WhiteRook, p.GetPiece(SqF1))
	assert.Equal(t, PieceNone, p.GetPiece(SqE1))
	assert.Equal(t, PieceNone, p.GetPiece(SqH1))
	assert.Equal(t, CastlingBlack, p.CastlingRights())

	p.DoMove(CreateMove(SqE8, SqA8, Castling, PtNone))
	assert.Equal(t, BlackKing, p.GetPiece(SqC8))
	assert.Equal(t, BlackRook, p.GetPiece(SqD8))
	assert.Equal(t, CastlingNone, p.CastlingRights())

	p.UndoMove()
	p.UndoMove()
	assert.Equal(t, beforeFen, p.StringFen())
	assert.Equal(t, beforeKey, p.ZobristKey())
}

// incremental key updates must agree with a from scratch computation
// which here is a fresh position created from the printed fen
func TestZobristIncrementalVsScratch(t *testing.T) {
	p := NewPosition()
	moves := []Move{
		CreateMove(SqE2, SqE4, Normal, PtNone),
		CreateMove(SqD7, SqD5, Normal, PtNone),
		CreateMove(SqE4, SqE5, Normal, PtNone),
		CreateMove(SqF7, SqF5, Normal, PtNone), // sets en passant
		CreateMove(SqE5, SqF6, EnPassant, PtNone),
		CreateMove(SqG8, SqF6, Normal, PtNone), // capture
		CreateMove(SqG1, SqF3, Normal, PtNone),
		CreateMove(SqH8, SqG8, Normal, PtNone), // black loses king side castling
	}
	for _, m := range moves {
		p.DoMove(m)
		scratch, err := NewPositionFen(p.StringFen())
		assert.NoError(t, err)
		assert.Equal(t, scratch.ZobristKey(), p.ZobristKey(), "after move %s", m.StringUci())
		assert.Equal(t, scratch.PawnKey(), p.PawnKey(), "after move %s", m.StringUci())
		assert.Equal(t, scratch.MaterialKey(), p.MaterialKey(), "after move %s", m.StringUci())
	}
}

// a double pawn push which no enemy pawn can capture must not change
// the key compared to the same position without the en passant square
func TestEnPassantKeyStability(t *testing.T) {
	p := NewPosition()
	p.DoMove(CreateMove(SqE2, SqE4, Normal, PtNone))
	// no black pawn can capture on e3
	assert.Equal(t, SqNone, p.GetEnPassantSquare())
	scratch, err := NewPositionFen("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
	assert.NoError(t, err)
	assert.Equal(t, scratch.ZobristKey(), p.ZobristKey())

	// the same fen with the (dead) en passant square also maps to the
	// same key
	scratchEp, err := NewPositionFen("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	assert.NoError(t, err)
	assert.Equal(t, scratch.ZobristKey(), scratchEp.ZobristKey())

	// with a black pawn on d4 the en passant square is real and the
	// key differs
	pd, err := NewPositionFen("rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	assert.NoError(t, err)
	pn, err := NewPositionFen("rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
	assert.NoError(t, err)
	assert.NotEqual(t, pn.ZobristKey(), pd.ZobristKey())
	assert.Equal(t, SqE3, pd.GetEnPassantSquare())
}

func TestCheckersAndPins(t *testing.T) {
	// black queen on e7 pins the white knight on e4 against the king on e1
	p, err := NewPositionFen("4k3/4q3/8/8/4N3/8/8/4K3 w - - 0 1")
	assert.NoError(t, err)
	assert.Equal(t, BbZero, p.Checkers())
	assert.True(t, p.BlockersForKing(White).Has(SqE4))
	assert.True(t, p.Pinners(White).Has(SqE7))
	assert.False(t, p.IsLegalMove(CreateMove(SqE4, SqC3, Normal, PtNone)))

	// knight check
	p, err = NewPositionFen("4k3/8/8/8/8/3n4/8/4K3 w - - 0 1")
	assert.NoError(t, err)
	assert.Equal(t, SqD3.Bb(), p.Checkers())
	assert.True(t, p.HasCheck())
}

func TestIsAttacked(t *testing.T) {
	p, err := NewPositionFen("4k3/8/8/8/8/8/4R3/4K3 b - - 0 1")
	assert.NoError(t, err)
	assert.True(t, p.IsAttacked(SqE7, White))
	assert.True(t, p.IsAttacked(SqE8, White))
	assert.False(t, p.IsAttacked(SqD7, White))
	assert.True(t, p.IsAttacked(SqD1, White)) // own king
	assert.True(t, p.IsAttacked(SqD7, Black))
}

func TestGivesCheck(t *testing.T) {
	// direct rook check - the rook captures the pawn on e7
	p, _ := NewPositionFen("4k3/4p3/8/8/8/8/4R3/4K3 w - - 0 1")
	assert.True(t, p.GivesCheck(CreateMove(SqE2, SqE7, Normal, PtNone)))
	assert.False(t, p.GivesCheck(CreateMove(SqE2, SqD2, Normal, PtNone)))

	// discovered check - bishop moves away and reveals the rook
	p, _ = NewPositionFen("4k3/8/8/8/8/4B3/4R3/4K3 w - - 0 1")
	assert.True(t, p.GivesCheck(CreateMove(SqE3, SqC5, Normal, PtNone)))

	// promotion gives check
	p, _ = NewPositionFen("1k6/4P3/8/8/8/8/8/4K3 w - - 0 1")
	assert.True(t, p.GivesCheck(CreateMove(SqE7, SqE8, Promotion, Rook)))
	assert.False(t, p.GivesCheck(CreateMove(SqE7, SqE8, Promotion, Bishop)))

	// castling - the rook delivers the check
	p, _ = NewPositionFen("4kr2/8/8/8/8/8/8/R3K2R w KQ - 0 1")
	assert.False(t, p.GivesCheck(CreateMove(SqE1, SqH1, Castling, PtNone)))
	// black king on d8 - queen side castling puts the rook on d1
	p, _ = NewPositionFen("3k4/8/8/8/8/8/8/R3K2R w KQ - 0 1")
	assert.True(t, p.GivesCheck(CreateMove(SqE1, SqA1, Castling, PtNone)))
}

func TestRepetitionMarking(t *testing.T) {
	p := NewPosition()
	knightsOut := []Move{
		CreateMove(SqG1, SqF3, Normal, PtNone),
		CreateMove(SqG8, SqF6, Normal, PtNone),
	}
	knightsBack := []Move{
		CreateMove(SqF3, SqG1, Normal, PtNone),
		CreateMove(SqF6, SqG8, Normal, PtNone),
	}

	// 1st repetition of the start position
	for _, m := range append(append([]Move{}, knightsOut...), knightsBack...) {
		p.DoMove(m)
	}
	assert.Equal(t, 4, p.st().repetition)
	assert.False(t, p.CheckRepetitions(2))
	assert.True(t, p.CheckRepetitions(1))

	// 2nd repetition of the start position
	for _, m := range append(append([]Move{}, knightsOut...), knightsBack...) {
		p.DoMove(m)
	}
	// the matching predecessor was itself a repetition - the marker
	// inherits the sign
	assert.Equal(t, -4, p.st().repetition)
	assert.True(t, p.CheckRepetitions(2))
	assert.True(t, p.IsRepetition(0))
}

func TestNullMove(t *testing.T) {
	p, err := NewPositionFen("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	assert.NoError(t, err)
	beforeFen := p.StringFen()
	beforeKey := p.ZobristKey()

	p.DoNullMove()
	assert.Equal(t, Black, p.NextPlayer())
	assert.NotEqual(t, beforeKey, p.ZobristKey())
	assert.Equal(t, 0, p.PliesFromNull())

	p.UndoNullMove()
	assert.Equal(t, beforeFen, p.StringFen())
	assert.Equal(t, beforeKey, p.ZobristKey())
}

func TestInsufficientMaterial(t *testing.T) {
	tests := []struct {
		fen      string
		expected bool
	}{
		{"4k3/8/8/8/8/8/8/4K3 w - - 0 1", true},                // K vs K
		{"4k3/8/8/8/8/8/8/4KB2 w - - 0 1", true},               // KB vs K
		{"4k3/8/8/8/8/8/8/4KN2 w - - 0 1", true},               // KN vs K
		{"4k3/8/8/8/8/8/8/3NKN2 w - - 0 1", true},              // KNN vs K
		{"4k3/8/8/8/8/8/8/4KQ2 w - - 0 1", false},              // KQ vs K
		{"4k3/8/8/8/8/8/8/4KR2 w - - 0 1", false},              // KR vs K
		{"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1", false},             // KP vs K
		{"2b1k3/8/8/8/8/8/8/4KN2 w - - 0 1", true},             // KN vs KB
		{"4k3/8/8/8/8/8/8/2B1KB2 w - - 0 1", false},            // KBB vs K
	}
	for _, test := range tests {
		p, err := NewPositionFen(test.fen)
		assert.NoError(t, err)
		assert.Equal(t, test.expected, p.HasInsufficientMaterial(), "fen: %s", test.fen)
	}
}

func TestPositionCopy(t *testing.T) {
	p := NewPosition()
	c := p.Copy()
	c.DoMove(CreateMove(SqE2, SqE4, Normal, PtNone))
	// the original is not affected
	assert.Equal(t, StartFen, p.StringFen())
	assert.NotEqual(t, p.ZobristKey(), c.ZobristKey())
}

func TestIsLegalMoveKing(t *testing.T) {
	// checked by the adjacent undefended rook
	p, err := NewPositionFen("4k3/8/8/8/8/8/4r3/4K3 w - - 0 1")
	assert.NoError(t, err)
	assert.True(t, p.HasCheck())
	// capturing the undefended checker is legal
	assert.True(t, p.IsLegalMove(CreateMove(SqE1, SqE2, Normal, PtNone)))
	// the rook guards the whole second rank
	assert.False(t, p.IsLegalMove(CreateMove(SqE1, SqD2, Normal, PtNone)))
	assert.False(t, p.IsLegalMove(CreateMove(SqE1, SqF2, Normal, PtNone)))
	assert.True(t, p.IsLegalMove(CreateMove(SqE1, SqD1, Normal, PtNone)))
	assert.True(t, p.IsLegalMove(CreateMove(SqE1, SqF1, Normal, PtNone)))

	// checked from a distance - the king may not stay on the checking
	// ray. This needs the attack test with the king removed from the
	// occupancy.
	p, err = NewPositionFen("3k4/4r3/8/8/8/8/8/4K3 w - - 0 1")
	assert.NoError(t, err)
	assert.True(t, p.HasCheck())
	assert.False(t, p.IsLegalMove(CreateMove(SqE1, SqE2, Normal, PtNone)))
	assert.True(t, p.IsLegalMove(CreateMove(SqE1, SqD1, Normal, PtNone)))
}

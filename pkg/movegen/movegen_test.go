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

package movegen

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rudzen/chesslib/internal/config"
	"github.com/rudzen/chesslib/pkg/position"
	. "github.com/rudzen/chesslib/pkg/types"
)

// Setup the tests
func TestMain(m *testing.M) {
	config.Setup()
	code := m.Run()
	os.Exit(code)
}

func TestGenerateLegalMovesStartPosition(t *testing.T) {
	mg := NewMoveGen()
	p := position.NewPosition()

	legal := mg.GenerateLegalMoves(p, GenAll)
	assert.Equal(t, 20, legal.Len())

	captures := mg.GenerateLegalMoves(p, GenCaptures).Clone()
	quiets := mg.GenerateLegalMoves(p, GenQuiets).Clone()
	assert.Equal(t, 0, captures.Len())
	assert.Equal(t, 20, quiets.Len())
}

func TestGenerateLegalMovesKiwipete(t *testing.T) {
	mg := NewMoveGen()
	p, err := position.NewPositionFen("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	assert.NoError(t, err)

	legal := mg.GenerateLegalMoves(p, GenAll)
	assert.Equal(t, 48, legal.Len())

	// count by move class - reference values from the perft tables
	captures := 0
	castles := 0
	for _, m := range *legal {
		if p.IsCapturingMove(m) {
			captures++
		}
		if m.MoveType() == Castling {
			castles++
		}
	}
	assert.Equal(t, 8, captures)
	assert.Equal(t, 2, castles)
}

func TestGeneratedMovesAreLegalAndUnique(t *testing.T) {
	fens := []string{
		position.StartFen,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	}
	mg := NewMoveGen()
	for _, fen := range fens {
		p, err := position.NewPositionFen(fen)
		assert.NoError(t, err)
		legal := mg.GenerateLegalMoves(p, GenAll)
		seen := map[Move]bool{}
		for _, m := range *legal {
			assert.False(t, seen[m], "duplicate move %s on %s", m.StringUci(), fen)
			seen[m] = true
			// doing the move must not leave the own king in check
			us := p.NextPlayer()
			p.DoMove(m)
			assert.False(t, p.IsAttacked(p.KingSquare(us), us.Flip()),
				"move %s leaves king in check on %s", m.StringUci(), fen)
			p.UndoMove()
		}
	}
}

func TestCapturesQuietsPartition(t *testing.T) {
	fens := []string{
		position.StartFen,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	}
	mg := NewMoveGen()
	for _, fen := range fens {
		p, err := position.NewPositionFen(fen)
		assert.NoError(t, err)
		assert.False(t, p.HasCheck())

		all := mg.GenerateLegalMoves(p, GenNonEvasions).Clone()
		captures := mg.GenerateLegalMoves(p, GenCaptures).Clone()
		quiets := mg.GenerateLegalMoves(p, GenQuiets).Clone()

		// captures and quiets partition the non evasions
		assert.Equal(t, all.Len(), captures.Len()+quiets.Len(), "fen: %s", fen)
		for _, m := range *captures {
			assert.True(t, all.Contains(m))
			assert.False(t, quiets.Contains(m))
		}
		for _, m := range *quiets {
			assert.True(t, all.Contains(m))
		}
	}
}

func TestEvasions(t *testing.T) {
	fens := []string{
		// black is in check by the bishop on b5
		"rnbqkbnr/ppp2ppp/8/1B1pp3/4P3/8/PPPP1PPP/RNBQK1NR b KQkq - 0 1",
		"4k3/8/8/8/8/3n4/8/4K3 w - - 0 1",
		"r3k2r/8/8/4q3/8/8/8/R3K2R w KQkq - 0 1",
	}
	mg := NewMoveGen()
	for _, fen := range fens {
		p, err := position.NewPositionFen(fen)
		assert.NoError(t, err)
		assert.True(t, p.HasCheck())

		evasions := mg.GenerateLegalMoves(p, GenEvasions).Clone()
		all := mg.GenerateLegalMoves(p, GenAll).Clone()
		assert.True(t, evasions.Equals(all), "fen: %s", fen)
		assert.True(t, evasions.Len() > 0, "fen: %s", fen)
		// no castling while in check
		for _, m := range *evasions {
			assert.NotEqual(t, Castling, m.MoveType())
		}
	}
}

func TestEvasionDoubleCheck(t *testing.T) {
	// double check: rook on e8 and bishop on h4 both check e1
	p, err := position.NewPositionFen("4r3/8/8/k7/7b/8/8/4K3 w - - 0 1")
	assert.NoError(t, err)
	assert.Equal(t, 2, p.Checkers().PopCount())
	mg := NewMoveGen()
	evasions := mg.GenerateLegalMoves(p, GenEvasions)
	// on double check only king moves are possible
	for _, m := range *evasions {
		assert.Equal(t, p.KingSquare(White), m.From())
	}
	assert.True(t, evasions.Len() > 0)
}

func TestQuietChecks(t *testing.T) {
	fens := []string{
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"4k3/8/8/8/8/4B3/4R3/4K3 w - - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	}
	mg := NewMoveGen()
	for _, fen := range fens {
		p, err := position.NewPositionFen(fen)
		assert.NoError(t, err)

		quietChecks := mg.GenerateLegalMoves(p, GenQuietChecks).Clone()
		quiets := mg.GenerateLegalMoves(p, GenQuiets).Clone()

		// every quiet check is a quiet move and delivers check
		for _, m := range *quietChecks {
			assert.True(t, quiets.Contains(m), "%s not quiet on %s", m.StringUci(), fen)
			assert.True(t, p.GivesCheck(m), "%s does not give check on %s", m.StringUci(), fen)
		}
		// every checking quiet move (castling aside) is generated
		for _, m := range *quiets {
			if m.MoveType() != Castling && p.GivesCheck(m) {
				assert.True(t, quietChecks.Contains(m), "%s missing in quiet checks on %s", m.StringUci(), fen)
			}
		}
	}
}

func TestHasLegalMove(t *testing.T) {
	mg := NewMoveGen()

	p := position.NewPosition()
	assert.True(t, mg.HasLegalMove(p))

	// mate - no legal move and in check
	p, err := position.NewPositionFen("R3k3/8/4K3/8/8/8/8/8 b - - 0 1")
	assert.NoError(t, err)
	assert.False(t, mg.HasLegalMove(p))
	assert.True(t, p.HasCheck())

	// stalemate - no legal move and not in check
	p, err = position.NewPositionFen("k7/8/1Q6/8/8/8/8/4K3 b - - 0 1")
	assert.NoError(t, err)
	assert.False(t, mg.HasLegalMove(p))
	assert.False(t, p.HasCheck())
}

func TestGetMoveFromUci(t *testing.T) {
	mg := NewMoveGen()
	p := position.NewPosition()

	m, err := mg.GetMoveFromUci(p, "e2e4")
	assert.NoError(t, err)
	assert.Equal(t, CreateMove(SqE2, SqE4, Normal, PtNone), m)

	_, err = mg.GetMoveFromUci(p, "e2e5")
	assert.Error(t, err)
	_, err = mg.GetMoveFromUci(p, "xxxx")
	assert.Error(t, err)

	// castling in standard UCI notation
	p, err = position.NewPositionFen("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	assert.NoError(t, err)
	m, err = mg.GetMoveFromUci(p, "e1g1")
	assert.NoError(t, err)
	assert.Equal(t, Castling, m.MoveType())
	assert.Equal(t, SqH1, m.To())

	// promotion
	p, err = position.NewPositionFen("5k2/P7/4K3/8/8/8/8/8 w - - 0 1")
	assert.NoError(t, err)
	m, err = mg.GetMoveFromUci(p, "a7a8q")
	assert.NoError(t, err)
	assert.Equal(t, Promotion, m.MoveType())
	assert.Equal(t, Queen, m.PromotionType())
}

func TestUciRoundTrip(t *testing.T) {
	// every legal move converts to a uci string and back to the same move
	fens := []string{
		position.StartFen,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	}
	mg := NewMoveGen()
	mg2 := NewMoveGen()
	for _, fen := range fens {
		p, err := position.NewPositionFen(fen)
		assert.NoError(t, err)
		legal := mg.GenerateLegalMoves(p, GenAll).Clone()
		for _, m := range *legal {
			parsed, err := mg2.GetMoveFromUci(p, m.StringUci())
			assert.NoError(t, err)
			assert.Equal(t, m, parsed, "uci round trip failed for %s on %s", m.StringUci(), fen)
		}
	}
}

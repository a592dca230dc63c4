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

package bitbase

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

func TestBitbaseConstruction(t *testing.T) {
	// the iterative classification converges in roughly 15 passes
	assert.True(t, Passes() > 5 && Passes() < 40, "passes: %d", Passes())
	// there are wins and draws in the table
	wins := 0
	for _, word := range bitTable {
		for ; word != 0; word &= word - 1 {
			wins++
		}
	}
	assert.True(t, wins > 0)
	assert.True(t, wins < maxIndex)
}

func TestKpkKnownResults(t *testing.T) {
	tests := []struct {
		fen  string
		draw bool
	}{
		// far away defender cannot catch the a-pawn
		{"7k/8/8/8/8/8/P7/K7 w - - 0 1", false},
		// defender in front of the rook pawn - always a draw
		{"1k6/8/8/8/8/8/P7/K7 w - - 0 1", true},
		// king on the sixth rank in front of its pawn - always a win
		{"4k3/8/4K3/4P3/8/8/8/8 w - - 0 1", false},
		{"4k3/8/4K3/4P3/8/8/8/8 b - - 0 1", false},
		// pawn on the seventh, king supports promotion
		{"4k3/4P3/4K3/8/8/8/8/8 w - - 0 1", false},
		// but black to move is stalemate
		{"4k3/4P3/4K3/8/8/8/8/8 b - - 0 1", true},
		// king two ranks in front of its pawn - a win even without
		// the opposition
		{"4k3/8/4K3/8/4P3/8/8/8 b - - 0 1", false},
	}
	for _, test := range tests {
		p, err := position.NewPositionFen(test.fen)
		assert.NoError(t, err)
		assert.Equal(t, test.draw, IsDraw(p), "fen: %s", test.fen)
	}
}

func TestKpkMirroredFiles(t *testing.T) {
	// the h-pawn case mirrors the a-pawn case
	pa, err := position.NewPositionFen("1k6/8/8/8/8/8/P7/K7 w - - 0 1")
	assert.NoError(t, err)
	ph, err := position.NewPositionFen("6k1/8/8/8/8/8/7P/7K w - - 0 1")
	assert.NoError(t, err)
	assert.Equal(t, IsDraw(pa), IsDraw(ph))
	assert.True(t, IsDraw(ph))
}

func TestKpkBlackPawn(t *testing.T) {
	// the board is normalized when black owns the pawn - this is the
	// vertically mirrored version of the drawn a-pawn position
	p, err := position.NewPositionFen("k7/p7/8/8/8/8/8/1K6 b - - 0 1")
	assert.NoError(t, err)
	assert.True(t, IsDraw(p))

	// and the win with the far away defender
	p, err = position.NewPositionFen("k7/p7/8/8/8/8/8/7K b - - 0 1")
	assert.NoError(t, err)
	assert.False(t, IsDraw(p))
}

func TestProbeDirect(t *testing.T) {
	// Probe takes the pawn on files a-d only
	// white: Kd6, pd5 vs Kd8 - white to move wins
	assert.True(t, Probe(SqD6, SqD5, SqD8, White))
	// stalemate position: Kd6, pd7 vs Kd8 with black to move
	assert.False(t, Probe(SqD6, SqD7, SqD8, Black))
}

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
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/rudzen/chesslib/pkg/types"
)

func TestCuckooTableSize(t *testing.T) {
	// there are exactly 3668 reversible single piece moves on an
	// empty board - every one occupies exactly one slot
	assert.Equal(t, 3668, CuckooEntryCount())
}

func TestCuckooLookupConsistency(t *testing.T) {
	// every stored move key must be found via one of its two hashes
	checked := 0
	for i, key := range cuckoo {
		if key == 0 {
			continue
		}
		move := cuckooMove[i]
		assert.True(t, move != MoveNone)
		assert.True(t, uint32(i) == h1(key) || uint32(i) == h2(key))
		checked++
	}
	assert.Equal(t, cuckooEntries, checked)
}

func TestHasGameCycle(t *testing.T) {
	p := NewPosition()
	moves := []Move{
		CreateMove(SqG1, SqF3, Normal, PtNone),
		CreateMove(SqG8, SqF6, Normal, PtNone),
		CreateMove(SqF3, SqG1, Normal, PtNone),
		CreateMove(SqF6, SqG8, Normal, PtNone), // start position repeated
		CreateMove(SqG1, SqF3, Normal, PtNone),
		CreateMove(SqG8, SqF6, Normal, PtNone),
		CreateMove(SqF3, SqG1, Normal, PtNone),
	}
	for _, m := range moves {
		p.DoMove(m)
	}
	// black to move can repeat with Ng8 - a cycle is upcoming
	assert.True(t, p.HasGameCycle(7))
	// a high ply is not required here as the repetition is within the
	// game history
	assert.True(t, p.HasGameCycle(4))
}

func TestHasGameCycleNoCycle(t *testing.T) {
	p := NewPosition()
	assert.False(t, p.HasGameCycle(0))
	p.DoMove(CreateMove(SqE2, SqE4, Normal, PtNone))
	p.DoMove(CreateMove(SqE7, SqE5, Normal, PtNone))
	// pawn moves are irreversible - no cycle possible
	assert.False(t, p.HasGameCycle(2))
}

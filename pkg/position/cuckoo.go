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
	"github.com/rudzen/chesslib/internal/assert"
	"github.com/rudzen/chesslib/internal/util"
	. "github.com/rudzen/chesslib/pkg/types"
)

// Upcoming repetition detection based on a cuckoo hash table as
// described in
//   http://web.archive.org/web/20201107002606/https://marcelk.net/2013-04-06/paper/upcoming-rep-v2.pdf
// The table maps the "move key" of every reversible single piece move
// (zobrist[pc][sq1] ^ zobrist[pc][sq2] ^ sideKey) to the move. During
// search a single xor of two position keys and two table lookups
// answer whether the side to move can force an immediate repetition.
//
// There are exactly 3668 reversible single piece moves on an empty
// board. Each element has two candidate slots - insertion displaces
// the occupant to its alternate slot until a free slot is found.
var (
	cuckoo     [8192]Key
	cuckooMove [8192]Move
)

// cuckooEntries is the number of reversible moves inserted into the
// table - fixed for a 8x8 board
const cuckooEntries = 3668

// first hash function for indexing the cuckoo tables
func h1(key Key) uint32 {
	return uint32(key) & 0x1fff
}

// second hash function for indexing the cuckoo tables
func h2(key Key) uint32 {
	return uint32(key>>16) & 0x1fff
}

// initCuckoo fills the cuckoo tables with all reversible single piece
// moves. Needs the zobrist keys to be initialized.
func initCuckoo() {
	count := 0
	for c := White; c <= Black; c++ {
		for pt := King; pt <= Queen; pt++ {
			if pt == Pawn {
				// pawn moves are never reversible
				continue
			}
			pc := MakePiece(c, pt)
			for s1 := SqA1; s1 <= SqH8; s1++ {
				for s2 := s1 + 1; s2 <= SqH8; s2++ {
					if !GetPseudoAttacks(pt, s1).Has(s2) {
						continue
					}
					move := CreateMove(s1, s2, Normal, PtNone)
					key := zobristBase.pieces[pc][s1] ^ zobristBase.pieces[pc][s2] ^ zobristBase.nextPlayer
					i := h1(key)
					for {
						cuckoo[i], key = key, cuckoo[i]
						cuckooMove[i], move = move, cuckooMove[i]
						if move == MoveNone { // arrived at empty slot
							break
						}
						// push victim to alternate slot
						if i == h1(key) {
							i = h2(key)
						} else {
							i = h1(key)
						}
					}
					count++
				}
			}
		}
	}
	if assert.DEBUG {
		assert.Assert(count == cuckooEntries, "initCuckoo: expected %d entries, got %d", cuckooEntries, count)
	}
}

// HasGameCycle tests if the side to move can reach a position which
// already occurred within the last min(rule50, pliesFromNull) plies by
// a single reversible move - i.e. a draw by repetition can be forced
// on the next move. ply is the distance of the current position to the
// search root - for positions before the root an actual earlier
// occurrence is required.
func (p *Position) HasGameCycle(ply int) bool {
	st := p.st()
	end := util.Min(st.halfMoveClock, st.pliesFromNull)

	// at least 3 plies back are needed for a cycle
	if end < 3 {
		return false
	}

	originalKey := st.zobristKey

	for i := 3; i <= end; i += 2 {
		idx := p.historyCounter - i
		if idx < 0 {
			break
		}
		moveKey := originalKey ^ p.history[idx].zobristKey

		j := h1(moveKey)
		if cuckoo[j] != moveKey {
			j = h2(moveKey)
			if cuckoo[j] != moveKey {
				continue
			}
		}

		move := cuckooMove[j]
		s1 := move.From()
		s2 := move.To()
		if Intermediate(s1, s2)&p.board.OccupiedAll() != 0 {
			continue
		}

		if ply > i {
			return true
		}

		// For nodes before the root the move must be by the side to
		// move and the earlier position must itself have repeated
		var pc Piece
		if p.board.GetPiece(s1) != PieceNone {
			pc = p.board.GetPiece(s1)
		} else {
			pc = p.board.GetPiece(s2)
		}
		if pc.ColorOf() != p.nextPlayer {
			continue
		}
		if p.history[idx].repetition != 0 {
			return true
		}
	}
	return false
}

// CuckooEntryCount returns the number of entries in the cuckoo tables
func CuckooEntryCount() int {
	count := 0
	for _, k := range cuckoo {
		if k != 0 {
			count++
		}
	}
	return count
}

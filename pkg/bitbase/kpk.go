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

// Package bitbase implements a king-pawn-king (KPK) endgame bitbase.
// For every combination of side to move, king squares and pawn square
// (pawn on files a-d, ranks 2-7) the table answers whether the pawn
// side can force a win. The table is built once at startup by
// iterative retrograde classification and is immutable afterwards.
package bitbase

import (
	"time"

	"github.com/rudzen/chesslib/internal/assert"
	myLogging "github.com/rudzen/chesslib/internal/logging"
	"github.com/rudzen/chesslib/pkg/position"
	. "github.com/rudzen/chesslib/pkg/types"
)

// maxIndex covers 2 sides to move * 24 pawn squares * 64 * 64 king
// squares = 196,608 positions
const maxIndex = 2 * 24 * 64 * 64

// one bit per index - set when the strong side wins
var bitTable [maxIndex / 64]uint64

// passes is the number of iterations the classification needed until
// no position changed anymore
var passes int

// initialize the bitbase at startup
func init() {
	start := time.Now()
	initBitbase()
	myLogging.GetLog().Debugf("KPK bitbase initialized in %d ms (%d passes)",
		time.Since(start).Milliseconds(), passes)
}

// result is a bit set so results of successor positions can be
// accumulated by or-ing them together
type result uint8

const (
	resInvalid result = 0
	resUnknown result = 1 << 0
	resDraw    result = 1 << 1
	resWin     result = 1 << 2
)

// kpkPosition is a single entry of the classification database.
// White is always the strong side (the pawn owner).
type kpkPosition struct {
	us     Color
	ksq    [ColorLength]Square
	psq    Square
	result result
}

// kpkIndex encodes a KPK position into the table index.
// Layout: white king 0-5, black king 6-11, side to move 12, pawn file
// (a-d) 13-14, inverted pawn rank (7 - rank) 15-17
func kpkIndex(us Color, bksq Square, wksq Square, psq Square) int {
	return int(wksq) | int(bksq)<<6 | int(us)<<12 | int(psq.FileOf())<<13 | int(Rank7-psq.RankOf())<<15
}

// Probe looks up the position in the bitbase and returns true when
// white (the pawn side) wins. The pawn must be on files a-d - probing
// positions with the pawn on files e-h must mirror all squares
// horizontally first (see IsDraw).
func Probe(wksq Square, wpsq Square, bksq Square, us Color) bool {
	if assert.DEBUG {
		assert.Assert(wpsq.FileOf() <= FileD, "bitbase Probe: pawn file must be a-d: %s", wpsq.String())
	}
	idx := kpkIndex(us, bksq, wksq, wpsq)
	return bitTable[idx/64]&(uint64(1)<<(idx%64)) != 0
}

// IsDraw classifies a KPK position (exactly one king per side and one
// pawn on the board). The pawn may belong to either color - the board
// is normalized so the pawn side plays white. Positions with the pawn
// on files e-h are mirrored before probing.
func IsDraw(p *position.Position) bool {
	if assert.DEBUG {
		assert.Assert(p.OccupiedAll().PopCount() == 3 &&
			(p.PiecesBb(White, Pawn)|p.PiecesBb(Black, Pawn)).PopCount() == 1,
			"bitbase IsDraw: position is not a KPK ending: %s", p.StringFen())
	}

	var wksq, bksq, psq Square
	var us Color

	if p.PiecesBb(White, Pawn) != 0 {
		wksq = p.KingSquare(White)
		bksq = p.KingSquare(Black)
		psq = p.PiecesBb(White, Pawn).Lsb()
		us = p.NextPlayer()
	} else {
		// black is the strong side - flip the board vertically
		wksq = p.KingSquare(Black).Flip()
		bksq = p.KingSquare(White).Flip()
		psq = p.PiecesBb(Black, Pawn).Lsb().Flip()
		us = p.NextPlayer().Flip()
	}

	// mirror horizontally when the pawn is on the files e-h
	if psq.FileOf() > FileD {
		wksq = mirrorFile(wksq)
		bksq = mirrorFile(bksq)
		psq = mirrorFile(psq)
	}

	return !Probe(wksq, psq, bksq, us)
}

// Passes returns the number of classification iterations the bitbase
// construction needed
func Passes() int {
	return passes
}

// ///////////////////////////////////////////////////////////
// Private
// ///////////////////////////////////////////////////////////

// mirrorFile mirrors a square horizontally (file a becomes file h)
func mirrorFile(sq Square) Square {
	return sq ^ 7
}

func initBitbase() {
	db := make([]kpkPosition, maxIndex)

	// Initialize db with known win / draw positions
	for idx := range db {
		db[idx] = newKpkPosition(idx)
	}

	// Iterate through the positions until none of the unknown
	// positions can be changed to either wins or draws (15 cycles
	// needed)
	repeat := true
	for repeat {
		repeat = false
		passes++
		for idx := range db {
			if db[idx].result == resUnknown && db[idx].classify(db) != resUnknown {
				repeat = true
			}
		}
	}

	// Pack each win into the bit table
	for idx := range db {
		if db[idx].result == resWin {
			bitTable[idx/64] |= uint64(1) << (idx % 64)
		}
	}
}

// newKpkPosition decodes the index and seeds the result with the
// immediately decidable cases
func newKpkPosition(idx int) kpkPosition {
	pos := kpkPosition{}
	pos.ksq[White] = Square(idx & 0x3F)
	pos.ksq[Black] = Square((idx >> 6) & 0x3F)
	pos.us = Color((idx >> 12) & 0x01)
	pos.psq = SquareOf(File((idx>>13)&0x03), Rank7-Rank((idx>>15)&0x07))

	switch {
	// invalid when the two kings touch or overlap a piece or the king
	// not to move is already in check by the pawn
	case SquareDistance(pos.ksq[White], pos.ksq[Black]) <= 1 ||
		pos.ksq[White] == pos.psq ||
		pos.ksq[Black] == pos.psq ||
		(pos.us == White && GetPawnAttacks(White, pos.psq).Has(pos.ksq[Black])):
		pos.result = resInvalid

	// immediate win when white promotes without getting the new queen
	// captured
	case pos.us == White &&
		pos.psq.RankOf() == Rank7 &&
		pos.ksq[White] != pos.psq.To(North) &&
		(SquareDistance(pos.ksq[Black], pos.psq.To(North)) > 1 ||
			SquareDistance(pos.ksq[White], pos.psq.To(North)) == 1):
		pos.result = resWin

	// immediate draw when black is stalemated or captures the
	// undefended pawn
	case pos.us == Black &&
		(GetPseudoAttacks(King, pos.ksq[Black])&^(GetPseudoAttacks(King, pos.ksq[White])|GetPawnAttacks(White, pos.psq)) == 0 ||
			GetPseudoAttacks(King, pos.ksq[Black])&pos.psq.Bb()&^GetPseudoAttacks(King, pos.ksq[White]) != 0):
		pos.result = resDraw

	// position is not immediately decidable
	default:
		pos.result = resUnknown
	}
	return pos
}

// classify a position by looking at the results of all successor
// positions.
// White to move wins when any successor is a win. Black to move draws
// when any successor is a draw. When all successors carry the
// opposite verdict the opposite verdict applies - otherwise the
// position stays unknown.
func (pos *kpkPosition) classify(db []kpkPosition) result {
	var good, bad result
	if pos.us == White {
		good, bad = resWin, resDraw
	} else {
		good, bad = resDraw, resWin
	}

	r := resInvalid
	b := GetPseudoAttacks(King, pos.ksq[pos.us])
	for b != 0 {
		to := b.PopLsb()
		if pos.us == White {
			r |= db[kpkIndex(Black, pos.ksq[Black], to, pos.psq)].result
		} else {
			r |= db[kpkIndex(White, to, pos.ksq[White], pos.psq)].result
		}
	}

	// pawn single and double pushes for white
	if pos.us == White {
		if pos.psq.RankOf() < Rank7 { // single push
			r |= db[kpkIndex(Black, pos.ksq[Black], pos.ksq[White], pos.psq.To(North))].result
		}
		if pos.psq.RankOf() == Rank2 && // double push
			pos.psq.To(North) != pos.ksq[White] &&
			pos.psq.To(North) != pos.ksq[Black] {
			r |= db[kpkIndex(Black, pos.ksq[Black], pos.ksq[White], pos.psq.To(North).To(North))].result
		}
	}

	switch {
	case r&good != 0:
		pos.result = good
	case r&resUnknown != 0:
		pos.result = resUnknown
	default:
		pos.result = bad
	}
	return pos.result
}

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
	"strings"

	"github.com/rudzen/chesslib/internal/assert"
	. "github.com/rudzen/chesslib/pkg/types"
)

// Board is the bare piece placement part of a position. It owns the
// 8x8 piece array, the per piece type and per color bitboards and the
// piece counts. All operations are O(1) and keep the redundant
// representations consistent:
//  - squares[sq] != PieceNone iff byType[PtAll] has sq
//  - byType[pt] & bySide[c] is the bitboard of pieces of type pt and color c
//  - popcount(byType[PtAll]) == sum of all pieceCount entries
type Board struct {
	squares    [SqLength]Piece
	byType     [PtLength]Bitboard
	bySide     [ColorLength]Bitboard
	pieceCount [PieceLength]int
	kingSquare [ColorLength]Square
}

// PutPiece puts a piece on the given square and updates all
// bitboards and counters
func (b *Board) PutPiece(piece Piece, square Square) {
	color := piece.ColorOf()
	pieceType := piece.TypeOf()

	if assert.DEBUG {
		assert.Assert(b.squares[square] == PieceNone, "Board PutPiece: tried to put piece on an occupied square: %s", square.String())
	}

	b.squares[square] = piece
	if pieceType == King {
		b.kingSquare[color] = square
	}
	b.byType[PtAll].PushSquare(square)
	b.byType[pieceType].PushSquare(square)
	b.bySide[color].PushSquare(square)
	b.pieceCount[piece]++
}

// RemovePiece removes the piece from the given square and updates all
// bitboards and counters. Returns the removed piece.
func (b *Board) RemovePiece(square Square) Piece {
	removed := b.squares[square]
	color := removed.ColorOf()
	pieceType := removed.TypeOf()

	if assert.DEBUG {
		assert.Assert(removed != PieceNone, "Board RemovePiece: tried to remove piece from an empty square: %s", square.String())
	}

	b.squares[square] = PieceNone
	b.byType[PtAll].PopSquare(square)
	b.byType[pieceType].PopSquare(square)
	b.bySide[color].PopSquare(square)
	b.pieceCount[removed]--
	return removed
}

// MovePiece moves a piece from one square to another and updates all
// bitboards. Counters are unchanged - captures must be handled by an
// explicit RemovePiece on the target square beforehand.
func (b *Board) MovePiece(from Square, to Square) {
	piece := b.squares[from]
	color := piece.ColorOf()
	pieceType := piece.TypeOf()

	if assert.DEBUG {
		assert.Assert(piece != PieceNone, "Board MovePiece: no piece on from square: %s", from.String())
		assert.Assert(b.squares[to] == PieceNone, "Board MovePiece: to square is occupied: %s", to.String())
	}

	fromTo := from.Bb() | to.Bb()
	b.byType[PtAll] ^= fromTo
	b.byType[pieceType] ^= fromTo
	b.bySide[color] ^= fromTo
	b.squares[from] = PieceNone
	b.squares[to] = piece
	if pieceType == King {
		b.kingSquare[color] = to
	}
}

// GetPiece returns the piece on the given square. Empty
// squares are initialized with PieceNone and return the same.
func (b *Board) GetPiece(sq Square) Piece {
	return b.squares[sq]
}

// PiecesBb returns the Bitboard for the given piece type of the given color
func (b *Board) PiecesBb(c Color, pt PieceType) Bitboard {
	return b.byType[pt] & b.bySide[c]
}

// PiecesTypeBb returns the Bitboard for the given piece type of both colors
func (b *Board) PiecesTypeBb(pt PieceType) Bitboard {
	return b.byType[pt]
}

// OccupiedAll returns a Bitboard of all pieces currently on the board
func (b *Board) OccupiedAll() Bitboard {
	return b.byType[PtAll]
}

// OccupiedBb returns a Bitboard of all pieces of Color c
func (b *Board) OccupiedBb(c Color) Bitboard {
	return b.bySide[c]
}

// KingSquare returns the current square of the king of color c
func (b *Board) KingSquare(c Color) Square {
	if assert.DEBUG {
		assert.Assert(b.pieceCount[MakePiece(c, King)] == 1, "Board KingSquare: no single king for color %s", c.String())
	}
	return b.kingSquare[c]
}

// PieceCount returns the number of pieces of the given piece on the board
func (b *Board) PieceCount(pc Piece) int {
	return b.pieceCount[pc]
}

// PieceTypeCount returns the number of pieces of the given type and color
func (b *Board) PieceTypeCount(c Color, pt PieceType) int {
	return b.pieceCount[MakePiece(c, pt)]
}

// StringBoard returns a visual matrix of the board and pieces
func (b *Board) StringBoard() string {
	var os strings.Builder
	os.WriteString("+---+---+---+---+---+---+---+---+\n")
	for r := Rank1; r <= Rank8; r++ {
		for f := FileA; f <= FileH; f++ {
			os.WriteString("| ")
			os.WriteString(b.squares[SquareOf(f, Rank8-r)].Char())
			os.WriteString(" ")
		}
		os.WriteString("|\n+---+---+---+---+---+---+---+---+\n")
	}
	return os.String()
}

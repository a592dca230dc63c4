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

package types

import (
	"fmt"
	"strings"
)

// MoveType is a set of constants for the four move types
//  Normal    MoveType = 0
//  Promotion MoveType = 1
//  EnPassant MoveType = 2
//  Castling  MoveType = 3
type MoveType uint8

// MoveType is a set of constants for the four move types
const (
	Normal    MoveType = 0
	Promotion MoveType = 1
	EnPassant MoveType = 2
	Castling  MoveType = 3
)

// IsValid checks if the move type is valid
func (mt MoveType) IsValid() bool {
	return mt < 4
}

var moveTypeToChar = "npec"

// String returns a single char string for the move type
func (mt MoveType) String() string {
	return string(moveTypeToChar[mt])
}

// Move is a 16 bit unsigned int type for encoding a chess move as a
// primitive data type. Equality of moves is equality of the encoded value.
//  MoveNone Move = 0
//  BITMAP 16-bit
//  1 1 1 1 1 1 0 0 0 0 0 0 0 0 0 0
//  5 4 3 2 1 0 9 8 7 6 5 4 3 2 1 0
//  --------------------------------
//                      1 1 1 1 1 1  to
//          1 1 1 1 1 1              from
//      1 1                          promotion piece type (pt-Knight => 0-3)
//  1 1                              move type
//
// Castling moves are encoded as king-from to rook-from which is
// unambiguous for standard chess and Chess960 alike.
type Move uint16

const (
	// MoveNone empty non valid move
	MoveNone Move = 0
)

// CreateMove returns an encoded Move instance
func CreateMove(from Square, to Square, t MoveType, promType PieceType) Move {
	if promType < Knight {
		promType = Knight
	}
	// promType will be reduced to 2 bits (4 values) Knight, Bishop, Rook, Queen
	// therefore we subtract the Knight value from the promType to get
	// a value between 0 and 3 (0b00 - 0b11)
	return Move(to) |
		Move(from)<<fromShift |
		Move(promType-Knight)<<promTypeShift |
		Move(t)<<typeShift
}

// MoveType returns the type of the move as defined in MoveType
// Normal, Promotion, EnPassant, Castling
func (m Move) MoveType() MoveType {
	return MoveType((m & moveTypeMask) >> typeShift)
}

// PromotionType returns the PieceType considered for promotion when
// move type is also MoveType.Promotion.
// Must be ignored when move type is not MoveType.Promotion.
func (m Move) PromotionType() PieceType {
	return PieceType((m&promTypeMask)>>promTypeShift) + Knight
}

// To returns the to-Square of the move
func (m Move) To() Square {
	return Square(m & toMask)
}

// From returns the from-Square of the move
func (m Move) From() Square {
	return Square((m & fromMask) >> fromShift)
}

// IsValid checks if the move has valid squares, promotion type and
// move type. MoveNone is not a valid move in this sense.
func (m Move) IsValid() bool {
	return m != MoveNone &&
		m.From().IsValid() &&
		m.To().IsValid() &&
		m.PromotionType().IsValid() &&
		m.MoveType().IsValid()
}

// String string representation of a move with debugging details
func (m Move) String() string {
	if m == MoveNone {
		return "Move: { MoveNone }"
	}
	return fmt.Sprintf("Move: { %-5s  type:%1s  prom:%1s  (%d) }",
		m.StringUci(), m.MoveType().String(), m.PromotionType().Char(), m)
}

// StringUci returns a string representation of the move which is UCI
// compatible for standard chess. Castling moves are rendered as the
// king moving to its final square (e.g. e1g1).
func (m Move) StringUci() string {
	if m == MoveNone {
		return "NoMove"
	}
	var os strings.Builder
	os.WriteString(m.From().String())
	if m.MoveType() == Castling {
		// internally castling is king-from to rook-from - standard UCI
		// wants the king's destination square
		os.WriteString(m.castlingKingTo().String())
	} else {
		os.WriteString(m.To().String())
	}
	if m.MoveType() == Promotion {
		os.WriteString(strings.ToLower(m.PromotionType().Char()))
	}
	return os.String()
}

// StringUci960 returns a string representation of the move in the UCI
// Chess960 convention where a castling move is rendered as the king
// capturing its own rook (e.g. e1h1).
func (m Move) StringUci960() string {
	if m == MoveNone {
		return "NoMove"
	}
	var os strings.Builder
	os.WriteString(m.From().String())
	os.WriteString(m.To().String())
	if m.MoveType() == Promotion {
		os.WriteString(strings.ToLower(m.PromotionType().Char()))
	}
	return os.String()
}

// castlingKingTo returns the king's destination square of a castling
// move. Kingside castling always ends on the g-file, queenside on the
// c-file of the king's back rank.
func (m Move) castlingKingTo() Square {
	r := m.From().RankOf()
	if m.To() > m.From() { // kingside - rook east of king
		return SquareOf(FileG, r)
	}
	return SquareOf(FileC, r)
}

/* @formatter:off
   BITMAP 16-bit
   1 1 1 1 1 1 0 0 0 0 0 0 0 0 0 0
   5 4 3 2 1 0 9 8 7 6 5 4 3 2 1 0
   --------------------------------
                       1 1 1 1 1 1  to
           1 1 1 1 1 1              from
       1 1                          promotion piece type (pt-Knight => 0-3)
   1 1                              move type
*/ // @formatter:on

const (
	fromShift     uint = 6
	promTypeShift uint = 12
	typeShift     uint = 14

	squareMask   Move = 0x3F
	toMask            = squareMask
	fromMask          = squareMask << fromShift
	promTypeMask Move = 3 << promTypeShift
	moveTypeMask Move = 3 << typeShift
)

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
	. "github.com/rudzen/chesslib/pkg/types"
)

// State is the per ply record of all position data which cannot be
// recomputed cheaply when a move is taken back. A state is pushed onto
// the position's state arena by DoMove and popped by UndoMove. The
// predecessor of the state at arena index i is the state at index i-1
// so no pointers are needed and the arena can be copied by value.
type State struct {
	// Zobrist keys of the position after the move leading to this state
	zobristKey  Key
	pawnKey     Key
	materialKey Key

	// the move that led to this state and the piece it captured
	// (PieceNone for non capturing moves)
	move          Move
	capturedPiece Piece

	castlingRights  CastlingRights
	enPassantSquare Square

	// half move clock for the 50 moves rule and the number of plies
	// since the last null move - both bound the repetition search
	halfMoveClock int
	pliesFromNull int

	// pieces of the opponent giving check to the side to move
	checkers Bitboard

	// blockersForKing[c] are pieces (of both colors) which block a
	// slider attack on the king of color c. Own blockers are pinned.
	// pinners[c] are the enemy sliders pinning against the king of
	// color c.
	blockersForKing [ColorLength]Bitboard
	pinners         [ColorLength]Bitboard

	// checkSquares[pt] are the squares from which a piece of type pt
	// of the side to move would give check to the enemy king
	checkSquares [PtLength]Bitboard

	// 0 when the position has not occurred before. Otherwise the
	// distance in plies to the equal predecessor state, negative when
	// that predecessor itself was already a repetition.
	repetition int
}

// maxHistory is the maximum number of states in the arena and
// therefore the maximal game length in plies which can be handled
const maxHistory int = MaxMoves

// CapturedPiece returns the piece captured by the move leading to this
// state or PieceNone
func (s *State) CapturedPiece() Piece {
	return s.capturedPiece
}

// Checkers returns the bitboard of all pieces giving check to the side
// to move in this state
func (s *State) Checkers() Bitboard {
	return s.checkers
}

// Repetition returns the repetition marker of this state (see State)
func (s *State) Repetition() int {
	return s.repetition
}

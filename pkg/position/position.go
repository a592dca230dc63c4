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

// Package position represents data structures and functions for a chess board
// and its position.
// It uses a 8x8 piece board and bitboards, a state arena for undo moves,
// zobrist keys for transposition tables and repetition detection and
// castling metadata which supports standard chess and Chess960.
//
// Create a new instance with NewPosition(...) with no parameters to get the
// chess start position.
package position

import (
	"fmt"
	"strings"

	"github.com/op/go-logging"

	"github.com/rudzen/chesslib/internal/assert"
	myLogging "github.com/rudzen/chesslib/internal/logging"
	"github.com/rudzen/chesslib/internal/util"
	. "github.com/rudzen/chesslib/pkg/types"
)

var log *logging.Logger

var initialized = false

// initialize package
func init() {
	if !initialized {
		initZobrist()
		initCuckoo()
		initialized = true
	}
}

const (
	// StartFen is a string with the fen position for a standard chess game
	StartFen string = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// Position
// This struct represents the chess board and its position.
// It uses a 8x8 piece board and bitboards, a state arena for undo moves,
// zobrist keys for transposition tables and repetition detection and
// castling metadata which supports standard chess and Chess960.
//
// Needs to be created with NewPosition() or NewPositionFen(fen)
type Position struct {

	// piece placement and bitboards
	board Board

	// Board state which is not covered by the state arena
	nextPlayer         Color
	nextHalfMoveNumber int
	chess960           bool

	// Castling metadata. The masks are indexed by square and give the
	// castling rights which are lost when a piece moves from or to the
	// square. The other arrays are indexed by the single castling right.
	castlingRightsMask [SqLength]CastlingRights
	castlingKingFrom   [ColorLength]Square
	castlingRookFrom   [CastlingRightsLength]Square
	castlingKingTo     [CastlingRightsLength]Square
	castlingRookTo     [CastlingRightsLength]Square
	castlingPath       [CastlingRightsLength]Bitboard
	kingPath           [CastlingRightsLength]Bitboard

	// Material values will always be up to date (kings excluded)
	material        [ColorLength]Value
	materialNonPawn [ColorLength]Value

	// state arena for undo and repetition detection
	historyCounter int
	history        [maxHistory]State
}

// st returns the current state of the position
func (p *Position) st() *State {
	return &p.history[p.historyCounter]
}

// //////////////////////////////////////////////////////
// // Public
// //////////////////////////////////////////////////////

// NewPosition creates a new position with the start position
func NewPosition() *Position {
	p, _ := NewPositionFen(StartFen)
	return p
}

// NewPositionFen creates a new position with the given fen string
// as board position.
// It returns nil and an error if the fen was invalid.
func NewPositionFen(fen string) (*Position, error) {
	if log == nil {
		log = myLogging.GetLog()
	}
	p := &Position{}
	if e := p.setupBoard(fen, false); e != nil {
		log.Errorf("fen for position setup not valid and position can't be created: %s", e)
		return nil, e
	}
	return p, nil
}

// NewPositionFen960 creates a new position from a fen string in
// Chess960 mode. Castling availability may use the file letters A-H
// and a-h and the position prints its fen with file letters.
// It returns nil and an error if the fen was invalid.
func NewPositionFen960(fen string) (*Position, error) {
	if log == nil {
		log = myLogging.GetLog()
	}
	p := &Position{}
	if e := p.setupBoard(fen, true); e != nil {
		log.Errorf("fen for position setup not valid and position can't be created: %s", e)
		return nil, e
	}
	return p, nil
}

// Copy returns a deep copy of the position. As the position does not
// contain any references this is a simple value copy. A copy shares no
// state with the original and can be used by another goroutine.
func (p *Position) Copy() *Position {
	c := *p
	return &c
}

// DoMove commits a move to the board. Due to performance there is no check if
// this move is legal on the current position. Legal check needs to be done
// beforehand. Usually the move will be generated by a MoveGenerator and
// filtered for legality anyway.
func (p *Position) DoMove(m Move) {
	fromSq := m.From()
	fromPc := p.board.GetPiece(fromSq)
	myColor := fromPc.ColorOf()
	toSq := m.To()

	if assert.DEBUG {
		assert.Assert(m.IsValid(), "Position DoMove: Invalid move %s", m.String())
		assert.Assert(fromPc != PieceNone, "Position DoMove: No piece on %s for move %s", fromSq.String(), m.StringUci())
		assert.Assert(myColor == p.nextPlayer, "Position DoMove: Piece to move does not belong to next player %s", fromPc.String())
		assert.Assert(p.historyCounter < maxHistory-1, "Position DoMove: Maximum game length exceeded")
	}

	// push a new state onto the arena - the predecessor state
	// stays untouched for undo
	prev := &p.history[p.historyCounter]
	p.historyCounter++
	st := &p.history[p.historyCounter]
	*st = *prev
	st.move = m
	st.capturedPiece = PieceNone
	st.halfMoveClock++
	st.pliesFromNull++
	st.repetition = 0

	// do move according to MoveType
	switch m.MoveType() {
	case Normal:
		p.doNormalMove(st, fromSq, toSq, fromPc, myColor)
	case Promotion:
		p.doPromotionMove(st, m, fromSq, toSq, fromPc, myColor)
	case EnPassant:
		p.doEnPassantMove(st, fromSq, toSq, fromPc, myColor)
	case Castling:
		p.doCastlingMove(st, fromSq, toSq, fromPc, myColor)
	}

	// update additional state info
	p.nextHalfMoveNumber++
	p.nextPlayer = p.nextPlayer.Flip()
	st.zobristKey ^= zobristBase.nextPlayer

	p.setCheckInfo(st)
	p.updateRepetition(st)
}

// UndoMove resets the position to a state before the last move has been made
func (p *Position) UndoMove() {
	if assert.DEBUG {
		assert.Assert(p.historyCounter > 0, "Position UndoMove: Cannot undo initial position")
	}

	st := &p.history[p.historyCounter]
	move := st.move
	p.nextHalfMoveNumber--
	p.nextPlayer = p.nextPlayer.Flip()
	us := p.nextPlayer

	// Undo piece move / restore board. Any zobrist updates of these
	// operations go to the state which is discarded below - the
	// predecessor state still holds the correct keys.
	switch move.MoveType() {
	case Normal:
		p.movePiece(move.To(), move.From())
		if st.capturedPiece != PieceNone {
			p.putPiece(st.capturedPiece, move.To())
		}
	case Promotion:
		p.removePiece(move.To())
		p.putPiece(MakePiece(us, Pawn), move.From())
		if st.capturedPiece != PieceNone {
			p.putPiece(st.capturedPiece, move.To())
		}
	case EnPassant:
		p.movePiece(move.To(), move.From())
		p.putPiece(st.capturedPiece, move.To().To(us.Flip().MoveDirection()))
	case Castling:
		cr := MakeCastlingRight(us, move.To() > move.From())
		p.removePiece(p.castlingKingTo[cr])
		p.removePiece(p.castlingRookTo[cr])
		p.putPiece(MakePiece(us, King), move.From())
		p.putPiece(MakePiece(us, Rook), move.To())
	}

	// pop the state - this restores keys, castling rights, en passant,
	// clocks and check info
	p.historyCounter--
}

// DoNullMove is used in Null Move Pruning. The position is basically
// unchanged but the next player changes. The state before the null move
// will be stored to the arena like for a normal move.
func (p *Position) DoNullMove() {
	prev := &p.history[p.historyCounter]
	p.historyCounter++
	st := &p.history[p.historyCounter]
	*st = *prev
	st.move = MoveNone
	st.capturedPiece = PieceNone
	st.halfMoveClock++
	st.pliesFromNull = 0
	st.repetition = 0
	p.clearEnPassant(st)
	p.nextHalfMoveNumber++
	p.nextPlayer = p.nextPlayer.Flip()
	st.zobristKey ^= zobristBase.nextPlayer
	p.setCheckInfo(st)
}

// UndoNullMove restores the state of the position to before the
// DoNullMove() call.
func (p *Position) UndoNullMove() {
	p.historyCounter--
	p.nextHalfMoveNumber--
	p.nextPlayer = p.nextPlayer.Flip()
}

// AttacksTo determines all pieces of both colors which attack or
// defend the given square on the given occupancy
func (p *Position) AttacksTo(sq Square, occupied Bitboard) Bitboard {
	return (GetPawnAttacks(Black, sq) & p.board.PiecesBb(White, Pawn)) |
		(GetPawnAttacks(White, sq) & p.board.PiecesBb(Black, Pawn)) |
		(GetAttacksBb(Knight, sq, occupied) & p.board.PiecesTypeBb(Knight)) |
		(GetAttacksBb(King, sq, occupied) & p.board.PiecesTypeBb(King)) |
		(GetAttacksBb(Rook, sq, occupied) & (p.board.PiecesTypeBb(Rook) | p.board.PiecesTypeBb(Queen))) |
		(GetAttacksBb(Bishop, sq, occupied) & (p.board.PiecesTypeBb(Bishop) | p.board.PiecesTypeBb(Queen)))
}

// IsAttacked checks if the given square is attacked by a piece
// of the given color.
func (p *Position) IsAttacked(sq Square, by Color) bool {
	return p.AttacksTo(sq, p.board.OccupiedAll())&p.board.OccupiedBb(by) != 0
}

// IsLegalMove tests if a pseudo legal move is legal on the current
// position - i.e. the king of the moving side is not left in check and
// a castling king does not cross an attacked square. The move must be
// pseudo legal for the position, otherwise the result is undefined.
// Other than a do/undo based test this inspects pin rays and attack
// bitboards and does not change the position.
func (p *Position) IsLegalMove(move Move) bool {
	us := p.nextPlayer
	them := us.Flip()
	fromSq := move.From()
	toSq := move.To()
	ksq := p.board.KingSquare(us)

	switch move.MoveType() {
	case EnPassant:
		// the only case where two pieces leave their rank at once -
		// replay the capture on the occupancy bitboard and check for
		// a revealed slider attack on the king
		capSq := toSq.To(us.Flip().MoveDirection())
		occ := (p.board.OccupiedAll() ^ fromSq.Bb() ^ capSq.Bb()) | toSq.Bb()
		return GetAttacksBb(Rook, ksq, occ)&(p.board.PiecesBb(them, Rook)|p.board.PiecesBb(them, Queen)) == 0 &&
			GetAttacksBb(Bishop, ksq, occ)&(p.board.PiecesBb(them, Bishop)|p.board.PiecesBb(them, Queen)) == 0

	case Castling:
		// castling is not allowed when in check and the king must not
		// cross or land on an attacked square
		if p.st().checkers != 0 {
			return false
		}
		cr := MakeCastlingRight(us, toSq > fromSq)
		path := p.kingPath[cr]
		for path != 0 {
			sq := path.PopLsb()
			if p.IsAttacked(sq, them) {
				return false
			}
		}
		// Chess960: the castling rook could have blocked a slider
		// attack on the king's destination square along the back rank
		if p.chess960 {
			occ := p.board.OccupiedAll() ^ toSq.Bb()
			if GetAttacksBb(Rook, p.castlingKingTo[cr], occ)&(p.board.PiecesBb(them, Rook)|p.board.PiecesBb(them, Queen)) != 0 {
				return false
			}
		}
		return true

	default:
		if fromSq == ksq {
			// king moves need an attack test with the king removed
			// from the occupancy to catch moves along a checking ray
			occ := p.board.OccupiedAll() ^ ksq.Bb()
			return p.AttacksTo(toSq, occ)&p.board.OccupiedBb(them) == 0
		}
		// non king moves are legal when the piece is not pinned or
		// moves along the pin ray
		return p.st().blockersForKing[us]&fromSq.Bb() == 0 ||
			Aligned(fromSq, toSq, ksq)
	}
}

// HasCheck returns true if the next player is threatened by a check
// (king is attacked). The checkers are pre-computed for each state so
// this is a simple lookup.
func (p *Position) HasCheck() bool {
	return p.st().checkers != 0
}

// IsCapturingMove determines if a move on this position is a capturing move
// incl. en passant but excl. castling (castling captures the own rook in
// the internal encoding)
func (p *Position) IsCapturingMove(move Move) bool {
	if move.MoveType() == Castling {
		return false
	}
	return p.board.OccupiedBb(p.nextPlayer.Flip()).Has(move.To()) || move.MoveType() == EnPassant
}

// GivesCheck determines if the given move will give check to the opponent
// of p.NextPlayer() and returns true if so.
func (p *Position) GivesCheck(move Move) bool {
	us := p.nextPlayer
	them := us.Flip()

	// opponents king square
	kingSq := p.board.KingSquare(them)

	// move details
	fromSq := move.From()
	toSq := move.To()
	fromPt := p.board.GetPiece(fromSq).TypeOf()
	epTargetSq := SqNone
	moveType := move.MoveType()

	switch moveType {
	case Promotion:
		// promotion moves - use new piece type
		fromPt = move.PromotionType()
	case Castling:
		// only the rook can give check after castling - also no
		// revealed check is possible as king and rook end up between
		// their own origin squares
		cr := MakeCastlingRight(us, toSq > fromSq)
		occ := (p.board.OccupiedAll() ^ fromSq.Bb() ^ toSq.Bb()) | p.castlingKingTo[cr].Bb() | p.castlingRookTo[cr].Bb()
		return GetAttacksBb(Rook, p.castlingRookTo[cr], occ).Has(kingSq)
	case EnPassant:
		// set en passant capture square
		epTargetSq = toSq.To(them.MoveDirection())
	}

	// quick test against the pre-computed check squares
	if fromPt != King && p.st().checkSquares[fromPt].Has(toSq) && moveType != Promotion {
		return true
	}

	// get all pieces to check occupied intermediate squares
	boardAfterMove := p.board.OccupiedAll()

	// adapt board by moving the piece on the bitboard
	boardAfterMove.PopSquare(fromSq)
	boardAfterMove.PushSquare(toSq)
	if moveType == EnPassant {
		boardAfterMove.PopSquare(epTargetSq)
	}

	// direct check by the (possibly promoted) piece
	switch fromPt {
	case Pawn:
		if GetPawnAttacks(us, toSq).Has(kingSq) {
			return true
		}
	case King:
	// ignore - the king can't give check directly
	default:
		if GetAttacksBb(fromPt, toSq, boardAfterMove).Has(kingSq) {
			return true
		}
	}

	// revealed checks - only rook, bishop and queen attacks can be
	// revealed. The en passant captured pawn can also reveal a check.
	// The piece bitboards still carry the mover on its from square so
	// it has to be masked out of the slider scans.
	switch {
	case GetAttacksBb(Bishop, kingSq, boardAfterMove)&(p.board.PiecesBb(us, Bishop)|p.board.PiecesBb(us, Queen))&^fromSq.Bb() != 0:
		return true
	case GetAttacksBb(Rook, kingSq, boardAfterMove)&(p.board.PiecesBb(us, Rook)|p.board.PiecesBb(us, Queen))&^fromSq.Bb() != 0:
		return true
	}

	// we did not find a check
	return false
}

// CheckRepetitions tests if the current position has been repeated at
// least reps times before in the state history. To detect a
// 3-fold repetition the given position must occur at least 2 times
// before: CheckRepetitions(2) checks for 3-fold repetition.
func (p *Position) CheckRepetitions(reps int) bool {
	st := p.st()
	counter := 0
	end := util.Min(st.halfMoveClock, st.pliesFromNull)
	for i := 4; i <= end; i += 2 {
		idx := p.historyCounter - i
		if idx < 0 {
			break
		}
		if p.history[idx].zobristKey == st.zobristKey {
			counter++
			if counter >= reps {
				return true
			}
		}
	}
	return false
}

// IsRepetition tests for a draw by repetition during search. ply is
// the distance of the current position to the search root. It returns
// true if the position repeats an earlier position after the root (the
// repetition distance is smaller than ply) or if this is at least its
// third occurrence (negative repetition marker).
func (p *Position) IsRepetition(ply int) bool {
	r := p.st().repetition
	return r != 0 && r < ply
}

// HasInsufficientMaterial returns true if no side has enough material to
// force a mate (does not exclude combination where a helpmate would be
// possible, e.g. the opponent needs to support a mate by mistake)
func (p *Position) HasInsufficientMaterial() bool {

	// no material - both sides have a bare king
	if p.material[White]+p.material[Black] == 0 {
		return true
	}

	// no more pawns
	if p.board.PiecesTypeBb(Pawn) == 0 {
		// one side has a king and a minor piece against a bare king
		// or both sides have a king and a minor piece each
		if p.materialNonPawn[White] < 400 && p.materialNonPawn[Black] < 400 {
			return true
		}
		// the weaker side has a minor piece against two knights
		if (p.materialNonPawn[White] == 2*Knight.ValueOf() && p.materialNonPawn[Black] <= Bishop.ValueOf()) ||
			(p.materialNonPawn[Black] == 2*Knight.ValueOf() && p.materialNonPawn[White] <= Bishop.ValueOf()) {
			return true
		}
		// two bishops draw against a bishop
		if (p.materialNonPawn[White] == 2*Bishop.ValueOf() && p.materialNonPawn[Black] == Bishop.ValueOf()) ||
			(p.materialNonPawn[Black] == 2*Bishop.ValueOf() && p.materialNonPawn[White] == Bishop.ValueOf()) {
			return true
		}
		// one side has two bishops - a mate can be forced
		if p.materialNonPawn[White] == 2*Bishop.ValueOf() || p.materialNonPawn[Black] == 2*Bishop.ValueOf() {
			return false
		}
		// two minor pieces against one draw, except when the stronger side has a bishop pair
		if (p.materialNonPawn[White] >= 2*Knight.ValueOf() && p.materialNonPawn[White] < 2*Bishop.ValueOf() &&
			p.materialNonPawn[Black] >= Knight.ValueOf() && p.materialNonPawn[Black] <= Bishop.ValueOf()) ||
			(p.materialNonPawn[Black] >= 2*Knight.ValueOf() && p.materialNonPawn[Black] < 2*Bishop.ValueOf() &&
				p.materialNonPawn[White] >= Knight.ValueOf() && p.materialNonPawn[White] <= Bishop.ValueOf()) {
			return true
		}
	}
	return false
}

// String returns a string representing the board instance. This
// includes the fen, a board matrix and the material values.
func (p *Position) String() string {
	var os strings.Builder
	os.WriteString(p.StringFen())
	os.WriteString("\n")
	os.WriteString(p.board.StringBoard())
	os.WriteString("\n")
	os.WriteString(fmt.Sprintf("Next Player    : %s\n", p.nextPlayer.String()))
	os.WriteString(fmt.Sprintf("Material White : %d\n", p.material[White]))
	os.WriteString(fmt.Sprintf("Material Black : %d\n", p.material[Black]))
	os.WriteString(fmt.Sprintf("Zobrist Key    : %d\n", p.st().zobristKey))
	return os.String()
}

// //////////////////////////////////////////////////////////
// Private
// //////////////////////////////////////////////////////////

func (p *Position) doNormalMove(st *State, fromSq Square, toSq Square, fromPc Piece, myColor Color) {
	targetPc := p.board.GetPiece(toSq)

	if assert.DEBUG {
		assert.Assert(targetPc.TypeOf() != King, "Position DoMove: King cannot be captured, target piece is %s", targetPc.String())
	}

	// If we still have castling rights and the move touches castling
	// squares then invalidate the corresponding castling right
	if st.castlingRights != CastlingNone {
		cr := p.castlingRightsMask[fromSq] | p.castlingRightsMask[toSq]
		if cr != CastlingNone {
			st.zobristKey ^= zobristBase.castlingRights[st.castlingRights] // out
			st.castlingRights.Remove(cr)
			st.zobristKey ^= zobristBase.castlingRights[st.castlingRights] // in
		}
	}
	p.clearEnPassant(st)
	if targetPc != PieceNone { // capture
		p.removePiece(toSq)
		st.capturedPiece = targetPc
		st.halfMoveClock = 0 // reset half move clock because of capture
	} else if fromPc.TypeOf() == Pawn {
		st.halfMoveClock = 0                   // reset half move clock because of pawn move
		if SquareDistance(fromSq, toSq) == 2 { // pawn double - set en passant
			// set the en passant target field - always one "behind" the
			// toSquare - but only if an enemy pawn could actually
			// capture en passant. Otherwise the key would differ from
			// the same position reached without the double step.
			epSq := toSq.To(myColor.Flip().MoveDirection())
			if GetPawnAttacks(myColor, epSq)&p.board.PiecesBb(myColor.Flip(), Pawn) != 0 {
				st.enPassantSquare = epSq
				st.zobristKey ^= zobristBase.enPassantFile[epSq.FileOf()] // in
			}
		}
	}
	p.movePiece(fromSq, toSq)
}

func (p *Position) doPromotionMove(st *State, m Move, fromSq Square, toSq Square, fromPc Piece, myColor Color) {
	if assert.DEBUG {
		assert.Assert(fromPc == MakePiece(myColor, Pawn), "Position DoMove: Move type promotion but from piece not pawn")
		assert.Assert(myColor.PromotionRankBb().Has(toSq), "Position DoMove: Promotion move but wrong rank")
	}
	targetPc := p.board.GetPiece(toSq)
	if targetPc != PieceNone { // capture
		p.removePiece(toSq)
		st.capturedPiece = targetPc
	}
	// a promotion can capture a rook and destroy a castling right
	if st.castlingRights != CastlingNone {
		cr := p.castlingRightsMask[fromSq] | p.castlingRightsMask[toSq]
		if cr != CastlingNone {
			st.zobristKey ^= zobristBase.castlingRights[st.castlingRights] // out
			st.castlingRights.Remove(cr)
			st.zobristKey ^= zobristBase.castlingRights[st.castlingRights] // in
		}
	}
	p.removePiece(fromSq)
	p.putPiece(MakePiece(myColor, m.PromotionType()), toSq)
	p.clearEnPassant(st)
	st.halfMoveClock = 0 // reset half move clock because of pawn move
}

func (p *Position) doEnPassantMove(st *State, fromSq Square, toSq Square, fromPc Piece, myColor Color) {
	capSq := toSq.To(myColor.Flip().MoveDirection())
	if assert.DEBUG {
		assert.Assert(fromPc == MakePiece(myColor, Pawn), "Position DoMove: Move type en passant but from piece not pawn")
		assert.Assert(st.enPassantSquare == toSq, "Position DoMove: EnPassant move type without en passant square")
		assert.Assert(p.board.GetPiece(capSq) == MakePiece(myColor.Flip(), Pawn), "Position DoMove: Captured en passant piece invalid")
	}
	st.capturedPiece = p.board.GetPiece(capSq)
	p.removePiece(capSq)
	p.movePiece(fromSq, toSq)
	p.clearEnPassant(st)
	// reset half move clock because of pawn move
	st.halfMoveClock = 0
}

func (p *Position) doCastlingMove(st *State, fromSq Square, toSq Square, fromPc Piece, myColor Color) {
	if assert.DEBUG {
		assert.Assert(fromPc == MakePiece(myColor, King), "Position DoMove: Move type castling but from piece not king")
		assert.Assert(p.board.GetPiece(toSq) == MakePiece(myColor, Rook), "Position DoMove: Castling to square has no own rook")
	}
	// castling is encoded as king-from to rook-from
	cr := MakeCastlingRight(myColor, toSq > fromSq)
	kingTo := p.castlingKingTo[cr]
	rookTo := p.castlingRookTo[cr]

	// remove both pieces first - in Chess960 the destination squares
	// may overlap with the origin squares
	p.removePiece(fromSq)
	p.removePiece(toSq)
	p.putPiece(MakePiece(myColor, King), kingTo)
	p.putPiece(MakePiece(myColor, Rook), rookTo)

	st.zobristKey ^= zobristBase.castlingRights[st.castlingRights] // out
	st.castlingRights.Remove(p.castlingRightsMask[fromSq])
	st.zobristKey ^= zobristBase.castlingRights[st.castlingRights] // in
	p.clearEnPassant(st)
}

// movePiece moves a piece and updates the zobrist keys of the
// current state
func (p *Position) movePiece(fromSq Square, toSq Square) {
	piece := p.board.GetPiece(fromSq)
	p.board.MovePiece(fromSq, toSq)
	st := p.st()
	st.zobristKey ^= zobristBase.pieces[piece][fromSq] ^ zobristBase.pieces[piece][toSq]
	if piece.TypeOf() == Pawn {
		st.pawnKey ^= zobristBase.pieces[piece][fromSq] ^ zobristBase.pieces[piece][toSq]
	}
}

// putPiece puts a piece on the board and updates the zobrist keys of
// the current state and the material counters
func (p *Position) putPiece(piece Piece, square Square) {
	p.board.PutPiece(piece, square)
	st := p.st()
	st.zobristKey ^= zobristBase.pieces[piece][square]
	pieceType := piece.TypeOf()
	if pieceType == Pawn {
		st.pawnKey ^= zobristBase.pieces[piece][square]
	}
	// the material key hashes (piece, count) pairs
	st.materialKey ^= zobristBase.pieces[piece][p.board.pieceCount[piece]-1]
	color := piece.ColorOf()
	if pieceType != King {
		p.material[color] += pieceType.ValueOf()
		if pieceType > Pawn {
			p.materialNonPawn[color] += pieceType.ValueOf()
		}
	}
}

// removePiece removes a piece from the board and updates the zobrist
// keys of the current state and the material counters
func (p *Position) removePiece(square Square) Piece {
	piece := p.board.GetPiece(square)
	st := p.st()
	st.materialKey ^= zobristBase.pieces[piece][p.board.pieceCount[piece]-1]
	p.board.RemovePiece(square)
	st.zobristKey ^= zobristBase.pieces[piece][square]
	pieceType := piece.TypeOf()
	if pieceType == Pawn {
		st.pawnKey ^= zobristBase.pieces[piece][square]
	}
	color := piece.ColorOf()
	if pieceType != King {
		p.material[color] -= pieceType.ValueOf()
		if pieceType > Pawn {
			p.materialNonPawn[color] -= pieceType.ValueOf()
		}
	}
	return piece
}

func (p *Position) clearEnPassant(st *State) {
	if st.enPassantSquare != SqNone {
		st.zobristKey ^= zobristBase.enPassantFile[st.enPassantSquare.FileOf()] // out
		st.enPassantSquare = SqNone
	}
}

// setCheckInfo computes checkers, blockers/pinners and check squares
// for the current state
func (p *Position) setCheckInfo(st *State) {
	us := p.nextPlayer
	them := us.Flip()
	occ := p.board.OccupiedAll()

	st.checkers = p.AttacksTo(p.board.KingSquare(us), occ) & p.board.OccupiedBb(them)

	st.blockersForKing[White] = p.sliderBlockers(Black, p.board.KingSquare(White), &st.pinners[White])
	st.blockersForKing[Black] = p.sliderBlockers(White, p.board.KingSquare(Black), &st.pinners[Black])

	// squares from which a piece of the side to move would give check
	eksq := p.board.KingSquare(them)
	st.checkSquares[Pawn] = GetPawnAttacks(them, eksq)
	st.checkSquares[Knight] = GetAttacksBb(Knight, eksq, occ)
	st.checkSquares[Bishop] = GetAttacksBb(Bishop, eksq, occ)
	st.checkSquares[Rook] = GetAttacksBb(Rook, eksq, occ)
	st.checkSquares[Queen] = st.checkSquares[Bishop] | st.checkSquares[Rook]
	st.checkSquares[King] = BbZero
}

// sliderBlockers computes all pieces which block a slider attack of
// the given color on the given square. A blocker of the king's own
// color is a pinned piece. pinners receives the sliders which pin.
func (p *Position) sliderBlockers(sliderColor Color, sq Square, pinners *Bitboard) Bitboard {
	blockers := BbZero
	*pinners = BbZero

	// snipers are sliders which would attack the square if the
	// board was empty
	snipers := (GetPseudoAttacks(Rook, sq) & (p.board.PiecesBb(sliderColor, Rook) | p.board.PiecesBb(sliderColor, Queen))) |
		(GetPseudoAttacks(Bishop, sq) & (p.board.PiecesBb(sliderColor, Bishop) | p.board.PiecesBb(sliderColor, Queen)))
	occupancy := p.board.OccupiedAll() &^ snipers
	ownColor := sliderColor.Flip()

	for snipers != 0 {
		sniperSq := snipers.PopLsb()
		b := Intermediate(sq, sniperSq) & occupancy
		if b != BbZero && !b.MoreThanOne() {
			blockers |= b
			if b&p.board.OccupiedBb(ownColor) != 0 {
				pinners.PushSquare(sniperSq)
			}
		}
	}
	return blockers
}

// updateRepetition walks the state chain backwards in steps of two
// plies and marks the current state when an equal key is found. The
// sign of the marker is inherited from the matching predecessor to
// distinguish first repetitions from repeated repetitions.
func (p *Position) updateRepetition(st *State) {
	st.repetition = 0
	end := util.Min(st.halfMoveClock, st.pliesFromNull)
	if end < 4 {
		return
	}
	for i := 4; i <= end; i += 2 {
		idx := p.historyCounter - i
		if idx < 0 {
			return
		}
		stp := &p.history[idx]
		if stp.zobristKey == st.zobristKey {
			if stp.repetition != 0 {
				st.repetition = -i
			} else {
				st.repetition = i
			}
			return
		}
	}
}

// //////////////////////////////////////////////////////
// // Getter and Setter functions
// //////////////////////////////////////////////////////

// ZobristKey returns the current zobrist key for this position
func (p *Position) ZobristKey() Key {
	return p.st().zobristKey
}

// PawnKey returns the current zobrist key of the pawn structure
func (p *Position) PawnKey() Key {
	return p.st().pawnKey
}

// MaterialKey returns the current zobrist key of the material
// distribution
func (p *Position) MaterialKey() Key {
	return p.st().materialKey
}

// NextPlayer returns the next player as Color for the position
func (p *Position) NextPlayer() Color {
	return p.nextPlayer
}

// IsChess960 returns true when the position was created in
// Chess960 mode
func (p *Position) IsChess960() bool {
	return p.chess960
}

// GetPiece returns the piece on the given square. Empty
// squares are initialized with PieceNone and return the same.
func (p *Position) GetPiece(sq Square) Piece {
	return p.board.GetPiece(sq)
}

// PiecesBb returns the Bitboard for the given piece type of the given color
func (p *Position) PiecesBb(c Color, pt PieceType) Bitboard {
	return p.board.PiecesBb(c, pt)
}

// OccupiedAll returns a Bitboard of all pieces currently on the board
func (p *Position) OccupiedAll() Bitboard {
	return p.board.OccupiedAll()
}

// OccupiedBb returns a Bitboard of all pieces of Color c
func (p *Position) OccupiedBb(c Color) Bitboard {
	return p.board.OccupiedBb(c)
}

// GetEnPassantSquare returns the en passant square or SqNone if not set
func (p *Position) GetEnPassantSquare() Square {
	return p.st().enPassantSquare
}

// CastlingRights returns the castling rights instance of the position
func (p *Position) CastlingRights() CastlingRights {
	return p.st().castlingRights
}

// CastlingRookSquare returns the origin square of the rook for the
// given single castling right
func (p *Position) CastlingRookSquare(cr CastlingRights) Square {
	return p.castlingRookFrom[cr]
}

// CastlingKingSquare returns the origin square of the king of the
// given color used for castling
func (p *Position) CastlingKingSquare(c Color) Square {
	return p.castlingKingFrom[c]
}

// CastlingPath returns the squares which must be empty for the given
// single castling right
func (p *Position) CastlingPath(cr CastlingRights) Bitboard {
	return p.castlingPath[cr]
}

// KingSquare returns the current square of the king of color c
func (p *Position) KingSquare(c Color) Square {
	return p.board.KingSquare(c)
}

// HalfMoveClock returns the positions half move clock
func (p *Position) HalfMoveClock() int {
	return p.st().halfMoveClock
}

// PliesFromNull returns the number of plies since the last null move
func (p *Position) PliesFromNull() int {
	return p.st().pliesFromNull
}

// Checkers returns the bitboard of all pieces of the opponent
// currently giving check to the side to move
func (p *Position) Checkers() Bitboard {
	return p.st().checkers
}

// BlockersForKing returns all pieces blocking a slider attack on the
// king of the given color. Blockers of the king's own color are
// pinned pieces.
func (p *Position) BlockersForKing(c Color) Bitboard {
	return p.st().blockersForKing[c]
}

// Pinners returns the sliders pinning a piece against the king of the
// given color
func (p *Position) Pinners(c Color) Bitboard {
	return p.st().pinners[c]
}

// CheckSquares returns the squares from which a piece of the given
// type of the side to move would give check to the enemy king
func (p *Position) CheckSquares(pt PieceType) Bitboard {
	return p.st().checkSquares[pt]
}

// Material returns the material value for the given color on this
// position (kings excluded)
func (p *Position) Material(c Color) Value {
	return p.material[c]
}

// MaterialNonPawn returns the non pawn material value for the
// given color
func (p *Position) MaterialNonPawn(c Color) Value {
	return p.materialNonPawn[c]
}

// LastMove returns the last move made on the position or
// MoveNone if the position has no history of earlier moves.
func (p *Position) LastMove() Move {
	if p.historyCounter <= 0 {
		return MoveNone
	}
	return p.st().move
}

// LastCapturedPiece returns the captured piece of the last
// move made on the position or PieceNone if the move was
// non-capturing or the position has no history of earlier moves.
func (p *Position) LastCapturedPiece() Piece {
	if p.historyCounter <= 0 {
		return PieceNone
	}
	return p.st().capturedPiece
}

// WasCapturingMove returns true if the last move was
// a capturing move.
func (p *Position) WasCapturingMove() bool {
	return p.LastCapturedPiece() != PieceNone
}

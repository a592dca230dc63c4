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

// Package movegen contains functionality to create moves on a
// chess position. It implements staged generation of pseudo legal
// moves (captures, quiets, quiet checks, evasions, non evasions) and
// filtering for legal moves.
package movegen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/op/go-logging"

	myLogging "github.com/rudzen/chesslib/internal/logging"
	"github.com/rudzen/chesslib/pkg/moveslice"
	"github.com/rudzen/chesslib/pkg/position"
	. "github.com/rudzen/chesslib/pkg/types"
)

var log *logging.Logger

// GenMode generation modes for the move generator
type GenMode int8

// GenMode generation modes for the move generator
const (
	// GenCaptures generates all capturing moves and all promotions
	GenCaptures GenMode = iota
	// GenQuiets generates all non capturing moves except promotions
	GenQuiets
	// GenQuietChecks generates all quiet moves which give check
	GenQuietChecks
	// GenEvasions generates all moves when the side to move is in check
	GenEvasions
	// GenNonEvasions generates all moves when the side to move is not in check
	GenNonEvasions
	// GenAll generates evasions or non evasions depending on the check
	// status of the position
	GenAll
)

// Movegen data structure. Create new move generator via
//  movegen.NewMoveGen()
// Each instance has its own scratch move lists and must not be shared
// between goroutines.
type Movegen struct {
	pseudoLegalMoves *moveslice.MoveSlice
	legalMoves       *moveslice.MoveSlice
}

// //////////////////////////////////////////////////////
// // Public
// //////////////////////////////////////////////////////

// NewMoveGen creates a new instance of a move generator
func NewMoveGen() *Movegen {
	if log == nil {
		log = myLogging.GetLog()
	}
	return &Movegen{
		pseudoLegalMoves: moveslice.NewMoveSlice(MaxMoves),
		legalMoves:       moveslice.NewMoveSlice(MaxMoves),
	}
}

// GeneratePseudoLegalMoves generates pseudo legal moves for the next
// player. Does not check if the king is left in check or if a castling
// king passes an attacked square.
// The returned move list is owned by the move generator and is only
// valid until the next generation call.
func (mg *Movegen) GeneratePseudoLegalMoves(p *position.Position, mode GenMode) *moveslice.MoveSlice {
	mg.pseudoLegalMoves.Clear()
	mg.generate(p, mode, mg.pseudoLegalMoves)
	return mg.pseudoLegalMoves
}

// GenerateLegalMoves generates legal moves for the next player.
// Uses GeneratePseudoLegalMoves and filters out illegal moves.
// The returned move list is owned by the move generator and is only
// valid until the next generation call.
func (mg *Movegen) GenerateLegalMoves(p *position.Position, mode GenMode) *moveslice.MoveSlice {
	mg.legalMoves.Clear()
	mg.GeneratePseudoLegalMoves(p, mode)
	mg.pseudoLegalMoves.FilterCopy(mg.legalMoves, func(i int) bool {
		return p.IsLegalMove(mg.pseudoLegalMoves.At(i))
	})
	return mg.legalMoves
}

// HasLegalMove determines if the position has at least one legal move.
// Together with the check status this derives mate and stalemate.
func (mg *Movegen) HasLegalMove(p *position.Position) bool {
	ml := mg.GeneratePseudoLegalMoves(p, GenAll)
	for _, m := range *ml {
		if p.IsLegalMove(m) {
			return true
		}
	}
	return false
}

// Regex for UCI notation (UCI)
var regexUciMove = regexp.MustCompile("^([a-h][1-8][a-h][1-8])([NBRQnbrq])?$")

// GetMoveFromUci generates all legal moves and matches the given UCI
// move string against them. If there is a match the actual move is
// returned. Otherwise MoveNone and an error is returned.
// Castling must be given as king-to-final-king-square in standard mode
// (e.g. e1g1) and as king-to-rook-square in Chess960 mode.
//
// As this uses string creation and comparison this is not very
// efficient. Use only when performance is not critical.
func (mg *Movegen) GetMoveFromUci(p *position.Position, uciMove string) (Move, error) {
	matches := regexUciMove.FindStringSubmatch(uciMove)
	if matches == nil {
		return MoveNone, fmt.Errorf("invalid move: uci move string malformed: %s", uciMove)
	}

	// we allow lower case promotion letters
	// not really UCI but many input files have this wrong
	moveString := matches[1] + strings.ToLower(matches[2])

	// check against all legal moves on position
	mg.GenerateLegalMoves(p, GenAll)
	for _, m := range *mg.legalMoves {
		var s string
		if p.IsChess960() {
			s = m.StringUci960()
		} else {
			s = m.StringUci()
		}
		if s == moveString {
			// move found
			return m, nil
		}
	}
	// move not found
	log.Warningf("uci move %s is not a legal move on position %s", uciMove, p.StringFen())
	return MoveNone, fmt.Errorf("invalid move: %s is not legal on position %s", uciMove, p.StringFen())
}

// ValidateMove validates if a move is a legal move on the given position
func (mg *Movegen) ValidateMove(p *position.Position, move Move) bool {
	if move == MoveNone {
		return false
	}
	ml := mg.GenerateLegalMoves(p, GenAll)
	return ml.Contains(move)
}

// String returns a string representation of a MoveGen instance
func (mg *Movegen) String() string {
	return fmt.Sprintf("MoveGen: { last generated: pseudo legal %d, legal %d }",
		mg.pseudoLegalMoves.Len(), mg.legalMoves.Len())
}

// //////////////////////////////////////////////////////
// // Private
// //////////////////////////////////////////////////////

// generate dispatches to the generation stages by mode
func (mg *Movegen) generate(p *position.Position, mode GenMode, ml *moveslice.MoveSlice) {
	switch mode {
	case GenAll:
		if p.HasCheck() {
			mg.generateEvasions(p, ml)
		} else {
			mg.generate(p, GenNonEvasions, ml)
		}
	case GenEvasions:
		mg.generateEvasions(p, ml)
	case GenNonEvasions:
		us := p.NextPlayer()
		target := ^p.OccupiedBb(us)
		mg.generatePawnMoves(p, ml, true, true, BbAll, false)
		mg.generatePieceMoves(p, ml, target, false)
		mg.generateKingMoves(p, ml, target, false)
		mg.generateCastling(p, ml)
	case GenCaptures:
		them := p.NextPlayer().Flip()
		target := p.OccupiedBb(them)
		mg.generatePawnMoves(p, ml, true, false, BbAll, false)
		mg.generatePieceMoves(p, ml, target, false)
		mg.generateKingMoves(p, ml, target, false)
	case GenQuiets:
		target := ^p.OccupiedAll()
		mg.generatePawnMoves(p, ml, false, true, BbAll, false)
		mg.generatePieceMoves(p, ml, target, false)
		mg.generateKingMoves(p, ml, target, false)
		mg.generateCastling(p, ml)
	case GenQuietChecks:
		target := ^p.OccupiedAll()
		mg.generatePawnMoves(p, ml, false, true, BbAll, true)
		mg.generatePieceMoves(p, ml, target, true)
		mg.generateKingMoves(p, ml, target, true)
	}
}

// generateEvasions generates all moves which can resolve a check:
// king moves, captures of a single checker and blocks of a single
// sliding checker. On double check only king moves are generated.
func (mg *Movegen) generateEvasions(p *position.Position, ml *moveslice.MoveSlice) {
	us := p.NextPlayer()
	ksq := p.KingSquare(us)
	checkers := p.Checkers()

	// evasions are only defined when the side to move is in check
	if checkers == 0 {
		return
	}

	// king moves to any square not occupied by our own pieces - the
	// legality filter removes moves to attacked squares including
	// moves along the checking ray
	kingMoves := GetPseudoAttacks(King, ksq) &^ p.OccupiedBb(us)
	for kingMoves != 0 {
		toSq := kingMoves.PopLsb()
		ml.PushBack(CreateMove(ksq, toSq, Normal, PtNone))
	}

	// on double check only the king can move
	if checkers.MoreThanOne() {
		return
	}

	// single checker: capture it or block the ray of a slider
	checkerSq := checkers.Lsb()
	blockSquares := Intermediate(ksq, checkerSq)

	mg.generatePawnMoves(p, ml, true, true, checkers|blockSquares, false)
	mg.generatePieceMoves(p, ml, checkers|blockSquares, false)
}

// generatePawnMoves generates pawn moves.
// doCaptures generates captures, en passant and all promotions.
// doQuiets generates single and double pushes (no promotions).
// evasionMask restricts the destination squares (BbAll when not
// generating evasions).
// onlyChecks restricts quiet moves to checking moves.
func (mg *Movegen) generatePawnMoves(p *position.Position, ml *moveslice.MoveSlice,
	doCaptures bool, doQuiets bool, evasionMask Bitboard, onlyChecks bool) {

	us := p.NextPlayer()
	them := us.Flip()
	myPawns := p.PiecesBb(us, Pawn)
	enemies := p.OccupiedBb(them)
	occupied := p.OccupiedAll()
	up := us.MoveDirection()
	promoRank := us.PromotionRankBb()

	// This algorithm shifts the own pawn bitboard in the direction of
	// pawn captures or pushes and ANDs it with the target squares.
	// The from square is recovered by the reverse shift.

	if doCaptures {
		for _, side := range []Direction{West, East} {
			back := -(up + side)
			captures := ShiftBitboard(myPawns, up+side) & enemies & evasionMask
			// promotion captures
			promCaptures := captures & promoRank
			for promCaptures != 0 {
				toSq := promCaptures.PopLsb()
				fromSq := toSq.To(back)
				ml.PushBack(CreateMove(fromSq, toSq, Promotion, Queen))
				ml.PushBack(CreateMove(fromSq, toSq, Promotion, Rook))
				ml.PushBack(CreateMove(fromSq, toSq, Promotion, Bishop))
				ml.PushBack(CreateMove(fromSq, toSq, Promotion, Knight))
			}
			// non promotion captures
			captures &^= promoRank
			for captures != 0 {
				toSq := captures.PopLsb()
				ml.PushBack(CreateMove(toSq.To(back), toSq, Normal, PtNone))
			}
		}

		// en passant captures
		epSq := p.GetEnPassantSquare()
		if epSq != SqNone {
			capSq := epSq.To(them.MoveDirection())
			// when evading a check the en passant capture only helps
			// when the captured pawn is the checker
			if evasionMask == BbAll || p.Checkers().Has(capSq) {
				attackers := GetPawnAttacks(them, epSq) & myPawns
				for attackers != 0 {
					fromSq := attackers.PopLsb()
					ml.PushBack(CreateMove(fromSq, epSq, EnPassant, PtNone))
				}
			}
		}

		// promotions by pushing - they belong to the capture stage as
		// they change material
		promPushes := ShiftBitboard(myPawns, up) & ^occupied & promoRank & evasionMask
		for promPushes != 0 {
			toSq := promPushes.PopLsb()
			fromSq := toSq.To(-up)
			ml.PushBack(CreateMove(fromSq, toSq, Promotion, Queen))
			ml.PushBack(CreateMove(fromSq, toSq, Promotion, Rook))
			ml.PushBack(CreateMove(fromSq, toSq, Promotion, Bishop))
			ml.PushBack(CreateMove(fromSq, toSq, Promotion, Knight))
		}
	}

	if doQuiets {
		// pawns - step one to unoccupied squares
		singles := ShiftBitboard(myPawns, up) & ^occupied
		// pawns - step two to unoccupied squares when the single step
		// ended on the double push rank
		doubles := ShiftBitboard(singles&us.PawnDoubleRank(), up) & ^occupied & evasionMask
		singles &= ^promoRank & evasionMask

		if onlyChecks {
			singles &= mg.pawnCheckMask(p, singles, up)
			doubles &= mg.pawnCheckMask(p, doubles, up)
		}

		for singles != 0 {
			toSq := singles.PopLsb()
			ml.PushBack(CreateMove(toSq.To(-up), toSq, Normal, PtNone))
		}
		for doubles != 0 {
			toSq := doubles.PopLsb()
			ml.PushBack(CreateMove(toSq.To(-up).To(-up), toSq, Normal, PtNone))
		}
	}
}

// pawnCheckMask reduces the given pawn push destinations to those
// which give check - directly or as a discovered check
func (mg *Movegen) pawnCheckMask(p *position.Position, pushes Bitboard, up Direction) Bitboard {
	us := p.NextPlayer()
	them := us.Flip()
	eksq := p.KingSquare(them)
	mask := p.CheckSquares(Pawn)
	// pawns which block a slider attack on the enemy king give a
	// discovered check when they leave the ray - a pawn push stays on
	// its file so pawns on the king's file are excluded
	dcCandidates := p.BlockersForKing(them) & p.PiecesBb(us, Pawn) &^ eksq.FileOf().Bb()
	mask |= ShiftBitboard(dcCandidates, up)
	if us.PawnDoubleRank() == Rank3_Bb { // white
		mask |= ShiftBitboard(ShiftBitboard(dcCandidates, up)&Rank3_Bb, up)
	} else {
		mask |= ShiftBitboard(ShiftBitboard(dcCandidates, up)&Rank6_Bb, up)
	}
	return mask
}

// generatePieceMoves generates knight, bishop, rook and queen moves
// to the given target squares using the pre-computed magic attacks
func (mg *Movegen) generatePieceMoves(p *position.Position, ml *moveslice.MoveSlice, target Bitboard, onlyChecks bool) {
	us := p.NextPlayer()
	them := us.Flip()
	eksq := p.KingSquare(them)
	occupied := p.OccupiedAll()

	for pt := Knight; pt <= Queen; pt++ {
		pieces := p.PiecesBb(us, pt)
		for pieces != 0 {
			fromSq := pieces.PopLsb()
			moves := GetAttacksBb(pt, fromSq, occupied) & target
			if onlyChecks {
				if p.BlockersForKing(them)&fromSq.Bb() != 0 {
					// discovered check candidate - every move off the
					// king ray checks, moves on the ray only when they
					// check directly
					moves = (moves &^ LineOf(eksq, fromSq)) | (moves & p.CheckSquares(pt))
				} else {
					// only moves to direct checking squares remain
					moves &= p.CheckSquares(pt)
				}
			}
			for moves != 0 {
				toSq := moves.PopLsb()
				ml.PushBack(CreateMove(fromSq, toSq, Normal, PtNone))
			}
		}
	}
}

// generateKingMoves generates normal king moves to the given target
// squares. For quiet checks only discovered checks by the king are
// possible.
func (mg *Movegen) generateKingMoves(p *position.Position, ml *moveslice.MoveSlice, target Bitboard, onlyChecks bool) {
	us := p.NextPlayer()
	them := us.Flip()
	fromSq := p.KingSquare(us)
	moves := GetPseudoAttacks(King, fromSq) & target

	if onlyChecks {
		// the king itself cannot give check - only leaving a slider
		// ray on the enemy king can
		if p.BlockersForKing(them)&fromSq.Bb() == 0 {
			return
		}
		eksq := p.KingSquare(them)
		filtered := BbZero
		for m := moves; m != 0; {
			toSq := m.PopLsb()
			if !Aligned(fromSq, toSq, eksq) {
				filtered.PushSquare(toSq)
			}
		}
		moves = filtered
	}

	for moves != 0 {
		toSq := moves.PopLsb()
		ml.PushBack(CreateMove(fromSq, toSq, Normal, PtNone))
	}
}

// generateCastling generates pseudo castling moves - the rights must
// be present and the castling path must be free. Attacks on the king's
// path are checked by the legality filter.
func (mg *Movegen) generateCastling(p *position.Position, ml *moveslice.MoveSlice) {
	us := p.NextPlayer()
	occupied := p.OccupiedAll()
	rights := p.CastlingRights()

	for _, kingside := range []bool{true, false} {
		cr := MakeCastlingRight(us, kingside)
		if !rights.Has(cr) {
			continue
		}
		if p.CastlingPath(cr)&occupied != 0 {
			continue
		}
		// castling is encoded as king-from to rook-from
		ml.PushBack(CreateMove(p.CastlingKingSquare(us), p.CastlingRookSquare(cr), Castling, PtNone))
	}
}

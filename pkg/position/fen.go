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
	"errors"
	"fmt"
	"strconv"
	"strings"

	. "github.com/rudzen/chesslib/pkg/types"
)

// ErrInvalidFen is the sentinel error wrapped by all errors returned
// from fen parsing. Use errors.Is(err, ErrInvalidFen) to test for it.
var ErrInvalidFen = errors.New("invalid fen")

func fenError(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidFen, fmt.Sprintf(format, a...))
}

// StringFen returns a string with the FEN of the current position
func (p *Position) StringFen() string {
	return p.fen()
}

// setupBoard sets up a board based on a fen. This is basically
// the only way to get a valid Position instance. Internal state
// will be set up as well as all struct data is initialized to 0.
// The target position is never left in a half mutated state - any
// error aborts the construction as a whole.
func (p *Position) setupBoard(fen string, chess960 bool) error {

	p.chess960 = chess960
	st := p.st()
	st.enPassantSquare = SqNone
	for i := range p.castlingRookFrom {
		p.castlingRookFrom[i] = SqNone
		p.castlingKingTo[i] = SqNone
		p.castlingRookTo[i] = SqNone
	}
	p.castlingKingFrom[White] = SqNone
	p.castlingKingFrom[Black] = SqNone

	fenParts := strings.Fields(strings.TrimSpace(fen))
	if len(fenParts) == 0 {
		return fenError("fen must not be empty")
	}

	// piece placement
	// fen starts at a8 and runs to h1 with / separating the ranks
	if e := p.setupPiecePlacement(fenParts[0]); e != nil {
		return e
	}

	// set defaults - everything below is optional as we can apply defaults
	p.nextHalfMoveNumber = 1
	p.nextPlayer = White

	// next player
	if len(fenParts) >= 2 {
		switch fenParts[1] {
		case "w":
			p.nextPlayer = White
		case "b":
			p.nextPlayer = Black
			st.zobristKey ^= zobristBase.nextPlayer
			p.nextHalfMoveNumber++
		default:
			return fenError("next player field invalid: %s", fenParts[1])
		}
	}

	// castling rights - the key always carries a castling term so
	// that positions parsed without the optional fields hash like
	// positions reached by play
	if len(fenParts) >= 3 {
		if e := p.setupCastlingRights(fenParts[2]); e != nil {
			return e
		}
	}
	st.zobristKey ^= zobristBase.castlingRights[st.castlingRights]

	// en passant
	if len(fenParts) >= 4 {
		if e := p.setupEnPassant(fenParts[3]); e != nil {
			return e
		}
	}

	// half move clock (50 moves rule)
	if len(fenParts) >= 5 {
		number, e := strconv.Atoi(fenParts[4])
		if e != nil || number < 0 {
			return fenError("half move clock invalid: %s", fenParts[4])
		}
		st.halfMoveClock = number
	}

	// move number
	if len(fenParts) >= 6 {
		// game move number - to be converted into next half move number (ply)
		moveNumber, e := strconv.Atoi(fenParts[5])
		if e != nil || moveNumber < 0 {
			return fenError("move number invalid: %s", fenParts[5])
		}
		if moveNumber == 0 {
			moveNumber = 1
		}
		p.nextHalfMoveNumber = 2*moveNumber - (1 - int(p.nextPlayer))
	}

	// the king of the side not to move may not be in check - this also
	// covers "both sides in check" which no legal game can reach
	them := p.nextPlayer.Flip()
	if p.IsAttacked(p.board.KingSquare(them), p.nextPlayer) {
		return fenError("king of side not to move is in check")
	}

	p.setCheckInfo(st)
	return nil
}

func (p *Position) setupPiecePlacement(placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fenError("piece placement has %d ranks instead of 8", len(ranks))
	}
	for i, rankStr := range ranks {
		rank := Rank(7 - i)
		file := 0
		lastWasDigit := false
		for _, c := range rankStr {
			if c >= '1' && c <= '8' {
				if lastWasDigit {
					return fenError("consecutive digits in rank: %s", rankStr)
				}
				file += int(c - '0')
				lastWasDigit = true
				continue
			}
			lastWasDigit = false
			piece := PieceFromChar(string(c))
			if piece == PieceNone {
				return fenError("invalid piece character: %s", string(c))
			}
			if file > 7 {
				return fenError("more than 8 files in rank: %s", rankStr)
			}
			if piece.TypeOf() == Pawn && (rank == Rank1 || rank == Rank8) {
				return fenError("pawn on rank %s", rank.String())
			}
			p.putPiece(piece, SquareOf(File(file), rank))
			file++
		}
		if file != 8 {
			return fenError("rank %s has %d files instead of 8", rank.String(), file)
		}
	}
	if p.board.PieceCount(WhiteKing) != 1 || p.board.PieceCount(BlackKing) != 1 {
		return fenError("positions need exactly one king per side")
	}
	return nil
}

func (p *Position) setupCastlingRights(rights string) error {
	if rights == "-" {
		return nil
	}
	if len(rights) > 4 {
		return fenError("castling rights field too long: %s", rights)
	}
	for _, c := range rights {
		var color Color
		var rookFrom Square
		switch {
		case c == 'K' || c == 'Q':
			color = White
			rookFrom = p.findCastlingRook(White, c == 'K')
		case c == 'k' || c == 'q':
			color = Black
			rookFrom = p.findCastlingRook(Black, c == 'k')
		case c >= 'A' && c <= 'H':
			color = White
			rookFrom = SquareOf(File(c-'A'), Rank1)
		case c >= 'a' && c <= 'h':
			color = Black
			rookFrom = SquareOf(File(c-'a'), Rank8)
		default:
			return fenError("castling rights contain invalid character: %s", string(c))
		}
		kingFrom := p.board.KingSquare(color)
		backRank := Rank1
		if color == Black {
			backRank = Rank8
		}
		if kingFrom.RankOf() != backRank {
			return fenError("castling right %s without king on back rank", string(c))
		}
		if rookFrom == SqNone || p.board.GetPiece(rookFrom) != MakePiece(color, Rook) {
			return fenError("castling right %s without the requisite rook", string(c))
		}
		p.setCastlingRight(color, rookFrom)
	}
	return nil
}

// findCastlingRook returns the outermost rook on the castling side of
// the king as defined by X-FEN or SqNone if there is no rook
func (p *Position) findCastlingRook(c Color, kingside bool) Square {
	kingFrom := p.board.KingSquare(c)
	rank := kingFrom.RankOf()
	rook := MakePiece(c, Rook)
	if kingside {
		for f := FileH; f > kingFrom.FileOf(); f-- {
			if p.board.GetPiece(SquareOf(f, rank)) == rook {
				return SquareOf(f, rank)
			}
		}
	} else {
		for f := FileA; f < kingFrom.FileOf(); f++ {
			if p.board.GetPiece(SquareOf(f, rank)) == rook {
				return SquareOf(f, rank)
			}
		}
	}
	return SqNone
}

// setCastlingRight registers a castling right and pre-computes the
// castling metadata (paths and target squares) for it
func (p *Position) setCastlingRight(c Color, rookFrom Square) {
	kingFrom := p.board.KingSquare(c)
	kingside := rookFrom > kingFrom
	cr := MakeCastlingRight(c, kingside)

	p.st().castlingRights.Add(cr)
	p.castlingKingFrom[c] = kingFrom
	p.castlingRookFrom[cr] = rookFrom
	p.castlingRightsMask[kingFrom] |= cr
	p.castlingRightsMask[rookFrom] |= cr

	backRank := kingFrom.RankOf()
	var kingTo, rookTo Square
	if kingside {
		kingTo = SquareOf(FileG, backRank)
		rookTo = SquareOf(FileF, backRank)
	} else {
		kingTo = SquareOf(FileC, backRank)
		rookTo = SquareOf(FileD, backRank)
	}
	p.castlingKingTo[cr] = kingTo
	p.castlingRookTo[cr] = rookTo

	// squares which must be empty - the king and rook origins do not
	// count as they vacate their squares during the move
	p.castlingPath[cr] = (Intermediate(kingFrom, kingTo) | Intermediate(rookFrom, rookTo) |
		kingTo.Bb() | rookTo.Bb()) &^ (kingFrom.Bb() | rookFrom.Bb())
	// squares the king travels over (destination included) - they may
	// not be attacked by the opponent
	p.kingPath[cr] = Intermediate(kingFrom, kingTo) | kingTo.Bb()
}

func (p *Position) setupEnPassant(epField string) error {
	if epField == "-" {
		return nil
	}
	epSq := MakeSquare(epField)
	if epSq == SqNone {
		return fenError("en passant field invalid: %s", epField)
	}
	us := p.nextPlayer
	them := us.Flip()
	// the en passant square is behind the opponents double pushed pawn
	var epRank Rank
	if us == White {
		epRank = Rank6
	} else {
		epRank = Rank3
	}
	if epSq.RankOf() != epRank {
		return fenError("en passant square %s inconsistent with side to move %s", epField, us.String())
	}
	pawnSq := epSq.To(them.MoveDirection())
	if p.board.GetPiece(pawnSq) != MakePiece(them, Pawn) ||
		p.board.GetPiece(epSq) != PieceNone ||
		p.board.GetPiece(epSq.To(us.MoveDirection())) != PieceNone {
		return fenError("en passant square %s inconsistent with pawn placement", epField)
	}
	// the square is only kept when a pawn of the side to move can
	// actually capture. Otherwise the position key would differ from
	// the same position reached without the double step.
	if GetPawnAttacks(them, epSq)&p.board.PiecesBb(us, Pawn) != 0 {
		st := p.st()
		st.enPassantSquare = epSq
		st.zobristKey ^= zobristBase.enPassantFile[epSq.FileOf()]
	}
	return nil
}

func (p *Position) fen() string {
	var fen strings.Builder
	// pieces
	for r := Rank1; r <= Rank8; r++ {
		emptySquares := 0
		for f := FileA; f <= FileH; f++ {
			pc := p.board.GetPiece(SquareOf(f, Rank8-r))
			if pc == PieceNone {
				emptySquares++
			} else {
				if emptySquares > 0 {
					fen.WriteString(strconv.Itoa(emptySquares))
					emptySquares = 0
				}
				fen.WriteString(pc.String())
			}
		}
		if emptySquares > 0 {
			fen.WriteString(strconv.Itoa(emptySquares))
		}
		if r < Rank8 {
			fen.WriteString("/")
		}
	}
	// next player
	fen.WriteString(" ")
	fen.WriteString(p.nextPlayer.String())
	// castling
	fen.WriteString(" ")
	fen.WriteString(p.castlingString())
	// en passant
	fen.WriteString(" ")
	fen.WriteString(p.st().enPassantSquare.String())
	// half move clock
	fen.WriteString(" ")
	fen.WriteString(strconv.Itoa(p.st().halfMoveClock))
	// full move number
	fen.WriteString(" ")
	fen.WriteString(strconv.Itoa((p.nextHalfMoveNumber + 1) / 2))

	return fen.String()
}

// castlingString renders the castling rights field of a fen. Standard
// positions use KQkq - Chess960 positions use the rook file letters
// (Shredder-FEN) to stay unambiguous.
func (p *Position) castlingString() string {
	cr := p.st().castlingRights
	if cr == CastlingNone {
		return "-"
	}
	if !p.chess960 {
		return cr.String()
	}
	var os strings.Builder
	if cr.Has(CastlingWhiteOO) {
		os.WriteString(strings.ToUpper(p.castlingRookFrom[CastlingWhiteOO].FileOf().String()))
	}
	if cr.Has(CastlingWhiteOOO) {
		os.WriteString(strings.ToUpper(p.castlingRookFrom[CastlingWhiteOOO].FileOf().String()))
	}
	if cr.Has(CastlingBlackOO) {
		os.WriteString(p.castlingRookFrom[CastlingBlackOO].FileOf().String())
	}
	if cr.Has(CastlingBlackOOO) {
		os.WriteString(p.castlingRookFrom[CastlingBlackOOO].FileOf().String())
	}
	return os.String()
}

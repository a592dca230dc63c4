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

package movegen

import (
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rudzen/chesslib/internal/util"
	"github.com/rudzen/chesslib/pkg/position"
	. "github.com/rudzen/chesslib/pkg/types"
)

var out = message.NewPrinter(language.German)

// Perft is a class to test move generation of the chess engine by
// counting the leaf nodes of the legal move tree at a fixed depth.
type Perft struct {
	Nodes            uint64
	CheckCounter     uint64
	CheckMateCounter uint64
	CaptureCounter   uint64
	EnpassantCounter uint64
	CastleCounter    uint64
	PromotionCounter uint64
	stopFlag         bool
}

// NewPerft creates a new empty Perft instance
func NewPerft() *Perft {
	return &Perft{}
}

// Stop can be used when perft has been started
// in a goroutine to stop the currently running
// perft test
func (perft *Perft) Stop() {
	perft.stopFlag = true
}

// PerftNodes is the pure enumeration: it returns the number of legal
// leaf nodes at exactly the given depth without collecting any
// statistics. At depth 1 bulk counting is used - the length of the
// legal move list is returned without making the moves.
func PerftNodes(p *position.Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	mgList := make([]*Movegen, depth+1)
	for i := 0; i <= depth; i++ {
		mgList[i] = NewMoveGen()
	}
	return perftNodes(p, depth, mgList)
}

func perftNodes(p *position.Position, depth int, mgList []*Movegen) uint64 {
	moves := mgList[depth].GenerateLegalMoves(p, GenAll)
	// bulk counting at depth 1
	if depth == 1 {
		return uint64(moves.Len())
	}
	nodes := uint64(0)
	for _, move := range *moves {
		p.DoMove(move)
		nodes += perftNodes(p, depth-1, mgList)
		p.UndoMove()
	}
	return nodes
}

// StartPerftMulti runs perft for all depths from startDepth to
// endDepth. If this has been started in a go routine it can be
// stopped via Stop()
func (perft *Perft) StartPerftMulti(fen string, startDepth int, endDepth int, bulk bool) {
	perft.stopFlag = false
	for i := startDepth; i <= endDepth; i++ {
		if perft.stopFlag {
			out.Print("Perft multi depth stopped\n")
			return
		}
		perft.StartPerft(fen, i, bulk)
	}
}

// StartPerft runs a perft on the given position to the given depth.
// When bulk is true only the node count is determined using bulk
// counting at depth 1 - otherwise each leaf move is made and the
// statistics (captures, ep, checks, mates, castles, promotions) are
// collected. If this has been started in a go routine it can be
// stopped via Stop()
func (perft *Perft) StartPerft(fen string, depth int, bulk bool) {
	perft.stopFlag = false

	// set 1 as minimum
	if depth <= 0 {
		depth = 1
	}

	// prepare
	perft.resetCounter()
	p, err := position.NewPositionFen(fen)
	if err != nil {
		out.Printf("Perft aborted. Invalid fen: %s\n", fen)
		return
	}
	mgList := make([]*Movegen, depth+1)
	for i := 0; i <= depth; i++ {
		mgList[i] = NewMoveGen()
	}

	out.Printf("Performing PERFT Test for Depth %d\n", depth)
	out.Printf("FEN: %s\n", fen)
	out.Printf("-----------------------------------------\n")

	var result uint64

	// the actual perft call
	start := time.Now()
	if bulk {
		result = perftNodes(p, depth, mgList)
	} else {
		result = perft.miniMax(depth, p, mgList)
	}
	elapsed := time.Since(start)

	if perft.stopFlag {
		out.Print("Perft stopped\n")
		return
	}

	perft.Nodes = result

	out.Printf("Time         : %s\n", elapsed)
	out.Printf("NPS          : %d nps\n", util.Nps(perft.Nodes, elapsed))
	out.Printf("Results:\n")
	out.Printf("   Nodes     : %d\n", perft.Nodes)
	out.Printf("   Captures  : %d\n", perft.CaptureCounter)
	out.Printf("   EnPassant : %d\n", perft.EnpassantCounter)
	out.Printf("   Checks    : %d\n", perft.CheckCounter)
	out.Printf("   CheckMates: %d\n", perft.CheckMateCounter)
	out.Printf("   Castles   : %d\n", perft.CastleCounter)
	out.Printf("   Promotions: %d\n", perft.PromotionCounter)
	out.Printf("-----------------------------------------\n")
	out.Printf("Finished PERFT Test for Depth %d\n\n", depth)
}

// StartPerftParallel runs a bulk counting perft with the root moves
// split onto the given number of workers. Each worker enumerates its
// share of the root moves on its own copy of the position with its
// own move generators - the position itself is not safe for
// concurrent use.
// Returns the total node count.
func (perft *Perft) StartPerftParallel(fen string, depth int, workers int) uint64 {
	if depth <= 0 {
		depth = 1
	}
	if workers <= 0 {
		workers = 1
	}
	perft.resetCounter()

	p, err := position.NewPositionFen(fen)
	if err != nil {
		out.Printf("Perft aborted. Invalid fen: %s\n", fen)
		return 0
	}

	out.Printf("Performing parallel PERFT Test for Depth %d with %d workers\n", depth, workers)
	out.Printf("FEN: %s\n", fen)
	out.Printf("-----------------------------------------\n")

	start := time.Now()

	rootMoves := NewMoveGen().GenerateLegalMoves(p, GenAll).Clone()
	results := make([]uint64, rootMoves.Len())

	var g errgroup.Group
	sem := make(chan struct{}, workers)
	for i := 0; i < rootMoves.Len(); i++ {
		i := i
		move := rootMoves.At(i)
		rootPos := p.Copy()
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()
			rootPos.DoMove(move)
			if depth == 1 {
				results[i] = 1
			} else {
				results[i] = PerftNodes(rootPos, depth-1)
			}
			rootPos.UndoMove()
			return nil
		})
	}
	_ = g.Wait()

	total := uint64(0)
	for _, n := range results {
		total += n
	}
	perft.Nodes = total
	elapsed := time.Since(start)

	out.Printf("Time         : %s\n", elapsed)
	out.Printf("NPS          : %d nps\n", util.Nps(perft.Nodes, elapsed))
	out.Printf("   Nodes     : %d\n", perft.Nodes)
	out.Printf("-----------------------------------------\n")
	out.Printf("Finished parallel PERFT Test for Depth %d\n\n", depth)

	return total
}

// miniMax is the counting perft which collects statistics about the
// leaf moves. Each leaf move is made to determine checks and mates.
func (perft *Perft) miniMax(depth int, p *position.Position, mgList []*Movegen) uint64 {
	totalNodes := uint64(0)
	// moves to search recursively
	moves := mgList[depth].GenerateLegalMoves(p, GenAll)
	for _, move := range *moves {
		if perft.stopFlag {
			return 0
		}
		if depth > 1 {
			p.DoMove(move)
			totalNodes += perft.miniMax(depth-1, p, mgList)
			p.UndoMove()
		} else {
			capture := p.IsCapturingMove(move)
			enpassant := move.MoveType() == EnPassant
			castling := move.MoveType() == Castling
			promotion := move.MoveType() == Promotion
			p.DoMove(move)
			totalNodes++
			if enpassant {
				perft.EnpassantCounter++
			}
			if capture {
				perft.CaptureCounter++
			}
			if castling {
				perft.CastleCounter++
			}
			if promotion {
				perft.PromotionCounter++
			}
			if p.HasCheck() {
				perft.CheckCounter++
				if !mgList[0].HasLegalMove(p) {
					perft.CheckMateCounter++
				}
			}
			p.UndoMove()
		}
	}
	return totalNodes
}

func (perft *Perft) resetCounter() {
	perft.Nodes = 0
	perft.CheckCounter = 0
	perft.CheckMateCounter = 0
	perft.CaptureCounter = 0
	perft.EnpassantCounter = 0
	perft.CastleCounter = 0
	perft.PromotionCounter = 0
}

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

package transpositiontable

import (
	. "github.com/rudzen/chesslib/pkg/types"
)

// TtEntry struct is the data structure for each entry in the
// transposition table. Each entry has 16-bytes so that a cluster of
// ClusterSize entries fits into a typical cache line.
//
// The entry only stores the upper 32 bits of the position key as a
// guard - the cluster index is derived from the lower bits so both
// halves of the key take part in addressing and guarding.
type TtEntry struct {
	key32      uint32 // upper 32 bits of the zobrist key
	move       uint16 // move part of a Move - convert with Move(e.move)
	value      int16  // value from search
	eval       int16  // static evaluation value
	depth      int8   // search depth the entry was stored with
	generation uint8  // age - the search generation the entry was stored or refreshed in
	bound      int8   // value type - None, Exact, Alpha (upper), Beta (lower)
	_          int8   // padding to 16 bytes
}

const (
	// TtEntrySize is the size in bytes for each TtEntry
	TtEntrySize = 16 // 16 bytes

	// ClusterSize is the number of entries per cluster
	ClusterSize = 4

	// TtClusterSize is the size in bytes for each TtCluster
	TtClusterSize = ClusterSize * TtEntrySize // 64 bytes
)

// TtCluster is a cache line sized group of entries which share one
// table index. Probing scans the cluster linearly.
type TtCluster struct {
	entry [ClusterSize]TtEntry
}

// Key32 returns the stored upper 32 bits of the position key
func (e *TtEntry) Key32() uint32 {
	return e.key32
}

// Move returns the stored move
func (e *TtEntry) Move() Move {
	return Move(e.move)
}

// Value returns the stored search value
func (e *TtEntry) Value() Value {
	return Value(e.value)
}

// Eval returns the stored static evaluation value
func (e *TtEntry) Eval() Value {
	return Value(e.eval)
}

// Depth returns the stored depth
func (e *TtEntry) Depth() int8 {
	return e.depth
}

// Generation returns the generation (age) of the entry
func (e *TtEntry) Generation() uint8 {
	return e.generation
}

// Bound returns the stored value type
func (e *TtEntry) Bound() ValueType {
	return ValueType(e.bound)
}

// empty tests if the entry is unused. Stored entries always carry a
// bound so the bound doubles as the occupancy marker.
func (e *TtEntry) empty() bool {
	return ValueType(e.bound) == Vnone
}

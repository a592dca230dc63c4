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

// Package types contains the basic data types and pre-computed data
// structures of the chess library. Many of these would be perfect enum
// candidates but GO does not provide enums.
//
// The package computes its lookup tables (square bitboards, distances,
// rays, pseudo attacks and the magic bitboards for the sliding pieces)
// once at startup via init(). All tables are immutable afterwards and
// can be shared by any number of goroutines without synchronization.
package types

var initialized = false

// init initializes pre computed data structures e.g. bitboards, attack
// tables, magic bitboards etc.
// Keeps an initialized flag to avoid multiple executions.
func init() {
	if initialized {
		return
	}
	initBb()
	initialized = true
}

const (
	// SqLength number of squares on a board
	SqLength int = 64

	// MaxMoves max number of half moves for a game
	MaxMoves = 512

	// KB = 1.024 bytes
	KB uint64 = 1024

	// MB = KB * KB
	MB uint64 = KB * KB

	// GB = KB * MB
	GB uint64 = KB * MB
)

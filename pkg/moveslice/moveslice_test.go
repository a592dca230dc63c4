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

package moveslice

import (
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/rudzen/chesslib/pkg/types"
)

func TestNewMoveSlice(t *testing.T) {
	ms := NewMoveSlice(MaxMoves)
	assert.Equal(t, 0, ms.Len())
	assert.Equal(t, MaxMoves, ms.Cap())
}

func TestPushPop(t *testing.T) {
	ms := NewMoveSlice(16)
	m1 := CreateMove(SqE2, SqE4, Normal, PtNone)
	m2 := CreateMove(SqD2, SqD4, Normal, PtNone)

	ms.PushBack(m1)
	ms.PushBack(m2)
	assert.Equal(t, 2, ms.Len())
	assert.Equal(t, m1, ms.At(0))
	assert.Equal(t, m2, ms.At(1))
	assert.True(t, ms.Contains(m1))

	assert.Equal(t, m2, ms.PopBack())
	assert.Equal(t, 1, ms.Len())

	ms.Clear()
	assert.Equal(t, 0, ms.Len())
	assert.False(t, ms.Contains(m1))
}

func TestFilter(t *testing.T) {
	ms := NewMoveSlice(16)
	for sq := SqA2; sq <= SqH2; sq++ {
		ms.PushBack(CreateMove(sq, sq.To(North), Normal, PtNone))
	}
	assert.Equal(t, 8, ms.Len())

	// keep only moves from the e and d files
	ms.Filter(func(i int) bool {
		f := ms.At(i).From().FileOf()
		return f == FileD || f == FileE
	})
	assert.Equal(t, 2, ms.Len())
}

func TestFilterCopy(t *testing.T) {
	ms := NewMoveSlice(16)
	dest := NewMoveSlice(16)
	for sq := SqA2; sq <= SqH2; sq++ {
		ms.PushBack(CreateMove(sq, sq.To(North), Normal, PtNone))
	}
	ms.FilterCopy(dest, func(i int) bool {
		return ms.At(i).From().FileOf() == FileE
	})
	assert.Equal(t, 8, ms.Len())
	assert.Equal(t, 1, dest.Len())
	assert.Equal(t, SqE2, dest.At(0).From())
}

func TestCloneAndEquals(t *testing.T) {
	ms := NewMoveSlice(16)
	ms.PushBack(CreateMove(SqE2, SqE4, Normal, PtNone))
	ms.PushBack(CreateMove(SqG1, SqF3, Normal, PtNone))

	clone := ms.Clone()
	assert.True(t, ms.Equals(clone))

	clone.PopBack()
	assert.False(t, ms.Equals(clone))
}

func TestStringUci(t *testing.T) {
	ms := NewMoveSlice(4)
	ms.PushBack(CreateMove(SqE2, SqE4, Normal, PtNone))
	ms.PushBack(CreateMove(SqE7, SqE8, Promotion, Queen))
	assert.Equal(t, "e2e4 e7e8q", ms.StringUci())
}

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
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rudzen/chesslib/internal/config"
	"github.com/rudzen/chesslib/pkg/position"
	. "github.com/rudzen/chesslib/pkg/types"
)

// Setup the tests
func TestMain(m *testing.M) {
	config.Setup()
	code := m.Run()
	os.Exit(code)
}

func TestEntrySize(t *testing.T) {
	assert.Equal(t, 16, int(TtEntrySize))
	assert.Equal(t, 64, int(TtClusterSize))
}

func TestNewTtTable(t *testing.T) {
	tt, err := NewTtTable(2)
	assert.NoError(t, err)
	assert.NotNil(t, tt)
	// 2 MB / 64 byte clusters
	assert.Equal(t, uint64(2*1024*1024/64), tt.NumberOfClusters())
	assert.Equal(t, uint64(0), tt.Len())
}

func TestTtTableSizeErrors(t *testing.T) {
	tt, err := NewTtTable(0)
	assert.Error(t, err)
	assert.Nil(t, tt)

	tt, err = NewTtTable(-10)
	assert.Error(t, err)
	assert.Nil(t, tt)

	tt, err = NewTtTable(MaxSizeInMB + 1)
	assert.Error(t, err)
	assert.Nil(t, tt)
}

func TestPutAndProbe(t *testing.T) {
	tt, err := NewTtTable(2)
	assert.NoError(t, err)

	key := position.Key(0x4711_0815_1234_5678)
	move := CreateMove(SqE2, SqE4, Normal, PtNone)

	// miss on the empty table
	e, hit := tt.Probe(key)
	assert.False(t, hit)
	assert.Nil(t, e)

	tt.Put(key, move, 5, Value(100), EXACT, Value(42))
	assert.Equal(t, uint64(1), tt.Len())

	e, hit = tt.Probe(key)
	assert.True(t, hit)
	assert.NotNil(t, e)
	assert.Equal(t, move, e.Move())
	assert.Equal(t, int8(5), e.Depth())
	assert.Equal(t, Value(100), e.Value())
	assert.Equal(t, Value(42), e.Eval())
	assert.Equal(t, EXACT, e.Bound())
	assert.Equal(t, uint64(1), tt.Hits())

	// a different key with the same cluster index is a miss
	otherKey := key ^ position.Key(uint64(1)<<63)
	_, hit = tt.Probe(otherKey)
	assert.False(t, hit)
}

func TestPutUpdatePreservesMove(t *testing.T) {
	tt, _ := NewTtTable(2)
	key := position.Key(0x0102_0304_0506_0708)
	move := CreateMove(SqG1, SqF3, Normal, PtNone)

	tt.Put(key, move, 5, Value(77), BETA, Value(10))
	// update without a move - the stored move is preserved
	tt.Put(key, MoveNone, 7, Value(99), EXACT, Value(20))

	e, hit := tt.Probe(key)
	assert.True(t, hit)
	assert.Equal(t, move, e.Move())
	assert.Equal(t, int8(7), e.Depth())
	assert.Equal(t, Value(99), e.Value())
	assert.Equal(t, EXACT, e.Bound())
	// still one entry - it was an update not a new put
	assert.Equal(t, uint64(1), tt.Len())
}

func TestClusterFillAndReplacement(t *testing.T) {
	tt, _ := NewTtTable(1)
	mask := tt.clusterIndexMask

	// four keys mapping to the same cluster fill it up
	baseLow := uint64(42) & mask
	keys := make([]position.Key, 5)
	for i := range keys {
		keys[i] = position.Key(uint64(i+1)<<32 | baseLow)
	}
	for i := 0; i < 4; i++ {
		tt.Put(keys[i], MoveNone, int8(10+i), Value(i), BETA, ValueNA)
	}
	assert.Equal(t, uint64(4), tt.Len())
	for i := 0; i < 4; i++ {
		_, hit := tt.Probe(keys[i])
		assert.True(t, hit)
	}

	// the fifth key evicts the entry with the lowest score - all are
	// from the current generation and no bound is exact so the
	// shallowest entry (depth 10) goes
	tt.Put(keys[4], MoveNone, 3, Value(4), BETA, ValueNA)
	assert.Equal(t, uint64(4), tt.Len())
	_, hit := tt.Probe(keys[4])
	assert.True(t, hit)
	_, hit = tt.Probe(keys[0])
	assert.False(t, hit)
}

func TestReplacementPrefersOldGeneration(t *testing.T) {
	tt, _ := NewTtTable(1)
	mask := tt.clusterIndexMask
	baseLow := uint64(99) & mask
	keys := make([]position.Key, 5)
	for i := range keys {
		keys[i] = position.Key(uint64(i+1)<<32 | baseLow)
	}

	// the deepest entry is stored in an old generation
	tt.Put(keys[0], MoveNone, 20, Value(0), BETA, ValueNA)
	tt.NewSearch()
	for i := 1; i < 4; i++ {
		tt.Put(keys[i], MoveNone, 5, Value(i), BETA, ValueNA)
	}

	// a new put evicts the aged entry although it has the highest depth
	tt.Put(keys[4], MoveNone, 5, Value(4), BETA, ValueNA)
	_, hit := tt.Probe(keys[0])
	assert.False(t, hit)
	_, hit = tt.Probe(keys[4])
	assert.True(t, hit)
}

func TestProbeRefreshesGeneration(t *testing.T) {
	tt, _ := NewTtTable(1)
	key := position.Key(0xCAFE_BABE_DEAD_BEEF)
	tt.Put(key, MoveNone, 5, Value(1), EXACT, ValueNA)

	tt.NewSearch()
	e, hit := tt.Probe(key)
	assert.True(t, hit)
	assert.Equal(t, tt.Generation(), e.Generation())
}

func TestHashfull(t *testing.T) {
	tt, _ := NewTtTable(1)
	assert.Equal(t, 0, tt.Hashfull())

	// fill a good part of the table with distinct keys
	rnd := uint64(0x9E3779B97F4A7C15)
	next := func() uint64 {
		rnd ^= rnd << 13
		rnd ^= rnd >> 7
		rnd ^= rnd << 17
		return rnd
	}
	for i := 0; i < 200_000; i++ {
		tt.Put(position.Key(next()), MoveNone, 1, Value(1), BETA, ValueNA)
	}
	full := tt.Hashfull()
	assert.True(t, full > 500, "hashfull was %d", full)
	assert.True(t, full <= 1000, "hashfull was %d", full)

	// a new search resets the current generation count
	tt.NewSearch()
	assert.True(t, tt.Hashfull() < full)
}

func TestClear(t *testing.T) {
	tt, _ := NewTtTable(1)
	tt.Put(position.Key(0x1111_2222_3333_4444), MoveNone, 5, Value(1), EXACT, ValueNA)
	assert.Equal(t, uint64(1), tt.Len())
	tt.Clear()
	assert.Equal(t, uint64(0), tt.Len())
	_, hit := tt.Probe(position.Key(0x1111_2222_3333_4444))
	assert.False(t, hit)
}

func TestGenerationWrapAround(t *testing.T) {
	tt, _ := NewTtTable(1)
	for i := 0; i < 300; i++ {
		tt.NewSearch()
	}
	// the generation never becomes 0 - that marks empty entries
	assert.NotEqual(t, uint8(0), tt.Generation())
}

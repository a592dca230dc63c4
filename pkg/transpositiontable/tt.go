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

// Package transpositiontable implements a transposition table (cache)
// data structure and functionality for a chess engine search.
// The table is organized in cache line sized clusters of 4 entries
// with an age and depth based replacement scheme.
//
// Entry writes are word granular - a concurrent reader may observe a
// torn combination of key and payload which then either appears as a
// miss (key mismatch) or returns a payload which is harmless to
// search. Resize and Clear are not thread safe and need external
// synchronization when used from multiple threads.
package transpositiontable

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/op/go-logging"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	myLogging "github.com/rudzen/chesslib/internal/logging"
	"github.com/rudzen/chesslib/internal/util"
	"github.com/rudzen/chesslib/pkg/position"
	. "github.com/rudzen/chesslib/pkg/types"
)

var out = message.NewPrinter(language.German)

const (
	// MaxSizeInMB maximal memory usage of the tt
	MaxSizeInMB = 65_536
	// MinSizeInMB minimal memory usage of the tt
	MinSizeInMB = 1
)

// TtTable is the actual transposition table
// object holding data and state.
// Create with NewTtTable()
type TtTable struct {
	log              *logging.Logger
	data             []TtCluster
	sizeInByte       uint64
	clusterIndexMask uint64
	numberOfClusters uint64
	generation       uint8
	Stats            TtStats
}

// TtStats holds statistical data on tt usage
type TtStats struct {
	numberOfPuts       uint64
	numberOfCollisions uint64
	numberOfOverwrites uint64
	numberOfUpdates    uint64
	numberOfProbes     uint64
	numberOfHits       uint64
	numberOfMisses     uint64
}

// NewTtTable creates a new TtTable with the given number of MBytes
// as a maximum of memory usage. The actual size will be determined
// by the number of clusters fitting into this size which needs
// to be a power of 2 for efficient addressing via bit masks.
// Returns an error when the requested size is not in
// [MinSizeInMB, MaxSizeInMB].
func NewTtTable(sizeInMByte int) (*TtTable, error) {
	tt := &TtTable{
		log: myLogging.GetLog(),
	}
	if err := tt.Resize(sizeInMByte); err != nil {
		return nil, err
	}
	return tt, nil
}

// Resize resizes the tt table. All entries will be cleared.
// Not thread safe - needs external synchronization when used from
// multiple threads.
func (tt *TtTable) Resize(sizeInMByte int) error {
	if sizeInMByte < MinSizeInMB || sizeInMByte > MaxSizeInMB {
		return fmt.Errorf("tt size %d MB not in valid range [%d, %d]", sizeInMByte, MinSizeInMB, MaxSizeInMB)
	}

	// find the largest power of 2 number of clusters fitting into the
	// given size in MB
	tt.sizeInByte = uint64(sizeInMByte) * MB
	tt.numberOfClusters = 1 << uint64(math.Floor(math.Log2(float64(tt.sizeInByte/TtClusterSize))))
	tt.clusterIndexMask = tt.numberOfClusters - 1 // --> 0x0001111....111

	// calculate the real memory usage
	tt.sizeInByte = tt.numberOfClusters * TtClusterSize

	// Create new slice/array - garbage collection takes care of cleanup
	tt.data = make([]TtCluster, tt.numberOfClusters)
	tt.generation = 1
	tt.Stats = TtStats{}

	tt.log.Info(out.Sprintf("TT Size %d MByte, Capacity %d clusters of %d entries (entry size=%dByte) (Requested were %d MBytes)",
		tt.sizeInByte/MB, tt.numberOfClusters, ClusterSize, unsafe.Sizeof(TtEntry{}), sizeInMByte))
	tt.log.Debug(util.MemStat())
	return nil
}

// Probe returns a pointer to the corresponding tt entry and true when
// the upper 32 bits of the given key match the stored entry key.
// Otherwise nil and false is returned. On a hit the entry's
// generation is refreshed to the current generation and the hit
// counter is increased.
func (tt *TtTable) Probe(key position.Key) (*TtEntry, bool) {
	tt.Stats.numberOfProbes++
	cluster := &tt.data[tt.hash(key)]
	key32 := keyUpper32(key)
	for i := 0; i < ClusterSize; i++ {
		e := &cluster.entry[i]
		if !e.empty() && e.key32 == key32 {
			e.generation = tt.generation
			tt.Stats.numberOfHits++
			return e, true
		}
	}
	tt.Stats.numberOfMisses++
	return nil, false
}

// Put stores a position into the tt. The entry to use within the
// cluster is the first matching or empty entry. When neither exists
// the entry with the lowest replacement score is overwritten - the
// score prefers keeping entries of the current generation, with an
// exact bound and with higher draft. When the incoming move is
// MoveNone an existing move of a matching entry is preserved.
func (tt *TtTable) Put(key position.Key, move Move, depth int8, value Value, valueType ValueType, eval Value) {
	tt.Stats.numberOfPuts++

	cluster := &tt.data[tt.hash(key)]
	key32 := keyUpper32(key)

	// find a matching or empty entry - otherwise the victim with the
	// lowest replacement score
	var entry *TtEntry
	for i := 0; i < ClusterSize; i++ {
		e := &cluster.entry[i]
		if e.empty() {
			entry = e
			break
		}
		if e.key32 == key32 {
			entry = e
			tt.Stats.numberOfUpdates++
			// preserve the move when storing without one
			if move == MoveNone {
				move = Move(e.move)
			}
			break
		}
	}
	if entry == nil {
		entry = &cluster.entry[0]
		for i := 1; i < ClusterSize; i++ {
			if tt.replaceScore(&cluster.entry[i]) < tt.replaceScore(entry) {
				entry = &cluster.entry[i]
			}
		}
		tt.Stats.numberOfCollisions++
		tt.Stats.numberOfOverwrites++
	}

	entry.key32 = key32
	entry.move = uint16(move)
	entry.value = int16(value)
	entry.eval = int16(eval)
	entry.depth = depth
	entry.generation = tt.generation
	entry.bound = int8(valueType)
}

// replaceScore computes the replacement score of an entry. The entry
// with the minimal score within a cluster is replaced first.
func (tt *TtTable) replaceScore(e *TtEntry) int {
	score := int(e.depth)
	if e.generation == tt.generation {
		score += 256
	}
	if ValueType(e.bound) == EXACT {
		score += 64
	}
	return score
}

// NewSearch advances the generation counter. Entries stored from now
// on belong to the new generation and older entries become
// replacement candidates. The 8-bit counter wraps around which is
// harmless as only equality with the current generation matters.
func (tt *TtTable) NewSearch() {
	tt.generation++
	if tt.generation == 0 { // skip 0 - it marks never used
		tt.generation = 1
	}
}

// Generation returns the current generation of the table
func (tt *TtTable) Generation() uint8 {
	return tt.generation
}

// Clear clears all entries of the tt.
// Not thread safe - needs external synchronization when used from
// multiple threads.
func (tt *TtTable) Clear() {
	// Create new slice/array - garbage collection takes care of cleanup
	tt.data = make([]TtCluster, tt.numberOfClusters)
	tt.generation = 1
	tt.Stats = TtStats{}
}

// Hashfull returns an approximation of how full the transposition
// table is in per mille as per UCI. It samples the first
// min(numberOfClusters, 250) clusters and counts the entries which
// were stored or refreshed in the current generation.
func (tt *TtTable) Hashfull() int {
	if tt.numberOfClusters == 0 {
		return 0
	}
	samples := util.Min(int(tt.numberOfClusters), 250)
	count := 0
	for i := 0; i < samples; i++ {
		for j := 0; j < ClusterSize; j++ {
			e := &tt.data[i].entry[j]
			if !e.empty() && e.generation == tt.generation {
				count++
			}
		}
	}
	return (1000 * count) / (samples * ClusterSize)
}

// Hits returns the number of successful probes since the last resize
// or clear
func (tt *TtTable) Hits() uint64 {
	return tt.Stats.numberOfHits
}

// Probes returns the number of probes since the last resize or clear
func (tt *TtTable) Probes() uint64 {
	return tt.Stats.numberOfProbes
}

// Len returns the number of non empty entries in the tt.
// Linear scan - use for debugging and tests only.
func (tt *TtTable) Len() uint64 {
	count := uint64(0)
	for i := range tt.data {
		for j := 0; j < ClusterSize; j++ {
			if !tt.data[i].entry[j].empty() {
				count++
			}
		}
	}
	return count
}

// NumberOfClusters returns the number of clusters the table holds
func (tt *TtTable) NumberOfClusters() uint64 {
	return tt.numberOfClusters
}

// String returns a string representation of this TtTable instance
func (tt *TtTable) String() string {
	return out.Sprintf("TT: size %d MB capacity %d clusters a %d entries (entry size %d Bytes) generation %d "+
		"puts %d updates %d collisions %d overwrites %d probes %d hits %d (%d%%) misses %d (%d%%)",
		tt.sizeInByte/MB, tt.numberOfClusters, ClusterSize, unsafe.Sizeof(TtEntry{}), tt.generation,
		tt.Stats.numberOfPuts, tt.Stats.numberOfUpdates, tt.Stats.numberOfCollisions, tt.Stats.numberOfOverwrites,
		tt.Stats.numberOfProbes, tt.Stats.numberOfHits, (tt.Stats.numberOfHits*100)/(1+tt.Stats.numberOfProbes),
		tt.Stats.numberOfMisses, (tt.Stats.numberOfMisses*100)/(1+tt.Stats.numberOfProbes))
}

// ///////////////////////////////////////////////////////////
// Private
// ///////////////////////////////////////////////////////////

// hash generates the cluster index for the data array from the lower
// bits of the key
func (tt *TtTable) hash(key position.Key) uint64 {
	return uint64(key) & tt.clusterIndexMask
}

// keyUpper32 returns the upper 32 bits of a position key which are
// stored in the entry as a guard
func keyUpper32(key position.Key) uint32 {
	return uint32(uint64(key) >> 32)
}

package search

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/jieqi/board"
)

const (
	TTExact = 0x01
	TTLower = 0x02
	TTUpper = 0x03
)

const entrySize = 24

const genMask = (1 << 6) - 1

const (
	minSizePowerOf2 = 16
	maxSizePowerOf2 = 22
)

// 24 bytes (entrySize)
type TableEntry struct {
	key        uint64
	score      int32
	play       board.Move
	depth      int8
	flagAndGen uint8
}

func (t TableEntry) flag() uint8 {
	return t.flagAndGen >> 6
}

func (t TableEntry) generation() uint8 {
	return t.flagAndGen & genMask
}

func (t TableEntry) valid() bool {
	// a table flag is 1, 2, or 3.
	return t.flag() != 0
}

func (t TableEntry) move() board.Move {
	return t.play
}

type TableLock interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

type FakeLock struct{}

func (f FakeLock) Lock()    {}
func (f FakeLock) Unlock()  {}
func (f FakeLock) RLock()   {}
func (f FakeLock) RUnlock() {}

// TranspositionTable is a fixed-size, direct-mapped table of search results.
type TranspositionTable struct {
	TableLock
	table        []TableEntry
	created      atomic.Uint64
	lookups      atomic.Uint64
	hits         atomic.Uint64
	sizePowerOf2 int
	sizeMask     uint64
	generation   uint8
	// "type 2" collisions: a different position already lives in the slot.
	t2collisions atomic.Uint64
}

func (t *TranspositionTable) SetSingleThreadedMode() {
	t.TableLock = &FakeLock{}
}

// SetMultiThreadedMode guards the table for use by several searches.
func (t *TranspositionTable) SetMultiThreadedMode() {
	t.TableLock = new(sync.RWMutex)
}

func (t *TranspositionTable) lookup(zval uint64) TableEntry {
	t.RLock()
	defer t.RUnlock()
	t.lookups.Add(1)
	idx := zval & t.sizeMask
	entry := t.table[idx]
	if entry.key != zval {
		if entry.valid() {
			// There is another unrelated node at this position.
			t.t2collisions.Add(1)
		}
		return TableEntry{}
	}
	t.hits.Add(1)
	return entry
}

// store writes tentry unless the slot holds a different position searched
// deeper during the current generation.
func (t *TranspositionTable) store(zval uint64, tentry TableEntry) {
	idx := zval & t.sizeMask
	tentry.key = zval
	tentry.flagAndGen = tentry.flagAndGen&^genMask | t.generation
	t.Lock()
	defer t.Unlock()
	old := t.table[idx]
	if old.valid() && old.key != zval && old.generation() == t.generation && old.depth > tentry.depth {
		return
	}
	t.table[idx] = tentry
	t.created.Add(1)
}

// NewGeneration ages every entry currently in the table, making them the
// first to be replaced.
func (t *TranspositionTable) NewGeneration() {
	t.generation = (t.generation + 1) & genMask
}

// Reset sizes the table to a fraction of system memory and clears it.
func (t *TranspositionTable) Reset(fractionOfMemory float64) {
	totalMem := memory.TotalMemory()
	desiredNElems := fractionOfMemory * (float64(totalMem) / float64(entrySize))
	// find biggest power of 2 lower than desired.
	p := int(math.Log2(desiredNElems))
	if desiredNElems <= 0 || p < minSizePowerOf2 {
		p = minSizePowerOf2
	}
	if p > maxSizePowerOf2 {
		p = maxSizePowerOf2
	}
	t.SetSizePowerOf2(p)
	log.Debug().Int("num-elems", len(t.table)).
		Float64("desired-num-elems", desiredNElems).
		Int("estimated-total-memory-bytes", len(t.table)*entrySize).
		Uint64("total-system-memory-bytes", totalMem).
		Msg("transposition-table-size")
}

// SetSizePowerOf2 allocates (or clears) a table of 2^p entries.
func (t *TranspositionTable) SetSizePowerOf2(p int) {
	if t.TableLock == nil {
		t.SetSingleThreadedMode()
	}
	t.Lock()
	defer t.Unlock()
	t.sizePowerOf2 = p
	numElems := 1 << p
	t.sizeMask = uint64(numElems - 1)
	if t.table != nil && len(t.table) == numElems {
		clear(t.table)
	} else {
		t.table = make([]TableEntry, numElems)
	}
	t.generation = 0
	t.created.Store(0)
	t.lookups.Store(0)
	t.hits.Store(0)
	t.t2collisions.Store(0)
}

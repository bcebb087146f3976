// Package book implements the price-level and book-side data structures:
// the FIFO/size-prioritised queue at one price,
// the priority structure over price levels with O(1) cancellation, and
// the sharded variant that partitions orders across independent
// sub-books.
package book

import (
	"sort"
	"time"

	"matchbook/internal/common"
)

// PriceLevel holds every resting order at one exact price on one side.
// Its in-queue ordering is a tagged discipline rather than an
// interface hierarchy: FIFO, size-then-time, or the directional
// hybrid weighting.
type PriceLevel struct {
	Price       float64
	Orders      []*common.Order
	TotalVolume uint64

	discipline  common.Discipline
	needsResort bool
}

// NewPriceLevel creates an empty level under the given discipline.
func NewPriceLevel(price float64, discipline common.Discipline) *PriceLevel {
	return &PriceLevel{Price: price, discipline: discipline}
}

// Add inserts an order, honouring the level's current ordering
// discipline. FIFO levels append; size/hybrid disciplines insert at the
// position that preserves sort order, avoiding a full re-sort on every
// add.
func (l *PriceLevel) Add(o *common.Order) {
	if l.needsResort {
		l.resort()
	}
	switch l.discipline {
	case common.DisciplineFIFO:
		l.Orders = append(l.Orders, o)
	default:
		idx := sort.Search(len(l.Orders), func(i int) bool {
			return less(l.discipline, o, l.Orders[i])
		})
		l.Orders = append(l.Orders, nil)
		copy(l.Orders[idx+1:], l.Orders[idx:])
		l.Orders[idx] = o
	}
	l.TotalVolume += o.Remaining()
}

// Remove deletes an order by identity. It decrements TotalVolume by the
// order's *remaining* quantity, not its filled quantity.
func (l *PriceLevel) Remove(o *common.Order) bool {
	for i, existing := range l.Orders {
		if existing.ID == o.ID {
			l.Orders = append(l.Orders[:i], l.Orders[i+1:]...)
			l.TotalVolume -= o.Remaining()
			return true
		}
	}
	return false
}

// Top returns the highest-priority resting order, or nil if the level
// is empty. It lazily resorts the level first if a regime change left
// it dirty.
func (l *PriceLevel) Top() *common.Order {
	if l.needsResort {
		l.resort()
	}
	if len(l.Orders) == 0 {
		return nil
	}
	return l.Orders[0]
}

// IsEmpty reports whether the level has no resting orders.
func (l *PriceLevel) IsEmpty() bool {
	return len(l.Orders) == 0
}

// RecordFill reduces TotalVolume by a matched quantity. The matching
// kernel calls this on every partial or full fill so the aggregate
// stays in sync without waiting for the order to be removed.
func (l *PriceLevel) RecordFill(qty uint64) {
	l.TotalVolume -= qty
}

// Requeue moves an order (an iceberg whose disclosed slice was just
// exhausted) to the back of FIFO priority and refreshes its timestamp,
// implementing the refresh-and-requeue residual policy.
func (l *PriceLevel) Requeue(o *common.Order, now func() time.Time) {
	l.Remove(o)
	o.Timestamp = now()
	l.needsResort = true
	l.Add(o)
}

// SetDiscipline marks the level for lazy resort on next access if the
// discipline actually changes.
func (l *PriceLevel) SetDiscipline(d common.Discipline) {
	if l.discipline != d {
		l.discipline = d
		l.needsResort = true
	}
}

func (l *PriceLevel) resort() {
	switch l.discipline {
	case common.DisciplineFIFO:
		// FIFO requires no reordering; arrival order is already preserved.
	default:
		sort.SliceStable(l.Orders, func(i, j int) bool {
			return less(l.discipline, l.Orders[i], l.Orders[j])
		})
	}
	l.needsResort = false
}

// less implements the ordering key for each non-FIFO discipline:
//   - DisciplineSizeTime: (-remaining_quantity, timestamp) ascending
//   - DisciplineHybrid:   (-(0.7*remaining + 0.3*timestamp), timestamp)
func less(d common.Discipline, a, b *common.Order) bool {
	switch d {
	case common.DisciplineHybrid:
		ka := hybridKey(a)
		kb := hybridKey(b)
		if ka != kb {
			return ka < kb
		}
		return a.Timestamp.Before(b.Timestamp)
	default: // DisciplineSizeTime
		if a.Remaining() != b.Remaining() {
			return a.Remaining() > b.Remaining()
		}
		return a.Timestamp.Before(b.Timestamp)
	}
}

func hybridKey(o *common.Order) float64 {
	return -(0.7*float64(o.Remaining()) + 0.3*float64(o.Timestamp.UnixNano()))
}

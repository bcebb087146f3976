package book

import (
	"sync"

	"github.com/tidwall/btree"

	"matchbook/internal/common"
)

// PriceVolume is one row of order-book depth.
type PriceVolume struct {
	Price  float64
	Volume uint64
}

// levels is the ordered, non-empty-price structure behind a BookSide:
// a min-tree for asks, a max-tree for bids, keyed purely on Price.
type levels = btree.BTreeG[*PriceLevel]

// BookSide is one side (bids or asks) of the order book:
// a price-ordered tree over non-empty levels, a price->level map, an
// order-id->order map, and an order-id->level map for O(1) cancellation.
// All public methods are guarded by a per-side mutex.
//
// None of BookSide's methods call back into another BookSide method
// while holding the lock, so a plain sync.Mutex already satisfies the
// concurrency contract without reentrancy.
type BookSide struct {
	mu sync.Mutex

	side       common.Side
	tree       *levels
	byPrice    map[float64]*PriceLevel
	byOrderID  map[string]*common.Order
	orderLevel map[string]*PriceLevel
	discipline common.Discipline
}

// NewBookSide builds an empty side. Bids are ordered greatest-price
// first, asks least-price first.
func NewBookSide(side common.Side) *BookSide {
	var less func(a, b *PriceLevel) bool
	if side == Buy {
		less = func(a, b *PriceLevel) bool { return a.Price > b.Price }
	} else {
		less = func(a, b *PriceLevel) bool { return a.Price < b.Price }
	}
	return &BookSide{
		side:       side,
		tree:       btree.NewBTreeG(less),
		byPrice:    make(map[float64]*PriceLevel),
		byOrderID:  make(map[string]*common.Order),
		orderLevel: make(map[string]*PriceLevel),
	}
}

// Buy and Sell are re-exported for readability at call sites that
// construct a BookSide without importing common directly for the side
// argument alone.
const (
	Buy  = common.Buy
	Sell = common.Sell
)

// AddOrder rests an order on this side. It is total: it never fails
// once an order has cleared admission.
func (s *BookSide) AddOrder(o *common.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	level, ok := s.byPrice[o.LimitPrice]
	if !ok {
		level = NewPriceLevel(o.LimitPrice, s.discipline)
		s.byPrice[o.LimitPrice] = level
		s.tree.Set(level)
	}
	level.Add(o)
	s.byOrderID[o.ID] = o
	s.orderLevel[o.ID] = level
}

// RemoveOrder deletes an order by ID. It returns false when the id is
// not present — never an error.
func (s *BookSide) RemoveOrder(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeOrderLocked(id)
}

func (s *BookSide) removeOrderLocked(id string) bool {
	level, ok := s.orderLevel[id]
	if !ok {
		return false
	}
	order := s.byOrderID[id]
	if !level.Remove(order) {
		return false
	}
	delete(s.byOrderID, id)
	delete(s.orderLevel, id)

	if level.IsEmpty() {
		delete(s.byPrice, level.Price)
		s.tree.Delete(level)
	}
	return true
}

// BestPrice returns the best (min ask / max bid) non-empty price. Stale
// entries — prices whose level has since emptied — are purged lazily by
// repeatedly dropping the tree's best entry until a non-empty one
// surfaces or the tree is exhausted.
func (s *BookSide) BestPrice() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bestPriceLocked()
}

func (s *BookSide) bestPriceLocked() (float64, bool) {
	for {
		top, ok := s.tree.Min()
		if !ok {
			return 0, false
		}
		if !top.IsEmpty() {
			return top.Price, true
		}
		// Stale: the level emptied without being purged from the tree.
		delete(s.byPrice, top.Price)
		s.tree.Delete(top)
	}
}

// LevelAt returns the live PriceLevel at an exact price, if any. The
// returned pointer aliases the side's own storage; matching kernels use
// it to mutate TotalVolume and pop/requeue the top order in place.
func (s *BookSide) LevelAt(price float64) (*PriceLevel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.byPrice[price]
	return l, ok
}

// OrderByID looks up a resting order by id.
func (s *BookSide) OrderByID(id string) (*common.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byOrderID[id]
	return o, ok
}

// Depth walks the tree best-first and returns up to n (price, volume)
// pairs, skipping any level that has gone stale.
func (s *BookSide) Depth(n int) []PriceVolume {
	levels := s.Levels()
	if len(levels) > n {
		levels = levels[:n]
	}
	out := make([]PriceVolume, len(levels))
	for i, l := range levels {
		out[i] = PriceVolume{Price: l.Price, Volume: l.TotalVolume}
	}
	return out
}

// Levels returns every non-empty level, best-first. Used internally by
// Depth and externally by FOK admission to sum each eligible level's
// TotalVolume without an artificial level cap.
func (s *BookSide) Levels() []*PriceLevel {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*PriceLevel, 0, len(s.byPrice))
	for _, l := range s.tree.Items() {
		if !l.IsEmpty() {
			out = append(out, l)
		}
	}
	return out
}

// Len reports the number of resting orders on this side.
func (s *BookSide) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byOrderID)
}

// SetDiscipline rebinds the ordering discipline for every existing
// level (marking each dirty for lazy resort) and for levels created
// from now on.
func (s *BookSide) SetDiscipline(d common.Discipline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discipline = d
	for _, l := range s.byPrice {
		l.SetDiscipline(d)
	}
}

// Side reports which side (buy/sell) this book represents.
func (s *BookSide) Side() common.Side { return s.side }

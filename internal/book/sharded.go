package book

import (
	"hash/fnv"
	"sort"
	"sync"

	"matchbook/internal/common"
)

// ShardedBookSide partitions one side of the book across N independent
// BookSides, trading a little coordination overhead on best-price
// discovery for lock-free-between-shards cancellation.
// The shard index is a stable function of order id alone, so the same
// id always routes to the same shard regardless of which side it rests
// on.
type ShardedBookSide struct {
	side   common.Side
	shards []*BookSide

	cacheMu    sync.Mutex
	cacheValid bool
	cachedBest float64
	hasCached  bool
}

// NewShardedBookSide builds a sharded side with numShards independent
// sub-books. A power of two is recommended so the routing hash reduces
// to a mask, though any positive count works.
func NewShardedBookSide(side common.Side, numShards int) *ShardedBookSide {
	if numShards < 1 {
		numShards = 1
	}
	shards := make([]*BookSide, numShards)
	for i := range shards {
		shards[i] = NewBookSide(side)
	}
	return &ShardedBookSide{side: side, shards: shards}
}

func shardIndex(id string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32()) % n
}

// AddOrder routes to the order's shard and invalidates the best-price
// cache.
func (s *ShardedBookSide) AddOrder(o *common.Order) {
	s.shards[shardIndex(o.ID, len(s.shards))].AddOrder(o)
	s.invalidate()
}

// RemoveOrder routes directly to the owning shard; distinct ids mostly
// land on distinct shards, so concurrent cancels from different
// goroutines rarely contend.
func (s *ShardedBookSide) RemoveOrder(id string) bool {
	ok := s.shards[shardIndex(id, len(s.shards))].RemoveOrder(id)
	if ok {
		s.invalidate()
	}
	return ok
}

func (s *ShardedBookSide) invalidate() {
	s.cacheMu.Lock()
	s.cacheValid = false
	s.cacheMu.Unlock()
}

// BestPrice returns the cached global best if valid, otherwise scans
// every shard's best price and caches the min (ask) or max (bid).
func (s *ShardedBookSide) BestPrice() (float64, bool) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if s.cacheValid {
		return s.cachedBest, s.hasCached
	}

	var best float64
	found := false
	for _, shard := range s.shards {
		p, ok := shard.BestPrice()
		if !ok {
			continue
		}
		if !found {
			best, found = p, true
			continue
		}
		if s.side == Buy {
			if p > best {
				best = p
			}
		} else if p < best {
			best = p
		}
	}
	s.cachedBest, s.hasCached, s.cacheValid = best, found, true
	return best, found
}

// Levels aggregates (price, volume) across every shard, summing
// same-price volumes, and returns every level best-first with no cap —
// used where a caller needs the full uncapped volume, such as FOK
// admission.
func (s *ShardedBookSide) Levels() []PriceVolume {
	agg := make(map[float64]uint64)
	for _, shard := range s.shards {
		for _, level := range shard.Levels() {
			agg[level.Price] += level.TotalVolume
		}
	}
	out := make([]PriceVolume, 0, len(agg))
	for price, vol := range agg {
		out = append(out, PriceVolume{Price: price, Volume: vol})
	}
	if s.side == Buy {
		sort.Slice(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	}
	return out
}

// Depth returns the top n aggregated levels best-first.
func (s *ShardedBookSide) Depth(n int) []PriceVolume {
	out := s.Levels()
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// OrdersAtBest collects every resting order at the global best price
// across all shards, in ascending timestamp order — restoring global
// time priority despite partitioning.
func (s *ShardedBookSide) OrdersAtBest() []*common.Order {
	best, ok := s.BestPrice()
	if !ok {
		return nil
	}
	var all []*common.Order
	for _, shard := range s.shards {
		if level, ok := shard.LevelAt(best); ok {
			all = append(all, level.Orders...)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Timestamp.Before(all[j].Timestamp) })
	return all
}

// LevelAt returns the level for a price within a specific order's
// owning shard — used by the sharded matching kernel to mutate volume
// and requeue icebergs in place.
func (s *ShardedBookSide) LevelAt(orderID string, price float64) (*PriceLevel, bool) {
	return s.shards[shardIndex(orderID, len(s.shards))].LevelAt(price)
}

// ShardFor returns the sub-book owning an order id, for callers (such
// as the matching kernel) that need direct shard access.
func (s *ShardedBookSide) ShardFor(orderID string) *BookSide {
	return s.shards[shardIndex(orderID, len(s.shards))]
}

// NumShards reports the shard count.
func (s *ShardedBookSide) NumShards() int { return len(s.shards) }

// Len reports the total resting-order count across all shards.
func (s *ShardedBookSide) Len() int {
	total := 0
	for _, shard := range s.shards {
		total += shard.Len()
	}
	return total
}

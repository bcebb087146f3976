package exchange

import "matchbook/internal/common"

// pendingStopSet holds stop orders parked awaiting trigger, preserving
// the order they were admitted in. checkPendingStops scans them in
// that order so which stop activates first is deterministic when more
// than one triggers off the same trade, rather than depending on Go's
// randomized map iteration order.
type pendingStopSet struct {
	ids  []string
	byID map[string]*common.Order
}

func newPendingStopSet() *pendingStopSet {
	return &pendingStopSet{byID: make(map[string]*common.Order)}
}

func (s *pendingStopSet) add(o *common.Order) {
	if _, exists := s.byID[o.ID]; !exists {
		s.ids = append(s.ids, o.ID)
	}
	s.byID[o.ID] = o
}

func (s *pendingStopSet) remove(id string) bool {
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return true
}

// orderedValues returns the parked orders in admission order.
func (s *pendingStopSet) orderedValues() []*common.Order {
	out := make([]*common.Order, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.byID[id])
	}
	return out
}

func (s *pendingStopSet) len() int { return len(s.ids) }

package bidding

import (
	"fmt"
	"math"

	"live-bidding/internal/domain"
)

type ledgerNode struct {
	entry domain.BidEntry
	next  *ledgerNode
}

// BidLedger is the ordered history of accepted bids for one group,
// most-recent-first. Push/Peek/Pop/Clear are O(1). The ledger itself is not
// goroutine safe; the owning group's mutex guards it.
type BidLedger struct {
	head *ledgerNode
	size int
}

func NewBidLedger() *BidLedger {
	return &BidLedger{}
}

// Push prepends an entry and returns the new size. Non-finite amounts and
// empty bidder names are contract violations, not user errors: upstream
// validation should have caught them.
func (l *BidLedger) Push(amount float64, bidder string) (int, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return l.size, fmt.Errorf("%w: amount %v is not a number", domain.ErrInvalidBidRecord, amount)
	}
	if bidder == "" {
		return l.size, fmt.Errorf("%w: bidder name is empty", domain.ErrInvalidBidRecord)
	}

	l.head = &ledgerNode{
		entry: domain.BidEntry{Amount: amount, Bidder: bidder},
		next:  l.head,
	}
	l.size++
	return l.size, nil
}

// Peek returns the most recent entry without removing it.
func (l *BidLedger) Peek() (domain.BidEntry, bool) {
	if l.head == nil {
		return domain.BidEntry{}, false
	}
	return l.head.entry, true
}

// Pop removes and returns the most recent entry.
func (l *BidLedger) Pop() (domain.BidEntry, bool) {
	if l.head == nil {
		return domain.BidEntry{}, false
	}
	entry := l.head.entry
	l.head = l.head.next
	l.size--
	return entry, true
}

// Clear discards all entries. Idempotent.
func (l *BidLedger) Clear() {
	l.head = nil
	l.size = 0
}

func (l *BidLedger) Size() int {
	return l.size
}

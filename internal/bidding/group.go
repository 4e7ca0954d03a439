package bidding

import (
	"fmt"
	"math"
	"sync"
	"time"

	"live-bidding/internal/domain"
	"live-bidding/pkg/logger"
)

// GroupNotifier is the registry surface a group uses to reach its members.
// Groups never hold channels; all delivery goes through the registry.
type GroupNotifier interface {
	Broadcast(groupName string, message interface{}) error
	Notify(groupName, memberID string, message interface{}) error
	Teardown(groupName string) error
}

// GroupConfig carries the immutable parameters of one auction group.
type GroupConfig struct {
	GroupName        string
	ItemName         string
	TargetPrice      float64
	InactivityWindow time.Duration
	// OnClose runs exactly once when the group transitions to closed. The
	// winner is nil when no bids were placed. Persistence downstream is
	// fire-and-forget; failures must not reopen the auction.
	OnClose func(winner *domain.BidEntry)
}

// AuctionGroup is the state machine for one live auction. Every mutation of
// bid state runs under one mutex, so two near-simultaneous bids can never
// both read a stale highest bid. The inactivity timer is restarted inside
// the same critical section as the bid it follows.
type AuctionGroup struct {
	groupName   string
	itemName    string
	targetPrice float64
	notifier    GroupNotifier
	onClose     func(winner *domain.BidEntry)
	log         logger.Logger
	createdAt   time.Time

	mu            sync.Mutex
	open          bool
	hasBid        bool
	highestBid    float64
	highestBidder string
	ledger        *BidLedger
	timer         *CountdownTimer
}

func NewAuctionGroup(cfg GroupConfig, notifier GroupNotifier, log logger.Logger) *AuctionGroup {
	g := &AuctionGroup{
		groupName:   cfg.GroupName,
		itemName:    cfg.ItemName,
		targetPrice: cfg.TargetPrice,
		notifier:    notifier,
		onClose:     cfg.OnClose,
		log:         log,
		createdAt:   time.Now(),
		open:        true,
		ledger:      NewBidLedger(),
	}
	g.timer = NewCountdownTimer(cfg.InactivityWindow, g.onTimeout)
	return g
}

// PlaceBid validates and applies one bid. Refusals are reported only to the
// requester; accepted bids are broadcast to every member. Returns whether
// the bid was accepted.
func (g *AuctionGroup) PlaceBid(memberID, bidderName string, amount float64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.open {
		g.notifyMember(memberID, map[string]interface{}{
			"type":    "bid_rejected",
			"reason":  "auction_closed",
			"message": "Auction is closed. No more bids can be placed.",
		})
		return false, nil
	}

	if bidderName == "" {
		g.notifyMember(memberID, map[string]interface{}{
			"type":    "bid_rejected",
			"reason":  "invalid_bidder",
			"message": "Bidder name is required.",
		})
		return false, nil
	}

	// NaN compares false against every threshold, so it must be ruled out
	// explicitly before the amount checks below.
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		g.notifyMember(memberID, map[string]interface{}{
			"type":    "bid_rejected",
			"reason":  "invalid_amount",
			"message": "Bid must be a positive number.",
		})
		return false, nil
	}

	// Equal bids never replace the current highest: the minimum is a strict
	// 1% increment over it.
	if g.hasBid {
		minimum := g.minimumBid()
		if amount < minimum {
			g.notifyMember(memberID, map[string]interface{}{
				"type":             "bid_rejected",
				"reason":           "below_minimum",
				"current_bid":      g.highestBid,
				"current_bidder":   g.highestBidder,
				"required_minimum": minimum,
				"message":          fmt.Sprintf("Bid must be at least %.2f", minimum),
			})
			return false, nil
		}
	}

	// Record in the ledger first: the highest-bid fields may only ever
	// reflect a successfully recorded entry.
	if _, err := g.ledger.Push(amount, bidderName); err != nil {
		// Unreachable given the checks above; fail loudly if it happens.
		g.log.Error("Ledger rejected validated bid", "group", g.groupName, "error", err)
		return false, err
	}
	g.highestBid = amount
	g.highestBidder = bidderName
	g.hasBid = true

	g.broadcast(map[string]interface{}{
		"type":       "new_highest_bid",
		"group_name": g.groupName,
		"amount":     amount,
		"bidder":     bidderName,
	})

	// Restart the silence window before releasing the lock so a stale timer
	// can never fire against the updated state.
	g.timer.Start()

	if amount > g.targetPrice {
		g.closeLocked()
	}

	return true, nil
}

// Close transitions the group to closed. Idempotent: a second call is a
// no-op and broadcasts nothing.
func (g *AuctionGroup) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closeLocked()
}

func (g *AuctionGroup) closeLocked() {
	if !g.open {
		return
	}
	g.open = false
	g.timer.Stop()

	if winner, ok := g.ledger.Peek(); ok {
		g.broadcast(map[string]interface{}{
			"type":           "auction_closed",
			"group_name":     g.groupName,
			"item_name":      g.itemName,
			"winning_bid":    winner.Amount,
			"winning_bidder": winner.Bidder,
		})
		if g.onClose != nil {
			g.onClose(&winner)
		}
	} else {
		g.broadcast(map[string]interface{}{
			"type":       "auction_closed",
			"group_name": g.groupName,
			"item_name":  g.itemName,
			"message":    "Auction closed with no bids placed.",
		})
		if g.onClose != nil {
			g.onClose(nil)
		}
	}

	if err := g.notifier.Teardown(g.groupName); err != nil {
		g.log.Error("Failed to tear down group channels", "group", g.groupName, "error", err)
	}
}

// onTimeout fires when the silence window elapses with no accepted bid. It
// re-evaluates the target-price condition; a bare timeout alone does not
// close the auction. A firing that raced a concurrent Close finds the group
// closed and does nothing.
func (g *AuctionGroup) onTimeout() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.open {
		return
	}
	if g.hasBid && g.highestBid > g.targetPrice {
		g.closeLocked()
	}
}

func (g *AuctionGroup) minimumBid() float64 {
	return g.highestBid * 1.01
}

func (g *AuctionGroup) broadcast(message interface{}) {
	if err := g.notifier.Broadcast(g.groupName, message); err != nil {
		g.log.Error("Broadcast failed", "group", g.groupName, "error", err)
	}
}

func (g *AuctionGroup) notifyMember(memberID string, message interface{}) {
	if err := g.notifier.Notify(g.groupName, memberID, message); err != nil {
		g.log.Error("Failed to notify member", "group", g.groupName, "member", memberID, "error", err)
	}
}

func (g *AuctionGroup) GroupName() string { return g.groupName }

func (g *AuctionGroup) ItemName() string { return g.itemName }

func (g *AuctionGroup) TargetPrice() float64 { return g.targetPrice }

func (g *AuctionGroup) CreatedAt() time.Time { return g.createdAt }

func (g *AuctionGroup) IsOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

// HighestBid returns the current highest bid, or nil when no bid has been
// accepted yet.
func (g *AuctionGroup) HighestBid() *float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.hasBid {
		return nil
	}
	amount := g.highestBid
	return &amount
}

// Winner returns the most recent accepted bid.
func (g *AuctionGroup) Winner() (domain.BidEntry, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ledger.Peek()
}

func (g *AuctionGroup) LedgerSize() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ledger.Size()
}

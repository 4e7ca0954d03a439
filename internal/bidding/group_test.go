package bidding

import (
	"math"
	"sync"
	"testing"
	"time"

	"live-bidding/internal/domain"
	"live-bidding/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu        sync.Mutex
	broadcast []map[string]interface{}
	notified  []map[string]interface{}
	teardowns int
}

func (f *fakeNotifier) Broadcast(groupName string, message interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcast = append(f.broadcast, message.(map[string]interface{}))
	return nil
}

func (f *fakeNotifier) Notify(groupName, memberID string, message interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, message.(map[string]interface{}))
	return nil
}

func (f *fakeNotifier) Teardown(groupName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teardowns++
	return nil
}

func (f *fakeNotifier) broadcastsOfType(msgType string) []map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []map[string]interface{}
	for _, msg := range f.broadcast {
		if msg["type"] == msgType {
			out = append(out, msg)
		}
	}
	return out
}

func (f *fakeNotifier) lastNotified() map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.notified) == 0 {
		return nil
	}
	return f.notified[len(f.notified)-1]
}

func (f *fakeNotifier) teardownCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.teardowns
}

func newTestGroup(notifier *fakeNotifier, targetPrice float64, onClose func(*domain.BidEntry)) *AuctionGroup {
	return NewAuctionGroup(GroupConfig{
		GroupName:        "Watch",
		ItemName:         "vintage watch",
		TargetPrice:      targetPrice,
		InactivityWindow: time.Hour,
		OnClose:          onClose,
	}, notifier, logger.Nop())
}

func TestAuctionGroup_MinimumIncrementScenario(t *testing.T) {
	notifier := &fakeNotifier{}
	group := newTestGroup(notifier, 1000, nil)

	accepted, err := group.PlaceBid("m1", "alice", 500)
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.Equal(t, 500.0, *group.HighestBid())

	// 504 < 505 minimum (500 * 1.01): refused, requester-only
	accepted, err = group.PlaceBid("m2", "bob", 504)
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.Equal(t, 500.0, *group.HighestBid())
	assert.Equal(t, 1, group.LedgerSize())

	refusal := notifier.lastNotified()
	require.NotNil(t, refusal)
	assert.Equal(t, "bid_rejected", refusal["type"])
	assert.InDelta(t, 505.0, refusal["required_minimum"].(float64), 0.0001)

	accepted, err = group.PlaceBid("m2", "bob", 600)
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.Equal(t, 600.0, *group.HighestBid())

	// 1100 > 1000 target: accepted and the auction auto-closes
	accepted, err = group.PlaceBid("m1", "alice", 1100)
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.False(t, group.IsOpen())

	winner, ok := group.Winner()
	require.True(t, ok)
	assert.Equal(t, 1100.0, winner.Amount)
	assert.Equal(t, "alice", winner.Bidder)
	assert.Equal(t, 1, notifier.teardownCount())
}

func TestAuctionGroup_EqualBidRefused(t *testing.T) {
	notifier := &fakeNotifier{}
	group := newTestGroup(notifier, 10000, nil)

	group.PlaceBid("m1", "alice", 500)

	accepted, err := group.PlaceBid("m2", "bob", 500)
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.Equal(t, 500.0, *group.HighestBid())

	winner, _ := group.Winner()
	assert.Equal(t, "alice", winner.Bidder)
}

func TestAuctionGroup_NonPositiveBidRefused(t *testing.T) {
	notifier := &fakeNotifier{}
	group := newTestGroup(notifier, 1000, nil)

	accepted, err := group.PlaceBid("m1", "alice", 0)
	require.NoError(t, err)
	assert.False(t, accepted)

	accepted, err = group.PlaceBid("m1", "alice", -5)
	require.NoError(t, err)
	assert.False(t, accepted)

	assert.Nil(t, group.HighestBid())
	assert.Equal(t, 0, group.LedgerSize())
}

func TestAuctionGroup_NonFiniteBidRefused(t *testing.T) {
	notifier := &fakeNotifier{}
	group := newTestGroup(notifier, 1000, nil)

	for _, amount := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		accepted, err := group.PlaceBid("m1", "alice", amount)
		require.NoError(t, err)
		assert.False(t, accepted)
	}

	// Nothing leaked into the bid state
	assert.Nil(t, group.HighestBid())
	assert.Equal(t, 0, group.LedgerSize())

	// The minimum-increment check still works afterwards
	accepted, err := group.PlaceBid("m1", "alice", 500)
	require.NoError(t, err)
	require.True(t, accepted)

	accepted, err = group.PlaceBid("m2", "bob", 504)
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.Equal(t, 500.0, *group.HighestBid())
}

func TestAuctionGroup_NaNAfterBidsRefused(t *testing.T) {
	notifier := &fakeNotifier{}
	group := newTestGroup(notifier, 1000, nil)

	group.PlaceBid("m1", "alice", 500)

	accepted, err := group.PlaceBid("m2", "bob", math.NaN())
	require.NoError(t, err)
	assert.False(t, accepted)

	assert.Equal(t, 500.0, *group.HighestBid())
	assert.Equal(t, 1, group.LedgerSize())
	winner, ok := group.Winner()
	require.True(t, ok)
	assert.Equal(t, 500.0, winner.Amount)
}

func TestAuctionGroup_EmptyBidderRefused(t *testing.T) {
	notifier := &fakeNotifier{}
	group := newTestGroup(notifier, 1000, nil)

	accepted, err := group.PlaceBid("m1", "", 500)
	require.NoError(t, err)
	assert.False(t, accepted)

	assert.Nil(t, group.HighestBid())
	assert.Equal(t, 0, group.LedgerSize())

	refusal := notifier.lastNotified()
	require.NotNil(t, refusal)
	assert.Equal(t, "bid_rejected", refusal["type"])
}

func TestAuctionGroup_BidAfterCloseIsNoOp(t *testing.T) {
	notifier := &fakeNotifier{}
	group := newTestGroup(notifier, 1000, nil)

	group.PlaceBid("m1", "alice", 500)
	group.Close()

	accepted, err := group.PlaceBid("m2", "bob", 900)
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.Equal(t, 500.0, *group.HighestBid())
	assert.Equal(t, 1, group.LedgerSize())

	refusal := notifier.lastNotified()
	require.NotNil(t, refusal)
	assert.Equal(t, "auction_closed", refusal["reason"])
}

func TestAuctionGroup_CloseIdempotent(t *testing.T) {
	notifier := &fakeNotifier{}
	var closeCalls int
	group := newTestGroup(notifier, 1000, func(*domain.BidEntry) {
		closeCalls++
	})

	group.PlaceBid("m1", "alice", 500)
	group.Close()
	group.Close()

	assert.False(t, group.IsOpen())
	assert.Len(t, notifier.broadcastsOfType("auction_closed"), 1)
	assert.Equal(t, 1, notifier.teardownCount())
	assert.Equal(t, 1, closeCalls)
}

func TestAuctionGroup_CloseWithNoBids(t *testing.T) {
	notifier := &fakeNotifier{}
	var winner *domain.BidEntry
	called := false
	group := newTestGroup(notifier, 1000, func(w *domain.BidEntry) {
		called = true
		winner = w
	})

	group.Close()

	require.True(t, called)
	assert.Nil(t, winner)

	closing := notifier.broadcastsOfType("auction_closed")
	require.Len(t, closing, 1)
	assert.NotContains(t, closing[0], "winning_bid")
}

func TestAuctionGroup_CloseReportsWinner(t *testing.T) {
	notifier := &fakeNotifier{}
	var winner *domain.BidEntry
	group := newTestGroup(notifier, 1000, func(w *domain.BidEntry) {
		winner = w
	})

	group.PlaceBid("m1", "alice", 500)
	group.PlaceBid("m2", "bob", 600)
	group.Close()

	require.NotNil(t, winner)
	assert.Equal(t, 600.0, winner.Amount)
	assert.Equal(t, "bob", winner.Bidder)
}

func TestAuctionGroup_TimeoutAloneDoesNotClose(t *testing.T) {
	notifier := &fakeNotifier{}
	group := NewAuctionGroup(GroupConfig{
		GroupName:        "Watch",
		ItemName:         "vintage watch",
		TargetPrice:      1000,
		InactivityWindow: 20 * time.Millisecond,
	}, notifier, logger.Nop())

	// Accepted bid below target restarts the silence window; its expiry
	// only re-checks the target-price condition.
	group.PlaceBid("m1", "alice", 500)
	time.Sleep(100 * time.Millisecond)

	assert.True(t, group.IsOpen())
	assert.Equal(t, 0, notifier.teardownCount())
}

func TestAuctionGroup_ConcurrentEqualBidsExactlyOneWins(t *testing.T) {
	notifier := &fakeNotifier{}
	group := newTestGroup(notifier, 10000, nil)

	group.PlaceBid("m0", "seed", 600)

	// Two racing bids of 700 against a 606 minimum: whichever enters the
	// critical section first wins, the other sees a 707 minimum.
	var wg sync.WaitGroup
	for _, bidder := range []string{"alice", "bob"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			group.PlaceBid(name, name, 700)
		}(bidder)
	}
	wg.Wait()

	assert.Equal(t, 700.0, *group.HighestBid())
	assert.Equal(t, 2, group.LedgerSize()) // seed + exactly one of the pair

	winner, _ := group.Winner()
	assert.Equal(t, 700.0, winner.Amount)
}

func TestAuctionGroup_ConcurrentBidsStayConsistent(t *testing.T) {
	notifier := &fakeNotifier{}
	group := newTestGroup(notifier, 10000, nil)

	group.PlaceBid("m0", "seed", 600)

	var wg sync.WaitGroup
	for _, bid := range []struct {
		name   string
		amount float64
	}{{"alice", 700}, {"bob", 750}} {
		wg.Add(1)
		go func(name string, amount float64) {
			defer wg.Done()
			group.PlaceBid(name, name, amount)
		}(bid.name, bid.amount)
	}
	wg.Wait()

	// 750 always ends up the recorded highest regardless of interleaving,
	// and the ledger head agrees with it.
	assert.Equal(t, 750.0, *group.HighestBid())
	winner, ok := group.Winner()
	require.True(t, ok)
	assert.Equal(t, 750.0, winner.Amount)
	assert.Equal(t, "bob", winner.Bidder)
}

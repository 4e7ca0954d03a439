package domain

import (
	"time"
)

// BidEntry is one accepted bid as recorded in a group's ledger.
type BidEntry struct {
	Amount float64 `json:"amount"`
	Bidder string  `json:"bidder"`
}

// GroupSnapshot is a point-in-time view of one open auction group.
type GroupSnapshot struct {
	GroupName   string   `json:"group_name"`
	ItemName    string   `json:"item_name"`
	MemberCount int      `json:"active_member_count"`
	HighestBid  *float64 `json:"current_highest_bid"`
}

// AuctionResult is the single record handed to the history repository when
// an auction closes with at least one accepted bid.
type AuctionResult struct {
	ID            string
	VendorID      string
	ItemName      string
	WinningPrice  float64
	WinningBidder string
	ClosedAt      time.Time
}

type BidEvent struct {
	Type      BidEventType `json:"type"`
	GroupName string       `json:"group_name"`
	Bidder    string       `json:"bidder"`
	Amount    float64      `json:"amount"`
	Timestamp time.Time    `json:"timestamp"`
}

type BidEventType string

const (
	BidAccepted   BidEventType = "bid_accepted"
	AuctionClosed BidEventType = "auction_closed"
	GroupCreated  BidEventType = "group_created"
)

type User struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Username  string
	Password  string
}

type Item struct {
	ID          int64
	OwnerID     string
	Name        string
	Description string
	Price       int64
	Available   bool
}

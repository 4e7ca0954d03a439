package domain

import (
	"context"
)

// MemberChannel is one participant's outbound channel. The registry owns
// every channel; groups never hold one directly.
type MemberChannel interface {
	Send(message interface{}) error
	Close() error
}

// Repository interfaces
type HistoryRepository interface {
	SaveResult(ctx context.Context, result *AuctionResult) error
	GetResultsByVendor(ctx context.Context, vendorID string) ([]*AuctionResult, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *Item) error
	GetItem(ctx context.Context, id int64) (*Item, error)
	GetAvailableItems(ctx context.Context) ([]*Item, error)
}

// Event interfaces
type EventPublisher interface {
	PublishBidEvent(ctx context.Context, event *BidEvent) error
}

// SessionStore records issued access tokens with a TTL.
type SessionStore interface {
	SaveSession(ctx context.Context, userID, token string) error
	GetSession(ctx context.Context, userID string) (string, error)
	DeleteSession(ctx context.Context, userID string) error
}

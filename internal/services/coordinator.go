package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"live-bidding/internal/bidding"
	"live-bidding/internal/domain"
	"live-bidding/pkg/logger"

	"github.com/google/uuid"
)

// Group names: letters and interior whitespace only, starting with a letter.
var groupNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z ]*$`)

// AuctionCoordinator is the facade the boundary layer talks to. It owns
// cross-cutting authorization (admins cannot bid, only admins close) and
// input validation, and translates external requests into registry and
// group calls.
type AuctionCoordinator struct {
	registry         *bidding.GroupRegistry
	history          domain.HistoryRepository
	events           domain.EventPublisher
	inactivityWindow time.Duration
	log              logger.Logger
}

func NewAuctionCoordinator(
	registry *bidding.GroupRegistry,
	history domain.HistoryRepository,
	events domain.EventPublisher,
	inactivityWindow time.Duration,
	log logger.Logger,
) *AuctionCoordinator {
	return &AuctionCoordinator{
		registry:         registry,
		history:          history,
		events:           events,
		inactivityWindow: inactivityWindow,
		log:              log,
	}
}

// NewIdentity mints an opaque participant identity, scoped to one
// group membership.
func (c *AuctionCoordinator) NewIdentity() string {
	return uuid.NewString()
}

func (c *AuctionCoordinator) CreateGroup(adminID, groupName, itemName string, targetPrice float64, channel domain.MemberChannel) error {
	if targetPrice <= 0 {
		return fmt.Errorf("%w: target price must be greater than zero", domain.ErrInvalidInput)
	}
	if !groupNamePattern.MatchString(groupName) {
		return fmt.Errorf("%w: group name must only contain letters and spaces", domain.ErrInvalidInput)
	}
	if itemName == "" {
		return fmt.Errorf("%w: item name is required", domain.ErrInvalidInput)
	}

	cfg := bidding.GroupConfig{
		GroupName:        groupName,
		ItemName:         itemName,
		TargetPrice:      targetPrice,
		InactivityWindow: c.inactivityWindow,
		OnClose: func(winner *domain.BidEntry) {
			c.handleClose(adminID, groupName, itemName, winner)
		},
	}

	if _, err := c.registry.CreateGroup(adminID, channel, cfg); err != nil {
		return err
	}

	c.publishEvent(&domain.BidEvent{
		Type:      domain.GroupCreated,
		GroupName: groupName,
		Timestamp: time.Now(),
	})
	return nil
}

func (c *AuctionCoordinator) JoinGroup(memberID, groupName string, channel domain.MemberChannel) error {
	if !groupNamePattern.MatchString(groupName) {
		return fmt.Errorf("%w: group name must only contain letters and spaces", domain.ErrInvalidInput)
	}
	return c.registry.Join(groupName, memberID, channel)
}

// PlaceBid applies a bid on behalf of a member. The group's admin is
// structurally barred from bidding; the call is refused before the group is
// touched.
func (c *AuctionCoordinator) PlaceBid(identity, groupName, bidderName string, amount float64) error {
	admin, err := c.registry.Admin(groupName)
	if err != nil {
		return err
	}
	if identity == admin {
		return domain.ErrAdminForbidden
	}

	group, err := c.registry.Group(groupName)
	if err != nil {
		return err
	}

	accepted, err := group.PlaceBid(identity, bidderName, amount)
	if err != nil {
		return err
	}

	if accepted {
		c.publishEvent(&domain.BidEvent{
			Type:      domain.BidAccepted,
			GroupName: groupName,
			Bidder:    bidderName,
			Amount:    amount,
			Timestamp: time.Now(),
		})
	}
	return nil
}

// CloseAuction is honored only for the group's admin.
func (c *AuctionCoordinator) CloseAuction(identity, groupName string) error {
	admin, err := c.registry.Admin(groupName)
	if err != nil {
		return err
	}
	if identity != admin {
		return domain.ErrUnauthorized
	}

	group, err := c.registry.Group(groupName)
	if err != nil {
		return err
	}

	group.Close()
	return nil
}

func (c *AuctionCoordinator) Disconnect(identity, groupName string) {
	c.registry.Disconnect(groupName, identity)
}

// ListGroups returns one page of the open-group snapshot. Pages are
// 1-based; a page past the end is empty.
func (c *AuctionCoordinator) ListGroups(page, pageSize int) ([]domain.GroupSnapshot, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	snapshots := c.registry.Snapshots()
	total := len(snapshots)

	start := (page - 1) * pageSize
	if start >= total {
		return []domain.GroupSnapshot{}, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return snapshots[start:end], total
}

// handleClose persists the winning bid and publishes the closing event. It
// runs inside the closing group's critical section, so both hand off to
// goroutines: a persistence or publish failure is logged and never reopens
// the auction, and neither may stall the group mutex.
func (c *AuctionCoordinator) handleClose(adminID, groupName, itemName string, winner *domain.BidEntry) {
	if winner == nil {
		c.log.Info("Auction closed with no bids", "group", groupName)
		return
	}

	result := &domain.AuctionResult{
		ID:            uuid.NewString(),
		VendorID:      adminID,
		ItemName:      itemName,
		WinningPrice:  winner.Amount,
		WinningBidder: winner.Bidder,
		ClosedAt:      time.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.history.SaveResult(ctx, result); err != nil {
			c.log.Error("Failed to persist auction result", "group", groupName, "error", err)
		}
	}()

	go c.publishEvent(&domain.BidEvent{
		Type:      domain.AuctionClosed,
		GroupName: groupName,
		Bidder:    winner.Bidder,
		Amount:    winner.Amount,
		Timestamp: time.Now(),
	})
}

func (c *AuctionCoordinator) publishEvent(event *domain.BidEvent) {
	if c.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.events.PublishBidEvent(ctx, event); err != nil {
		c.log.Error("Failed to publish event", "type", event.Type, "group", event.GroupName, "error", err)
	}
}

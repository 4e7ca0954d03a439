package bidding

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"live-bidding/internal/domain"
	"live-bidding/pkg/logger"
)

type groupEntry struct {
	admin   string
	members map[string]domain.MemberChannel // member id -> outbound channel
	group   *AuctionGroup
}

// GroupRegistry tracks every open auction group: its admin, its connected
// members and their channels, and the live AuctionGroup instance. The
// registry exclusively owns all channels and all group instances. Lock
// ordering: a group's mutex may be held while calling into the registry,
// never the reverse.
type GroupRegistry struct {
	mu     sync.RWMutex
	groups map[string]*groupEntry
	log    logger.Logger
}

func NewGroupRegistry(log logger.Logger) *GroupRegistry {
	return &GroupRegistry{
		groups: make(map[string]*groupEntry),
		log:    log,
	}
}

// CreateGroup registers a new group with the admin as sole initial member
// and returns a fresh AuctionGroup bound to this registry.
func (r *GroupRegistry) CreateGroup(adminID string, channel domain.MemberChannel, cfg GroupConfig) (*AuctionGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.groups[cfg.GroupName]; exists {
		return nil, fmt.Errorf("%w: %q", domain.ErrDuplicateGroup, cfg.GroupName)
	}

	group := NewAuctionGroup(cfg, r, r.log)
	r.groups[cfg.GroupName] = &groupEntry{
		admin:   adminID,
		members: map[string]domain.MemberChannel{adminID: channel},
		group:   group,
	}

	r.log.Info("Group created", "group", cfg.GroupName, "admin", adminID, "target_price", cfg.TargetPrice)
	return group, nil
}

func (r *GroupRegistry) Join(groupName, memberID string, channel domain.MemberChannel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.groups[groupName]
	if !exists {
		return fmt.Errorf("%w: %q", domain.ErrGroupNotFound, groupName)
	}

	entry.members[memberID] = channel
	r.log.Info("Member joined group", "group", groupName, "member", memberID)
	return nil
}

// Disconnect removes a member's channel and closes it. No-op if the group
// or member is already gone.
func (r *GroupRegistry) Disconnect(groupName, memberID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.groups[groupName]
	if !exists {
		return
	}

	channel, exists := entry.members[memberID]
	if !exists {
		return
	}

	delete(entry.members, memberID)
	if err := channel.Close(); err != nil {
		r.log.Error("Failed to close channel", "group", groupName, "member", memberID, "error", err)
	}
	r.log.Info("Member disconnected", "group", groupName, "member", memberID)
}

// Broadcast sends a message to every channel currently registered for the
// group. Delivery is best-effort, at most once per channel: a failure on one
// recipient is logged and does not abort the rest.
func (r *GroupRegistry) Broadcast(groupName string, message interface{}) error {
	r.mu.RLock()
	entry, exists := r.groups[groupName]
	if !exists {
		r.mu.RUnlock()
		return fmt.Errorf("%w: %q", domain.ErrGroupNotFound, groupName)
	}

	recipients := make(map[string]domain.MemberChannel, len(entry.members))
	for id, ch := range entry.members {
		recipients[id] = ch
	}
	r.mu.RUnlock()

	for memberID, channel := range recipients {
		if err := channel.Send(message); err != nil {
			r.log.Error("Failed to send to member", "group", groupName, "member", memberID, "error", err)
		}
	}
	return nil
}

// Notify sends a message to one member only.
func (r *GroupRegistry) Notify(groupName, memberID string, message interface{}) error {
	r.mu.RLock()
	entry, exists := r.groups[groupName]
	if !exists {
		r.mu.RUnlock()
		return fmt.Errorf("%w: %q", domain.ErrGroupNotFound, groupName)
	}
	channel, exists := entry.members[memberID]
	r.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %q in group %q", domain.ErrMemberNotFound, memberID, groupName)
	}
	return channel.Send(message)
}

// Teardown closes every channel in the group and removes the entry.
func (r *GroupRegistry) Teardown(groupName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.groups[groupName]
	if !exists {
		return fmt.Errorf("%w: %q", domain.ErrGroupNotFound, groupName)
	}

	for memberID, channel := range entry.members {
		if err := channel.Close(); err != nil {
			r.log.Error("Failed to close channel", "group", groupName, "member", memberID, "error", err)
		}
	}
	delete(r.groups, groupName)

	r.log.Info("Group torn down", "group", groupName)
	return nil
}

func (r *GroupRegistry) Admin(groupName string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.groups[groupName]
	if !exists {
		return "", fmt.Errorf("%w: %q", domain.ErrGroupNotFound, groupName)
	}
	return entry.admin, nil
}

func (r *GroupRegistry) Group(groupName string) (*AuctionGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.groups[groupName]
	if !exists {
		return nil, fmt.Errorf("%w: %q", domain.ErrGroupNotFound, groupName)
	}
	return entry.group, nil
}

func (r *GroupRegistry) MemberCount(groupName string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.groups[groupName]
	if !exists {
		return 0
	}
	return len(entry.members)
}

// Snapshots returns a point-in-time view of all open groups, oldest first.
// The order is stable across calls so paginated reads compose. Group state is
// read after releasing the registry lock; a group's own mutex must never be
// acquired under it.
func (r *GroupRegistry) Snapshots() []domain.GroupSnapshot {
	r.mu.RLock()
	type view struct {
		group       *AuctionGroup
		memberCount int
	}
	views := make([]view, 0, len(r.groups))
	for _, entry := range r.groups {
		views = append(views, view{group: entry.group, memberCount: len(entry.members)})
	}
	r.mu.RUnlock()

	sort.Slice(views, func(i, j int) bool {
		ci, cj := views[i].group.CreatedAt(), views[j].group.CreatedAt()
		if ci.Equal(cj) {
			return views[i].group.GroupName() < views[j].group.GroupName()
		}
		return ci.Before(cj)
	})

	snapshots := make([]domain.GroupSnapshot, 0, len(views))
	for _, v := range views {
		if !v.group.IsOpen() {
			continue
		}
		snapshots = append(snapshots, domain.GroupSnapshot{
			GroupName:   v.group.GroupName(),
			ItemName:    v.group.ItemName(),
			MemberCount: v.memberCount,
			HighestBid:  v.group.HighestBid(),
		})
	}
	return snapshots
}

// GroupsOlderThan returns open groups created before the cutoff. Used by the
// lifetime sweeper.
func (r *GroupRegistry) GroupsOlderThan(maxAge time.Duration) []*AuctionGroup {
	cutoff := time.Now().Add(-maxAge)

	r.mu.RLock()
	groups := make([]*AuctionGroup, 0, len(r.groups))
	for _, entry := range r.groups {
		groups = append(groups, entry.group)
	}
	r.mu.RUnlock()

	var expired []*AuctionGroup
	for _, group := range groups {
		if group.CreatedAt().Before(cutoff) && group.IsOpen() {
			expired = append(expired, group)
		}
	}
	return expired
}

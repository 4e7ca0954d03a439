package services

import (
	"context"
	"fmt"

	"live-bidding/internal/domain"
	"live-bidding/pkg/logger"
)

type CreateItemRequest struct {
	Name        string `json:"item_name"`
	Description string `json:"item_description"`
	Price       int64  `json:"price"`
	Available   bool   `json:"available"`
}

type ItemView struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Owner       string `json:"owner"`
}

// ItemService is the thin listing layer; items are what auction groups get
// created for, but the bidding core never depends on it.
type ItemService struct {
	items domain.ItemRepository
	users domain.UserRepository
	log   logger.Logger
}

func NewItemService(items domain.ItemRepository, users domain.UserRepository, log logger.Logger) *ItemService {
	return &ItemService{items: items, users: users, log: log}
}

func (s *ItemService) CreateItem(ctx context.Context, ownerID string, req CreateItemRequest) error {
	if req.Name == "" {
		return fmt.Errorf("%w: item name is required", domain.ErrInvalidInput)
	}
	if req.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", domain.ErrInvalidInput)
	}

	item := &domain.Item{
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Available:   req.Available,
	}
	return s.items.CreateItem(ctx, item)
}

func (s *ItemService) GetItem(ctx context.Context, id int64) (*ItemView, error) {
	item, err := s.items.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}

	view := &ItemView{
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
	}

	owner, err := s.users.GetUserByID(ctx, item.OwnerID)
	if err != nil {
		s.log.Error("Failed to resolve item owner", "item_id", id, "error", err)
	} else if owner != nil {
		view.Owner = owner.Username
	}
	return view, nil
}

func (s *ItemService) ListAvailable(ctx context.Context) ([]*domain.Item, error) {
	return s.items.GetAvailableItems(ctx)
}

package mysql

import (
	"context"
	"database/sql"
	"errors"

	"live-bidding/internal/domain"
)

type MySQLItemRepository struct {
	db *sql.DB
}

func NewMySQLItemRepository(db *sql.DB) *MySQLItemRepository {
	return &MySQLItemRepository{db: db}
}

func (r *MySQLItemRepository) CreateItem(ctx context.Context, item *domain.Item) error {
	query := `
        INSERT INTO items (owner_id, item_name, item_description, price, available)
        VALUES (?, ?, ?, ?, ?)
    `
	result, err := r.db.ExecContext(ctx, query,
		item.OwnerID, item.Name, item.Description, item.Price, item.Available)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err == nil {
		item.ID = id
	}
	return nil
}

func (r *MySQLItemRepository) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	query := `
        SELECT item_id, owner_id, item_name, item_description, price, available
        FROM items WHERE item_id = ?
    `

	var item domain.Item
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.OwnerID, &item.Name, &item.Description, &item.Price, &item.Available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *MySQLItemRepository) GetAvailableItems(ctx context.Context) ([]*domain.Item, error) {
	query := `
        SELECT item_id, owner_id, item_name, item_description, price, available
        FROM items WHERE available = TRUE
    `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		var item domain.Item
		err := rows.Scan(&item.ID, &item.OwnerID, &item.Name, &item.Description, &item.Price, &item.Available)
		if err != nil {
			return nil, err
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

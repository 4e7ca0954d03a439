package mysql

import (
	"context"
	"database/sql"

	"live-bidding/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLHistoryRepository struct {
	db *sql.DB
}

func NewMySQLHistoryRepository(db *sql.DB) *MySQLHistoryRepository {
	return &MySQLHistoryRepository{db: db}
}

func (r *MySQLHistoryRepository) SaveResult(ctx context.Context, result *domain.AuctionResult) error {
	query := `
        INSERT INTO bidding_history (id, vendor_id, item_name, price, buyer, closed_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		result.ID, result.VendorID, result.ItemName,
		result.WinningPrice, result.WinningBidder, result.ClosedAt)
	return err
}

func (r *MySQLHistoryRepository) GetResultsByVendor(ctx context.Context, vendorID string) ([]*domain.AuctionResult, error) {
	query := `
        SELECT id, vendor_id, item_name, price, buyer, closed_at
        FROM bidding_history
        WHERE vendor_id = ?
        ORDER BY closed_at DESC
    `

	rows, err := r.db.QueryContext(ctx, query, vendorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.AuctionResult
	for rows.Next() {
		var result domain.AuctionResult
		err := rows.Scan(&result.ID, &result.VendorID, &result.ItemName,
			&result.WinningPrice, &result.WinningBidder, &result.ClosedAt)
		if err != nil {
			return nil, err
		}
		results = append(results, &result)
	}

	return results, rows.Err()
}

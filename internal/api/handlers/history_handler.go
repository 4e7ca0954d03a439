package handlers

import (
	"encoding/json"
	"net/http"

	"live-bidding/internal/domain"
	"live-bidding/pkg/logger"
)

// HistoryHandler serves closed-auction results for a vendor.
type HistoryHandler struct {
	history domain.HistoryRepository
	log     logger.Logger
}

func NewHistoryHandler(history domain.HistoryRepository, log logger.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, log: log}
}

// ListByVendor handles GET /bidding/history?vendor_id=
func (h *HistoryHandler) ListByVendor(w http.ResponseWriter, r *http.Request) {
	vendorID := r.URL.Query().Get("vendor_id")
	if vendorID == "" {
		http.Error(w, "vendor_id is required", http.StatusBadRequest)
		return
	}

	results, err := h.history.GetResultsByVendor(r.Context(), vendorID)
	if err != nil {
		h.log.Error("Failed to fetch auction history", "vendor", vendorID, "error", err)
		http.Error(w, "failed to fetch history", http.StatusInternalServerError)
		return
	}

	views := make([]map[string]interface{}, 0, len(results))
	for _, result := range results {
		views = append(views, map[string]interface{}{
			"item_name":      result.ItemName,
			"winning_price":  result.WinningPrice,
			"winning_bidder": result.WinningBidder,
			"closed_at":      result.ClosedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"items": views}); err != nil {
		h.log.Error("Failed to encode history listing", "error", err)
	}
}

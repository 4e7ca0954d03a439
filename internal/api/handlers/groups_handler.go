package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"live-bidding/internal/services"
	"live-bidding/pkg/logger"
)

// GroupsHandler serves the read-only group listing on the realtime service.
type GroupsHandler struct {
	coordinator *services.AuctionCoordinator
	log         logger.Logger
}

func NewGroupsHandler(coordinator *services.AuctionCoordinator, log logger.Logger) *GroupsHandler {
	return &GroupsHandler{coordinator: coordinator, log: log}
}

// ListGroups handles GET /bidding/groups?page=&size=
func (h *GroupsHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	size := queryInt(r, "size", 10)

	groups, total := h.coordinator.ListGroups(page, size)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"items": groups,
		"total": total,
		"page":  page,
		"size":  size,
	}); err != nil {
		h.log.Error("Failed to encode group listing", "error", err)
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

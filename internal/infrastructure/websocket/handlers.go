package websocket

import (
	"errors"
	"net/http"
	"strconv"

	"live-bidding/internal/domain"
	"live-bidding/internal/services"
	"live-bidding/pkg/logger"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// Handler terminates one persistent connection per admin or bidder and turns
// inbound frames into coordinator calls.
type Handler struct {
	coordinator *services.AuctionCoordinator
	log         logger.Logger
}

func NewHandler(coordinator *services.AuctionCoordinator, log logger.Logger) *Handler {
	return &Handler{coordinator: coordinator, log: log}
}

// HandleCreate upgrades the connection, mints the admin identity and opens
// a new auction group. GET /ws/create?group_name=&item_name=&target_price=
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	groupName := r.URL.Query().Get("group_name")
	itemName := r.URL.Query().Get("item_name")
	targetPrice, err := strconv.ParseFloat(r.URL.Query().Get("target_price"), 64)
	if err != nil {
		http.Error(w, "target_price must be a number", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	channel := NewChannel(conn)
	adminID := h.coordinator.NewIdentity()

	if err := h.coordinator.CreateGroup(adminID, groupName, itemName, targetPrice, channel); err != nil {
		h.sendError(channel, err)
		channel.Close()
		return
	}

	channel.Send(map[string]interface{}{
		"type":       "group_created",
		"group_name": groupName,
		"identity":   adminID,
	})

	go h.adminLoop(conn, channel, adminID, groupName)
}

// HandleJoin upgrades the connection, mints a member identity and joins an
// existing group. GET /ws/join?group_name=
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	groupName := r.URL.Query().Get("group_name")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	channel := NewChannel(conn)
	memberID := h.coordinator.NewIdentity()

	if err := h.coordinator.JoinGroup(memberID, groupName, channel); err != nil {
		h.sendError(channel, err)
		channel.Close()
		return
	}

	channel.Send(map[string]interface{}{
		"type":       "joined",
		"group_name": groupName,
		"identity":   memberID,
	})

	go h.memberLoop(conn, channel, memberID, groupName)
}

func (h *Handler) adminLoop(conn *websocket.Conn, channel *Channel, adminID, groupName string) {
	defer h.coordinator.Disconnect(adminID, groupName)

	for {
		var msg map[string]interface{}
		if err := conn.ReadJSON(&msg); err != nil {
			h.log.Debug("Admin connection closed", "group", groupName, "error", err)
			return
		}

		switch msgType(msg) {
		case "close_auction":
			if err := h.coordinator.CloseAuction(adminID, groupName); err != nil {
				h.sendError(channel, err)
			}
		case "place_bid":
			// Structurally refused: the creator cannot bid in their own auction.
			h.sendError(channel, domain.ErrAdminForbidden)
		case "ping":
			channel.Send(map[string]string{"type": "pong"})
		default:
			channel.Send(map[string]string{"type": "error", "message": "unknown message type"})
		}
	}
}

func (h *Handler) memberLoop(conn *websocket.Conn, channel *Channel, memberID, groupName string) {
	defer h.coordinator.Disconnect(memberID, groupName)

	for {
		var msg map[string]interface{}
		if err := conn.ReadJSON(&msg); err != nil {
			h.log.Debug("Member connection closed", "group", groupName, "member", memberID, "error", err)
			return
		}

		switch msgType(msg) {
		case "place_bid":
			h.handleBidMessage(channel, memberID, groupName, msg)
		case "ping":
			channel.Send(map[string]string{"type": "pong"})
		default:
			channel.Send(map[string]string{"type": "error", "message": "unknown message type"})
		}
	}
}

func (h *Handler) handleBidMessage(channel *Channel, memberID, groupName string, msg map[string]interface{}) {
	amount, ok := msg["amount"].(float64)
	if !ok {
		channel.Send(map[string]string{"type": "error", "message": "amount must be a number"})
		return
	}

	bidderName, _ := msg["bidder_name"].(string)
	if bidderName == "" {
		channel.Send(map[string]string{"type": "error", "message": "bidder_name is required"})
		return
	}

	if err := h.coordinator.PlaceBid(memberID, groupName, bidderName, amount); err != nil {
		h.sendError(channel, err)
	}
}

func (h *Handler) sendError(channel *Channel, err error) {
	message := "internal error"
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrDuplicateGroup),
		errors.Is(err, domain.ErrGroupNotFound),
		errors.Is(err, domain.ErrAdminForbidden),
		errors.Is(err, domain.ErrUnauthorized):
		message = err.Error()
	default:
		h.log.Error("Request failed", "error", err)
	}

	if sendErr := channel.Send(map[string]string{"type": "error", "message": message}); sendErr != nil {
		h.log.Debug("Failed to send error to client", "error", sendErr)
	}
}

func msgType(msg map[string]interface{}) string {
	t, _ := msg["type"].(string)
	return t
}

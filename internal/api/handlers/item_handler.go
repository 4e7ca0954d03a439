package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"live-bidding/internal/domain"
	"live-bidding/internal/services"
	"live-bidding/pkg/logger"

	"github.com/labstack/echo/v4"
)

type ItemHandler struct {
	itemService *services.ItemService
	authService *services.AuthService
	log         logger.Logger
}

func NewItemHandler(itemService *services.ItemService, authService *services.AuthService, log logger.Logger) *ItemHandler {
	return &ItemHandler{itemService: itemService, authService: authService, log: log}
}

func (h *ItemHandler) CreateListing(c echo.Context) error {
	ownerID, err := h.currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Could not validate credentials"})
	}

	var req services.CreateItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if err := h.itemService.CreateItem(c.Request().Context(), ownerID, req); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		h.log.Error("Failed to create item", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create item"})
	}

	return c.JSON(http.StatusCreated, map[string]string{"message": "Item created successfully"})
}

func (h *ItemHandler) GetListing(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid item id"})
	}

	item, err := h.itemService.GetItem(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Item does not exist"})
		}
		h.log.Error("Failed to fetch item", "item_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch item"})
	}

	return c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) ListAvailable(c echo.Context) error {
	items, err := h.itemService.ListAvailable(c.Request().Context())
	if err != nil {
		h.log.Error("Failed to list items", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to list items"})
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ItemHandler) currentUser(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", domain.ErrUnauthorized
	}
	return h.authService.CurrentUserID(token)
}

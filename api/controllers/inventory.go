package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartstockhq/smartstock-backend/api/responses"
	"github.com/smartstockhq/smartstock-backend/api/validators"
	"github.com/smartstockhq/smartstock-backend/internal/inventory"
	"github.com/smartstockhq/smartstock-backend/pkg/db/models"
	"github.com/smartstockhq/smartstock-backend/pkg/enums"
	pkgerrors "github.com/smartstockhq/smartstock-backend/pkg/errors"
	"github.com/smartstockhq/smartstock-backend/pkg/logger"
)

type inventoryItemResponse struct {
	ID         uuid.UUID         `json:"id"`
	Name       string            `json:"name"`
	Category   string            `json:"category"`
	Department string            `json:"department"`
	Stock      int               `json:"stock"`
	Price      decimal.Decimal   `json:"price"`
	Status     enums.StockStatus `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func inventoryItemFromModel(item *models.InventoryItem) inventoryItemResponse {
	return inventoryItemResponse{
		ID:         item.ID,
		Name:       item.Name,
		Category:   item.Category,
		Department: item.Department,
		Stock:      item.Stock,
		Price:      item.Price,
		Status:     item.Status,
		CreatedAt:  item.CreatedAt,
		UpdatedAt:  item.UpdatedAt,
	}
}

type stockMovementResponse struct {
	ID            uuid.UUID         `json:"id"`
	InventoryID   uuid.UUID         `json:"inventory_id"`
	ProductName   string            `json:"product_name"`
	Action        enums.StockAction `json:"action"`
	Quantity      int               `json:"quantity"`
	PreviousStock int               `json:"previous_stock"`
	NewStock      int               `json:"new_stock"`
	Reason        *string           `json:"reason,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

func stockMovementFromModel(m models.StockTransaction) stockMovementResponse {
	return stockMovementResponse{
		ID:            m.ID,
		InventoryID:   m.InventoryID,
		ProductName:   m.ProductName,
		Action:        m.Action,
		Quantity:      m.Quantity,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		Reason:        m.Reason,
		CreatedAt:     m.CreatedAt,
	}
}

type inventoryCreateRequest struct {
	Name       string          `json:"name" validate:"required"`
	Category   string          `json:"category" validate:"required"`
	Department string          `json:"department" validate:"required"`
	Stock      int             `json:"stock" validate:"min=0"`
	Price      decimal.Decimal `json:"price"`
}

// InventoryCreate registers a merchandise item.
func InventoryCreate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload inventoryCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateItem(r.Context(), inventory.CreateItemInput{
			Name:       payload.Name,
			Category:   payload.Category,
			Department: payload.Department,
			Stock:      payload.Stock,
			Price:      payload.Price,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, inventoryItemFromModel(item))
	}
}

type inventoryListResponse struct {
	Items      []inventoryItemResponse `json:"items"`
	NextCursor string                  `json:"next_cursor,omitempty"`
}

// InventoryList returns a filtered, cursor-paginated item page.
func InventoryList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, cursor, err := pageQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := inventory.ListItemsParams{
			Search:     strings.TrimSpace(r.URL.Query().Get("search")),
			Category:   strings.TrimSpace(r.URL.Query().Get("category")),
			Department: strings.TrimSpace(r.URL.Query().Get("department")),
			Limit:      limit,
			Cursor:     cursor,
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, parseErr := enums.ParseStockStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid stock status"))
				return
			}
			params.Status = &status
		}

		items, next, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := inventoryListResponse{Items: make([]inventoryItemResponse, 0, len(items))}
		for i := range items {
			resp.Items = append(resp.Items, inventoryItemFromModel(&items[i]))
		}
		resp.NextCursor = nextCursorString(next)
		responses.WriteSuccess(w, resp)
	}
}

// InventoryDelete removes an item; its movement history stays behind.
func InventoryDelete(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}
		if err := svc.DeleteItem(r.Context(), itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type stockAdjustRequest struct {
	Action   string  `json:"action" validate:"required"`
	Quantity int     `json:"quantity" validate:"required,min=1"`
	Reason   *string `json:"reason"`
}

type stockAdjustResponse struct {
	Item     inventoryItemResponse `json:"item"`
	Movement stockMovementResponse `json:"movement"`
}

// InventoryAdjustStock applies a stock-in or stock-out movement.
func InventoryAdjustStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}

		var payload stockAdjustRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		action, err := enums.ParseStockAction(strings.TrimSpace(payload.Action))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid stock action"))
			return
		}

		result, err := svc.AdjustStock(r.Context(), inventory.AdjustStockInput{
			ItemID:   itemID,
			Action:   action,
			Quantity: payload.Quantity,
			Reason:   payload.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stockAdjustResponse{
			Item:     inventoryItemFromModel(result.Item),
			Movement: stockMovementFromModel(*result.Movement),
		})
	}
}

type movementListResponse struct {
	Movements  []stockMovementResponse `json:"movements"`
	NextCursor string                  `json:"next_cursor,omitempty"`
}

// InventoryMovements lists stock movements, optionally scoped to one item.
func InventoryMovements(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, cursor, err := pageQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := inventory.ListMovementsParams{Limit: limit, Cursor: cursor}
		if raw := strings.TrimSpace(r.URL.Query().Get("item_id")); raw != "" {
			id, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid item_id"))
				return
			}
			params.InventoryID = &id
		}

		movements, next, err := svc.Movements(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := movementListResponse{Movements: make([]stockMovementResponse, 0, len(movements))}
		for _, m := range movements {
			resp.Movements = append(resp.Movements, stockMovementFromModel(m))
		}
		resp.NextCursor = nextCursorString(next)
		responses.WriteSuccess(w, resp)
	}
}

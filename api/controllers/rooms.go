package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartstockhq/smartstock-backend/api/responses"
	"github.com/smartstockhq/smartstock-backend/api/validators"
	"github.com/smartstockhq/smartstock-backend/internal/rooms"
	"github.com/smartstockhq/smartstock-backend/pkg/db/models"
	"github.com/smartstockhq/smartstock-backend/pkg/enums"
	pkgerrors "github.com/smartstockhq/smartstock-backend/pkg/errors"
	"github.com/smartstockhq/smartstock-backend/pkg/logger"
)

type roomResponse struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Type      string           `json:"type"`
	Capacity  int              `json:"capacity"`
	Rate      decimal.Decimal  `json:"rate"`
	Status    enums.RoomStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func roomFromModel(room *models.Room) roomResponse {
	return roomResponse{
		ID:        room.ID,
		Name:      room.Name,
		Type:      room.Type,
		Capacity:  room.Capacity,
		Rate:      room.Rate,
		Status:    room.Status,
		CreatedAt: room.CreatedAt,
		UpdatedAt: room.UpdatedAt,
	}
}

type roomCreateRequest struct {
	Name     string          `json:"name" validate:"required"`
	Type     string          `json:"type" validate:"required"`
	Capacity int             `json:"capacity"`
	Rate     decimal.Decimal `json:"rate"`
}

// RoomCreate registers a leasable unit.
func RoomCreate(svc rooms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload roomCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		room, err := svc.CreateRoom(r.Context(), rooms.CreateRoomInput{
			Name:     payload.Name,
			Type:     payload.Type,
			Capacity: payload.Capacity,
			Rate:     payload.Rate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, roomFromModel(room))
	}
}

// RoomsList returns the full room portfolio.
func RoomsList(svc rooms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := svc.ListRooms(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]roomResponse, 0, len(all))
		for i := range all {
			out = append(out, roomFromModel(&all[i]))
		}
		responses.WriteSuccess(w, map[string]any{"rooms": out})
	}
}

// RoomDelete removes a room that has no open lease.
func RoomDelete(svc rooms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID, err := uuid.Parse(chi.URLParam(r, "roomId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid room id"))
			return
		}
		if err := svc.DeleteRoom(r.Context(), roomID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// RoomsSummary reports occupancy counts and the occupancy rate.
func RoomsSummary(svc rooms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

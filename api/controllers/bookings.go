package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartstockhq/smartstock-backend/api/responses"
	"github.com/smartstockhq/smartstock-backend/api/validators"
	"github.com/smartstockhq/smartstock-backend/internal/bookings"
	"github.com/smartstockhq/smartstock-backend/pkg/db/models"
	"github.com/smartstockhq/smartstock-backend/pkg/enums"
	pkgerrors "github.com/smartstockhq/smartstock-backend/pkg/errors"
	"github.com/smartstockhq/smartstock-backend/pkg/logger"
)

const leaseDateLayout = "2006-01-02"

type bookingResponse struct {
	ID              uuid.UUID           `json:"id"`
	RoomID          uuid.UUID           `json:"room_id"`
	RoomName        string              `json:"room_name"`
	Tenant          string              `json:"tenant"`
	Contact         *string             `json:"contact,omitempty"`
	Email           *string             `json:"email,omitempty"`
	LeaseStart      time.Time           `json:"lease_start"`
	LeaseEnd        time.Time           `json:"lease_end"`
	MonthlyRent     decimal.Decimal     `json:"monthly_rent"`
	DurationMonths  int                 `json:"duration_months"`
	SecurityDeposit decimal.Decimal     `json:"security_deposit"`
	TotalPaid       decimal.Decimal     `json:"total_paid"`
	Balance         decimal.Decimal     `json:"balance"`
	Status          enums.BookingStatus `json:"status"`
	ReminderLog     []string            `json:"reminder_log"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func bookingFromModel(b *models.Booking) bookingResponse {
	return bookingResponse{
		ID:              b.ID,
		RoomID:          b.RoomID,
		RoomName:        b.RoomName,
		Tenant:          b.Tenant,
		Contact:         b.Contact,
		Email:           b.Email,
		LeaseStart:      b.LeaseStart,
		LeaseEnd:        b.LeaseEnd,
		MonthlyRent:     b.MonthlyRent,
		DurationMonths:  b.DurationMonths,
		SecurityDeposit: b.SecurityDeposit,
		TotalPaid:       b.TotalPaid,
		Balance:         b.Balance,
		Status:          b.Status,
		ReminderLog:     []string(b.ReminderLog),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// bookingCreateRequest accepts both the current field names and the aliases
// used by the books this system replaces (client_name, rent, start_date,
// duration).
type bookingCreateRequest struct {
	RoomID          string          `json:"room_id" validate:"required"`
	Tenant          string          `json:"tenant"`
	ClientName      string          `json:"client_name"`
	Contact         *string         `json:"contact"`
	Email           *string         `json:"email"`
	LeaseStart      string          `json:"lease_start"`
	StartDate       string          `json:"start_date"`
	DurationMonths  int             `json:"duration_months"`
	Duration        int             `json:"duration"`
	MonthlyRent     decimal.Decimal `json:"monthly_rent"`
	Rent            decimal.Decimal `json:"rent"`
	SecurityDeposit decimal.Decimal `json:"security_deposit"`
}

func (req bookingCreateRequest) toInput() (bookings.CreateLeaseInput, error) {
	roomID, err := uuid.Parse(strings.TrimSpace(req.RoomID))
	if err != nil {
		return bookings.CreateLeaseInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid room_id")
	}

	tenant := strings.TrimSpace(req.Tenant)
	if tenant == "" {
		tenant = strings.TrimSpace(req.ClientName)
	}

	rawStart := strings.TrimSpace(req.LeaseStart)
	if rawStart == "" {
		rawStart = strings.TrimSpace(req.StartDate)
	}
	if rawStart == "" {
		return bookings.CreateLeaseInput{}, pkgerrors.New(pkgerrors.CodeValidation, "lease_start is required")
	}
	leaseStart, err := time.Parse(leaseDateLayout, rawStart)
	if err != nil {
		if leaseStart, err = time.Parse(time.RFC3339, rawStart); err != nil {
			return bookings.CreateLeaseInput{}, pkgerrors.New(pkgerrors.CodeValidation, "lease_start must be a YYYY-MM-DD date")
		}
	}

	duration := req.DurationMonths
	if duration == 0 {
		duration = req.Duration
	}

	rent := req.MonthlyRent
	if rent.IsZero() {
		rent = req.Rent
	}

	return bookings.CreateLeaseInput{
		RoomID:          roomID,
		Tenant:          tenant,
		Contact:         req.Contact,
		Email:           req.Email,
		LeaseStart:      leaseStart,
		DurationMonths:  duration,
		MonthlyRent:     rent,
		SecurityDeposit: req.SecurityDeposit,
	}, nil
}

// BookingCreate opens a lease on an available room.
func BookingCreate(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload bookingCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lease, err := svc.CreateLease(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, bookingFromModel(lease))
	}
}

type bookingListResponse struct {
	Bookings   []bookingResponse `json:"bookings"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// BookingsList returns a cursor-paginated page of leases.
func BookingsList(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, cursor, err := pageQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := bookings.ListParams{Limit: limit, Cursor: cursor}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, parseErr := enums.ParseBookingStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid booking status"))
				return
			}
			params.Status = &status
		}

		leases, next, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := bookingListResponse{Bookings: make([]bookingResponse, 0, len(leases))}
		for i := range leases {
			resp.Bookings = append(resp.Bookings, bookingFromModel(&leases[i]))
		}
		resp.NextCursor = nextCursorString(next)
		responses.WriteSuccess(w, resp)
	}
}

func bookingIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "bookingId"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid booking id")
	}
	return id, nil
}

// BookingEnd closes a lease normally and frees its room.
func BookingEnd(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return bookingTransition(svc.EndLease, logg)
}

// BookingCancel voids a lease and frees its room.
func BookingCancel(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return bookingTransition(svc.CancelLease, logg)
}

func bookingTransition(op func(ctx context.Context, id uuid.UUID) (*models.Booking, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := bookingIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lease, err := op(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bookingFromModel(lease))
	}
}

// BookingDelete removes a lease record entirely, freeing the room first if
// the lease is still open.
func BookingDelete(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := bookingIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteLease(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartstockhq/smartstock-backend/api/responses"
	"github.com/smartstockhq/smartstock-backend/api/validators"
	"github.com/smartstockhq/smartstock-backend/internal/ledger"
	"github.com/smartstockhq/smartstock-backend/pkg/db/models"
	"github.com/smartstockhq/smartstock-backend/pkg/enums"
	pkgerrors "github.com/smartstockhq/smartstock-backend/pkg/errors"
	"github.com/smartstockhq/smartstock-backend/pkg/logger"
)

type paymentResponse struct {
	ID            uuid.UUID           `json:"id"`
	BookingID     uuid.UUID           `json:"booking_id"`
	Amount        decimal.Decimal     `json:"amount"`
	Method        enums.PaymentMethod `json:"method"`
	ReceiptNumber string              `json:"receipt_number"`
	Notes         *string             `json:"notes,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

func paymentFromModel(p models.Payment) paymentResponse {
	return paymentResponse{
		ID:            p.ID,
		BookingID:     p.BookingID,
		Amount:        p.Amount,
		Method:        p.Method,
		ReceiptNumber: p.ReceiptNumber,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt,
	}
}

type creditResponse struct {
	ID              uuid.UUID       `json:"id"`
	BookingID       uuid.UUID       `json:"booking_id"`
	Amount          decimal.Decimal `json:"amount"`
	Reason          string          `json:"reason"`
	ReferenceNumber string          `json:"reference_number"`
	Notes           *string         `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

func creditFromModel(c models.Credit) creditResponse {
	return creditResponse{
		ID:              c.ID,
		BookingID:       c.BookingID,
		Amount:          c.Amount,
		Reason:          c.Reason,
		ReferenceNumber: c.ReferenceNumber,
		Notes:           c.Notes,
		CreatedAt:       c.CreatedAt,
	}
}

func ledgerListParams(r *http.Request) (ledger.ListParams, error) {
	limit, cursor, err := pageQuery(r)
	if err != nil {
		return ledger.ListParams{}, err
	}
	params := ledger.ListParams{Limit: limit, Cursor: cursor}
	if raw := strings.TrimSpace(r.URL.Query().Get("booking_id")); raw != "" {
		id, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			return ledger.ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid booking_id")
		}
		params.BookingID = &id
	}
	return params, nil
}

type paymentCreateRequest struct {
	BookingID     string          `json:"booking_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method" validate:"required"`
	ReceiptNumber string          `json:"receipt_number"`
	Notes         *string         `json:"notes"`
}

type settlementResponse struct {
	Payment *paymentResponse `json:"payment,omitempty"`
	Credit  *creditResponse  `json:"credit,omitempty"`
	Booking bookingResponse  `json:"booking"`
}

func settlementFromResult(result *ledger.SettlementResult) settlementResponse {
	resp := settlementResponse{Booking: bookingFromModel(result.Booking)}
	if result.Payment != nil {
		p := paymentFromModel(*result.Payment)
		resp.Payment = &p
	}
	if result.Credit != nil {
		c := creditFromModel(*result.Credit)
		resp.Credit = &c
	}
	return resp
}

// PaymentCreate records a payment against a lease and settles its balance.
func PaymentCreate(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload paymentCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bookingID, err := uuid.Parse(strings.TrimSpace(payload.BookingID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid booking_id"))
			return
		}
		method, err := enums.ParsePaymentMethod(strings.TrimSpace(payload.Method))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method"))
			return
		}

		result, err := svc.RecordPayment(r.Context(), ledger.RecordPaymentInput{
			BookingID:     bookingID,
			Amount:        payload.Amount,
			Method:        method,
			ReceiptNumber: strings.TrimSpace(payload.ReceiptNumber),
			Notes:         payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, settlementFromResult(result))
	}
}

type paymentListResponse struct {
	Payments   []paymentResponse `json:"payments"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// PaymentsList returns a cursor-paginated payment page, optionally scoped to
// one lease.
func PaymentsList(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := ledgerListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payments, next, err := svc.ListPayments(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := paymentListResponse{Payments: make([]paymentResponse, 0, len(payments))}
		for _, p := range payments {
			resp.Payments = append(resp.Payments, paymentFromModel(p))
		}
		resp.NextCursor = nextCursorString(next)
		responses.WriteSuccess(w, resp)
	}
}

type creditCreateRequest struct {
	BookingID       string          `json:"booking_id" validate:"required"`
	Amount          decimal.Decimal `json:"amount"`
	Reason          string          `json:"reason" validate:"required"`
	ReferenceNumber string          `json:"reference_number"`
	Notes           *string         `json:"notes"`
}

// CreditCreate records a non-cash adjustment against a lease.
func CreditCreate(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload creditCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bookingID, err := uuid.Parse(strings.TrimSpace(payload.BookingID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid booking_id"))
			return
		}

		result, err := svc.RecordCredit(r.Context(), ledger.RecordCreditInput{
			BookingID:       bookingID,
			Amount:          payload.Amount,
			Reason:          strings.TrimSpace(payload.Reason),
			ReferenceNumber: strings.TrimSpace(payload.ReferenceNumber),
			Notes:           payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, settlementFromResult(result))
	}
}

type creditListResponse struct {
	Credits    []creditResponse `json:"credits"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// CreditsList returns a cursor-paginated credit page.
func CreditsList(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := ledgerListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		credits, next, err := svc.ListCredits(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := creditListResponse{Credits: make([]creditResponse, 0, len(credits))}
		for _, c := range credits {
			resp.Credits = append(resp.Credits, creditFromModel(c))
		}
		resp.NextCursor = nextCursorString(next)
		responses.WriteSuccess(w, resp)
	}
}

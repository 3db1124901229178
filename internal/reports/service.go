package reports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smartstockhq/smartstock-backend/internal/ledger"
	"github.com/smartstockhq/smartstock-backend/pkg/db/models"
	"github.com/smartstockhq/smartstock-backend/pkg/enums"
	pkgerrors "github.com/smartstockhq/smartstock-backend/pkg/errors"
)

// recentTransactionLimit caps the transaction feed on summary endpoints.
const recentTransactionLimit = 10

// Service assembles summaries and file exports over the other domains.
type Service interface {
	TransactionHistory(ctx context.Context) ([]TransactionRow, error)
	LeaseStatement(ctx context.Context, bookingID uuid.UUID) (*LeaseStatement, error)
	AccountingSummary(ctx context.Context, year int, month time.Month) (*AccountingSummary, error)
	PaymentTrackerSummary(ctx context.Context) (*TrackerSummary, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
	AccountingCSV(ctx context.Context, w io.Writer) (string, error)
	PaymentTrackerCSV(ctx context.Context, w io.Writer) (string, error)
	StockActivityCSV(ctx context.Context, w io.Writer, year int, month time.Month) (string, error)
	StockActivityXLSX(ctx context.Context, w io.Writer, year int, month time.Month) (string, error)
}

// LeaseStatement is one lease's full ledger view: every recorded line plus a
// reconciliation of the stored totals against a replay of the immutable rows.
type LeaseStatement struct {
	BookingID         uuid.UUID        `json:"booking_id"`
	Tenant            string           `json:"tenant"`
	RoomName          string           `json:"room_name"`
	ContractValue     decimal.Decimal  `json:"contract_value"`
	TotalPaid         decimal.Decimal  `json:"total_paid"`
	Balance           decimal.Decimal  `json:"balance"`
	ReplayedTotalPaid decimal.Decimal  `json:"replayed_total_paid"`
	ReplayedBalance   decimal.Decimal  `json:"replayed_balance"`
	Reconciled        bool             `json:"reconciled"`
	Lines             []TransactionRow `json:"lines"`
}

// AccountingSummary is the accounting page payload.
type AccountingSummary struct {
	Revenue            *ledger.RevenueSummary `json:"revenue"`
	TotalCollected     decimal.Decimal        `json:"total_collected"`
	TotalCredits       decimal.Decimal        `json:"total_credits"`
	TransactionCount   int                    `json:"transaction_count"`
	RecentTransactions []TransactionRow       `json:"recent_transactions"`
}

// TrackerSummary is the payment tracker payload: the worklist plus the cards
// above it.
type TrackerSummary struct {
	Worklist       []ledger.WorklistEntry `json:"worklist"`
	CollectionRate float64                `json:"collection_rate"`
	TotalBalance   decimal.Decimal        `json:"total_balance"`
	OverdueAmount  decimal.Decimal        `json:"overdue_amount"`
	OverdueCount   int                    `json:"overdue_count"`
	DueSoonAmount  decimal.Decimal        `json:"due_soon_amount"`
	DueSoonCount   int                    `json:"due_soon_count"`
}

// Dashboard is the landing page payload.
type Dashboard struct {
	Revenue            *ledger.RevenueSummary `json:"revenue"`
	Series             []ledger.SeriesPoint   `json:"series"`
	RoomsTotal         int                    `json:"rooms_total"`
	RoomsOccupied      int                    `json:"rooms_occupied"`
	OccupancyRate      float64                `json:"occupancy_rate"`
	InventoryValue     decimal.Decimal        `json:"inventory_value"`
	LowStockCount      int                    `json:"low_stock_count"`
	CollectionRate     float64                `json:"collection_rate"`
	OverdueCount       int                    `json:"overdue_count"`
	RecentTransactions []TransactionRow       `json:"recent_transactions"`
}

type ledgerAnalytics interface {
	DueOverview(ctx context.Context) (*ledger.DueOverview, error)
	Revenue(ctx context.Context, year int, month time.Month) (*ledger.RevenueSummary, error)
	Series(ctx context.Context, months int) ([]ledger.SeriesPoint, error)
}

type ledgerReader interface {
	ListAllPayments(ctx context.Context) ([]models.Payment, error)
	ListAllCredits(ctx context.Context) ([]models.Credit, error)
	ListPaymentsByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.Payment, error)
	ListCreditsByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.Credit, error)
}

type inventoryReader interface {
	ListItems(ctx context.Context) ([]models.InventoryItem, error)
	ListMovements(ctx context.Context) ([]models.StockTransaction, error)
}

type leaseReader interface {
	FindByID(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	ListByStatuses(ctx context.Context, statuses ...enums.BookingStatus) ([]models.Booking, error)
}

type roomReader interface {
	ListRooms(ctx context.Context) ([]models.Room, error)
}

type service struct {
	analytics ledgerAnalytics
	ledger    ledgerReader
	inventory inventoryReader
	leases    leaseReader
	rooms     roomReader
	now       func() time.Time
}

// ServiceParams wires the reports service dependencies.
type ServiceParams struct {
	Analytics ledgerAnalytics
	Ledger    ledgerReader
	Inventory inventoryReader
	Leases    leaseReader
	Rooms     roomReader
}

// NewService constructs the reports service.
func NewService(params ServiceParams) (Service, error) {
	if params.Analytics == nil {
		return nil, fmt.Errorf("ledger analytics required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger reader required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory reader required")
	}
	if params.Leases == nil {
		return nil, fmt.Errorf("lease reader required")
	}
	if params.Rooms == nil {
		return nil, fmt.Errorf("room reader required")
	}
	return &service{
		analytics: params.Analytics,
		ledger:    params.Ledger,
		inventory: params.Inventory,
		leases:    params.Leases,
		rooms:     params.Rooms,
		now:       time.Now,
	}, nil
}

func (s *service) TransactionHistory(ctx context.Context) ([]TransactionRow, error) {
	payments, credits, err := s.loadLedgerRows(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTransactionHistory(payments, credits), nil
}

func (s *service) LeaseStatement(ctx context.Context, bookingID uuid.UUID) (*LeaseStatement, error) {
	booking, err := s.leases.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading booking")
	}
	payments, err := s.ledger.ListPaymentsByBooking(ctx, bookingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing booking payments")
	}
	credits, err := s.ledger.ListCreditsByBooking(ctx, bookingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing booking credits")
	}

	replayedPaid, replayedBalance := ledger.ReplayBalance(*booking, payments, credits)
	return &LeaseStatement{
		BookingID:         booking.ID,
		Tenant:            booking.Tenant,
		RoomName:          booking.RoomName,
		ContractValue:     booking.ContractValue(),
		TotalPaid:         booking.TotalPaid,
		Balance:           booking.Balance,
		ReplayedTotalPaid: replayedPaid,
		ReplayedBalance:   replayedBalance,
		Reconciled:        replayedPaid.Equal(booking.TotalPaid) && replayedBalance.Equal(booking.Balance),
		Lines:             BuildTransactionHistory(payments, credits),
	}, nil
}

func (s *service) AccountingSummary(ctx context.Context, year int, month time.Month) (*AccountingSummary, error) {
	revenue, err := s.analytics.Revenue(ctx, year, month)
	if err != nil {
		return nil, err
	}
	payments, credits, err := s.loadLedgerRows(ctx)
	if err != nil {
		return nil, err
	}

	collected, credited := decimal.Zero, decimal.Zero
	for _, payment := range payments {
		collected = collected.Add(payment.Amount)
	}
	for _, credit := range credits {
		credited = credited.Add(credit.Amount)
	}

	history := BuildTransactionHistory(payments, credits)
	return &AccountingSummary{
		Revenue:            revenue,
		TotalCollected:     collected,
		TotalCredits:       credited,
		TransactionCount:   len(history),
		RecentTransactions: truncateRows(history, recentTransactionLimit),
	}, nil
}

func (s *service) PaymentTrackerSummary(ctx context.Context) (*TrackerSummary, error) {
	overview, err := s.analytics.DueOverview(ctx)
	if err != nil {
		return nil, err
	}
	open, err := s.leases.ListByStatuses(ctx, enums.BookingStatusActive, enums.BookingStatusPaid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing open leases")
	}

	summary := &TrackerSummary{
		Worklist:       overview.Worklist,
		CollectionRate: overview.CollectionRate,
		TotalBalance:   decimal.Zero,
		OverdueAmount:  decimal.Zero,
		DueSoonAmount:  decimal.Zero,
	}
	for _, lease := range open {
		summary.TotalBalance = summary.TotalBalance.Add(lease.Balance)
	}
	for _, entry := range overview.Worklist {
		switch entry.Status {
		case ledger.DueStatusOverdue:
			summary.OverdueAmount = summary.OverdueAmount.Add(entry.Balance)
			summary.OverdueCount++
		case ledger.DueStatusDueSoon:
			summary.DueSoonAmount = summary.DueSoonAmount.Add(entry.Balance)
			summary.DueSoonCount++
		}
	}
	return summary, nil
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now().UTC()

	revenue, err := s.analytics.Revenue(ctx, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}
	series, err := s.analytics.Series(ctx, 12)
	if err != nil {
		return nil, err
	}
	overview, err := s.analytics.DueOverview(ctx)
	if err != nil {
		return nil, err
	}
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.inventory.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	payments, credits, err := s.loadLedgerRows(ctx)
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{
		Revenue:        revenue,
		Series:         series,
		RoomsTotal:     len(rooms),
		CollectionRate: overview.CollectionRate,
		InventoryValue: decimal.Zero,
	}
	for _, room := range rooms {
		if room.Status == enums.RoomStatusOccupied {
			dashboard.RoomsOccupied++
		}
	}
	if dashboard.RoomsTotal > 0 {
		dashboard.OccupancyRate = math.Round(float64(dashboard.RoomsOccupied) / float64(dashboard.RoomsTotal) * 100)
	}
	for _, item := range items {
		dashboard.InventoryValue = dashboard.InventoryValue.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Stock))))
		if item.Status != enums.StockStatusInStock {
			dashboard.LowStockCount++
		}
	}
	for _, entry := range overview.Worklist {
		if entry.Status == ledger.DueStatusOverdue {
			dashboard.OverdueCount++
		}
	}
	dashboard.RecentTransactions = truncateRows(BuildTransactionHistory(payments, credits), recentTransactionLimit)
	return dashboard, nil
}

func (s *service) AccountingCSV(ctx context.Context, w io.Writer) (string, error) {
	history, err := s.TransactionHistory(ctx)
	if err != nil {
		return "", err
	}
	if err := WriteAccountingCSV(w, history); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing accounting csv")
	}
	return AccountingReportFilename(s.now().UTC()), nil
}

func (s *service) PaymentTrackerCSV(ctx context.Context, w io.Writer) (string, error) {
	payments, err := s.ledger.ListAllPayments(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing payments")
	}
	leases, err := s.leases.ListByStatuses(ctx,
		enums.BookingStatusActive, enums.BookingStatusPaid,
		enums.BookingStatusEnded, enums.BookingStatusCancelled)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing leases")
	}
	if err := WritePaymentTrackerCSV(w, payments, leases); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing payment tracker csv")
	}
	return PaymentTrackerFilename(s.now().UTC()), nil
}

func (s *service) StockActivityCSV(ctx context.Context, w io.Writer, year int, month time.Month) (string, error) {
	activity, err := s.buildStockActivity(ctx, year, month)
	if err != nil {
		return "", err
	}
	if err := WriteStockActivityCSV(w, activity); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing stock activity csv")
	}
	return StockActivityFilename(year, month), nil
}

func (s *service) StockActivityXLSX(ctx context.Context, w io.Writer, year int, month time.Month) (string, error) {
	activity, err := s.buildStockActivity(ctx, year, month)
	if err != nil {
		return "", err
	}
	if err := WriteStockActivityXLSX(w, activity); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing stock activity workbook")
	}
	return StockActivityXLSXFilename(year, month), nil
}

func (s *service) buildStockActivity(ctx context.Context, year int, month time.Month) (StockActivity, error) {
	if year <= 0 || month < time.January || month > time.December {
		return StockActivity{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid month selection")
	}
	movements, err := s.inventory.ListMovements(ctx)
	if err != nil {
		return StockActivity{}, err
	}
	items, err := s.inventory.ListItems(ctx)
	if err != nil {
		return StockActivity{}, err
	}
	return BuildStockActivity(movements, items, year, month), nil
}

func (s *service) loadLedgerRows(ctx context.Context) ([]models.Payment, []models.Credit, error) {
	payments, err := s.ledger.ListAllPayments(ctx)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing payments")
	}
	credits, err := s.ledger.ListAllCredits(ctx)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing credits")
	}
	return payments, credits, nil
}

func truncateRows(rows []TransactionRow, limit int) []TransactionRow {
	if len(rows) <= limit {
		return rows
	}
	return rows[:limit]
}

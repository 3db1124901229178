package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smartstockhq/smartstock-backend/pkg/db/models"
	"github.com/smartstockhq/smartstock-backend/pkg/enums"
	pkgerrors "github.com/smartstockhq/smartstock-backend/pkg/errors"
	"github.com/smartstockhq/smartstock-backend/pkg/pagination"
)

type fakeRepository struct {
	bookings map[uuid.UUID]models.Booking
	rooms    map[uuid.UUID]models.Room
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		bookings: make(map[uuid.UUID]models.Booking),
		rooms:    make(map[uuid.UUID]models.Room),
	}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, booking *models.Booking) error {
	booking.ID = uuid.New()
	f.bookings[booking.ID] = *booking
	return nil
}

func (f *fakeRepository) Save(ctx context.Context, booking *models.Booking) error {
	f.bookings[booking.ID] = *booking
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, bookingID uuid.UUID) error {
	delete(f.bookings, bookingID)
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	booking, ok := f.bookings[bookingID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &booking, nil
}

func (f *fakeRepository) FindByIDForUpdate(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	return f.FindByID(ctx, bookingID)
}

func (f *fakeRepository) List(ctx context.Context, params ListParams) ([]models.Booking, *pagination.Cursor, error) {
	var all []models.Booking
	for _, booking := range f.bookings {
		if params.Status != nil && booking.Status != *params.Status {
			continue
		}
		all = append(all, booking)
	}
	return all, nil, nil
}

func (f *fakeRepository) ListByStatuses(ctx context.Context, statuses ...enums.BookingStatus) ([]models.Booking, error) {
	var all []models.Booking
	for _, booking := range f.bookings {
		for _, status := range statuses {
			if booking.Status == status {
				all = append(all, booking)
				break
			}
		}
	}
	return all, nil
}

func (f *fakeRepository) FindRoomForUpdate(ctx context.Context, roomID uuid.UUID) (*models.Room, error) {
	room, ok := f.rooms[roomID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &room, nil
}

func (f *fakeRepository) SaveRoom(ctx context.Context, room *models.Room) error {
	f.rooms[room.ID] = *room
	return nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo *fakeRepository) Service {
	t.Helper()
	svc, err := NewService(repo, fakeTxRunner{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func seedRoom(repo *fakeRepository, status enums.RoomStatus) models.Room {
	room := models.Room{
		ID:     uuid.New(),
		Name:   "Unit 2A",
		Type:   "studio",
		Rate:   decimal.NewFromInt(5000),
		Status: status,
	}
	repo.rooms[room.ID] = room
	return room
}

func leaseInput(roomID uuid.UUID) CreateLeaseInput {
	return CreateLeaseInput{
		RoomID:         roomID,
		Tenant:         "Dela Cruz",
		LeaseStart:     time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		DurationMonths: 6,
		MonthlyRent:    decimal.NewFromInt(5000),
	}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected app error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code(), err)
	}
}

func TestCreateLeaseOpensAndOccupiesRoom(t *testing.T) {
	repo := newFakeRepository()
	room := seedRoom(repo, enums.RoomStatusAvailable)
	svc := newTestService(t, repo)

	lease, err := svc.CreateLease(context.Background(), leaseInput(room.ID))
	if err != nil {
		t.Fatalf("CreateLease error: %v", err)
	}
	if !lease.Balance.Equal(decimal.NewFromInt(30000)) {
		t.Fatalf("expected opening balance 30000, got %s", lease.Balance)
	}
	if lease.RoomName != "Unit 2A" {
		t.Fatalf("expected room name snapshot, got %q", lease.RoomName)
	}
	if !lease.LeaseEnd.Equal(time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected lease end %s", lease.LeaseEnd)
	}
	if repo.rooms[room.ID].Status != enums.RoomStatusOccupied {
		t.Fatalf("room must flip to occupied with the lease")
	}
}

func TestCreateLeaseDefaultsRentToRoomRate(t *testing.T) {
	repo := newFakeRepository()
	room := seedRoom(repo, enums.RoomStatusAvailable)
	svc := newTestService(t, repo)

	input := leaseInput(room.ID)
	input.MonthlyRent = decimal.Zero

	lease, err := svc.CreateLease(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateLease error: %v", err)
	}
	if !lease.MonthlyRent.Equal(room.Rate) {
		t.Fatalf("expected rent %s from room rate, got %s", room.Rate, lease.MonthlyRent)
	}
}

func TestCreateLeaseOccupiedRoomConflicts(t *testing.T) {
	repo := newFakeRepository()
	room := seedRoom(repo, enums.RoomStatusOccupied)
	svc := newTestService(t, repo)

	_, err := svc.CreateLease(context.Background(), leaseInput(room.ID))
	assertCode(t, err, pkgerrors.CodeStateConflict)

	if len(repo.bookings) != 0 {
		t.Fatalf("no lease may be written for an occupied room")
	}
}

func TestCreateLeaseRoomNotFound(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo)

	_, err := svc.CreateLease(context.Background(), leaseInput(uuid.New()))
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestCreateLeaseValidation(t *testing.T) {
	repo := newFakeRepository()
	room := seedRoom(repo, enums.RoomStatusAvailable)
	svc := newTestService(t, repo)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*CreateLeaseInput)
	}{
		{"blank tenant", func(in *CreateLeaseInput) { in.Tenant = "  " }},
		{"missing room", func(in *CreateLeaseInput) { in.RoomID = uuid.Nil }},
		{"missing start", func(in *CreateLeaseInput) { in.LeaseStart = time.Time{} }},
		{"zero duration", func(in *CreateLeaseInput) { in.DurationMonths = 0 }},
		{"negative rent", func(in *CreateLeaseInput) { in.MonthlyRent = decimal.NewFromInt(-1) }},
		{"negative deposit", func(in *CreateLeaseInput) { in.SecurityDeposit = decimal.NewFromInt(-1) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := leaseInput(room.ID)
			tc.mutate(&input)
			_, err := svc.CreateLease(ctx, input)
			assertCode(t, err, pkgerrors.CodeValidation)
		})
	}
}

func TestEndLeaseFreesRoom(t *testing.T) {
	repo := newFakeRepository()
	room := seedRoom(repo, enums.RoomStatusAvailable)
	svc := newTestService(t, repo)
	ctx := context.Background()

	lease, err := svc.CreateLease(ctx, leaseInput(room.ID))
	if err != nil {
		t.Fatalf("CreateLease error: %v", err)
	}

	ended, err := svc.EndLease(ctx, lease.ID)
	if err != nil {
		t.Fatalf("EndLease error: %v", err)
	}
	if ended.Status != enums.BookingStatusEnded {
		t.Fatalf("expected ended, got %s", ended.Status)
	}
	if repo.rooms[room.ID].Status != enums.RoomStatusAvailable {
		t.Fatalf("room must be freed when the lease ends")
	}

	// Terminal leases admit no further transitions.
	_, err = svc.CancelLease(ctx, lease.ID)
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCancelLease(t *testing.T) {
	repo := newFakeRepository()
	room := seedRoom(repo, enums.RoomStatusAvailable)
	svc := newTestService(t, repo)
	ctx := context.Background()

	lease, err := svc.CreateLease(ctx, leaseInput(room.ID))
	if err != nil {
		t.Fatalf("CreateLease error: %v", err)
	}

	cancelled, err := svc.CancelLease(ctx, lease.ID)
	if err != nil {
		t.Fatalf("CancelLease error: %v", err)
	}
	if cancelled.Status != enums.BookingStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
}

func TestDeleteOpenLeaseFreesRoom(t *testing.T) {
	repo := newFakeRepository()
	room := seedRoom(repo, enums.RoomStatusAvailable)
	svc := newTestService(t, repo)
	ctx := context.Background()

	lease, err := svc.CreateLease(ctx, leaseInput(room.ID))
	if err != nil {
		t.Fatalf("CreateLease error: %v", err)
	}

	if err := svc.DeleteLease(ctx, lease.ID); err != nil {
		t.Fatalf("DeleteLease error: %v", err)
	}
	if _, ok := repo.bookings[lease.ID]; ok {
		t.Fatalf("lease row must be gone")
	}
	if repo.rooms[room.ID].Status != enums.RoomStatusAvailable {
		t.Fatalf("deleting an open lease must free its room")
	}
}

func TestAppendReminder(t *testing.T) {
	repo := newFakeRepository()
	room := seedRoom(repo, enums.RoomStatusAvailable)
	svc := newTestService(t, repo)
	ctx := context.Background()

	lease, err := svc.CreateLease(ctx, leaseInput(room.ID))
	if err != nil {
		t.Fatalf("CreateLease error: %v", err)
	}

	if err := svc.AppendReminder(ctx, lease.ID, "2025-07-05 overdue notice"); err != nil {
		t.Fatalf("AppendReminder error: %v", err)
	}
	stored := repo.bookings[lease.ID]
	if len(stored.ReminderLog) != 1 || stored.ReminderLog[0] != "2025-07-05 overdue notice" {
		t.Fatalf("unexpected reminder log: %v", stored.ReminderLog)
	}

	err = svc.AppendReminder(ctx, lease.ID, "   ")
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestListOpenIncludesPaidLeases(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo)

	active := models.Booking{ID: uuid.New(), Status: enums.BookingStatusActive}
	paid := models.Booking{ID: uuid.New(), Status: enums.BookingStatusPaid}
	ended := models.Booking{ID: uuid.New(), Status: enums.BookingStatusEnded}
	repo.bookings[active.ID] = active
	repo.bookings[paid.ID] = paid
	repo.bookings[ended.ID] = ended

	open, err := svc.ListOpen(context.Background())
	if err != nil {
		t.Fatalf("ListOpen error: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("expected active and paid leases only, got %d", len(open))
	}
	for _, booking := range open {
		if booking.Status.IsTerminal() {
			t.Fatalf("terminal lease leaked into open list: %s", booking.Status)
		}
	}
}

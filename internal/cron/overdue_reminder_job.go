package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smartstockhq/smartstock-backend/internal/ledger"
	"github.com/smartstockhq/smartstock-backend/pkg/db/models"
	"github.com/smartstockhq/smartstock-backend/pkg/logger"
)

// leaseSource is the slice of the bookings service the reminder job needs.
type leaseSource interface {
	ListOpen(ctx context.Context) ([]models.Booking, error)
	AppendReminder(ctx context.Context, bookingID uuid.UUID, entry string) error
}

// OverdueReminderJobParams configure the nightly rent reminder sweep.
type OverdueReminderJobParams struct {
	Logger *logger.Logger
	Leases leaseSource
	Rules  ledger.Rules
}

// NewOverdueReminderJob builds the job that stamps a reminder entry onto
// every lease whose rent is past due.
func NewOverdueReminderJob(params OverdueReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Leases == nil {
		return nil, fmt.Errorf("lease source required")
	}
	rules := params.Rules
	if rules.GraceDays == 0 && rules.DueSoonDays == 0 {
		rules = ledger.DefaultRules()
	}
	return &overdueReminderJob{
		logg:   params.Logger,
		leases: params.Leases,
		rules:  rules,
		now:    time.Now,
	}, nil
}

type overdueReminderJob struct {
	logg   *logger.Logger
	leases leaseSource
	rules  ledger.Rules
	now    func() time.Time
}

func (j *overdueReminderJob) Name() string { return "overdue-reminder" }

func (j *overdueReminderJob) Run(ctx context.Context) error {
	today := j.now().UTC()
	open, err := j.leases.ListOpen(ctx)
	if err != nil {
		return fmt.Errorf("list open leases: %w", err)
	}

	worklist := ledger.BuildWorklist(open, today, j.rules)

	var reminded, failed, dueSoon int
	for _, entry := range worklist {
		if entry.Status != ledger.DueStatusOverdue {
			dueSoon++
			continue
		}
		note := fmt.Sprintf("%s: rent overdue by %d day(s), total due %s",
			today.Format("2006-01-02"), entry.DaysOverdue, entry.TotalDue.StringFixed(2))
		if err := j.leases.AppendReminder(ctx, entry.BookingID, note); err != nil {
			failed++
			leaseCtx := j.logg.WithField(ctx, "booking_id", entry.BookingID.String())
			j.logg.Error(leaseCtx, "failed to record overdue reminder", err)
			continue
		}
		reminded++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"open_leases": len(open),
		"due_soon":    dueSoon,
		"reminded":    reminded,
		"failed":      failed,
	})
	j.logg.Info(logCtx, "overdue reminder sweep complete")
	if failed > 0 {
		return fmt.Errorf("overdue reminders: %d of %d appends failed", failed, failed+reminded)
	}
	return nil
}

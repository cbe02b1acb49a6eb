package cron

import (
	"context"
	"log/slog"
	"time"
)

const (
	JobPurgeCheckInTokens    = "purge_checkin_tokens"
	JobMarkOverdueInvoices   = "mark_overdue_invoices"
	checkInTokenPurgeEvery   = 15 * time.Minute
	overdueInvoiceSweepEvery = time.Hour
)

// TokenPurger deletes QR tokens that can no longer be redeemed.
type TokenPurger interface {
	PurgeStaleTokens(ctx context.Context) (int64, error)
}

// OverdueMarker flags pending invoices whose due date has passed.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context) (int64, error)
}

// RegisterCheckInJobs schedules the QR token purge.
func RegisterCheckInJobs(s *Scheduler, purger TokenPurger) {
	s.AddJob(JobPurgeCheckInTokens, checkInTokenPurgeEvery, func(ctx context.Context) error {
		n, err := purger.PurgeStaleTokens(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			slog.Info("Purged stale check-in tokens", "count", n)
		}
		return nil
	})
}

// RegisterInvoiceJobs schedules the overdue sweep.
func RegisterInvoiceJobs(s *Scheduler, marker OverdueMarker) {
	s.AddJob(JobMarkOverdueInvoices, overdueInvoiceSweepEvery, func(ctx context.Context) error {
		n, err := marker.MarkOverdue(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			slog.Info("Marked invoices overdue", "count", n)
		}
		return nil
	})
}

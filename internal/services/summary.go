package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"garagetracker/internal/core"
	"garagetracker/internal/gateway"
)

// Summarizer computes income, expense and profit totals by re-reading the
// ledgers on every call. Nothing is cached.
type Summarizer struct {
	gw gateway.Gateway
}

func NewSummarizer(gw gateway.Gateway) *Summarizer {
	return &Summarizer{gw: gw}
}

// Summarize totals the closed range [start, end]. The three ledgers are read
// concurrently; if any read fails no summary is returned.
func (s *Summarizer) Summarize(ctx context.Context, sess gateway.Session, start, end core.Date) (core.Summary, error) {
	r := core.DateRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return core.Summary{}, err
	}

	var income, salary, marketing core.Money
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := s.gw.ServiceRecords().List(gctx, sess, gateway.All().InRange(gateway.FieldServiceDate, r))
		for _, row := range rows {
			income = income.Add(row.Cost)
		}
		return err
	})
	g.Go(func() error {
		rows, err := s.gw.SalaryPayments().List(gctx, sess, gateway.All().InRange(gateway.FieldPaymentDate, r))
		for _, row := range rows {
			salary = salary.Add(row.Amount)
		}
		return err
	})
	g.Go(func() error {
		rows, err := s.gw.MarketingExpenses().List(gctx, sess, gateway.All().InRange(gateway.FieldExpenseDate, r))
		for _, row := range rows {
			marketing = marketing.Add(row.Amount)
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return core.Summary{}, err
	}
	return core.NewSummary(r, income, salary, marketing), nil
}

// Daily summarizes the single day d.
func (s *Summarizer) Daily(ctx context.Context, sess gateway.Session, d core.Date) (core.Summary, error) {
	return s.Summarize(ctx, sess, d, d)
}

// Monthly summarizes the calendar month containing d.
func (s *Summarizer) Monthly(ctx context.Context, sess gateway.Session, d core.Date) (core.Summary, error) {
	if err := d.Validate(); err != nil {
		return core.Summary{}, core.Invalid("date", err.Error())
	}
	m := core.MonthOf(d)
	return s.Summarize(ctx, sess, m.Start, m.End)
}

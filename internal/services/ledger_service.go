package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"famledger/internal/amqp"
	"famledger/internal/catalog"
	"famledger/internal/core"
	"famledger/internal/ledger"
	"famledger/internal/log"
	"famledger/internal/series"
	"famledger/internal/summary"
)

// EventPublisher receives ledger change events. *amqp.Client implements it.
type EventPublisher interface {
	Publish(ctx context.Context, e *amqp.LedgerEvent) error
}

// Confirmer is the gate in front of every destructive action. It sees the full plan
// and answers whether to go ahead.
type Confirmer interface {
	Confirm(ctx context.Context, plan DeletePlan) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, plan DeletePlan) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, plan DeletePlan) (bool, error) { return f(ctx, plan) }

// Confirmed approves every plan. Use it when the caller has already confirmed.
var Confirmed Confirmer = ConfirmFunc(func(context.Context, DeletePlan) (bool, error) { return true, nil })

// DeletePlan describes what a delete will remove. It is the confirmation payload.
type DeletePlan struct {
	Target  core.LedgerRecord   `json:"target"`
	Scope   DeleteScope         `json:"scope"`
	From    core.Date           `json:"from"`
	Records []core.LedgerRecord `json:"records"`
}

// MonthView is a month summary together with the categories needed to render it.
type MonthView struct {
	summary.MonthSummary
	Categories []catalog.Category `json:"categories"`
}

// LedgerService is the entry point for every ledger operation.
type LedgerService struct {
	store     ledger.Store
	catalog   catalog.Reader
	generator *series.Generator
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a LedgerService.
type Option func(*LedgerService)

// WithCatalog enables category checks on submit and category lists in month views.
func WithCatalog(c catalog.Reader) Option { return func(s *LedgerService) { s.catalog = c } }

// WithPublisher enables change events.
func WithPublisher(p EventPublisher) Option { return func(s *LedgerService) { s.publisher = p } }

func WithGenerator(g *series.Generator) Option { return func(s *LedgerService) { s.generator = g } }

func WithLogger(l *slog.Logger) Option { return func(s *LedgerService) { s.logger = l } }

// WithClock overrides time.Now, which decides "today" for the near sort.
func WithClock(now func() time.Time) Option { return func(s *LedgerService) { s.now = now } }

func NewLedgerService(store ledger.Store, opts ...Option) *LedgerService {
	s := &LedgerService{
		store:     store,
		generator: series.NewGenerator(),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current calendar date.
func (s *LedgerService) Today() core.Date {
	return core.DateOf(s.now())
}

// SubmitIntent expands the intent and stores the whole series in one batch. Validation
// failures return before the store is touched.
func (s *LedgerService) SubmitIntent(ctx context.Context, in core.TransactionIntent) ([]core.LedgerRecord, error) {
	drafts, err := s.generator.Generate(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, drafts[0].CategoryID, in.Kind); err != nil {
		return nil, err
	}

	recs, err := s.store.InsertRecords(ctx, drafts)
	if err != nil {
		return nil, fmt.Errorf("submit %s %s: %w", in.Mode, in.Kind, err)
	}

	s.logger.InfoContext(ctx, "Intent submitted", log.NewFields().
		WithOperation(log.OpSubmit).
		WithRecord(recs[0].ID, recs[0].SeriesID, string(in.Kind), string(in.Mode)).
		WithSeries(recs[0].SeriesID, len(recs)).
		ToSlice()...)

	s.publish(ctx, amqp.EventCreated, recs, recs[0].SeriesID)
	return recs, nil
}

func (s *LedgerService) checkCategory(ctx context.Context, id string, kind core.Kind) error {
	if s.catalog == nil {
		return nil
	}
	c, err := s.catalog.GetCategory(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return core.Invalid(core.FieldCategoryID, "unknown category "+id)
	}
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !c.Active {
		return core.Invalid(core.FieldCategoryID, "category "+c.Name+" is inactive")
	}
	if c.Kind != kind {
		return core.Invalid(core.FieldCategoryID, "category "+c.Name+" is not an "+string(kind)+" category")
	}
	return nil
}

// MonthView fetches the month's records and the catalog together and builds the
// summary. When ctx ends before the result is ready it returns core.ErrStaleView.
func (s *LedgerService) MonthView(ctx context.Context, view summary.ViewState) (MonthView, error) {
	if err := view.Validate(); err != nil {
		return MonthView{}, err
	}

	var (
		records []core.LedgerRecord
		cats    []catalog.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.store.SelectRecordsInRange(gctx, view.Range())
		return err
	})
	if s.catalog != nil {
		g.Go(func() error {
			var err error
			cats, err = s.catalog.ListCategories(gctx, "")
			return err
		})
	}
	err := g.Wait()

	// The caller may have moved on while the store answered.
	if ctx.Err() != nil {
		return MonthView{}, core.ErrStaleView
	}
	if err != nil {
		return MonthView{}, fmt.Errorf("month view %d-%02d: %w", view.Year, view.Month, err)
	}

	return MonthView{
		MonthSummary: summary.Build(view, records, s.Today()),
		Categories:   cats,
	}, nil
}

// Edit changes one record. Siblings in the same series are left alone.
func (s *LedgerService) Edit(ctx context.Context, id string, patch core.RecordPatch) (core.LedgerRecord, error) {
	if err := patch.Validate(); err != nil {
		return core.LedgerRecord{}, err
	}
	if patch.IsEmpty() {
		return s.store.GetRecord(ctx, id)
	}
	if patch.CategoryID != nil {
		current, err := s.store.GetRecord(ctx, id)
		if err != nil {
			return core.LedgerRecord{}, err
		}
		if err := s.checkCategory(ctx, *patch.CategoryID, current.Kind); err != nil {
			return core.LedgerRecord{}, err
		}
	}

	rec, err := s.store.UpdateRecord(ctx, id, patch)
	if err != nil {
		return core.LedgerRecord{}, fmt.Errorf("edit record %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Record edited", log.NewFields().
		WithOperation(log.OpEdit).
		WithRecord(rec.ID, rec.SeriesID, string(rec.Kind), string(rec.Mode)).
		ToSlice()...)
	s.publish(ctx, amqp.EventUpdated, []core.LedgerRecord{rec}, rec.SeriesID)
	return rec, nil
}

// PlanDelete works out what deleting id would remove without touching anything.
func (s *LedgerService) PlanDelete(ctx context.Context, id string) (DeletePlan, error) {
	target, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return DeletePlan{}, err
	}
	policy, err := GetDeletionPolicy(target.Mode)
	if err != nil {
		return DeletePlan{}, err
	}

	var siblings []core.LedgerRecord
	if target.InSeries() && policy.Scope() != ScopeRecord {
		siblings, err = s.store.SelectRecordsBySeries(ctx, target.SeriesID)
		if err != nil {
			return DeletePlan{}, fmt.Errorf("plan delete %s: %w", id, err)
		}
	}

	scope := policy.Scope()
	if !target.InSeries() {
		scope = ScopeRecord
	}
	return DeletePlan{
		Target:  target,
		Scope:   scope,
		From:    policy.From(target),
		Records: policy.Affected(target, siblings),
	}, nil
}

// Delete removes id and whatever its mode's policy takes with it, but only after the
// confirmer approves the plan. A declined plan returns core.ErrNotConfirmed and leaves
// the store untouched.
func (s *LedgerService) Delete(ctx context.Context, id string, confirmer Confirmer) (DeletePlan, error) {
	plan, err := s.PlanDelete(ctx, id)
	if err != nil {
		return DeletePlan{}, err
	}

	ok, err := confirmer.Confirm(ctx, plan)
	if err != nil {
		return plan, fmt.Errorf("confirm delete: %w", err)
	}
	if !ok {
		return plan, core.ErrNotConfirmed
	}

	policy, err := GetDeletionPolicy(plan.Target.Mode)
	if err != nil {
		return plan, err
	}
	if err := policy.Apply(ctx, s.store, plan.Target); err != nil {
		return plan, fmt.Errorf("delete record %s: %w", id, err)
	}

	fields := log.NewFields().
		WithOperation(log.OpDelete).
		WithRecord(id, plan.Target.SeriesID, string(plan.Target.Kind), string(plan.Target.Mode)).
		WithSeries(plan.Target.SeriesID, len(plan.Records))
	fields[log.FieldScope] = plan.Scope
	s.logger.InfoContext(ctx, "Records deleted", fields.ToSlice()...)

	s.publish(ctx, amqp.EventDeleted, plan.Records, plan.Target.SeriesID)
	return plan, nil
}

// publish sends a change event. Failures are logged; the change itself already
// happened.
func (s *LedgerService) publish(ctx context.Context, t amqp.EventType, recs []core.LedgerRecord, seriesID string) {
	if s.publisher == nil {
		return
	}
	ids := make([]string, len(recs))
	months := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
		months[i] = r.TxDate.Format("2006-01")
	}
	if err := s.publisher.Publish(ctx, amqp.NewLedgerEvent(t, ids, seriesID, months)); err != nil {
		fields := log.NewFields().WithSeries(seriesID, len(recs)).WithError(err)
		fields[log.FieldEventType] = t
		s.logger.ErrorContext(ctx, "Failed to publish ledger event", fields.ToSlice()...)
	}
}

package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/shandysiswandi/goaging/internal/aging/chart"
	"github.com/shandysiswandi/goaging/internal/aging/entity"
	"github.com/shandysiswandi/goaging/internal/aging/pipeline"
	"github.com/shandysiswandi/goaging/internal/aging/schema"
	"github.com/shandysiswandi/goaging/internal/aging/sheet"
	"github.com/shandysiswandi/goaging/internal/pkg/pkgerror"
	"github.com/shandysiswandi/goaging/internal/pkg/pkglog"
	"github.com/shandysiswandi/goaging/internal/pkg/pkguid"
)

const DefaultMaxUploadBytes int64 = 32 << 20

type Store interface {
	CreateReport(ctx context.Context, meta entity.ReportMeta) error
	UpdateMeta(ctx context.Context, reportID string, fn func(meta *entity.ReportMeta)) error
	SaveReport(ctx context.Context, reportID string, report *entity.Report) error
	GetReport(ctx context.Context, reportID string) (*entity.Report, entity.ReportMeta, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event entity.WarningEvent) error
}

type Runner interface {
	Go(ctx context.Context, f func(ctx context.Context) error)
}

type Clock interface {
	Now() time.Time
}

type Dependency struct {
	Store          Store
	Events         EventPublisher
	Runner         Runner
	Clock          Clock
	ID             pkguid.StringID
	EventID        pkguid.NumberID
	Schema         schema.Config
	MaxUploadBytes int64
	RootCtx        context.Context
}

type Usecase struct {
	store    Store
	events   EventPublisher
	runner   Runner
	clock    Clock
	id       pkguid.StringID
	eventID  pkguid.NumberID
	schema   schema.Config
	maxBytes int64
	rootCtx  context.Context
}

func New(dep Dependency) *Usecase {
	root := dep.RootCtx
	if root == nil {
		root = context.Background()
	}

	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	maxBytes := dep.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}

	cfg := dep.Schema
	if len(cfg.Fields) == 0 {
		cfg = schema.Default()
	}

	return &Usecase{
		store:    dep.Store,
		events:   dep.Events,
		runner:   dep.Runner,
		clock:    clock,
		id:       dep.ID,
		eventID:  dep.EventID,
		schema:   cfg,
		maxBytes: maxBytes,
		rootCtx:  root,
	}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Upload reads the whole file, registers a queued report and builds it in
// the background.
func (u *Usecase) Upload(ctx context.Context, r io.Reader, in UploadInput) (UploadResult, error) {
	if u.store == nil || u.id == nil || u.runner == nil {
		return UploadResult{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	data, err := u.readUpload(r)
	if err != nil {
		return UploadResult{}, err
	}

	reportID := u.id.Generate()
	if err := u.store.CreateReport(ctx, entity.ReportMeta{
		ID:       reportID,
		Status:   entity.ReportStatusQueued,
		Filename: in.Filename,
		Sheet:    in.Sheet,
	}); err != nil {
		return UploadResult{}, normalizeErr(err)
	}

	u.runner.Go(u.rootCtx, func(ctx context.Context) error {
		ctx = pkglog.SetReportID(ctx, reportID)
		if err := u.processUpload(ctx, reportID, data, in); err != nil {
			slog.ErrorContext(ctx, "report processing failed", "report_id", reportID, "error", err)
			return err
		}
		return nil
	})

	return UploadResult{ReportID: reportID}, nil
}

func (u *Usecase) Report(ctx context.Context, reportID string) (ReportResult, error) {
	if reportID == "" {
		return ReportResult{}, pkgerror.NewInvalidInput(errors.New("report id is required"))
	}

	report, meta, err := u.store.GetReport(ctx, reportID)
	if err != nil {
		return ReportResult{}, mapStoreErr(err)
	}

	return ReportResult{Meta: meta, Report: report}, nil
}

// Chart renders the collector aging chart of a finished report as PNG.
func (u *Usecase) Chart(ctx context.Context, reportID string, w io.Writer) error {
	res, err := u.Report(ctx, reportID)
	if err != nil {
		return err
	}

	switch res.Meta.Status {
	case entity.ReportStatusDone:
	case entity.ReportStatusFailed:
		return pkgerror.NewBusiness("report failed: "+res.Meta.Err, pkgerror.CodeConflict)
	default:
		return pkgerror.NewBusiness("report is not ready", pkgerror.CodeConflict)
	}

	tr := res.Report.CollectorAging
	if tr.Err != nil {
		return pkgerror.NewBusiness("collector aging unavailable: "+tr.Err.Error(), pkgerror.CodeInvalidInput)
	}
	if tr.Table == nil || len(tr.Table.Groups) == 0 {
		return pkgerror.NewBusiness("collector aging has no data", pkgerror.CodeInvalidInput)
	}

	if err := chart.CollectorAging(tr.Table, w, chart.DefaultWidth, chart.DefaultHeight); err != nil {
		return pkgerror.NewServer(err)
	}
	return nil
}

// Sheets lists the sheet names of an uploaded workbook.
func (u *Usecase) Sheets(ctx context.Context, r io.Reader, filename string) ([]string, error) {
	data, err := u.readUpload(r)
	if err != nil {
		return nil, err
	}

	names, err := sheet.Sheets(data, filename)
	if err != nil {
		return nil, pkgerror.NewBusiness(err.Error(), pkgerror.CodeInvalidInput)
	}
	return names, nil
}

func (u *Usecase) Schema() schema.Config {
	return u.schema
}

// MaxUploadBytes is the largest file Upload and Sheets accept.
func (u *Usecase) MaxUploadBytes() int64 {
	return u.maxBytes
}

func (u *Usecase) readUpload(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, pkgerror.NewInvalidInput(errors.New("file is required"))
	}

	var buf bytes.Buffer
	n, err := buf.ReadFrom(io.LimitReader(r, u.maxBytes+1))
	if err != nil {
		return nil, pkgerror.NewServer(fmt.Errorf("read upload: %w", err))
	}
	if n == 0 {
		return nil, pkgerror.NewBusiness("file is empty", pkgerror.CodeInvalidInput)
	}
	if n > u.maxBytes {
		return nil, pkgerror.NewTooLarge(u.maxBytes)
	}

	return buf.Bytes(), nil
}

func (u *Usecase) processUpload(ctx context.Context, reportID string, data []byte, in UploadInput) error {
	startedAt := u.clock.Now().Unix()
	if err := u.store.UpdateMeta(ctx, reportID, func(meta *entity.ReportMeta) {
		meta.Status = entity.ReportStatusProcessing
		meta.StartedAt = startedAt
	}); err != nil {
		return u.fail(ctx, reportID, err)
	}

	report, err := u.build(data, in)
	if err != nil {
		slog.WarnContext(ctx, "failed to load spreadsheet", "report_id", reportID, "error", err)
		return u.finish(ctx, reportID, entity.ReportStatusFailed, err.Error())
	}

	if err := u.store.SaveReport(ctx, reportID, report); err != nil {
		return u.fail(ctx, reportID, err)
	}
	u.publishWarnings(ctx, reportID, report)

	return u.finish(ctx, reportID, entity.ReportStatusDone, "")
}

func (u *Usecase) build(data []byte, in UploadInput) (report *entity.Report, err error) {
	// malformed workbooks can panic inside the xls reader
	defer func() {
		if rvr := recover(); rvr != nil {
			report, err = nil, fmt.Errorf("%w: %v", sheet.ErrUnsupported, rvr)
		}
	}()

	ds, err := sheet.Load(data, in.Filename, in.Sheet)
	if err != nil {
		return nil, err
	}

	res := schema.Resolve(ds.Columns, u.schema)
	rep := pipeline.Aggregate(ds, res.Mapping)
	rep.Resolution = res

	return &rep, nil
}

// fail marks the report FAILED after a store error and returns the cause.
func (u *Usecase) fail(ctx context.Context, reportID string, cause error) error {
	if err := u.finish(ctx, reportID, entity.ReportStatusFailed, cause.Error()); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func (u *Usecase) finish(ctx context.Context, reportID string, status entity.ReportStatus, errMsg string) error {
	endedAt := u.clock.Now().Unix()
	return u.store.UpdateMeta(ctx, reportID, func(meta *entity.ReportMeta) {
		meta.Status = status
		meta.Err = errMsg
		meta.EndedAt = endedAt
	})
}

func (u *Usecase) publishWarnings(ctx context.Context, reportID string, report *entity.Report) {
	res := report.Resolution
	for _, f := range res.Unresolved {
		msg := fmt.Sprintf("field %s is not resolved", f)
		if s, ok := res.Suggestions[f]; ok {
			msg += fmt.Sprintf(", did you mean %q?", s)
		}
		u.publish(ctx, reportID, entity.EventUnresolvedField, msg)
	}
	for _, a := range res.Ambiguities {
		msg := fmt.Sprintf("field %s matches %d columns %q", a.Field, len(a.Candidates), a.Candidates)
		if a.Chosen != "" {
			msg += fmt.Sprintf(", using %q", a.Chosen)
		}
		u.publish(ctx, reportID, entity.EventAmbiguousField, msg)
	}
	for _, note := range res.Notes {
		u.publish(ctx, reportID, entity.EventResolutionNote, note)
	}
	for _, w := range report.Warnings {
		u.publish(ctx, reportID, entity.EventCoercion, w.String())
	}
	for _, tr := range report.Tables() {
		if tr.Err != nil {
			u.publish(ctx, reportID, entity.EventTableFailed, tr.Err.Error())
		}
	}
}

func (u *Usecase) publish(ctx context.Context, reportID string, kind entity.EventKind, msg string) {
	if u.events == nil {
		return
	}

	event := entity.WarningEvent{
		EventID:  u.nextEventID(),
		ReportID: reportID,
		Kind:     kind,
		Message:  msg,
	}
	if err := u.events.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish event", "report_id", reportID, "event_id", event.EventID, "error", err)
	}
}

func (u *Usecase) nextEventID() string {
	if u.eventID != nil {
		return strconv.FormatInt(u.eventID.Generate(), 10)
	}
	if u.id != nil {
		return u.id.Generate()
	}
	return ""
}

func mapStoreErr(err error) error {
	if errors.Is(err, pkgerror.ErrNotFound) {
		return pkgerror.NewBusiness("report not found", pkgerror.CodeNotFound)
	}
	return normalizeErr(err)
}

func normalizeErr(err error) error {
	var perr *pkgerror.Error
	if errors.As(err, &perr) {
		return perr
	}
	return pkgerror.NewServer(err)
}

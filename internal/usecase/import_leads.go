package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/kdacanay/wrc-leads/internal/csvimport"
	"github.com/kdacanay/wrc-leads/internal/entity"
	"github.com/kdacanay/wrc-leads/internal/observability/metrics"
	"github.com/kdacanay/wrc-leads/pkg/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultImportSessionTTL = 30 * time.Minute
	DefaultImportMaxBytes   = 10 << 20
)

// ImportLeadsUseCase drives the preview, select, confirm wizard.
type ImportLeadsUseCase struct {
	Sessions   SessionStore
	Store      entity.LeadStore
	Guard      StoreGuard
	Metrics    *metrics.LeadMetrics
	Logger     *logging.Logger
	SessionTTL time.Duration
	MaxBytes   int64
	Now        Clock
}

func NewImportLeadsUseCase(
	sessions SessionStore,
	store entity.LeadStore,
	guard StoreGuard,
	m *metrics.LeadMetrics,
	logger *logging.Logger,
	sessionTTL time.Duration,
	maxBytes int64,
) *ImportLeadsUseCase {
	if logger == nil {
		logger = logging.Default()
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultImportSessionTTL
	}
	if maxBytes <= 0 {
		maxBytes = DefaultImportMaxBytes
	}
	return &ImportLeadsUseCase{
		Sessions:   sessions,
		Store:      store,
		Guard:      guard,
		Metrics:    m,
		Logger:     logger,
		SessionTTL: sessionTTL,
		MaxBytes:   maxBytes,
		Now:        time.Now,
	}
}

// Preview tokenizes the upload and stores a session with every row selected.
func (uc *ImportLeadsUseCase) Preview(ctx context.Context, actor entity.Actor, raw string) (*ImportPreview, error) {
	if !actor.IsAdmin() {
		return nil, NewDomainError(CodePermissionDenied, "Only admins can import leads.")
	}

	session, err := csvimport.NewSession(raw, uc.MaxBytes, actor.ID, uc.Now())
	switch {
	case errors.Is(err, csvimport.ErrFileTooLarge):
		return nil, NewDomainError(CodeFileTooLarge, "CSV file is too large.")
	case errors.Is(err, csvimport.ErrNoDataRows):
		return nil, NewDomainError(CodeNoDataRows, "CSV looks empty or missing data rows.")
	case err != nil:
		return nil, err
	}

	if err := uc.Sessions.Save(ctx, session, uc.SessionTTL); err != nil {
		uc.Logger.Error("import session save failed", "error", err)
		return nil, &TechnicalError{Code: CodeInternal, Message: "Failed to start import.", Err: err}
	}

	uc.Logger.Info("import preview ready", "session_id", session.ID, "rows", len(session.Rows), "delimiter", session.Delimiter)
	return newImportPreview(session), nil
}

// Select replaces the selected row ids of a session.
func (uc *ImportLeadsUseCase) Select(ctx context.Context, actor entity.Actor, sessionID string, rowIDs []string) (*ImportPreview, error) {
	session, err := uc.loadSession(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Select(rowIDs); err != nil {
		return nil, NewDomainError(CodeValidation, "selectedRowIds: contains an unknown row id")
	}
	if err := uc.Sessions.Save(ctx, session, uc.SessionTTL); err != nil {
		return nil, &TechnicalError{Code: CodeInternal, Message: "Failed to update selection.", Err: err}
	}
	return newImportPreview(session), nil
}

// Confirm imports the selection and discards the session. An empty selection
// keeps the session so the admin can pick rows and try again.
func (uc *ImportLeadsUseCase) Confirm(ctx context.Context, actor entity.Actor, sessionID string) (ImportResult, error) {
	session, err := uc.loadSession(ctx, actor, sessionID)
	if err != nil {
		return ImportResult{}, err
	}

	result, err := uc.ImportSelected(ctx, session, actor)
	if err != nil {
		return result, err
	}

	if err := uc.Sessions.Delete(ctx, sessionID); err != nil {
		uc.Logger.Warn("import session cleanup failed", "session_id", sessionID, "error", err)
	}
	return result, nil
}

func (uc *ImportLeadsUseCase) Cancel(ctx context.Context, actor entity.Actor, sessionID string) error {
	if !actor.IsAdmin() {
		return NewDomainError(CodePermissionDenied, "Only admins can import leads.")
	}
	if err := uc.Sessions.Delete(ctx, sessionID); err != nil {
		return &TechnicalError{Code: CodeInternal, Message: "Failed to cancel import.", Err: err}
	}
	return nil
}

// ImportSelected creates one lead per selected row that survives the
// transformer. Rows are independent: a failed create is counted and the run
// continues, and earlier creates stay committed.
func (uc *ImportLeadsUseCase) ImportSelected(ctx context.Context, session *csvimport.Session, actor entity.Actor) (ImportResult, error) {
	ctx, span := tracer.Start(ctx, "import.selected")
	defer span.End()

	var result ImportResult
	rows := session.SelectedRows()
	if len(rows) == 0 {
		return result, NewDomainError(CodeNoRowsSelected, "No rows selected to import.")
	}
	span.SetAttributes(attribute.String("import.session_id", session.ID), attribute.Int("import.selected", len(rows)))

	for _, row := range rows {
		payload, ok := csvimport.TransformRow(row.Columns, session.Columns)
		if !ok {
			result.Skipped++
			uc.Metrics.ObserveImportRow(metrics.OutcomeSkipped)
			uc.Logger.Debug("import row skipped, no usable contact", "session_id", session.ID, "row_id", row.ID)
			continue
		}

		lead, err := payload.NewLead(actor, uc.Now())
		if err == nil {
			err = uc.Guard.Do(ctx, "lead.create", func(ctx context.Context) error {
				id, err := uc.Store.Create(ctx, lead)
				if err != nil {
					return err
				}
				lead.ID = id
				return nil
			})
		}
		if err != nil {
			result.Failed++
			uc.Metrics.ObserveImportRow(metrics.OutcomeFailed)
			uc.Logger.Warn("import row failed", "session_id", session.ID, "row_id", row.ID, "error", err)
			continue
		}

		result.Created++
		result.LeadIDs = append(result.LeadIDs, lead.ID)
		uc.Metrics.ObserveImportRow(metrics.OutcomeCreated)
	}

	span.SetAttributes(
		attribute.Int("import.created", result.Created),
		attribute.Int("import.skipped", result.Skipped),
		attribute.Int("import.failed", result.Failed),
	)
	uc.Logger.Info("import complete", "session_id", session.ID,
		"created", result.Created, "skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}

func (uc *ImportLeadsUseCase) loadSession(ctx context.Context, actor entity.Actor, sessionID string) (*csvimport.Session, error) {
	if !actor.IsAdmin() {
		return nil, NewDomainError(CodePermissionDenied, "Only admins can import leads.")
	}
	session, err := uc.Sessions.Get(ctx, sessionID)
	if errors.Is(err, csvimport.ErrSessionNotFound) {
		return nil, NewDomainError(CodeSessionNotFound, "Import session not found or expired.")
	}
	if err != nil {
		return nil, &TechnicalError{Code: CodeInternal, Message: "Failed to load import session.", Err: err}
	}
	return session, nil
}

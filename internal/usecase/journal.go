package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kdacanay/wrc-leads/internal/entity"
	"github.com/kdacanay/wrc-leads/internal/observability/metrics"
	"github.com/kdacanay/wrc-leads/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("wrc-leads/usecase")

// JournalService is the single write path for journal entries. Every
// mutation that changes a lead goes through Mutate so that the field update,
// the appended entry and the latest-activity projection land in one store
// write.
type JournalService struct {
	Store   entity.LeadStore
	Guard   StoreGuard
	Metrics *metrics.LeadMetrics
	Logger  *logging.Logger
	Now     Clock
}

func NewJournalService(store entity.LeadStore, guard StoreGuard, m *metrics.LeadMetrics, logger *logging.Logger) *JournalService {
	if logger == nil {
		logger = logging.Default()
	}
	return &JournalService{Store: store, Guard: guard, Metrics: m, Logger: logger, Now: time.Now}
}

func (s *JournalService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// BuildMutation stamps a new entry with the caller's clock and pairs it with
// the patch.
func (s *JournalService) BuildMutation(actor entity.Actor, patch entity.LeadPatch, entryType, text string) (entity.LeadMutation, error) {
	now := s.now()
	entry, err := entity.NewJournalEntry(actor, entryType, text, now)
	if err != nil {
		if errors.Is(err, entity.ErrEmptyText) {
			return entity.LeadMutation{}, NewDomainError(CodeValidation, "Journal text is required.")
		}
		return entity.LeadMutation{}, err
	}
	return entity.LeadMutation{
		Patch:     patch,
		Append:    &entry,
		UpdatedBy: actor.ID,
		UpdatedAt: entity.NewTimestamp(now),
	}, nil
}

// Append adds one entry and makes it the latest activity.
func (s *JournalService) Append(ctx context.Context, leadID string, actor entity.Actor, entryType, text string) (entity.JournalEntry, error) {
	return s.Mutate(ctx, leadID, actor, entity.LeadPatch{}, entryType, text)
}

// Mutate applies patch and appends one entry atomically.
func (s *JournalService) Mutate(ctx context.Context, leadID string, actor entity.Actor, patch entity.LeadPatch, entryType, text string) (entity.JournalEntry, error) {
	ctx, span := tracer.Start(ctx, "journal.append")
	defer span.End()
	span.SetAttributes(attribute.String("lead.id", leadID), attribute.String("journal.type", entryType))

	m, err := s.BuildMutation(actor, patch, entryType, text)
	if err != nil {
		return entity.JournalEntry{}, err
	}

	err = s.Guard.Do(ctx, "lead.update", func(ctx context.Context) error {
		return s.Store.Update(ctx, leadID, m)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "append failed")
		s.Logger.Error("journal append failed", "lead_id", leadID, "type", entryType, "error", err)
		return entity.JournalEntry{}, storeError(err, "Failed to save lead.")
	}

	s.Metrics.ObserveJournalAppend(entryType)
	return *m.Append, nil
}

// AddNote appends a free-text note. Admin notes are quoted and tagged
// admin-note; agent notes are stored verbatim.
func (s *JournalService) AddNote(ctx context.Context, leadID string, actor entity.Actor, note string) (entity.JournalEntry, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return entity.JournalEntry{}, NewDomainError(CodeValidation, "Note text is required.")
	}
	if _, err := s.loadForActor(ctx, leadID, actor); err != nil {
		return entity.JournalEntry{}, err
	}
	if actor.IsAdmin() {
		return s.Append(ctx, leadID, actor, entity.JournalTypeAdminNote, AdminNoteText(note))
	}
	return s.Append(ctx, leadID, actor, entity.JournalTypeNote, note)
}

// DeleteEntry soft-deletes an entry and recomputes the projection. Admins may
// delete any entry; others only their own.
func (s *JournalService) DeleteEntry(ctx context.Context, leadID, entryID string, actor entity.Actor) error {
	ctx, span := tracer.Start(ctx, "journal.delete_entry")
	defer span.End()
	span.SetAttributes(attribute.String("lead.id", leadID), attribute.String("journal.entry_id", entryID))

	now := entity.NewTimestamp(s.now())
	err := s.Guard.Do(ctx, "lead.update_journal", func(ctx context.Context) error {
		return s.Store.UpdateJournal(ctx, leadID, func(l *entity.Lead) error {
			if err := canAccess(actor, l); err != nil {
				return err
			}
			if !actor.IsAdmin() && !authoredBy(l.Journal, entryID, actor.ID) {
				return NewDomainError(CodePermissionDenied, "You can only delete your own journal entries.")
			}
			if err := l.SoftDeleteEntry(entryID); err != nil {
				return err
			}
			l.RefreshProjection()
			l.UpdatedBy = actor.ID
			l.UpdatedAt = now
			return nil
		})
	})
	if err != nil {
		span.RecordError(err)
		if !IsDomainError(err) && !errors.Is(err, entity.ErrEntryNotFound) && !errors.Is(err, entity.ErrLeadNotFound) {
			s.Logger.Error("journal entry delete failed", "lead_id", leadID, "entry_id", entryID, "error", err)
		}
		return storeError(err, "Failed to delete journal entry.")
	}
	return nil
}

// Recompute rewrites a stale projection. It reports whether anything changed.
func (s *JournalService) Recompute(ctx context.Context, leadID string) (bool, error) {
	changed := false
	err := s.Guard.Do(ctx, "lead.update_journal", func(ctx context.Context) error {
		return s.Store.UpdateJournal(ctx, leadID, func(l *entity.Lead) error {
			changed = l.ProjectionStale()
			if changed {
				l.RefreshProjection()
			}
			return nil
		})
	})
	if err != nil {
		return false, storeError(err, "Failed to recompute latest activity.")
	}
	return changed, nil
}

// Timeline returns the visible entries of a lead, newest first.
func (s *JournalService) Timeline(ctx context.Context, leadID string, actor entity.Actor) ([]entity.JournalEntry, error) {
	lead, err := s.loadForActor(ctx, leadID, actor)
	if err != nil {
		return nil, err
	}
	return entity.Timeline(lead.Journal), nil
}

func (s *JournalService) loadForActor(ctx context.Context, leadID string, actor entity.Actor) (*entity.Lead, error) {
	var lead *entity.Lead
	err := s.Guard.Do(ctx, "lead.get", func(ctx context.Context) error {
		var err error
		lead, err = s.Store.Get(ctx, leadID)
		return err
	})
	if err != nil {
		return nil, storeError(err, "Failed to load lead.")
	}
	if err := canAccess(actor, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// canAccess lets admins see every lead and agents only their own.
func canAccess(actor entity.Actor, lead *entity.Lead) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.IsAgent() && lead.AssignedAgentID == actor.ID {
		return nil
	}
	return NewDomainError(CodePermissionDenied, "You do not have access to this lead.")
}

func authoredBy(entries []entity.JournalEntry, entryID, userID string) bool {
	for _, e := range entries {
		if e.ID == entryID {
			return e.CreatedBy == userID
		}
	}
	// Unknown ids fall through to SoftDeleteEntry's not-found error.
	return true
}

func AdminNoteText(note string) string {
	return fmt.Sprintf(`Admin added note: "%s"`, note)
}

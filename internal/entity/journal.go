package entity

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	JournalTypeCreate         = "create"
	JournalTypeImport         = "import"
	JournalTypeNote           = "note"
	JournalTypeAdminNote      = "admin-note"
	JournalTypeAdminUpdate    = "admin-update"
	JournalTypeAgentUpdate    = "agent-update"
	JournalTypeAssignment     = "assignment"
	JournalTypeBulkAssignment = "bulk-assignment"
	JournalTypeActionItem     = "action-item"
)

// NoActivity is returned by ComputeLatestActivity when nothing is visible.
// It is persisted as the empty string.
const NoActivity = "No activity yet"

// JournalEntry is immutable once appended. CreatedAt is the writer's clock,
// not a server timestamp.
type JournalEntry struct {
	ID             string    `json:"id"`
	CreatedAt      Timestamp `json:"createdAt"`
	CreatedBy      string    `json:"createdBy"`
	CreatedByEmail string    `json:"createdByEmail"`
	Text           string    `json:"text"`
	Type           string    `json:"type"`
	IsDeleted      bool      `json:"isDeleted,omitempty"`
}

func NewJournalEntry(actor Actor, entryType, text string, at time.Time) (JournalEntry, error) {
	if strings.TrimSpace(text) == "" {
		return JournalEntry{}, ErrEmptyText
	}
	return JournalEntry{
		ID:             uuid.New().String(),
		CreatedAt:      NewTimestamp(at),
		CreatedBy:      actor.ID,
		CreatedByEmail: actor.Email,
		Text:           text,
		Type:           entryType,
	}, nil
}

// VisibleEntries filters out soft-deleted entries, preserving order.
func VisibleEntries(entries []JournalEntry) []JournalEntry {
	out := make([]JournalEntry, 0, len(entries))
	for _, e := range entries {
		if !e.IsDeleted {
			out = append(out, e)
		}
	}
	return out
}

// ComputeLatestActivity returns the text of the newest visible entry. Ties on
// CreatedAt go to the entry scanned last. With no entries at all the legacy
// journalLastEntry and latestActivity fields are used, in that order.
func ComputeLatestActivity(entries []JournalEntry, legacyLastEntry, legacyLatest string) string {
	if len(entries) == 0 {
		if legacyLastEntry != "" {
			return legacyLastEntry
		}
		if legacyLatest != "" {
			return legacyLatest
		}
		return NoActivity
	}

	var (
		latest *JournalEntry
		found  bool
	)
	for i := range entries {
		e := &entries[i]
		if e.IsDeleted {
			continue
		}
		if !found || e.CreatedAt.Millis() >= latest.CreatedAt.Millis() {
			latest = e
			found = true
		}
	}
	if !found {
		return NoActivity
	}
	return latest.Text
}

// Timeline returns visible entries newest first.
func Timeline(entries []JournalEntry) []JournalEntry {
	visible := VisibleEntries(entries)
	// Equal timestamps list the later append first, matching ComputeLatestActivity.
	slices.Reverse(visible)
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].CreatedAt.After(visible[j].CreatedAt)
	})
	return visible
}

func (l *Lead) latestProjection() string {
	text := ComputeLatestActivity(l.Journal, l.JournalLastEntry, l.LatestActivity)
	if text == NoActivity {
		return ""
	}
	return text
}

// RefreshProjection recomputes LatestActivity and JournalLastEntry.
func (l *Lead) RefreshProjection() {
	text := l.latestProjection()
	l.LatestActivity = text
	l.JournalLastEntry = text
}

// ProjectionStale reports whether the cached fields disagree with the journal.
func (l *Lead) ProjectionStale() bool {
	if len(l.Journal) == 0 {
		return false
	}
	text := l.latestProjection()
	return l.LatestActivity != text || l.JournalLastEntry != text
}

// SoftDeleteEntry marks an entry deleted. Deleting twice is a no-op.
func (l *Lead) SoftDeleteEntry(entryID string) error {
	for i := range l.Journal {
		if l.Journal[i].ID == entryID {
			l.Journal[i].IsDeleted = true
			return nil
		}
	}
	return ErrEntryNotFound
}

func (l *Lead) HasEntry(id string) bool {
	for _, e := range l.Journal {
		if e.ID == id {
			return true
		}
	}
	return false
}

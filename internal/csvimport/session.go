package csvimport

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoDataRows      = errors.New("CSV looks empty or missing data rows")
	ErrFileTooLarge    = errors.New("CSV file exceeds the size limit")
	ErrSessionNotFound = errors.New("import session not found or expired")
	ErrUnknownRow      = errors.New("unknown row id")
)

type Row struct {
	ID      string   `json:"id"`
	Columns []string `json:"columns"`
}

// Session is the state of one import wizard between upload and confirm.
type Session struct {
	ID             string    `json:"id"`
	Headers        []string  `json:"headers"`
	Rows           []Row     `json:"rows"`
	SelectedRowIDs []string  `json:"selectedRowIds"`
	Columns        ColumnMap `json:"columns"`
	Delimiter      string    `json:"delimiter"`
	CreatedBy      string    `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewSession tokenizes raw and selects every data row. Rows and headers are
// trimmed. maxBytes <= 0 disables the size check.
func NewSession(raw string, maxBytes int64, createdBy string, now time.Time) (*Session, error) {
	if maxBytes > 0 && int64(len(raw)) > maxBytes {
		return nil, ErrFileTooLarge
	}

	res := Tokenize(raw)
	if len(res.Rows) < 2 {
		return nil, ErrNoDataRows
	}

	headers := trimAll(res.Rows[0])
	rows := make([]Row, 0, len(res.Rows)-1)
	selected := make([]string, 0, len(res.Rows)-1)
	for idx, cols := range res.Rows[1:] {
		id := strconv.Itoa(idx)
		rows = append(rows, Row{ID: id, Columns: trimAll(cols)})
		selected = append(selected, id)
	}

	return &Session{
		ID:             uuid.New().String(),
		Headers:        headers,
		Rows:           rows,
		SelectedRowIDs: selected,
		Columns:        InferColumns(headers),
		Delimiter:      string(res.Delimiter),
		CreatedBy:      createdBy,
		CreatedAt:      now,
	}, nil
}

// Select replaces the selection. Duplicates collapse; unknown ids fail.
func (s *Session) Select(ids []string) error {
	known := make(map[string]bool, len(s.Rows))
	for _, r := range s.Rows {
		known[r.ID] = true
	}

	seen := make(map[string]bool, len(ids))
	next := make([]string, 0, len(ids))
	for _, id := range ids {
		if !known[id] {
			return ErrUnknownRow
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		next = append(next, id)
	}
	s.SelectedRowIDs = next
	return nil
}

// SelectedRows returns the selected rows in file order.
func (s *Session) SelectedRows() []Row {
	selected := make(map[string]bool, len(s.SelectedRowIDs))
	for _, id := range s.SelectedRowIDs {
		selected[id] = true
	}
	out := make([]Row, 0, len(s.SelectedRowIDs))
	for _, r := range s.Rows {
		if selected[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

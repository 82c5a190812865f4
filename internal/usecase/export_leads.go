package usecase

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	"github.com/kdacanay/wrc-leads/internal/entity"
)

var exportHeader = []string{
	"Lead ID", "First Name", "Last Name", "Phone", "Email", "Contact",
	"Status", "Lead Type", "Relationship Ranking", "Urgency Ranking", "Source",
	"Assigned Agent Name", "Assigned Agent Email",
	"First Attempt Date", "Due Date", "Created At", "Updated At",
}

type ExportLeadsUseCase struct {
	Queries *LeadQueries
}

func NewExportLeadsUseCase(queries *LeadQueries) *ExportLeadsUseCase {
	return &ExportLeadsUseCase{Queries: queries}
}

// Execute writes every lead as CSV with all values quoted and CRLF endings.
func (uc *ExportLeadsUseCase) Execute(ctx context.Context, actor entity.Actor, w io.Writer) (int, error) {
	if !actor.IsAdmin() {
		return 0, NewDomainError(CodePermissionDenied, "Only admins can export leads.")
	}
	leads, err := uc.Queries.List(ctx, actor)
	if err != nil {
		return 0, err
	}

	bw := bufio.NewWriter(w)
	writeQuotedRow(bw, exportHeader)
	for _, l := range leads {
		writeQuotedRow(bw, exportRow(l))
	}
	return len(leads), bw.Flush()
}

func exportRow(l *entity.Lead) []string {
	return []string{
		l.ID,
		l.FirstName,
		l.LastName,
		l.Phone,
		l.Email,
		l.Contact,
		string(l.Status),
		string(l.LeadType),
		string(l.RelationshipRanking),
		string(l.UrgencyRanking),
		l.Source,
		l.AssignedAgentName,
		l.AssignedAgentEmail,
		exportTime(l.FirstAttemptDate),
		exportTime(l.NextEvaluationDate),
		exportTime(l.CreatedAt),
		exportTime(l.UpdatedAt),
	}
}

func exportTime(ts entity.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Time().Format(time.RFC3339)
}

// writeQuotedRow quotes every field, doubling embedded quotes. Write errors
// surface from the final Flush.
func writeQuotedRow(w *bufio.Writer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(f, `"`, `""`))
		w.WriteByte('"')
	}
	w.WriteString("\r\n")
}

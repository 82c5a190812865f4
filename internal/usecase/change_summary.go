package usecase

import (
	"fmt"
	"strings"

	"github.com/kdacanay/wrc-leads/internal/entity"
)

// emptyValue stands in for blank values in change sentences.
const emptyValue = "—"

type watchedField struct {
	Label string
	Value func(l *entity.Lead) string
}

var (
	fieldStatus       = watchedField{"Status", func(l *entity.Lead) string { return string(l.Status) }}
	fieldLeadType     = watchedField{"Lead type", func(l *entity.Lead) string { return string(l.LeadType) }}
	fieldRelationship = watchedField{"Relationship ranking", func(l *entity.Lead) string { return string(l.RelationshipRanking) }}
	fieldUrgency      = watchedField{"Urgency ranking", func(l *entity.Lead) string { return string(l.UrgencyRanking) }}
	fieldSource       = watchedField{"Source", func(l *entity.Lead) string { return l.Source }}
	fieldAssigned     = watchedField{"Assigned agent", func(l *entity.Lead) string { return l.AssignedAgentName }}
	fieldFirstAttempt = watchedField{"First attempt date", func(l *entity.Lead) string { return l.FirstAttemptDate.DateString() }}
	fieldNextEval     = watchedField{"Next evaluation date", func(l *entity.Lead) string { return l.NextEvaluationDate.DateString() }}
)

var adminWatchedFields = []watchedField{
	{"First name", func(l *entity.Lead) string { return l.FirstName }},
	{"Last name", func(l *entity.Lead) string { return l.LastName }},
	{"Phone", func(l *entity.Lead) string { return l.Phone }},
	{"Email", func(l *entity.Lead) string { return l.Email }},
	fieldStatus,
	fieldLeadType,
	fieldRelationship,
	fieldUrgency,
	fieldSource,
	fieldAssigned,
	fieldFirstAttempt,
	fieldNextEval,
	{"Registration date", registrationLabel},
	{"Action item", func(l *entity.Lead) string { return l.ActionItem }},
}

var agentWatchedFields = []watchedField{
	fieldRelationship,
	fieldUrgency,
	fieldFirstAttempt,
	fieldNextEval,
}

func registrationLabel(l *entity.Lead) string {
	if l.RegisteredDateRaw != "" {
		return l.RegisteredDateRaw
	}
	return l.RegistrationDate.DateString()
}

// describeChanges lists `Label changed from "a" to "b"` for every watched
// field whose value differs.
func describeChanges(before, after *entity.Lead, fields []watchedField) []string {
	var changes []string
	for _, f := range fields {
		oldValue := strings.TrimSpace(f.Value(before))
		newValue := strings.TrimSpace(f.Value(after))
		if oldValue == newValue {
			continue
		}
		changes = append(changes, fmt.Sprintf(`%s changed from "%s" to "%s"`, f.Label, orEmpty(oldValue), orEmpty(newValue)))
	}
	return changes
}

// ChangeSummary builds the journal sentence for an edit by actorLabel
// ("Admin" or "Agent"). A non-blank note is appended as ` Note: "..."`.
func ChangeSummary(actorLabel string, changes []string, note string) string {
	var text string
	if len(changes) == 0 {
		text = actorLabel + " saved lead with no field changes."
	} else {
		text = actorLabel + " updated lead: " + strings.Join(changes, "; ")
	}
	if note = strings.TrimSpace(note); note != "" {
		text += fmt.Sprintf(` Note: "%s"`, note)
	}
	return text
}

func orEmpty(v string) string {
	if v == "" {
		return emptyValue
	}
	return v
}

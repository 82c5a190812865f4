package usecase

import (
	"github.com/kdacanay/wrc-leads/internal/csvimport"
	"github.com/kdacanay/wrc-leads/internal/entity"
)

// CreateLeadInput carries raw form values; dates are parsed once here.
type CreateLeadInput struct {
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	Phone               string `json:"phone"`
	Email               string `json:"email"`
	Status              string `json:"status"`
	LeadType            string `json:"leadType"`
	Source              string `json:"source"`
	RelationshipRanking string `json:"relationshipRanking"`
	UrgencyRanking      string `json:"urgencyRanking"`
	FirstAttemptDate    string `json:"firstAttemptDate"`
	NextEvaluationDate  string `json:"nextEvaluationDate"`
	RegisteredDate      string `json:"registeredDate"`
	ActionItem          string `json:"actionItem"`
	AssignedAgentID     string `json:"assignedAgentId"`
	Note                string `json:"note"`
}

// AdminUpdateInput is a partial edit; nil fields are left alone.
type AdminUpdateInput struct {
	FirstName           *string `json:"firstName"`
	LastName            *string `json:"lastName"`
	Phone               *string `json:"phone"`
	Email               *string `json:"email"`
	Status              *string `json:"status"`
	LeadType            *string `json:"leadType"`
	Source              *string `json:"source"`
	RelationshipRanking *string `json:"relationshipRanking"`
	UrgencyRanking      *string `json:"urgencyRanking"`
	FirstAttemptDate    *string `json:"firstAttemptDate"`
	NextEvaluationDate  *string `json:"nextEvaluationDate"`
	RegisteredDate      *string `json:"registeredDate"`
	ActionItem          *string `json:"actionItem"`
	Note                string  `json:"note"`
}

// AgentUpdateInput covers the fields an assigned agent may change.
type AgentUpdateInput struct {
	FirstAttemptDate    *string `json:"firstAttemptDate"`
	NextEvaluationDate  *string `json:"nextEvaluationDate"`
	RelationshipRanking *string `json:"relationshipRanking"`
	UrgencyRanking      *string `json:"urgencyRanking"`
	Note                string  `json:"note"`
}

type BulkResult struct {
	Requested int `json:"requested"`
	Committed int `json:"committed"`
	Chunks    int `json:"chunks"`
}

type ImportPreview struct {
	SessionID      string                  `json:"sessionId"`
	Headers        []string                `json:"headers"`
	Rows           []csvimport.Row         `json:"rows"`
	SelectedRowIDs []string                `json:"selectedRowIds"`
	Detected       map[csvimport.Field]int `json:"detected"`
	Delimiter      string                  `json:"delimiter"`
}

func newImportPreview(s *csvimport.Session) *ImportPreview {
	return &ImportPreview{
		SessionID:      s.ID,
		Headers:        s.Headers,
		Rows:           s.Rows,
		SelectedRowIDs: s.SelectedRowIDs,
		Detected:       s.Columns.Fields(),
		Delimiter:      s.Delimiter,
	}
}

// ImportResult is the tally reported after a confirmed import.
type ImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	LeadIDs []string `json:"leadIds"`
}

type DeleteUserOutput struct {
	Success bool `json:"success"`
}

type LeadView struct {
	*entity.Lead
	Hot bool `json:"hot"`
}

func NewLeadView(l *entity.Lead) LeadView {
	return LeadView{Lead: l, Hot: l.IsHot()}
}

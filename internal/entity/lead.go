package entity

import (
	"strings"
	"unicode"
)

type LeadStatus string

const (
	StatusEngagement   LeadStatus = "engagement"
	StatusRelationship LeadStatus = "relationship"
	StatusShortTerm    LeadStatus = "short_term"
	StatusLongTerm     LeadStatus = "long_term"
	StatusDoNotCall    LeadStatus = "do_not_call"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case StatusEngagement, StatusRelationship, StatusShortTerm, StatusLongTerm, StatusDoNotCall:
		return true
	}
	return false
}

type LeadType string

const (
	LeadTypeBuyer       LeadType = "buyer"
	LeadTypeSeller      LeadType = "seller"
	LeadTypeBuyerSeller LeadType = "buyer_seller"
	LeadTypeRenter      LeadType = "renter"
)

func (t LeadType) Valid() bool {
	switch t {
	case LeadTypeBuyer, LeadTypeSeller, LeadTypeBuyerSeller, LeadTypeRenter:
		return true
	}
	return false
}

// RelationshipRanking is an ordinal stored as a string ("0" through "100").
type RelationshipRanking string

const (
	Relationship0   RelationshipRanking = "0"
	Relationship18  RelationshipRanking = "18"
	Relationship34  RelationshipRanking = "34"
	Relationship56  RelationshipRanking = "56"
	Relationship78  RelationshipRanking = "78"
	Relationship100 RelationshipRanking = "100"
)

func (r RelationshipRanking) Valid() bool {
	switch r {
	case Relationship0, Relationship18, Relationship34, Relationship56, Relationship78, Relationship100:
		return true
	}
	return false
}

type UrgencyRanking string

const (
	UrgencyVeryLow    UrgencyRanking = "very_low"
	UrgencyLow        UrgencyRanking = "low"
	UrgencyUnsure     UrgencyRanking = "unsure"
	UrgencyLikely     UrgencyRanking = "likely"
	UrgencyVeryLikely UrgencyRanking = "very_likely"
)

func (u UrgencyRanking) Valid() bool {
	switch u {
	case UrgencyVeryLow, UrgencyLow, UrgencyUnsure, UrgencyLikely, UrgencyVeryLikely:
		return true
	}
	return false
}

const (
	SourceImportCSV = "import-csv"
	SourceOther     = "other"
)

// Lead is a prospective client tracked through the pipeline.
//
// AssignedAgentID is empty when the lead is unassigned. The agent name and
// email are snapshots taken at assignment time and are not kept in sync with
// later profile edits.
type Lead struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Contact   string `json:"contact"`

	Status              LeadStatus          `json:"status"`
	LeadType            LeadType            `json:"leadType"`
	Source              string              `json:"source"`
	RelationshipRanking RelationshipRanking `json:"relationshipRanking"`
	UrgencyRanking      UrgencyRanking      `json:"urgencyRanking"`

	FirstAttemptDate   Timestamp `json:"firstAttemptDate"`
	NextEvaluationDate Timestamp `json:"nextEvaluationDate"`
	RegistrationDate   Timestamp `json:"registrationDate"`
	RegisteredDateRaw  string    `json:"registeredDateRaw"`

	AssignedAgentID    string `json:"assignedAgentId"`
	AssignedAgentName  string `json:"assignedAgentName"`
	AssignedAgentEmail string `json:"assignedAgentEmail"`

	ActionItem       string         `json:"actionItem"`
	LatestActivity   string         `json:"latestActivity"`
	JournalLastEntry string         `json:"journalLastEntry"`
	Journal          []JournalEntry `json:"journal"`

	CreatedAt Timestamp `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
	UpdatedAt Timestamp `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy"`
}

func (l *Lead) IsAssigned() bool { return l.AssignedAgentID != "" }

// IsHot reports whether the relationship ranking is in the top two tiers.
func (l *Lead) IsHot() bool {
	return l.RelationshipRanking == Relationship78 || l.RelationshipRanking == Relationship100
}

// AssigneeLabel is the name used for the current assignee in journal text.
func (l *Lead) AssigneeLabel() string {
	if l.AssignedAgentName != "" {
		return l.AssignedAgentName
	}
	if l.AssignedAgentEmail != "" {
		return l.AssignedAgentEmail
	}
	return "Unassigned"
}

func (l *Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// Clone returns a deep copy; the journal slice is not shared.
func (l *Lead) Clone() *Lead {
	c := *l
	if l.Journal != nil {
		c.Journal = make([]JournalEntry, len(l.Journal))
		copy(c.Journal, l.Journal)
	}
	return &c
}

// BuildContact joins phone and email with " • ", omitting blanks.
func BuildContact(phone, email string) string {
	parts := make([]string, 0, 2)
	if p := strings.TrimSpace(phone); p != "" {
		parts = append(parts, p)
	}
	if e := strings.TrimSpace(email); e != "" {
		parts = append(parts, e)
	}
	return strings.Join(parts, " • ")
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone keeps digits only and drops a leading US country code.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '1' {
		return digits[1:]
	}
	return digits
}

// LeadPatch lists field updates; nil pointers leave the field untouched.
type LeadPatch struct {
	FirstName           *string
	LastName            *string
	Phone               *string
	Email               *string
	Status              *LeadStatus
	LeadType            *LeadType
	Source              *string
	RelationshipRanking *RelationshipRanking
	UrgencyRanking      *UrgencyRanking
	FirstAttemptDate    *Timestamp
	NextEvaluationDate  *Timestamp
	RegistrationDate    *Timestamp
	RegisteredDateRaw   *string
	AssignedAgentID     *string
	AssignedAgentName   *string
	AssignedAgentEmail  *string
	ActionItem          *string
}

func (p LeadPatch) IsEmpty() bool {
	return p == LeadPatch{}
}

func (p LeadPatch) ApplyTo(l *Lead) {
	if p.FirstName != nil {
		l.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		l.LastName = *p.LastName
	}
	if p.Phone != nil {
		l.Phone = *p.Phone
	}
	if p.Email != nil {
		l.Email = *p.Email
	}
	if p.Phone != nil || p.Email != nil {
		l.Contact = BuildContact(l.Phone, l.Email)
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.LeadType != nil {
		l.LeadType = *p.LeadType
	}
	if p.Source != nil {
		l.Source = *p.Source
	}
	if p.RelationshipRanking != nil {
		l.RelationshipRanking = *p.RelationshipRanking
	}
	if p.UrgencyRanking != nil {
		l.UrgencyRanking = *p.UrgencyRanking
	}
	if p.FirstAttemptDate != nil {
		l.FirstAttemptDate = *p.FirstAttemptDate
	}
	if p.NextEvaluationDate != nil {
		l.NextEvaluationDate = *p.NextEvaluationDate
	}
	if p.RegistrationDate != nil {
		l.RegistrationDate = *p.RegistrationDate
	}
	if p.RegisteredDateRaw != nil {
		l.RegisteredDateRaw = *p.RegisteredDateRaw
	}
	if p.AssignedAgentID != nil {
		l.AssignedAgentID = *p.AssignedAgentID
	}
	if p.AssignedAgentName != nil {
		l.AssignedAgentName = *p.AssignedAgentName
	}
	if p.AssignedAgentEmail != nil {
		l.AssignedAgentEmail = *p.AssignedAgentEmail
	}
	if p.ActionItem != nil {
		l.ActionItem = *p.ActionItem
	}
}

// LeadMutation is one atomic update: field changes plus at most one journal
// entry. Stores must apply both or neither.
type LeadMutation struct {
	Patch     LeadPatch
	Append    *JournalEntry
	UpdatedBy string
	UpdatedAt Timestamp
}

// ApplyTo mutates l in place. An appended entry becomes the latest activity.
func (m LeadMutation) ApplyTo(l *Lead) {
	m.Patch.ApplyTo(l)
	if m.Append != nil {
		l.Journal = append(l.Journal, *m.Append)
		l.LatestActivity = m.Append.Text
		l.JournalLastEntry = m.Append.Text
	}
	if m.UpdatedBy != "" {
		l.UpdatedBy = m.UpdatedBy
	}
	if !m.UpdatedAt.IsZero() {
		l.UpdatedAt = m.UpdatedAt
	}
}

// ApplyOnce is ApplyTo that skips an append whose entry id is already in the
// journal, so a retried write stays a single append.
func (m LeadMutation) ApplyOnce(l *Lead) {
	if m.Append != nil && l.HasEntry(m.Append.ID) {
		m.Append = nil
	}
	m.ApplyTo(l)
}

// StringPtr is shorthand for building patches.
func StringPtr(s string) *string { return &s }

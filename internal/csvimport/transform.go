package csvimport

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kdacanay/wrc-leads/internal/entity"
)

const importedLine = "Imported from CSV (selected row)."

// maxVerbatimEmail bounds the length of a mapped email cell that is kept even
// though it does not look like an address.
const maxVerbatimEmail = 80

var (
	phonePattern  = regexp.MustCompile(`(?:\+?1[\s\-.(]*)?\(?\d{3}[\s\-.)]*\d{3}[\s\-.,]*\d{4}`)
	digitRun      = regexp.MustCompile(`\d{7,15}`)
	emailPattern  = regexp.MustCompile(`(?i)[A-Z0-9._%+\-]+@[A-Z0-9.\-]+\.[A-Z]{2,}`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// Payload is the lead-creation input derived from one row.
type Payload struct {
	FirstName         string
	LastName          string
	Phone             string
	Email             string
	Contact           string
	Source            string
	RegisteredDateRaw string
	Notes             string
}

// ExtractPhone returns a formatted US number if one is present, else the
// first bare run of 7 to 15 digits.
func ExtractPhone(text string) string {
	if text == "" {
		return ""
	}
	if m := phonePattern.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	return digitRun.FindString(text)
}

func ExtractEmail(text string) string {
	if text == "" {
		return ""
	}
	return emailPattern.FindString(text)
}

// TransformRow builds a payload from one row. ok is false when no phone or
// email survives the fallback chain; such rows are skipped, not failed.
func TransformRow(cols []string, m ColumnMap) (p Payload, ok bool) {
	if full := cell(cols, m.FullName); full != "" {
		parts := whitespaceRun.Split(full, -1)
		p.FirstName = parts[0]
		p.LastName = strings.Join(parts[1:], " ")
	} else {
		p.FirstName = cell(cols, m.FirstName)
		p.LastName = cell(cols, m.LastName)
	}

	if raw := cell(cols, m.Phone); raw != "" {
		p.Phone = ExtractPhone(raw)
	}

	if raw := cell(cols, m.Email); raw != "" {
		if e := ExtractEmail(raw); e != "" {
			p.Email = e
		} else if len(raw) < maxVerbatimEmail {
			p.Email = raw
		}
	}

	p.Source = cell(cols, m.Source)
	if p.Source == "" {
		p.Source = entity.SourceImportCSV
	}
	p.RegisteredDateRaw = cell(cols, m.RegisteredDate)
	p.Notes = cell(cols, m.Notes)

	if p.Phone == "" {
		p.Phone = ExtractPhone(p.Notes)
	}
	if p.Email == "" {
		p.Email = ExtractEmail(p.Notes)
	}
	if p.Email == "" {
		for _, c := range cols {
			if e := ExtractEmail(c); e != "" {
				p.Email = e
				break
			}
		}
	}
	if p.Phone == "" {
		for _, c := range cols {
			if ph := ExtractPhone(c); ph != "" {
				p.Phone = ph
				break
			}
		}
	}

	// A name alone cannot be worked; a lead needs a phone or an email.
	// Stricter than skipping only all-empty rows: a name-only row is skipped.
	if p.Email == "" && p.Phone == "" {
		return Payload{}, false
	}

	p.Contact = entity.BuildContact(p.Phone, p.Email)
	return p, true
}

// JournalText is the text of the seeded import entry.
func (p Payload) JournalText() string {
	lines := []string{importedLine}
	if p.Notes != "" {
		lines = append(lines, "", "Agent notes:", p.Notes)
	}
	return strings.Join(lines, "\n")
}

// NewLead builds an unassigned lead with import defaults and exactly one
// import journal entry. The id is assigned here so a retried create cannot
// insert the row twice.
func (p Payload) NewLead(actor entity.Actor, at time.Time) (*entity.Lead, error) {
	text := p.JournalText()
	entry, err := entity.NewJournalEntry(actor, entity.JournalTypeImport, text, at)
	if err != nil {
		return nil, err
	}

	now := entity.NewTimestamp(at)
	lead := &entity.Lead{
		ID:                  uuid.NewString(),
		FirstName:           p.FirstName,
		LastName:            p.LastName,
		Phone:               p.Phone,
		Email:               p.Email,
		Contact:             p.Contact,
		Status:              entity.StatusEngagement,
		LeadType:            entity.LeadTypeBuyer,
		Source:              p.Source,
		RelationshipRanking: entity.Relationship0,
		UrgencyRanking:      entity.UrgencyUnsure,
		RegisteredDateRaw:   p.RegisteredDateRaw,
		Journal:             []entity.JournalEntry{entry},
		LatestActivity:      text,
		JournalLastEntry:    text,
		CreatedAt:           now,
		CreatedBy:           actor.ID,
		UpdatedAt:           now,
		UpdatedBy:           actor.ID,
	}
	if ts, err := entity.ParseTimestamp(p.RegisteredDateRaw); err == nil {
		lead.RegistrationDate = ts
	}
	return lead, nil
}

package csvimport

import "strings"

// NotFound marks a canonical field with no matching header.
const NotFound = -1

type Field string

const (
	FieldFullName       Field = "fullName"
	FieldFirstName      Field = "firstName"
	FieldLastName       Field = "lastName"
	FieldPhone          Field = "phone"
	FieldEmail          Field = "email"
	FieldSource         Field = "source"
	FieldRegisteredDate Field = "registeredDate"
	FieldNotes          Field = "notes"
)

// synonyms are compared against trimmed, lowercased headers.
var synonyms = map[Field][]string{
	FieldFullName:       {"full name", "name", "fullname", "contact name"},
	FieldFirstName:      {"first name", "firstname", "first"},
	FieldLastName:       {"last name", "lastname", "last"},
	FieldPhone:          {"phone", "phone number", "primary phone", "mobile", "cell", "cell phone", "home phone", "work phone"},
	FieldEmail:          {"email", "e-mail", "email address", "e-mail address"},
	FieldSource:         {"source", "lead source"},
	FieldRegisteredDate: {"registered", "registration date", "reg date", "registered date"},
	FieldNotes:          {"agent notes", "agent note", "notes", "comments", "contact history", "lead notes"},
}

// ColumnMap gives the column index of each canonical field, or NotFound.
type ColumnMap struct {
	FullName       int `json:"fullName"`
	FirstName      int `json:"firstName"`
	LastName       int `json:"lastName"`
	Phone          int `json:"phone"`
	Email          int `json:"email"`
	Source         int `json:"source"`
	RegisteredDate int `json:"registeredDate"`
	Notes          int `json:"notes"`
}

// InferColumns maps headers to canonical fields by exact synonym membership,
// ignoring case and surrounding space. The first matching header wins.
func InferColumns(headers []string) ColumnMap {
	lower := make([]string, len(headers))
	for i, h := range headers {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}

	find := func(f Field) int {
		for i, h := range lower {
			for _, s := range synonyms[f] {
				if h == s {
					return i
				}
			}
		}
		return NotFound
	}

	return ColumnMap{
		FullName:       find(FieldFullName),
		FirstName:      find(FieldFirstName),
		LastName:       find(FieldLastName),
		Phone:          find(FieldPhone),
		Email:          find(FieldEmail),
		Source:         find(FieldSource),
		RegisteredDate: find(FieldRegisteredDate),
		Notes:          find(FieldNotes),
	}
}

// Fields lists the detected fields by column, for preview display.
func (m ColumnMap) Fields() map[Field]int {
	all := map[Field]int{
		FieldFullName:       m.FullName,
		FieldFirstName:      m.FirstName,
		FieldLastName:       m.LastName,
		FieldPhone:          m.Phone,
		FieldEmail:          m.Email,
		FieldSource:         m.Source,
		FieldRegisteredDate: m.RegisteredDate,
		FieldNotes:          m.Notes,
	}
	for f, idx := range all {
		if idx == NotFound {
			delete(all, f)
		}
	}
	return all
}

func cell(cols []string, idx int) string {
	if idx < 0 || idx >= len(cols) {
		return ""
	}
	return strings.TrimSpace(cols[idx])
}

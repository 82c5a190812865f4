// Package csvimport turns untrusted spreadsheet exports into lead payloads:
// tokenizing, header inference, row transformation and the preview session
// an admin confirms before anything is written.
package csvimport

import "strings"

const (
	Comma     = ','
	Semicolon = ';'
)

const utf8BOM = "\uFEFF"

// Result holds every non-blank row, header row first.
type Result struct {
	Rows      [][]string
	Delimiter byte
}

// DetectDelimiter counts unquoted commas and semicolons on the first line.
// Semicolon wins only with a strictly higher count.
func DetectDelimiter(raw string) byte {
	inQuotes := false
	commas, semicolons := 0, 0

	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if ch == '"' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		if ch == '\n' || ch == '\r' {
			break
		}
		switch ch {
		case Comma:
			commas++
		case Semicolon:
			semicolons++
		}
	}

	if semicolons > commas {
		return Semicolon
	}
	return Comma
}

// Tokenize splits raw text into rows of fields in a single pass. It never
// fails: quoted fields may contain delimiters and newlines, "" inside quotes
// is a literal quote, an unterminated quote runs to end of input, and rows
// whose fields are all blank are dropped.
func Tokenize(raw string) Result {
	raw = strings.TrimPrefix(raw, utf8BOM)
	delim := DetectDelimiter(raw)

	var (
		rows     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
	)

	flushRow := func() {
		row = append(row, field.String())
		field.Reset()
		if !blankRow(row) {
			rows = append(rows, row)
		}
		row = nil
	}

	for i := 0; i < len(raw); i++ {
		ch := raw[i]

		if ch == '"' {
			if inQuotes && i+1 < len(raw) && raw[i+1] == '"' {
				field.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
			continue
		}

		if inQuotes {
			field.WriteByte(ch)
			continue
		}

		switch ch {
		case delim:
			row = append(row, field.String())
			field.Reset()
		case '\r':
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
			flushRow()
		case '\n':
			flushRow()
		default:
			field.WriteByte(ch)
		}
	}

	if field.Len() > 0 || len(row) > 0 {
		flushRow()
	}

	return Result{Rows: rows, Delimiter: delim}
}

func blankRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Timestamp is a wall-clock instant with millisecond precision. The zero
// value means "not set".
type Timestamp struct {
	millis int64
}

// NewTimestamp is the canonical constructor.
func NewTimestamp(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	return Timestamp{millis: t.UnixMilli()}
}

// TimestampFromMillis builds a Timestamp from epoch milliseconds.
func TimestampFromMillis(ms int64) Timestamp {
	return Timestamp{millis: ms}
}

// Millis returns epoch milliseconds.
func (t Timestamp) Millis() int64 { return t.millis }

func (t Timestamp) IsZero() bool { return t.millis == 0 }

func (t Timestamp) Time() time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return time.UnixMilli(t.millis).UTC()
}

func (t Timestamp) After(o Timestamp) bool  { return t.millis > o.millis }
func (t Timestamp) Before(o Timestamp) bool { return t.millis < o.millis }

// DateString renders the calendar date, or "" when unset.
func (t Timestamp) DateString() string {
	if t.IsZero() {
		return ""
	}
	return t.Time().Format("2006-01-02")
}

func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Time().Format(time.RFC3339Nano)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
}

// ParseTimestamp parses raw external date input. It accepts RFC3339,
// plain dates, US month/day/year dates and epoch milliseconds. Blank input
// yields the zero Timestamp.
func ParseTimestamp(raw string) (Timestamp, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Timestamp{}, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return TimestampFromMillis(ms), nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return NewTimestamp(parsed), nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid date %q", raw)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*t = Timestamp{}
		return nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*t = TimestampFromMillis(ms)
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value stores unset timestamps as NULL.
func (t Timestamp) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.Time(), nil
}

func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = Timestamp{}
	case time.Time:
		*t = NewTimestamp(v)
	case string:
		parsed, err := ParseTimestamp(v)
		if err != nil {
			return err
		}
		*t = parsed
	case []byte:
		parsed, err := ParseTimestamp(string(v))
		if err != nil {
			return err
		}
		*t = parsed
	default:
		return fmt.Errorf("timestamp: unsupported scan type %T", src)
	}
	return nil
}

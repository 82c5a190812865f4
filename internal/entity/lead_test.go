package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildContact(t *testing.T) {
	assert.Equal(t, "610-555-0000 • john@example.com", BuildContact("610-555-0000", "john@example.com"))
	assert.Equal(t, "610-555-0000", BuildContact("610-555-0000", ""))
	assert.Equal(t, "john@example.com", BuildContact(" ", "john@example.com"))
	assert.Equal(t, "", BuildContact("", ""))
}

func TestIsHot(t *testing.T) {
	for _, r := range []RelationshipRanking{Relationship78, Relationship100} {
		assert.True(t, (&Lead{RelationshipRanking: r}).IsHot(), r)
	}
	for _, r := range []RelationshipRanking{Relationship0, Relationship18, Relationship56} {
		assert.False(t, (&Lead{RelationshipRanking: r}).IsHot(), r)
	}
}

func TestEnumValidation(t *testing.T) {
	assert.True(t, StatusDoNotCall.Valid())
	assert.False(t, LeadStatus("cold").Valid())
	assert.True(t, LeadTypeBuyerSeller.Valid())
	assert.False(t, LeadType("landlord").Valid())
	assert.True(t, Relationship34.Valid())
	assert.False(t, RelationshipRanking("50").Valid())
	assert.True(t, UrgencyUnsure.Valid())
	assert.False(t, UrgencyRanking("not-sure").Valid())
}

func TestNormalizeHelpers(t *testing.T) {
	assert.Equal(t, "john@example.com", NormalizeEmail("  John@Example.COM "))
	assert.Equal(t, "6105550000", NormalizePhone("+1 (610) 555-0000"))
	assert.Equal(t, "6105550000", NormalizePhone("610.555.0000"))
}

func TestPatchRecomputesContact(t *testing.T) {
	lead := &Lead{Phone: "610-555-0000", Email: "old@example.com", Contact: "610-555-0000 • old@example.com"}
	LeadPatch{Email: StringPtr("new@example.com")}.ApplyTo(lead)
	assert.Equal(t, "610-555-0000 • new@example.com", lead.Contact)

	status := StatusLongTerm
	LeadPatch{Status: &status}.ApplyTo(lead)
	assert.Equal(t, StatusLongTerm, lead.Status)
	assert.Equal(t, "610-555-0000 • new@example.com", lead.Contact)
}

func TestAssigneeLabel(t *testing.T) {
	assert.Equal(t, "Unassigned", (&Lead{}).AssigneeLabel())
	assert.Equal(t, "a@example.com", (&Lead{AssignedAgentEmail: "a@example.com"}).AssigneeLabel())
	assert.Equal(t, "Ann", (&Lead{AssignedAgentName: "Ann", AssignedAgentEmail: "a@example.com"}).AssigneeLabel())
}

func TestCloneDoesNotShareJournal(t *testing.T) {
	lead := &Lead{Journal: []JournalEntry{{ID: "a", Text: "A"}}}
	c := lead.Clone()
	c.Journal[0].Text = "changed"
	assert.Equal(t, "A", lead.Journal[0].Text)
}

func TestWriteBatchValidate(t *testing.T) {
	b := NewWriteBatch()
	for i := 0; i < MaxBatchOps; i++ {
		b.Delete("x")
	}
	assert.NoError(t, b.Validate())
	b.Delete("one-too-many")
	assert.ErrorIs(t, b.Validate(), ErrBatchTooLarge)
}

func TestTimestampParsingAndJSON(t *testing.T) {
	ts, err := ParseTimestamp("2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), ts.Millis())

	ts2, err := ParseTimestamp("6/1/2025")
	require.NoError(t, err)
	assert.Equal(t, ts.Millis(), ts2.Millis())

	ms, err := ParseTimestamp("1717200000000")
	require.NoError(t, err)
	assert.Equal(t, int64(1717200000000), ms.Millis())

	blank, err := ParseTimestamp("  ")
	require.NoError(t, err)
	assert.True(t, blank.IsZero())

	_, err = ParseTimestamp("next tuesday")
	assert.Error(t, err)

	raw, err := json.Marshal(struct {
		At  Timestamp `json:"at"`
		Nil Timestamp `json:"nil"`
	}{At: ts})
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"2025-06-01T00:00:00Z","nil":null}`, string(raw))

	var decoded struct {
		At Timestamp `json:"at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"at":1717200000000}`), &decoded))
	assert.Equal(t, int64(1717200000000), decoded.At.Millis())
}

func TestTimestampSQL(t *testing.T) {
	var ts Timestamp
	v, err := ts.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, ts.Scan(now))
	assert.Equal(t, now.UnixMilli(), ts.Millis())

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())
}

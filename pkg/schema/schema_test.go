package schema

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDraft(t *testing.T) {
	d, err := DecodeDraft(KindStudent, json.RawMessage(`{"id":"1","firstName":"John","lastName":"Smith"}`))
	require.NoError(t, err)
	sd, ok := d.(StudentDraft)
	require.True(t, ok)
	assert.Equal(t, "John Smith", sd.Student.FullName())
	assert.Equal(t, "1", d.DraftID())
	assert.Equal(t, KindStudent, d.Kind())

	d, err = DecodeDraft(KindMovie, json.RawMessage(`{"title":"Dune","genre":["Sci-Fi"]}`))
	require.NoError(t, err)
	assert.Empty(t, d.DraftID())
	assert.Equal(t, []string{"Sci-Fi"}, Entity(d).(Movie).Genres)

	_, err = DecodeDraft("classroom", json.RawMessage(`{}`))
	assert.True(t, errors.Is(err, ErrUnknownKind))

	_, err = DecodeDraft(KindGrade, json.RawMessage(`{"score":"high"}`))
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("course")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestDefaults(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	s := Student{FirstName: "A"}.Created(now)
	assert.Equal(t, StudentActive, s.Status)
	assert.Equal(t, now, s.UpdatedAt)

	g := GradeEntry{Score: 45}.WithDefaults()
	assert.Equal(t, 100.0, g.MaxScore)
	assert.Equal(t, 45.0, g.Percent())
	assert.Zero(t, GradeEntry{Score: 5, MaxScore: -1}.Percent())

	a := AttendanceRecord{}.WithDefaults()
	assert.True(t, a.Attended())
	assert.False(t, AttendanceRecord{Status: Excused}.Attended())

	inv := Invoice{Lines: []InvoiceLine{{Quantity: 2, UnitPrice: 50}, {Quantity: 1, UnitPrice: 25.5}}}.WithDefaults()
	assert.Equal(t, 125.5, inv.Amount)
	assert.Equal(t, InvoiceStatusDraft, inv.Status)
}

func TestReviseAndClone(t *testing.T) {
	added := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	m := Movie{Title: "Edited", Genres: []string{"Drama"}}.Revise(Movie{AddedAt: added})
	assert.Equal(t, added, m.AddedAt)
	assert.Equal(t, added, Invoice{}.Revise(Invoice{CreatedAt: added}).CreatedAt)
	assert.Equal(t, added, GradeEntry{}.Revise(GradeEntry{CreatedAt: added}).CreatedAt)
	assert.Equal(t, added, AttendanceRecord{}.Revise(AttendanceRecord{CreatedAt: added}).CreatedAt)

	c := m.Clone()
	c.Genres[0] = "Comedy"
	assert.Equal(t, "Drama", m.Genres[0])

	inv := Invoice{Lines: []InvoiceLine{{Description: "a"}}}
	ic := inv.Clone()
	ic.Lines[0].Description = "b"
	assert.Equal(t, "a", inv.Lines[0].Description)
}

package bundle

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/celerix-dev/celerix-records/internal/engine"
	"github.com/celerix-dev/celerix-records/pkg/entity"
	"github.com/celerix-dev/celerix-records/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type student struct {
	ID    string `json:"id"`
	First string `json:"firstName" validate:"required"`
	Last  string `json:"lastName"`
}

func (s student) GetID() string { return s.ID }
func (s student) WithID(id string) student { s.ID = id; return s }

type grade struct {
	ID        string  `json:"id"`
	StudentID string  `json:"studentId" validate:"required"`
	Score     float64 `json:"score"`
}

func (g grade) GetID() string { return g.ID }
func (g grade) WithID(id string) grade { g.ID = id; return g }

type fixture struct {
	scope    *kv.Scope
	students *entity.Store[student]
	grades   *entity.Store[grade]
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	scope, err := engine.NewMemStore(nil, nil).App("p1", "tracker")
	require.NoError(t, err)
	students, err := entity.Open(scope, "students", []student{
		{ID: "1", First: "John", Last: "Smith"},
		{ID: "2", First: "Emma", Last: "Johnson"},
	})
	require.NoError(t, err)
	grades, err := entity.Open(scope, "grades", []grade{{ID: "g1", StudentID: "1", Score: 85}})
	require.NoError(t, err)
	return fixture{scope: scope, students: students, grades: grades}
}

func TestExportShape(t *testing.T) {
	f := newFixture(t)
	at := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)

	doc, err := Export(at, f.students, f.grades)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "\n  \"exportDate\": \"2024-06-01T10:30:00Z\"")

	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc, &top))
	assert.Len(t, top, 3)
	var students []student
	require.NoError(t, json.Unmarshal(top["students"], &students))
	assert.Equal(t, f.students.List(), students)
}

func TestRoundTripAfterClear(t *testing.T) {
	f := newFixture(t)
	_, err := f.students.Create(student{First: "Liam", Last: "Brown"})
	require.NoError(t, err)
	before := f.students.List()
	beforeGrades := f.grades.List()

	doc, err := Export(time.Now(), f.students, f.grades)
	require.NoError(t, err)

	require.NoError(t, f.students.ReplaceAll(nil))
	require.NoError(t, f.grades.ReplaceAll(nil))
	assert.Zero(t, f.students.Len())

	res, err := Import(doc, f.students, f.grades)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"students": 3, "grades": 1}, res.Replaced)
	assert.Equal(t, []string{DateField}, res.Ignored)
	assert.Equal(t, before, f.students.List())
	assert.Equal(t, beforeGrades, f.grades.List())
}

func TestImportReplacesNotMerges(t *testing.T) {
	f := newFixture(t)
	doc := []byte(`{"students":[{"id":"9","firstName":"Ava"}],"classrooms":[{"id":"t"}]}`)

	res, err := Import(doc, f.students, f.grades)
	require.NoError(t, err)
	assert.Equal(t, []student{{ID: "9", First: "Ava"}}, f.students.List())
	assert.Equal(t, 1, f.grades.Len(), "absent collections are left alone")
	assert.Equal(t, []string{"classrooms"}, res.Ignored)
}

func TestImportIsAtomic(t *testing.T) {
	cases := map[string]string{
		"invalid json":     `{"students": [`,
		"not an object":    `[1,2,3]`,
		"empty":            ``,
		"not a sequence":   `{"students": [{"id":"1","firstName":"A"}], "grades": {"id":"g"}}`,
		"missing required": `{"students": [{"id":"1","firstName":"A"}], "grades": [{"id":"g","score":1}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			before := f.students.List()

			_, err := Import([]byte(doc), f.students, f.grades)
			require.Error(t, err)
			assert.True(t, entity.IsValidation(err), "got %v", err)
			assert.Equal(t, before, f.students.List(), "no partial import")
			assert.Equal(t, 1, f.grades.Len())
		})
	}
}

type failingBucket struct{ kv.Bucket }

func (failingBucket) Set(string, json.RawMessage) error { return errors.New("quota exceeded") }

func TestImportPersistenceFailureStillApplies(t *testing.T) {
	f := newFixture(t)
	broken, err := entity.Open(failingBucket{f.scope}, "students", []student{})
	require.NoError(t, err)

	res, err := Import([]byte(`{"students":[{"id":"1","firstName":"A"}]}`), broken)
	require.Error(t, err)
	assert.True(t, entity.IsPersistence(err))
	assert.Equal(t, 1, res.Replaced["students"])
	assert.Equal(t, 1, broken.Len())
}

func TestExportRejectsReservedName(t *testing.T) {
	scope, _ := engine.NewMemStore(nil, nil).App("p1", "x")
	s, _ := entity.Open[student](scope, "x", nil, entity.WithName(DateField))
	_, err := Export(time.Now(), s)
	assert.Error(t, err)
}

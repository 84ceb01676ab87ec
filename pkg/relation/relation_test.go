package relation

import (
	"errors"
	"testing"

	"github.com/celerix-dev/celerix-records/internal/engine"
	"github.com/celerix-dev/celerix-records/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	ID    string `json:"id"`
	First string `json:"first"`
	Last  string `json:"last"`
}

func (p person) GetID() string { return p.ID }
func (p person) WithID(id string) person { p.ID = id; return p }

type score struct {
	ID       string `json:"id"`
	PersonID string `json:"personId"`
	Value    int    `json:"value"`
}

func (s score) GetID() string { return s.ID }
func (s score) WithID(id string) score { s.ID = id; return s }

func fullName(p person) string { return p.First + " " + p.Last }

func setup(t *testing.T) (*entity.Store[person], *entity.Store[score], *entity.Store[score]) {
	t.Helper()
	scope, err := engine.NewMemStore(nil, nil).App("p1", "rel")
	require.NoError(t, err)
	people, err := entity.Open(scope, "people", []person{{ID: "1", First: "John", Last: "Smith"}, {ID: "2", First: "Emma", Last: "Johnson"}})
	require.NoError(t, err)
	scores, err := entity.Open(scope, "scores", []score{{ID: "s1", PersonID: "1"}, {ID: "s2", PersonID: "2"}, {ID: "s3", PersonID: "1"}})
	require.NoError(t, err)
	notes, err := entity.Open(scope, "notes", []score{{ID: "n1", PersonID: "1"}})
	require.NoError(t, err)
	return people, scores, notes
}

func TestResolveName(t *testing.T) {
	people, _, _ := setup(t)

	assert.Equal(t, "John Smith", ResolveName[person](people, "1", fullName, UnknownStudent))
	for _, id := range []string{"", "999", "never-created"} {
		assert.Equal(t, UnknownStudent, ResolveName[person](people, id, fullName, UnknownStudent))
	}
	assert.Equal(t, UnknownStudent, ResolveName[person](nil, "1", fullName, UnknownStudent))
	assert.Equal(t, UnknownStudent, ResolveName[person](people, "1", nil, UnknownStudent))

	var unopened *entity.Store[person]
	assert.Equal(t, UnknownStudent, ResolveName[person](unopened, "1", fullName, UnknownStudent))
}

func TestCascadeDelete(t *testing.T) {
	_, scores, notes := setup(t)
	fk := func(s score) string { return s.PersonID }

	counts, err := CascadeDelete("1", On("scores", scores, fk), On("notes", notes, fk))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"scores": 2, "notes": 1}, counts)
	assert.Equal(t, 1, scores.Len())
	assert.Equal(t, 0, notes.Len())

	counts, err = CascadeDelete("", On("scores", scores, fk))
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestGraphDelete(t *testing.T) {
	people, scores, notes := setup(t)
	fk := func(s score) string { return s.PersonID }

	g := NewGraph(nil).
		Parent("people", people).
		Cascade("people", On("scores", scores, fk), On("notes", notes, fk))
	assert.Len(t, g.Dependents("people"), 2)

	rep, err := g.Delete("people", "1")
	require.NoError(t, err)
	assert.True(t, rep.Removed)
	assert.Equal(t, 2, rep.Cascaded["scores"])
	_, ok := people.Get("1")
	assert.False(t, ok)
	assert.Equal(t, []score{{ID: "s2", PersonID: "2"}}, scores.List())

	rep, err = g.Delete("people", "1")
	require.NoError(t, err)
	assert.False(t, rep.Removed)

	_, err = g.Delete("movies", "1")
	assert.Error(t, err)
}

type brokenRemover struct{}

func (brokenRemover) RemoveFunc(func(score) bool) (int, error) {
	return 0, errors.New("disk full")
}

func TestCascadeDeleteCombinesErrors(t *testing.T) {
	_, scores, _ := setup(t)
	fk := func(s score) string { return s.PersonID }

	_, err := CascadeDelete("1", On[score]("broken", brokenRemover{}, fk), On("scores", scores, fk))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cascade broken")
	assert.Equal(t, 1, scores.Len(), "healthy dependents still cascade")
}

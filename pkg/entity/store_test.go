package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/celerix-dev/celerix-records/internal/engine"
	"github.com/celerix-dev/celerix-records/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title" validate:"required"`
	Tag       string    `json:"tag"`
	ParentID  string    `json:"parentId,omitempty"`
	Labels    []string  `json:"labels,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (n note) GetID() string { return n.ID }
func (n note) WithID(id string) note { n.ID = id; return n }
func (n note) Created(t time.Time) note {
	n.CreatedAt, n.UpdatedAt = t, t
	return n
}
func (n note) Updated(t time.Time) note { n.UpdatedAt = t; return n }
func (n note) Revise(prev note) note    { n.CreatedAt = prev.CreatedAt; return n }
func (n note) Clone() note              { n.Labels = slices.Clone(n.Labels); return n }
func (n note) WithDefaults() note {
	if n.Tag == "" {
		n.Tag = "general"
	}
	return n
}

// sealedBucket fails every read with something other than a missing key.
type sealedBucket struct {
	kv.Bucket
}

func (sealedBucket) Get(string) (json.RawMessage, error) {
	return nil, errors.New("cipher: message authentication failed")
}

// flakyBucket fails writes while broken is set.
type flakyBucket struct {
	kv.Bucket
	broken bool
}

func (f *flakyBucket) Set(key string, val json.RawMessage) error {
	if f.broken {
		return errors.New("quota exceeded")
	}
	return f.Bucket.Set(key, val)
}

func newBucket(t *testing.T) *kv.Scope {
	t.Helper()
	scope, err := engine.NewMemStore(nil, nil).App("p1", "tests")
	require.NoError(t, err)
	return scope
}

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

func TestCreatePreservesOrderAndUniqueIDs(t *testing.T) {
	s, err := Open[note](newBucket(t), "notes", nil)
	require.NoError(t, err)

	titles := []string{"a", "b", "c", "d", "e"}
	for _, title := range titles {
		_, err := s.Create(note{Title: title})
		require.NoError(t, err)
	}

	list := s.List()
	require.Len(t, list, len(titles))
	seen := map[string]bool{}
	for i, n := range list {
		assert.Equal(t, titles[i], n.Title)
		assert.NotEmpty(t, n.ID)
		assert.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
	}
}

func TestCreateStampsAndPersists(t *testing.T) {
	bucket := newBucket(t)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	s, err := Open[note](bucket, "notes", nil, WithClock(func() time.Time { return now }), sequentialIDs())
	require.NoError(t, err)

	n, err := s.Create(note{ID: "ignored", Title: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", n.ID)
	assert.Equal(t, now, n.CreatedAt)

	stored, err := kv.Get[[]note](bucket, "notes")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "hello", stored[0].Title)
}

func TestDeleteThenGet(t *testing.T) {
	s, _ := Open[note](newBucket(t), "notes", nil)
	n, _ := s.Create(note{Title: "gone"})
	keep, _ := s.Create(note{Title: "kept"})

	removed, err := s.Delete(n.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	_, ok := s.Get(n.ID)
	assert.False(t, ok)
	assert.Equal(t, []note{keep}, s.List())

	removed, err = s.Delete(n.ID)
	require.NoError(t, err, "second delete must be a silent no-op")
	assert.False(t, removed)
	assert.Len(t, s.List(), 1)
}

func TestUpdate(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s, _ := Open[note](newBucket(t), "notes", nil, WithClock(func() time.Time { return clock }))
	n, _ := s.Create(note{Title: "draft"})

	clock = clock.Add(time.Hour)
	updated, err := s.Update(n.ID, func(v *note) {
		v.Title = "final"
		v.ID = "hijack"
	})
	require.NoError(t, err)
	assert.Equal(t, n.ID, updated.ID, "id is immutable")
	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, clock, updated.UpdatedAt)
	assert.Equal(t, n.CreatedAt, updated.CreatedAt)

	got, _ := s.Get(n.ID)
	assert.Equal(t, updated, got)

	_, err = s.Update("missing", func(*note) {})
	assert.True(t, IsNotFound(err))

	replaced, err := s.Replace(n.ID, note{Title: "replaced"})
	require.NoError(t, err)
	assert.Equal(t, n.ID, replaced.ID)
	assert.Equal(t, "replaced", replaced.Title)
	assert.Equal(t, n.CreatedAt, replaced.CreatedAt, "replace keeps the creation stamp")
	assert.Equal(t, clock, replaced.UpdatedAt)

	got, _ = s.Get(n.ID)
	assert.Equal(t, n.CreatedAt, got.CreatedAt)
}

func TestOpenSeedsDefaultsWhenAbsent(t *testing.T) {
	bucket := newBucket(t)
	defaults := []note{{ID: "1", Title: "welcome"}}

	s, err := Open(bucket, "notes", defaults)
	require.NoError(t, err)
	assert.Equal(t, defaults, s.List())

	// Seeds are persisted and later edits survive a reopen.
	_, err = s.Create(note{Title: "mine"})
	require.NoError(t, err)

	reopened, err := Open(bucket, "notes", defaults)
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Len())
}

func TestOpenFallsBackOnCorruptSnapshot(t *testing.T) {
	bucket := newBucket(t)
	require.NoError(t, bucket.Set("notes", json.RawMessage(`{"not":"an array"}`)))

	defaults := []note{{ID: "1", Title: "welcome"}}
	s, err := Open(bucket, "notes", defaults)
	require.NoError(t, err)
	assert.Equal(t, defaults, s.List())

	raw, err := bucket.Get("notes")
	require.NoError(t, err)
	assert.JSONEq(t, `{"not":"an array"}`, string(raw), "a malformed snapshot is not overwritten by seeds")
}

func TestOpenLeavesUnreadableSnapshotAlone(t *testing.T) {
	inner := newBucket(t)
	require.NoError(t, inner.Set("notes", json.RawMessage(`[{"id":"7","title":"kept"}]`)))

	defaults := []note{{ID: "1", Title: "welcome"}}
	s, err := Open[note](sealedBucket{Bucket: inner}, "notes", defaults)
	require.NoError(t, err)
	assert.Equal(t, defaults, s.List())

	stored, err := kv.Get[[]note](inner, "notes")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "kept", stored[0].Title)
}

func TestOpenKeepsEmptySnapshot(t *testing.T) {
	bucket := newBucket(t)
	require.NoError(t, bucket.Set("notes", json.RawMessage(`[]`)))

	s, err := Open(bucket, "notes", []note{{ID: "1", Title: "welcome"}})
	require.NoError(t, err)
	assert.Empty(t, s.List())
}

func TestPersistenceFailureKeepsMemory(t *testing.T) {
	bucket := &flakyBucket{Bucket: newBucket(t)}
	s, _ := Open[note](bucket, "notes", nil)

	bucket.broken = true
	n, err := s.Create(note{Title: "unsaved"})
	require.Error(t, err)
	assert.True(t, IsPersistence(err))
	assert.Equal(t, "unsaved", n.Title)

	got, ok := s.Get(n.ID)
	assert.True(t, ok)
	assert.Equal(t, n, got)
}

func TestFilterAndMatchText(t *testing.T) {
	s, _ := Open[note](newBucket(t), "notes", nil)
	s.Create(note{Title: "Buy Milk", Tag: "home"})
	s.Create(note{Title: "Write report", Tag: "work"})
	s.Create(note{Title: "milkshake recipe", Tag: "Home"})

	search := MatchText("MILK", func(n note) string { return n.Title })
	got := s.Filter(search)
	require.Len(t, got, 2)
	assert.Equal(t, "Buy Milk", got[0].Title)

	home := MatchText("home", func(n note) string { return n.Tag })
	assert.Len(t, s.Filter(And(search, home)), 2)
	assert.Len(t, s.Filter(MatchText("  ", func(n note) string { return n.Title })), 3)
	assert.Empty(t, s.Filter(MatchText("zzz", func(n note) string { return n.Title })))
}

func TestListIsACopy(t *testing.T) {
	s, _ := Open[note](newBucket(t), "notes", nil)
	s.Create(note{Title: "orig"})

	list := s.List()
	list[0].Title = "changed"
	assert.Equal(t, "orig", s.List()[0].Title)
}

func TestNestedSlicesAreNotShared(t *testing.T) {
	s, _ := Open[note](newBucket(t), "notes", nil)
	labels := []string{"red", "blue"}
	n, _ := s.Create(note{Title: "tagged", Labels: labels})

	labels[0] = "input"
	s.List()[0].Labels[0] = "list"
	got, _ := s.Get(n.ID)
	got.Labels[1] = "get"
	s.Filter(func(note) bool { return true })[0].Labels[0] = "filter"

	got, _ = s.Get(n.ID)
	assert.Equal(t, []string{"red", "blue"}, got.Labels)
}

func TestNilStoreGet(t *testing.T) {
	var s *Store[note]
	_, ok := s.Get("1")
	assert.False(t, ok)
}

func TestSubscribeAndObserver(t *testing.T) {
	var ops []string
	obs := ObserverFunc(func(collection, op string, size int, err error) {
		ops = append(ops, fmt.Sprintf("%s:%s:%d", collection, op, size))
	})
	s, _ := Open[note](newBucket(t), "notes", nil, WithName("journal"), WithObserver(obs))

	var seen [][]note
	cancel := s.Subscribe(func(items []note) { seen = append(seen, items) })

	n, _ := s.Create(note{Title: "one"})
	s.Delete(n.ID)
	cancel()
	s.Create(note{Title: "two"})

	require.Len(t, seen, 2)
	assert.Len(t, seen[0], 1)
	assert.Empty(t, seen[1])
	assert.Equal(t, []string{"journal:load:0", "journal:create:1", "journal:delete:0", "journal:create:1"}, ops)
}

func TestRemoveFunc(t *testing.T) {
	s, _ := Open[note](newBucket(t), "notes", nil)
	s.Create(note{Title: "a", ParentID: "p"})
	s.Create(note{Title: "b", ParentID: "q"})
	s.Create(note{Title: "c", ParentID: "p"})

	n, err := s.RemoveFunc(func(v note) bool { return v.ParentID == "p" })
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, s.Len())
}

func TestStage(t *testing.T) {
	s, _ := Open[note](newBucket(t), "notes", []note{{ID: "seed", Title: "seed"}}, sequentialIDs())

	commit, err := s.Stage(json.RawMessage(`[{"id":"a","title":"first"},{"title":"second","extra":true}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len(), "staging must not apply")

	require.NoError(t, commit())
	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "general", list[0].Tag)
	assert.Equal(t, "id-1", list[1].ID)

	cases := map[string]string{
		"not array":    `{"id":"x"}`,
		"null":         `null`,
		"bad record":   `[{"title": 5}]`,
		"missing req":  `[{"id":"x"}]`,
		"duplicate id": `[{"id":"x","title":"a"},{"id":"x","title":"b"}]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Stage(json.RawMessage(doc))
			require.Error(t, err)
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	err := NotFound("students", "42")
	assert.Equal(t, "[not_found] students/42: entity not found", err.Error())

	wrapped := fmt.Errorf("ui: %w", Persistence("grades", errors.New("disk full")))
	assert.True(t, IsPersistence(wrapped))
	assert.Contains(t, wrapped.Error(), "disk full")
	assert.False(t, IsNotFound(wrapped))
}

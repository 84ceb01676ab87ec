package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type grade struct {
	student string
	score   float64
	max     float64
}

func percent(g grade) float64 { return g.score / g.max * 100 }

type attendance struct {
	student string
	status  string
}

func TestAverageGPA(t *testing.T) {
	grades := []grade{
		{"1", 85, 100},
		{"1", 92, 100},
		{"2", 70, 100},
	}
	var mine []grade
	for _, g := range grades {
		if g.student == "1" {
			mine = append(mine, g)
		}
	}
	assert.Equal(t, 88.5, Average(mine, percent, ScoreDefault))
	assert.Equal(t, ScoreDefault, Average([]grade{}, percent, ScoreDefault))
	assert.Equal(t, 66.67, Average([]grade{{"x", 2, 3}}, percent, ScoreDefault))
}

func TestRatioAttendance(t *testing.T) {
	records := []attendance{{"3", "absent"}, {"3", "present"}}
	presentOrLate := func(a attendance) bool { return a.status == "present" || a.status == "late" }

	assert.Equal(t, 50.0, Ratio(records, presentOrLate, AttendanceDefault))
	assert.Equal(t, AttendanceDefault, Ratio([]attendance{}, presentOrLate, AttendanceDefault))
	assert.Equal(t, ScoreDefault, Ratio[attendance](nil, presentOrLate, ScoreDefault))
	assert.Equal(t, 33.33, Ratio([]attendance{{"", "late"}, {"", "absent"}, {"", "absent"}}, presentOrLate, 0))
}

func TestBucketKeepsLabelOrder(t *testing.T) {
	id := func(v float64) float64 { return v }
	want := []Count{{"A", 1}, {"B", 1}, {"C", 1}, {"D", 1}, {"F", 1}}

	assert.Equal(t, want, Bucket([]float64{95, 82, 74, 61, 40}, id, GradeBoundaries))
	assert.Equal(t, want, Bucket([]float64{40, 61, 95, 74, 82}, id, GradeBoundaries))

	edges := Bucket([]float64{90, 89.99, 80, 100, -5}, id, GradeBoundaries)
	assert.Equal(t, []Count{{"A", 2}, {"B", 2}, {"C", 0}, {"D", 0}, {"F", 1}}, edges)

	empty := Bucket([]float64{}, id, GradeBoundaries)
	assert.Len(t, empty, 5)
	for _, c := range empty {
		assert.Zero(t, c.Count)
	}
	assert.Empty(t, Bucket([]float64{1}, id, nil))
}

func TestGroupCountMultiMembership(t *testing.T) {
	type movie struct{ genres []string }
	movies := []movie{
		{[]string{"Action", "Sci-Fi"}},
		{[]string{"Drama"}},
		{[]string{"Action", ""}},
		{nil},
	}
	got := GroupCount(movies, func(m movie) []string { return m.genres })
	assert.Equal(t, map[string]int{"Action": 2, "Sci-Fi": 1, "Drama": 1}, got)

	assert.Equal(t, []Count{{"Action", 2}, {"Drama", 1}, {"Sci-Fi", 1}}, SortedCounts(got))
	assert.Empty(t, GroupCount([]movie{}, func(m movie) []string { return m.genres }))
}

func TestTopNStable(t *testing.T) {
	type movie struct {
		title string
		views float64
	}
	movies := []movie{{"a", 10}, {"b", 30}, {"c", 10}, {"d", 30}, {"e", 5}}
	views := func(m movie) float64 { return m.views }

	got := TopN(movies, views, 3)
	assert.Equal(t, []movie{{"b", 30}, {"d", 30}, {"a", 10}}, got)
	assert.Equal(t, "a", movies[0].title, "input untouched")
	assert.Len(t, TopN(movies, views, 10), 5)
	assert.Empty(t, TopN(movies, views, 0))
	assert.Empty(t, TopN([]movie{}, views, 3))
}

func TestRecentActivity(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	students := []Activity{
		{Kind: "student", ID: "s1", At: base},
		{Kind: "student", ID: "s2", At: base.Add(2 * time.Hour)},
	}
	grades := []Activity{
		{Kind: "grade", ID: "g1", At: base.Add(time.Hour)},
		{Kind: "grade", ID: "g2", At: base},
	}

	got := RecentActivity(3, students, grades)
	ids := make([]string, len(got))
	for i, a := range got {
		ids[i] = a.ID
	}
	assert.Equal(t, []string{"s2", "g1", "s1"}, ids)

	assert.Len(t, RecentActivity(10, students, grades), 4)
	assert.Empty(t, RecentActivity(5))
	assert.Empty(t, RecentActivity(-1, students))
}

func TestActivitiesOf(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	got := ActivitiesOf([]string{"x", "y"}, func(s string) Activity {
		return Activity{Kind: "note", ID: s, At: at}
	})
	assert.Len(t, got, 2)
	assert.Equal(t, "y", got[1].ID)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 88.5, Round(88.499999, 2))
	assert.Equal(t, 33.33, Round(100.0/3, 2))
	assert.Equal(t, 3.0, Round(2.5, 0))
}

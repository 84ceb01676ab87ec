package tracker

import (
	"github.com/celerix-dev/celerix-records/pkg/schema"
	"github.com/celerix-dev/celerix-records/pkg/stats"
)

// StudentSummary is one row of the progress table.
type StudentSummary struct {
	Student        schema.Student `json:"student"`
	Name           string         `json:"name"`
	GPA            float64        `json:"gpa"`
	AttendanceRate float64        `json:"attendanceRate"`
	Grades         int            `json:"grades"`
}

// Dashboard is everything the reports view renders.
type Dashboard struct {
	Students          int              `json:"students"`
	ActiveStudents    int              `json:"activeStudents"`
	Grades            int              `json:"grades"`
	AttendanceRecords int              `json:"attendanceRecords"`
	AverageScore      float64          `json:"averageScore"`
	AttendanceRate    float64          `json:"attendanceRate"`
	GradeDistribution []stats.Count    `json:"gradeDistribution"`
	Movies            int              `json:"movies"`
	Genres            []stats.Count    `json:"genres"`
	MostWatched       []schema.Movie   `json:"mostWatched"`
	AverageRating     float64          `json:"averageRating"`
	Invoices          int              `json:"invoices"`
	Revenue           float64          `json:"revenue"`
	Outstanding       float64          `json:"outstanding"`
	RecentActivity    []stats.Activity `json:"recentActivity"`
	Progress          []StudentSummary `json:"progress"`
}

// RecentLimit is how many feed entries the dashboard shows.
const RecentLimit = 5

func (a *App) gradesOf(studentID string) []schema.GradeEntry {
	return a.Grades.Filter(func(g schema.GradeEntry) bool { return g.StudentID == studentID })
}

func (a *App) attendanceOf(studentID string) []schema.AttendanceRecord {
	return a.Attendance.Filter(func(r schema.AttendanceRecord) bool { return r.StudentID == studentID })
}

// GPA is the student's mean grade percentage, 0 without grades.
func (a *App) GPA(studentID string) float64 {
	return stats.Average(a.gradesOf(studentID), schema.GradeEntry.Percent, stats.ScoreDefault)
}

// AttendanceRate is the share of days present or late, 100 without records.
func (a *App) AttendanceRate(studentID string) float64 {
	return stats.Ratio(a.attendanceOf(studentID), schema.AttendanceRecord.Attended, stats.AttendanceDefault)
}

// Progress summarizes every student in insertion order.
func (a *App) Progress() []StudentSummary {
	students := a.Students.List()
	out := make([]StudentSummary, 0, len(students))
	for _, s := range students {
		out = append(out, StudentSummary{
			Student:        s,
			Name:           s.FullName(),
			GPA:            a.GPA(s.ID),
			AttendanceRate: a.AttendanceRate(s.ID),
			Grades:         len(a.gradesOf(s.ID)),
		})
	}
	return out
}

// Dashboard computes every aggregate from the current collections.
func (a *App) Dashboard() Dashboard {
	students := a.Students.List()
	grades := a.Grades.List()
	attendance := a.Attendance.List()
	movies := a.Movies.List()
	invoices := a.Invoices.List()

	paid := func(i schema.Invoice) bool { return i.Status == schema.InvoiceStatusPaid }
	open := func(i schema.Invoice) bool {
		return i.Status == schema.InvoiceStatusSent || i.Status == schema.InvoiceStatusOverdue
	}
	amount := func(i schema.Invoice) float64 { return i.Amount }

	return Dashboard{
		Students:          len(students),
		ActiveStudents:    len(a.Students.Filter(func(s schema.Student) bool { return s.Status == schema.StudentActive })),
		Grades:            len(grades),
		AttendanceRecords: len(attendance),
		AverageScore:      stats.Average(grades, schema.GradeEntry.Percent, stats.ScoreDefault),
		AttendanceRate:    stats.Ratio(attendance, schema.AttendanceRecord.Attended, stats.AttendanceDefault),
		GradeDistribution: stats.Bucket(grades, schema.GradeEntry.Percent, stats.GradeBoundaries),
		Movies:            len(movies),
		Genres:            stats.SortedCounts(stats.GroupCount(movies, func(m schema.Movie) []string { return m.Genres })),
		MostWatched:       stats.TopN(movies, func(m schema.Movie) float64 { return float64(m.Views) }, 3),
		AverageRating:     stats.Average(movies, func(m schema.Movie) float64 { return m.Rating }, 0),
		Invoices:          len(invoices),
		Revenue:           stats.Round(stats.Sum(a.Invoices.Filter(paid), amount), 2),
		Outstanding:       stats.Round(stats.Sum(a.Invoices.Filter(open), amount), 2),
		RecentActivity:    a.RecentActivity(RecentLimit),
		Progress:          a.Progress(),
	}
}

// RecentActivity merges students, grades and attendance by creation time.
func (a *App) RecentActivity(n int) []stats.Activity {
	return stats.RecentActivity(n,
		stats.ActivitiesOf(a.Students.List(), func(s schema.Student) stats.Activity {
			return stats.Activity{Kind: string(schema.KindStudent), ID: s.ID, Label: "Student added: " + s.FullName(), At: s.CreatedAt}
		}),
		stats.ActivitiesOf(a.Grades.List(), func(g schema.GradeEntry) stats.Activity {
			return stats.Activity{Kind: string(schema.KindGrade), ID: g.ID, Label: g.Subject + " grade for " + a.StudentName(g.StudentID), At: g.CreatedAt}
		}),
		stats.ActivitiesOf(a.Attendance.List(), func(r schema.AttendanceRecord) stats.Activity {
			return stats.Activity{Kind: string(schema.KindAttendance), ID: r.ID, Label: a.StudentName(r.StudentID) + " marked " + string(r.Status), At: r.CreatedAt}
		}),
	)
}

// Package tracker wires the sample student progress tracker: its
// collections, their relationships and the aggregates its dashboard shows.
package tracker

import (
	"fmt"
	"strings"
	"time"

	"github.com/celerix-dev/celerix-records/pkg/bundle"
	"github.com/celerix-dev/celerix-records/pkg/entity"
	"github.com/celerix-dev/celerix-records/pkg/kv"
	"github.com/celerix-dev/celerix-records/pkg/relation"
	"github.com/celerix-dev/celerix-records/pkg/schema"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Backing-store keys, one per collection.
const (
	KeyStudents   = "students"
	KeyGrades     = "grades"
	KeyAttendance = "attendance"
	KeyMovies     = "movies"
	KeyInvoices   = "invoices"
)

// Options configures New.
type Options struct {
	// Seed ships the sample data when a collection has never been saved.
	Seed     bool
	Logger   *zap.Logger
	Observer entity.Observer
	Clock    func() time.Time
}

// App owns one store per entity kind.
type App struct {
	Students   *entity.Store[schema.Student]
	Grades     *entity.Store[schema.GradeEntry]
	Attendance *entity.Store[schema.AttendanceRecord]
	Movies     *entity.Store[schema.Movie]
	Invoices   *entity.Store[schema.Invoice]

	graph *relation.Graph
	log   *zap.Logger
	now   func() time.Time
}

// New opens every collection in bucket and declares the cascades.
func New(bucket kv.Bucket, opts Options) (*App, error) {
	log := opts.Logger
	if log == nil {
		log = zap.L()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	storeOpts := []entity.Option{entity.WithLogger(log), entity.WithClock(now)}
	if opts.Observer != nil {
		storeOpts = append(storeOpts, entity.WithObserver(opts.Observer))
	}

	a := &App{log: log, now: now}
	var err error
	if a.Students, err = entity.Open(bucket, KeyStudents, seed(opts.Seed, DefaultStudents), storeOpts...); err != nil {
		return nil, fmt.Errorf("open students: %w", err)
	}
	if a.Grades, err = entity.Open(bucket, KeyGrades, seed(opts.Seed, DefaultGrades), storeOpts...); err != nil {
		return nil, fmt.Errorf("open grades: %w", err)
	}
	if a.Attendance, err = entity.Open(bucket, KeyAttendance, seed(opts.Seed, DefaultAttendance), storeOpts...); err != nil {
		return nil, fmt.Errorf("open attendance: %w", err)
	}
	if a.Movies, err = entity.Open(bucket, KeyMovies, seed(opts.Seed, DefaultMovies), storeOpts...); err != nil {
		return nil, fmt.Errorf("open movies: %w", err)
	}
	if a.Invoices, err = entity.Open(bucket, KeyInvoices, seed(opts.Seed, DefaultInvoices), storeOpts...); err != nil {
		return nil, fmt.Errorf("open invoices: %w", err)
	}

	a.graph = relation.NewGraph(log).
		Parent(string(schema.KindStudent), a.Students).
		Parent(string(schema.KindGrade), a.Grades).
		Parent(string(schema.KindAttendance), a.Attendance).
		Parent(string(schema.KindMovie), a.Movies).
		Parent(string(schema.KindInvoice), a.Invoices).
		Cascade(string(schema.KindStudent),
			relation.On(KeyGrades, a.Grades, func(g schema.GradeEntry) string { return g.StudentID }),
			relation.On(KeyAttendance, a.Attendance, func(r schema.AttendanceRecord) string { return r.StudentID }),
		)
	return a, nil
}

func seed[T any](enabled bool, fn func() []T) []T {
	if !enabled {
		return []T{}
	}
	return fn()
}

// Collections lists the stores in export order.
func (a *App) Collections() []bundle.Collection {
	return []bundle.Collection{a.Students, a.Grades, a.Attendance, a.Movies, a.Invoices}
}

// Save creates the draft's entity when it has no id, or replaces it otherwise.
func (a *App) Save(d schema.Draft) (any, error) {
	switch d := d.(type) {
	case schema.StudentDraft:
		return save(a.Students, d.Student)
	case schema.GradeDraft:
		return save(a.Grades, d.Grade)
	case schema.AttendanceDraft:
		return save(a.Attendance, d.Attendance)
	case schema.MovieDraft:
		return save(a.Movies, d.Movie)
	case schema.InvoiceDraft:
		return save(a.Invoices, d.Invoice)
	}
	return nil, fmt.Errorf("%w: %T", schema.ErrUnknownKind, d)
}

func save[T entity.Record[T]](s *entity.Store[T], v T) (T, error) {
	if d, ok := any(v).(entity.Defaulted[T]); ok {
		v = d.WithDefaults()
	}
	if err := entity.Validate(v); err != nil {
		return v, err
	}
	if v.GetID() == "" {
		return s.Create(v)
	}
	return s.Replace(v.GetID(), v)
}

// Delete removes one entity. Deleting a student also removes its grades and
// attendance.
func (a *App) Delete(kind schema.Kind, id string) (relation.Report, error) {
	return a.graph.Delete(string(kind), id)
}

// DeleteStudent removes a student and everything that references it.
func (a *App) DeleteStudent(id string) (relation.Report, error) {
	return a.Delete(schema.KindStudent, id)
}

// Find returns the entity of kind with the given id.
func (a *App) Find(kind schema.Kind, id string) (any, error) {
	switch kind {
	case schema.KindStudent:
		return find(a.Students, id)
	case schema.KindGrade:
		return find(a.Grades, id)
	case schema.KindAttendance:
		return find(a.Attendance, id)
	case schema.KindMovie:
		return find(a.Movies, id)
	case schema.KindInvoice:
		return find(a.Invoices, id)
	}
	return nil, fmt.Errorf("%w: %q", schema.ErrUnknownKind, kind)
}

func find[T entity.Record[T]](s *entity.Store[T], id string) (any, error) {
	v, ok := s.Get(id)
	if !ok {
		return nil, entity.NotFound(s.Name(), id)
	}
	return v, nil
}

// List returns every entity of kind.
func (a *App) List(kind schema.Kind) (any, error) {
	return a.Search(kind, "")
}

// Search returns the entities of kind whose text fields contain query,
// ignoring case.
func (a *App) Search(kind schema.Kind, query string) (any, error) {
	switch kind {
	case schema.KindStudent:
		return a.Students.Filter(entity.MatchText(query,
			func(s schema.Student) string { return s.FirstName },
			func(s schema.Student) string { return s.LastName },
			func(s schema.Student) string { return s.Email },
			func(s schema.Student) string { return s.Level },
		)), nil
	case schema.KindGrade:
		return a.Grades.Filter(entity.MatchText(query,
			func(g schema.GradeEntry) string { return g.Subject },
			func(g schema.GradeEntry) string { return g.Assignment },
			func(g schema.GradeEntry) string { return a.StudentName(g.StudentID) },
		)), nil
	case schema.KindAttendance:
		return a.Attendance.Filter(entity.MatchText(query,
			func(r schema.AttendanceRecord) string { return r.Date },
			func(r schema.AttendanceRecord) string { return string(r.Status) },
			func(r schema.AttendanceRecord) string { return a.StudentName(r.StudentID) },
		)), nil
	case schema.KindMovie:
		return a.Movies.Filter(entity.MatchText(query,
			func(m schema.Movie) string { return m.Title },
			func(m schema.Movie) string { return strings.Join(m.Genres, " ") },
		)), nil
	case schema.KindInvoice:
		return a.Invoices.Filter(entity.MatchText(query,
			func(i schema.Invoice) string { return i.Number },
			func(i schema.Invoice) string { return i.Customer },
			func(i schema.Invoice) string { return string(i.Status) },
		)), nil
	}
	return nil, fmt.Errorf("%w: %q", schema.ErrUnknownKind, kind)
}

// StudentName resolves a student id for display.
func (a *App) StudentName(id string) string {
	return relation.ResolveName[schema.Student](a.Students, id, schema.Student.FullName, relation.UnknownStudent)
}

// Export serializes every collection.
func (a *App) Export() ([]byte, error) {
	return bundle.Export(a.now(), a.Collections()...)
}

// Import replaces the collections present in doc, all or nothing.
func (a *App) Import(doc []byte) (bundle.Result, error) {
	res, err := bundle.Import(doc, a.Collections()...)
	if err != nil {
		a.log.Warn("import failed", zap.Error(err))
		return res, err
	}
	a.log.Info("import complete", zap.Any("replaced", res.Replaced), zap.Strings("ignored", res.Ignored))
	return res, nil
}

// ClearAll empties every collection. Empty collections are persisted, so the
// sample data is not seeded again on the next start.
func (a *App) ClearAll() error {
	errs := multierr.Combine(
		a.Students.ReplaceAll(nil),
		a.Grades.ReplaceAll(nil),
		a.Attendance.ReplaceAll(nil),
		a.Movies.ReplaceAll(nil),
		a.Invoices.ReplaceAll(nil),
	)
	a.log.Info("cleared all data", zap.Error(errs))
	return errs
}

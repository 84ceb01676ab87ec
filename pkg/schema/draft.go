package schema

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind names an entity type.
type Kind string

const (
	KindStudent    Kind = "student"
	KindGrade      Kind = "grade"
	KindAttendance Kind = "attendance"
	KindMovie      Kind = "movie"
	KindInvoice    Kind = "invoice"
)

// Kinds lists every known entity kind.
var Kinds = []Kind{KindStudent, KindGrade, KindAttendance, KindMovie, KindInvoice}

// ErrUnknownKind is returned for a kind outside Kinds.
var ErrUnknownKind = errors.New("unknown entity kind")

// Draft is the entity currently being edited. It is a closed set: the only
// implementations are the *Draft types of this package.
type Draft interface {
	Kind() Kind
	// DraftID is the id being edited, empty for a new entity.
	DraftID() string
	sealed()
}

type StudentDraft struct{ Student Student }
type GradeDraft struct{ Grade GradeEntry }
type AttendanceDraft struct{ Attendance AttendanceRecord }
type MovieDraft struct{ Movie Movie }
type InvoiceDraft struct{ Invoice Invoice }

func (StudentDraft) Kind() Kind    { return KindStudent }
func (GradeDraft) Kind() Kind      { return KindGrade }
func (AttendanceDraft) Kind() Kind { return KindAttendance }
func (MovieDraft) Kind() Kind      { return KindMovie }
func (InvoiceDraft) Kind() Kind    { return KindInvoice }

func (d StudentDraft) DraftID() string    { return d.Student.ID }
func (d GradeDraft) DraftID() string      { return d.Grade.ID }
func (d AttendanceDraft) DraftID() string { return d.Attendance.ID }
func (d MovieDraft) DraftID() string      { return d.Movie.ID }
func (d InvoiceDraft) DraftID() string    { return d.Invoice.ID }

func (StudentDraft) sealed()    {}
func (GradeDraft) sealed()      {}
func (AttendanceDraft) sealed() {}
func (MovieDraft) sealed()      {}
func (InvoiceDraft) sealed()    {}

// Entity returns the record carried by a draft.
func Entity(d Draft) any {
	switch d := d.(type) {
	case StudentDraft:
		return d.Student
	case GradeDraft:
		return d.Grade
	case AttendanceDraft:
		return d.Attendance
	case MovieDraft:
		return d.Movie
	case InvoiceDraft:
		return d.Invoice
	}
	return nil
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// DecodeDraft decodes raw JSON into the draft variant for kind.
func DecodeDraft(kind Kind, raw json.RawMessage) (Draft, error) {
	switch kind {
	case KindStudent:
		var v Student
		err := json.Unmarshal(raw, &v)
		return StudentDraft{Student: v}, err
	case KindGrade:
		var v GradeEntry
		err := json.Unmarshal(raw, &v)
		return GradeDraft{Grade: v}, err
	case KindAttendance:
		var v AttendanceRecord
		err := json.Unmarshal(raw, &v)
		return AttendanceDraft{Attendance: v}, err
	case KindMovie:
		var v Movie
		err := json.Unmarshal(raw, &v)
		return MovieDraft{Movie: v}, err
	case KindInvoice:
		var v Invoice
		err := json.Unmarshal(raw, &v)
		return InvoiceDraft{Invoice: v}, err
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Package schema defines the entity shapes of the sample applications.
package schema

import (
	"slices"
	"strings"
	"time"
)

// StudentStatus is the enrolment state of a student.
type StudentStatus string

const (
	StudentActive   StudentStatus = "active"
	StudentInactive StudentStatus = "inactive"
)

// Student is a tracked learner.
type Student struct {
	ID         string        `json:"id"`
	FirstName  string        `json:"firstName" validate:"required"`
	LastName   string        `json:"lastName"`
	Email      string        `json:"email,omitempty" validate:"omitempty,email"`
	Level      string        `json:"grade,omitempty"`
	Status     StudentStatus `json:"status"`
	EnrolledOn string        `json:"enrollmentDate,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

func (s Student) GetID() string { return s.ID }

func (s Student) WithID(id string) Student { s.ID = id; return s }

func (s Student) Created(now time.Time) Student {
	s.CreatedAt, s.UpdatedAt = now, now
	return s.WithDefaults()
}

func (s Student) Updated(now time.Time) Student { s.UpdatedAt = now; return s }

// Revise keeps the stored creation stamp when a full edit replaces the record.
func (s Student) Revise(prev Student) Student { s.CreatedAt = prev.CreatedAt; return s }

func (s Student) WithDefaults() Student {
	if s.Status == "" {
		s.Status = StudentActive
	}
	return s
}

// FullName joins first and last name.
func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// GradeEntry is one scored assessment of a student.
type GradeEntry struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"studentId" validate:"required"`
	Subject    string    `json:"subject"`
	Assignment string    `json:"assignment,omitempty"`
	Score      float64   `json:"score" validate:"gte=0"`
	MaxScore   float64   `json:"maxScore" validate:"gte=0"`
	RecordedOn string    `json:"date,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (g GradeEntry) GetID() string { return g.ID }

func (g GradeEntry) WithID(id string) GradeEntry { g.ID = id; return g }

func (g GradeEntry) Created(now time.Time) GradeEntry {
	g.CreatedAt = now
	return g.WithDefaults()
}

func (g GradeEntry) Revise(prev GradeEntry) GradeEntry { g.CreatedAt = prev.CreatedAt; return g }

func (g GradeEntry) WithDefaults() GradeEntry {
	if g.MaxScore == 0 {
		g.MaxScore = 100
	}
	return g
}

// Percent is the score as a percentage of MaxScore, or 0 without a maximum.
func (g GradeEntry) Percent() float64 {
	if g.MaxScore <= 0 {
		return 0
	}
	return g.Score / g.MaxScore * 100
}

// AttendanceStatus is the mark recorded for one day.
type AttendanceStatus string

const (
	Present AttendanceStatus = "present"
	Absent  AttendanceStatus = "absent"
	Late    AttendanceStatus = "late"
	Excused AttendanceStatus = "excused"
)

// AttendanceRecord is one day's mark for a student.
type AttendanceRecord struct {
	ID        string           `json:"id"`
	StudentID string           `json:"studentId" validate:"required"`
	Date      string           `json:"date"`
	Status    AttendanceStatus `json:"status" validate:"omitempty,oneof=present absent late excused"`
	Notes     string           `json:"notes,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

func (a AttendanceRecord) GetID() string { return a.ID }

func (a AttendanceRecord) WithID(id string) AttendanceRecord { a.ID = id; return a }

func (a AttendanceRecord) Created(now time.Time) AttendanceRecord {
	a.CreatedAt = now
	return a.WithDefaults()
}

func (a AttendanceRecord) Revise(prev AttendanceRecord) AttendanceRecord {
	a.CreatedAt = prev.CreatedAt
	return a
}

func (a AttendanceRecord) WithDefaults() AttendanceRecord {
	if a.Status == "" {
		a.Status = Present
	}
	return a
}

// Attended reports whether the student was in class.
func (a AttendanceRecord) Attended() bool {
	return a.Status == Present || a.Status == Late
}

// Movie is an entry of the streaming catalog.
type Movie struct {
	ID        string    `json:"id"`
	Title     string    `json:"title" validate:"required"`
	Genres    []string  `json:"genre"`
	Year      int       `json:"year,omitempty"`
	Rating    float64   `json:"rating" validate:"gte=0,lte=10"`
	Views     int       `json:"views"`
	Watchlist bool      `json:"inWatchlist,omitempty"`
	AddedAt   time.Time `json:"addedAt"`
}

func (m Movie) GetID() string { return m.ID }

func (m Movie) WithID(id string) Movie { m.ID = id; return m }

func (m Movie) Created(now time.Time) Movie {
	m.AddedAt = now
	return m.WithDefaults()
}

func (m Movie) Revise(prev Movie) Movie { m.AddedAt = prev.AddedAt; return m }

func (m Movie) Clone() Movie { m.Genres = slices.Clone(m.Genres); return m }

func (m Movie) WithDefaults() Movie {
	if m.Genres == nil {
		m.Genres = []string{}
	}
	return m
}

// InvoiceStatus tracks an invoice through billing.
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// InvoiceLine is one billed item.
type InvoiceLine struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"rate"`
}

// Invoice is an accounting document.
type Invoice struct {
	ID        string        `json:"id"`
	Number    string        `json:"invoiceNumber" validate:"required"`
	Customer  string        `json:"customer"`
	Amount    float64       `json:"amount" validate:"gte=0"`
	Status    InvoiceStatus `json:"status" validate:"omitempty,oneof=draft sent paid overdue"`
	IssuedOn  string        `json:"date,omitempty"`
	DueOn     string        `json:"dueDate,omitempty"`
	Lines     []InvoiceLine `json:"items,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (i Invoice) GetID() string { return i.ID }

func (i Invoice) WithID(id string) Invoice { i.ID = id; return i }

func (i Invoice) Created(now time.Time) Invoice {
	i.CreatedAt, i.UpdatedAt = now, now
	return i.WithDefaults()
}

func (i Invoice) Updated(now time.Time) Invoice { i.UpdatedAt = now; return i }

func (i Invoice) Revise(prev Invoice) Invoice { i.CreatedAt = prev.CreatedAt; return i }

func (i Invoice) Clone() Invoice { i.Lines = slices.Clone(i.Lines); return i }

// WithDefaults derives Amount from the lines when it is missing.
func (i Invoice) WithDefaults() Invoice {
	if i.Status == "" {
		i.Status = InvoiceStatusDraft
	}
	if i.Amount == 0 && len(i.Lines) > 0 {
		i.Amount = i.LinesTotal()
	}
	return i
}

// LinesTotal sums quantity times unit price over the lines.
func (i Invoice) LinesTotal() float64 {
	var total float64
	for _, l := range i.Lines {
		total += l.Quantity * l.UnitPrice
	}
	return total
}

package tracker

import (
	"time"

	"github.com/celerix-dev/celerix-records/pkg/schema"
)

var seedTime = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

// DefaultStudents are shipped on first run.
func DefaultStudents() []schema.Student {
	return []schema.Student{
		{ID: "1", FirstName: "John", LastName: "Smith", Email: "john.smith@school.edu", Level: "10th", Status: schema.StudentActive, EnrolledOn: "2023-09-01", CreatedAt: seedTime, UpdatedAt: seedTime},
		{ID: "2", FirstName: "Emma", LastName: "Johnson", Email: "emma.johnson@school.edu", Level: "11th", Status: schema.StudentActive, EnrolledOn: "2023-09-01", CreatedAt: seedTime, UpdatedAt: seedTime},
	}
}

func DefaultGrades() []schema.GradeEntry {
	return []schema.GradeEntry{
		{ID: "1", StudentID: "1", Subject: "Mathematics", Assignment: "Midterm Exam", Score: 85, MaxScore: 100, RecordedOn: "2024-01-10", CreatedAt: seedTime},
		{ID: "2", StudentID: "1", Subject: "Science", Assignment: "Lab Report", Score: 92, MaxScore: 100, RecordedOn: "2024-01-12", CreatedAt: seedTime.Add(time.Hour)},
		{ID: "3", StudentID: "2", Subject: "Mathematics", Assignment: "Midterm Exam", Score: 78, MaxScore: 100, RecordedOn: "2024-01-10", CreatedAt: seedTime.Add(2 * time.Hour)},
	}
}

func DefaultAttendance() []schema.AttendanceRecord {
	return []schema.AttendanceRecord{
		{ID: "1", StudentID: "1", Date: "2024-01-15", Status: schema.Present, CreatedAt: seedTime},
		{ID: "2", StudentID: "2", Date: "2024-01-15", Status: schema.Late, CreatedAt: seedTime},
	}
}

func DefaultMovies() []schema.Movie {
	return []schema.Movie{
		{ID: "1", Title: "The Matrix", Genres: []string{"Action", "Sci-Fi"}, Year: 1999, Rating: 8.7, Views: 1520, AddedAt: seedTime},
		{ID: "2", Title: "Inception", Genres: []string{"Action", "Sci-Fi", "Thriller"}, Year: 2010, Rating: 8.8, Views: 1340, AddedAt: seedTime},
		{ID: "3", Title: "The Godfather", Genres: []string{"Crime", "Drama"}, Year: 1972, Rating: 9.2, Views: 980, AddedAt: seedTime},
	}
}

func DefaultInvoices() []schema.Invoice {
	return []schema.Invoice{
		{ID: "1", Number: "INV-001", Customer: "Acme Corp", Amount: 1500, Status: schema.InvoiceStatusPaid, IssuedOn: "2024-01-05", DueOn: "2024-02-05", CreatedAt: seedTime, UpdatedAt: seedTime},
		{ID: "2", Number: "INV-002", Customer: "Globex", Amount: 2300, Status: schema.InvoiceStatusSent, IssuedOn: "2024-01-12", DueOn: "2024-02-12", CreatedAt: seedTime, UpdatedAt: seedTime},
	}
}

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/celerix-dev/celerix-records/internal/tracker"
	"github.com/celerix-dev/celerix-records/pkg/schema"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list <kind>",
	GroupID: "data",
	Short:   "List or search one collection",
	Long: `List every entity of a kind, or only those matching --query.

Kinds: student, grade, attendance, movie, invoice.

Examples:
  records list student
  records list movie --query sci-fi
  records list invoice --format yaml`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: kindNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := schema.ParseKind(args[0])
		if err != nil {
			return err
		}
		query, _ := cmd.Flags().GetString("query")
		format, _ := cmd.Flags().GetString("format")

		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		items, err := rt.App.Search(kind, query)
		if err != nil {
			return err
		}
		if format != formatTable {
			return printData(cmd.OutOrStdout(), format, items)
		}
		headers, rows := tabulate(rt.App, items)
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows))
		return nil
	},
}

func init() {
	listCmd.Flags().StringP("query", "q", "", "case-insensitive text filter")
	listCmd.Flags().String("format", formatTable, "output format: table, json or yaml")
	rootCmd.AddCommand(listCmd)
}

func kindNames() []string {
	out := make([]string, len(schema.Kinds))
	for i, k := range schema.Kinds {
		out[i] = string(k)
	}
	return out
}

func money(f float64) string { return "$" + strconv.FormatFloat(f, 'f', 2, 64) }

func pct(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) + "%" }

// tabulate renders a Search result. Grade and attendance rows resolve the
// student's name.
func tabulate(app *tracker.App, items any) ([]string, [][]string) {
	var rows [][]string
	switch items := items.(type) {
	case []schema.Student:
		for _, s := range items {
			rows = append(rows, []string{s.ID, s.FullName(), s.Email, s.Level, string(s.Status)})
		}
		return []string{"ID", "Name", "Email", "Grade", "Status"}, rows
	case []schema.GradeEntry:
		for _, g := range items {
			rows = append(rows, []string{
				g.ID, app.StudentName(g.StudentID), g.Subject, g.Assignment,
				fmt.Sprintf("%g/%g", g.Score, g.MaxScore), pct(g.Percent()),
			})
		}
		return []string{"ID", "Student", "Subject", "Assignment", "Score", "Percent"}, rows
	case []schema.AttendanceRecord:
		for _, r := range items {
			rows = append(rows, []string{r.ID, app.StudentName(r.StudentID), r.Date, string(r.Status), r.Notes})
		}
		return []string{"ID", "Student", "Date", "Status", "Notes"}, rows
	case []schema.Movie:
		for _, m := range items {
			rows = append(rows, []string{
				m.ID, m.Title, strings.Join(m.Genres, ", "), strconv.Itoa(m.Year),
				strconv.FormatFloat(m.Rating, 'f', 1, 64), strconv.Itoa(m.Views),
			})
		}
		return []string{"ID", "Title", "Genres", "Year", "Rating", "Views"}, rows
	case []schema.Invoice:
		for _, i := range items {
			rows = append(rows, []string{i.ID, i.Number, i.Customer, money(i.Amount), string(i.Status), i.DueOn})
		}
		return []string{"ID", "Number", "Customer", "Amount", "Status", "Due"}, rows
	}
	return nil, nil
}

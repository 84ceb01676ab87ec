package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"dashboard"},
	GroupID: "data",
	Short:   "Show the dashboard aggregates",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		rt, err := openRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		d := rt.App.Dashboard()
		out := cmd.OutOrStdout()
		if format != formatTable {
			return printData(out, format, d)
		}

		fmt.Fprintln(out, heading("Overview"))
		fmt.Fprintf(out, "students %d (%d active)   grades %d   attendance %d   movies %d   invoices %d\n",
			d.Students, d.ActiveStudents, d.Grades, d.AttendanceRecords, d.Movies, d.Invoices)
		fmt.Fprintf(out, "average score %s   attendance rate %s\n", pct(d.AverageScore), pct(d.AttendanceRate))

		fmt.Fprintln(out, heading("Student progress"))
		rows := make([][]string, 0, len(d.Progress))
		for _, p := range d.Progress {
			rows = append(rows, []string{p.Name, p.Student.Level, pct(p.GPA), pct(p.AttendanceRate), strconv.Itoa(p.Grades)})
		}
		fmt.Fprintln(out, renderTable([]string{"Student", "Grade", "GPA", "Attendance", "Entries"}, rows))

		fmt.Fprintln(out, heading("Grade distribution"))
		for _, c := range d.GradeDistribution {
			fmt.Fprintf(out, "%-2s %-3d %s\n", c.Label, c.Count, strings.Repeat("█", c.Count))
		}

		fmt.Fprintln(out, heading("Movies"))
		genres := make([]string, 0, len(d.Genres))
		for _, g := range d.Genres {
			genres = append(genres, fmt.Sprintf("%s (%d)", g.Label, g.Count))
		}
		fmt.Fprintf(out, "average rating %.1f   genres %s\n", d.AverageRating, strings.Join(genres, ", "))
		rows = rows[:0]
		for _, m := range d.MostWatched {
			rows = append(rows, []string{m.Title, strconv.Itoa(m.Views), strconv.FormatFloat(m.Rating, 'f', 1, 64)})
		}
		fmt.Fprintln(out, renderTable([]string{"Most watched", "Views", "Rating"}, rows))

		fmt.Fprintln(out, heading("Invoices"))
		fmt.Fprintf(out, "revenue %s   outstanding %s\n", money(d.Revenue), money(d.Outstanding))

		fmt.Fprintln(out, heading("Recent activity"))
		for _, a := range d.RecentActivity {
			fmt.Fprintf(out, "%s  %s\n", mutedStyle.Render(a.At.Format("2006-01-02 15:04")), a.Label)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().String("format", formatTable, "output format: table, json or yaml")
	rootCmd.AddCommand(statsCmd)
}

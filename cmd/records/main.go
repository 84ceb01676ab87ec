// Command records manages the tracker collections from the terminal.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/celerix-dev/celerix-records/internal/boot"
	"github.com/celerix-dev/celerix-records/internal/config"
	"github.com/celerix-dev/celerix-records/internal/logging"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	v          = newViper()
	configFile string
	cfg        config.Config
	log        = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "records",
	Short: "Manage students, grades, attendance, movies and invoices",
	Long: `records reads and edits the tracker collections stored under a data
directory. Settings come from records.yaml, RECORDS_* environment variables
and the flags below.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
		var err error
		if cfg, err = config.Load(v, configFile); err != nil {
			return err
		}
		log, err = logging.New(cfg.Log)
		return err
	},
}

// The CLI is quieter than the daemon unless asked otherwise.
func newViper() *viper.Viper {
	v := config.New()
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	return v
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "data", Title: "Data:"},
		&cobra.Group{ID: "maintenance", Title: "Maintenance:"},
	)

	f := rootCmd.PersistentFlags()
	f.StringVar(&configFile, "config", "", "config file (default ./records.yaml)")
	f.String("data-dir", "", "data directory")
	f.String("backend", "", "backend: json or sqlite")
	f.String("persona", "", "persona id")
	f.String("namespace", "", "app namespace")
	f.String("log-level", "", "log level")
	f.Bool("no-color", false, "disable colored output")
	_ = v.BindPFlag("data_dir", f.Lookup("data-dir"))
	_ = v.BindPFlag("backend", f.Lookup("backend"))
	_ = v.BindPFlag("persona", f.Lookup("persona"))
	_ = v.BindPFlag("namespace", f.Lookup("namespace"))
	_ = v.BindPFlag("log.level", f.Lookup("log-level"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openRuntime opens the configured tracker. Callers close it.
func openRuntime() (*boot.Runtime, error) {
	return boot.Open(cfg, log, nil)
}

// Output formats accepted by --format.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// printData writes v as JSON or YAML. YAML keys follow the JSON field names.
func printData(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		return printJSON(w, v)
	case formatYAML:
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q (want %s, %s or %s)", format, formatTable, formatJSON, formatYAML)
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

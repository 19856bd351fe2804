package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"net-troubleshooter/internal/backend"
	"net-troubleshooter/internal/config"
	"net-troubleshooter/internal/domain"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	backend string
	timeout int
	debug   bool
	noColor bool
}

var rootCmd = &cobra.Command{
	Use:   "troubleshoot",
	Short: "Network diagnostics from the terminal",
	Long: "Troubleshoot runs connectivity checks against web targets through the\n" +
		"diagnostics backend and renders results, reports, and fix scripts.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if rootFlags.debug {
			logrus.SetLevel(logrus.DebugLevel)
		}
		if rootFlags.noColor {
			color.NoColor = true
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.backend, "backend", "", "backend base URL (default from settings or TROUBLESHOOTER_BACKEND_URL)")
	pf.IntVar(&rootFlags.timeout, "timeout", 0, "request timeout in seconds (default from settings)")
	pf.BoolVar(&rootFlags.debug, "debug", false, "enable debug logging")
	pf.BoolVar(&rootFlags.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(fixScriptCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newClient builds a backend client from persisted settings plus flag overrides.
func newClient() (*backend.Client, domain.Settings, error) {
	settings, err := config.NewJSONStore(config.DefaultPath()).Load()
	if err != nil {
		return nil, domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	if rootFlags.backend != "" {
		settings.BackendURL = rootFlags.backend
	}
	if rootFlags.timeout > 0 {
		settings.TimeoutSeconds = rootFlags.timeout
	}
	settings = config.Normalize(settings)

	return backend.New(settings.BackendURL, settings.Timeout()), settings, nil
}

// resolveMode picks the flag value when set, falling back to settings.
func resolveMode(flagValue string, settings domain.Settings) (domain.Mode, error) {
	raw := flagValue
	if raw == "" {
		raw = settings.Mode
	}
	return domain.ParseMode(raw)
}

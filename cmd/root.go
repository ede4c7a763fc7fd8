// Package cmd wires the restore engine to its command-line surface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/config"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/logger"
)

// Global config and logger, set by Execute before any command runs.
var (
	cfg *config.Config
	log logger.Logger
)

var defaultsFlagSet bool

var rootCmd = &cobra.Command{
	Use:   "xmrestore",
	Short: "Restore captured xMatters instance data to a live instance",
	Long: `xmrestore reads the JSON bundles written by the capture tool and restores
Sites, Users, Devices, Groups, and Shifts to a target xMatters instance.

Records are matched by business key (site name, user targetName, and so on),
so existing entities are updated in place and missing ones are created.
Entities restore in dependency order; a record that fails never aborts the
run, it is reported at the end instead.

Capture files are located as <basename>.<instance>.<kind>.<time>.json in the
data directory. Connection settings may come from flags, the environment
(XMRESTORE_*), or a defaults file.

Examples:
  # Restore everything from the 20260830-1200 capture to non-production
  xmrestore all -b acme -t 20260830-1200 -u admin -x https://acme-np.xmatters.com

  # Users (with devices) only, settings from a defaults file
  xmrestore users -d prod-defaults.json

  # See what a group restore would do without writing anything
  xmrestore groups -b acme -t 20260830-1200 --dry-run -vv
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		return setup(cmd)
	},
}

// Execute runs the root command with the given configuration and logger.
func Execute(ctx context.Context, config *config.Config, logger logger.Logger) error {
	cfg = config
	log = logger
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.StringVarP(&flagDefaults, "defaults", "d", "defaults.json", "JSON file providing values for unset options")
	pf.StringVarP(&flagURL, "xmodurl", "x", "", "Target instance URL, e.g. https://myco.xmatters.com")
	pf.StringVarP(&flagUser, "user", "u", "", "REST API user on the target instance")
	pf.StringVarP(&flagPassword, "password", "p", "", "Password for the REST API user (prompted when omitted)")
	pf.StringVarP(&flagInstance, "itype", "i", "", "Instance type the capture came from: np or prod")
	pf.StringVarP(&flagOutDir, "odir", "o", "", "Directory holding the capture files and run log")
	pf.StringVarP(&flagBaseName, "basename", "b", "", "Base name of the capture files")
	pf.StringVarP(&flagTimeStr, "time", "t", "", "Time string selecting which capture to restore")
	pf.StringVarP(&flagLogName, "lfile", "l", "", "Middle label of the log file name")
	pf.CountVarP(&flagVerbosity, "verbose", "v", "Increase log detail (repeat: warn, info, debug)")
	pf.BoolVarP(&flagConsole, "console", "c", false, "Echo the log to the console as well as the log file")
	pf.BoolVar(&flagInsecure, "insecure", false, "Skip TLS certificate verification")
	pf.BoolVar(&flagDryRun, "dry-run", false, "Resolve and validate everything but write nothing")
	pf.BoolVar(&flagNoProgress, "no-progress", false, "Disable progress bars")
	pf.BoolVar(&flagJSON, "json", false, "Emit the run report as JSON on stdout")
	pf.BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
}

// Flag targets; merged onto cfg in setup so that defaults-file values only
// fill options the operator left unset.
var (
	flagDefaults   string
	flagURL        string
	flagUser       string
	flagPassword   string
	flagInstance   string
	flagOutDir     string
	flagBaseName   string
	flagTimeStr    string
	flagLogName    string
	flagVerbosity  int
	flagConsole    bool
	flagInsecure   bool
	flagDryRun     bool
	flagNoProgress bool
	flagJSON       bool
	flagNoColor    bool
)

// setup finalizes cfg for a run: flags over defaults file over environment,
// then a password prompt if still needed, then validation and the logger.
func setup(cmd *cobra.Command) error {
	applyFlags(cmd)

	if err := cfg.ApplyDefaults(cfg.DefaultsPath, defaultsFlagSet); err != nil {
		return err
	}

	if cfg.Password == "" {
		password, err := promptPassword(cfg.User)
		if err != nil {
			return err
		}
		cfg.Password = password
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.NoColor {
		logger.DisableColors()
	}

	fileLog, err := logger.FileLogger(cfg.LogLevel(), cfg.LogFormat, cfg.LogFile(time.Now()), cfg.Console)
	if err != nil {
		return err
	}
	log = fileLog
	return nil
}

func applyFlags(cmd *cobra.Command) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	defaultsFlagSet = cmd.Flags().Changed("defaults")
	cfg.DefaultsPath = flagDefaults

	setString(&cfg.XmodURL, flagURL)
	setString(&cfg.User, flagUser)
	setString(&cfg.Password, flagPassword)
	setString(&cfg.Instance, flagInstance)
	setString(&cfg.OutDirectory, flagOutDir)
	setString(&cfg.BaseName, flagBaseName)
	setString(&cfg.TimeStr, flagTimeStr)
	setString(&cfg.LogFilename, flagLogName)

	if cmd.Flags().Changed("verbose") {
		cfg.Verbosity = flagVerbosity
	}
	if cmd.Flags().Changed("console") {
		cfg.Console = flagConsole
	}
	if cmd.Flags().Changed("insecure") {
		cfg.Insecure = flagInsecure
	}
	cfg.DryRun = cfg.DryRun || flagDryRun
	cfg.NoProgress = cfg.NoProgress || flagNoProgress
	cfg.JSONReport = cfg.JSONReport || flagJSON
	cfg.NoColor = cfg.NoColor || flagNoColor
}

// promptPassword asks for the password on the terminal, never echoing it.
// A non-interactive stdin falls through to Validate's missing-password error.
func promptPassword(user string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}
	fmt.Fprintf(os.Stderr, "Password for %s: ", user)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(raw), nil
}

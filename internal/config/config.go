// Package config holds the resolved restore configuration: target instance,
// credentials, capture file naming inputs, and output options.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/errors"
)

// Instance environment labels used in capture file names.
const (
	InstanceNonProd = "np"
	InstanceProd    = "prod"
)

// Config holds all configuration options
type Config struct {
	// Version information
	Version   string
	BuildTime string
	GitCommit string

	// Defaults file path (--defaults flag)
	DefaultsPath string

	// Target instance
	XmodURL  string // e.g. https://myco.xmatters.com
	User     string
	Password string
	Instance string // "np" or "prod"
	Insecure bool   // skip TLS verification

	// Capture file naming
	OutDirectory string // directory holding capture files and the run log
	BaseName     string // <base>.<instance>.<kind>.<time>.json
	TimeStr      string // timestamp label of the capture to restore
	LogFilename  string // middle label of the log file name

	// Output options
	Verbosity  int // counted -v flags: error -> warn -> info -> debug
	Console    bool
	LogFormat  string
	NoColor    bool
	NoProgress bool
	JSONReport bool
	DryRun     bool

	// Transport
	RequestTimeout time.Duration
}

// New creates a new configuration with default values.
// Credentials fall back to the environment so they can stay out of shell
// history and the defaults file.
func New() *Config {
	return &Config{
		XmodURL:      getEnvString("XMRESTORE_URL", ""),
		User:         getEnvString("XMRESTORE_USER", ""),
		Password:     getEnvString("XMRESTORE_PASSWORD", ""),
		Instance:     getEnvString("XMRESTORE_INSTANCE", InstanceNonProd),
		Insecure:     getEnvBool("XMRESTORE_INSECURE", false),
		OutDirectory: getEnvString("XMRESTORE_DIR", "."),
		BaseName:     getEnvString("XMRESTORE_BASE", ""),
		TimeStr:      getEnvString("XMRESTORE_TIME", ""),
		LogFilename:  getEnvString("XMRESTORE_LOG", "restore"),

		Verbosity:      getEnvInt("XMRESTORE_VERBOSITY", 0),
		Console:        getEnvBool("XMRESTORE_CONSOLE", false),
		LogFormat:      getEnvString("XMRESTORE_LOG_FORMAT", "text"),
		NoColor:        getEnvBool("NO_COLOR", false),
		RequestTimeout: time.Duration(getEnvInt("XMRESTORE_TIMEOUT_SEC", 30)) * time.Second,
	}
}

// Validate checks that every required field is present, collecting all
// problems into one error so the operator fixes them in a single pass.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.XmodURL == "" {
		result = multierror.Append(result, errors.NewConfigError(errors.ErrCodeMissingConfig,
			"target instance URL was not specified on the command line or via defaults",
			"pass --url or set xmodURL in the defaults file"))
	} else if !strings.HasPrefix(c.XmodURL, "http://") && !strings.HasPrefix(c.XmodURL, "https://") {
		result = multierror.Append(result, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("target instance URL %q must start with http:// or https://", c.XmodURL), ""))
	}
	if c.User == "" {
		result = multierror.Append(result, errors.NewConfigError(errors.ErrCodeMissingCreds,
			"user was not specified on the command line or via defaults",
			"pass --user or set XMRESTORE_USER"))
	}
	if c.Password == "" {
		result = multierror.Append(result, errors.NewConfigError(errors.ErrCodeMissingCreds,
			"password was not specified on the command line or via defaults",
			"pass --password or set XMRESTORE_PASSWORD"))
	}
	if c.Instance != InstanceNonProd && c.Instance != InstanceProd {
		result = multierror.Append(result, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("instance must be %q or %q, got %q", InstanceNonProd, InstanceProd, c.Instance), ""))
	}
	if c.OutDirectory == "" {
		result = multierror.Append(result, errors.NewConfigError(errors.ErrCodeMissingConfig,
			"output directory was not specified on the command line or via defaults", ""))
	}
	if c.BaseName == "" {
		result = multierror.Append(result, errors.NewConfigError(errors.ErrCodeMissingConfig,
			"base file name was not specified on the command line or via defaults", ""))
	}
	if c.TimeStr == "" {
		result = multierror.Append(result, errors.NewConfigError(errors.ErrCodeMissingConfig,
			"time string to select the capture data files was not specified", ""))
	}

	return result.ErrorOrNil()
}

// DataFile returns the capture file path for a file kind (sites, users, groups).
// Naming convention: <base>.<instance>.<kind>.<time>.json
func (c *Config) DataFile(kind string) string {
	name := fmt.Sprintf("%s.%s.%s.%s.json", c.BaseName, c.Instance, kind, c.TimeStr)
	return filepath.Join(c.OutDirectory, name)
}

// LogFile returns the run log path: <base>.<instance>.<lfile>.<YYYYMMDD-HHMM>.log
func (c *Config) LogFile(now time.Time) string {
	name := fmt.Sprintf("%s.%s.%s.%s.log", c.BaseName, c.Instance, c.LogFilename,
		now.Format("20060102-1504"))
	return filepath.Join(c.OutDirectory, name)
}

// LogLevel maps counted verbosity flags onto a logger level name
func (c *Config) LogLevel() string {
	switch {
	case c.Verbosity <= 0:
		return "error"
	case c.Verbosity == 1:
		return "warn"
	case c.Verbosity == 2:
		return "info"
	default:
		return "debug"
	}
}

// IsProd reports whether the target is the production instance
func (c *Config) IsProd() bool {
	return c.Instance == InstanceProd
}

// --- environment helpers ---

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

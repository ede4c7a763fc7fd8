package config

import (
	"encoding/json"
	"fmt"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/errors"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/fs"
)

// defaultsFile mirrors the JSON defaults file shared with the capture tool.
type defaultsFile struct {
	XmodURL      string `json:"xmodURL"`
	User         string `json:"user"`
	Password     string `json:"password"`
	BaseName     string `json:"baseName"`
	OutDirectory string `json:"outDirectory"`
	LogFilename  string `json:"logFilename"`
	TimeStr      string `json:"timeStr"`
	Instance     string `json:"instance"`
	Verbosity    int    `json:"verbosity"`
}

// ApplyDefaults merges values from the defaults file into any field the
// command line left unset. Flags always win over the file; the file wins
// over built-in defaults. A missing file is only an error when the path was
// given explicitly.
func (c *Config) ApplyDefaults(path string, explicit bool) error {
	exists, err := fs.Exists(path)
	if err != nil {
		return fmt.Errorf("checking defaults file: %w", err)
	}
	if !exists {
		if explicit {
			return errors.NewConfigError(errors.ErrCodeBadDefaults,
				fmt.Sprintf("missing defaults file: %s", path), "")
		}
		return nil
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeBadDefaults,
			fmt.Sprintf("reading defaults file %s", path), "").WithCause(err)
	}

	var d defaultsFile
	if err := json.Unmarshal(data, &d); err != nil {
		return errors.NewConfigError(errors.ErrCodeBadDefaults,
			fmt.Sprintf("parsing defaults file %s", path), "").WithCause(err)
	}

	if c.XmodURL == "" {
		c.XmodURL = d.XmodURL
	}
	if c.User == "" {
		c.User = d.User
	}
	if c.Password == "" {
		c.Password = d.Password
	}
	if c.BaseName == "" {
		c.BaseName = d.BaseName
	}
	if c.OutDirectory == "" || c.OutDirectory == "." {
		if d.OutDirectory != "" {
			c.OutDirectory = d.OutDirectory
		}
	}
	if c.LogFilename == "" || c.LogFilename == "restore" {
		if d.LogFilename != "" {
			c.LogFilename = d.LogFilename
		}
	}
	if c.TimeStr == "" {
		c.TimeStr = d.TimeStr
	}
	if c.Instance == "" || c.Instance == InstanceNonProd {
		if d.Instance != "" {
			c.Instance = d.Instance
		}
	}
	if c.Verbosity == 0 {
		c.Verbosity = d.Verbosity
	}

	return nil
}

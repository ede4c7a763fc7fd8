package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/directory"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/exitcode"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/logger"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/restore"
)

// One subcommand per restore mode; all share the persistent flags.
var modeCommands = []struct {
	mode  restore.Mode
	short string
	long  string
}{
	{restore.ModeAll, "Restore sites, users, devices, groups, and shifts",
		"Restore every captured kind in dependency order:\nSites, Users, Devices (with timeframes), Groups, Shifts (with members)."},
	{restore.ModeSites, "Restore sites only", ""},
	{restore.ModeUsers, "Restore users and their devices",
		"Restore Users from the captured users file, including each user's\nDevices and device Timeframes. Supervisors are applied in a second\npass once every user exists."},
	{restore.ModeUsersOnly, "Restore users without their devices", ""},
	{restore.ModeDevices, "Restore devices for already-existing users",
		"Restore Devices (and their Timeframes) from the captured users file\nwithout touching the users themselves. Owners must already exist on\nthe target."},
	{restore.ModeGroups, "Restore groups and their shifts",
		"Restore Groups from the captured groups file, then each group's\nShifts and shift members. Group observers are never restored; the\ntarget API cannot accept them."},
	{restore.ModeGroupsOnly, "Restore groups without their shifts", ""},
	{restore.ModeShifts, "Restore shifts for already-existing groups",
		"Restore Shifts (and their members) from the captured groups file\nwithout touching the groups themselves. Groups must already exist on\nthe target."},
}

func init() {
	for _, mc := range modeCommands {
		cmd := &cobra.Command{
			Use:   string(mc.mode),
			Short: mc.short,
			Long:  mc.long,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				mode, err := restore.ParseMode(cmd.Name())
				if err != nil {
					return err
				}
				return runRestore(cmd.Context(), mode)
			},
		}
		rootCmd.AddCommand(cmd)
	}
}

func runRestore(ctx context.Context, mode restore.Mode) error {
	if cfg.IsProd() && !cfg.DryRun {
		logger.Warning("Restoring to the PRODUCTION instance %s", cfg.XmodURL)
		log.Warn("Restoring to the PRODUCTION instance", "url", cfg.XmodURL)
	}

	var dir directory.Directory = directory.NewHTTP(cfg, log)
	if cfg.DryRun {
		dir = directory.NewDryRun(dir, log)
		log.Info("Dry-run: no changes will be written to the target")
	}

	engine := restore.New(cfg, dir, log)
	if err := engine.Preflight(ctx, mode); err != nil {
		return err
	}

	log.Info("Starting restore", "mode", mode, "url", cfg.XmodURL)
	report, runErr := engine.Run(ctx, mode)

	if cfg.JSONReport {
		if err := report.RenderJSON(os.Stdout); err != nil {
			return fmt.Errorf("rendering report: %w", err)
		}
	} else {
		report.Render(os.Stdout)
	}
	if runErr != nil {
		return runErr
	}

	if failed := report.TotalFailed(); failed > 0 {
		os.Exit(exitcode.ForReport(failed))
	}
	return nil
}

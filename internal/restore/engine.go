package restore

import (
	"context"
	"fmt"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/capture"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/config"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/directory"
	xmerrors "github.com/xmatters/xm-labs-restore-instance-data/internal/errors"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/logger"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/progress"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/resolver"
)

// Mode selects which kinds a run restores.
type Mode string

const (
	ModeAll        Mode = "all"
	ModeSites      Mode = "sites"
	ModeUsers      Mode = "users"
	ModeUsersOnly  Mode = "users-only"
	ModeDevices    Mode = "devices"
	ModeGroups     Mode = "groups"
	ModeGroupsOnly Mode = "groups-only"
	ModeShifts     Mode = "shifts"
)

var allModes = []Mode{ModeAll, ModeSites, ModeUsers, ModeUsersOnly, ModeDevices, ModeGroups, ModeGroupsOnly, ModeShifts}

// ParseMode validates a mode name from the command line.
func ParseMode(s string) (Mode, error) {
	for _, m := range allModes {
		if Mode(s) == m {
			return m, nil
		}
	}
	return "", xmerrors.NewConfigError(xmerrors.ErrCodeInvalidMode,
		fmt.Sprintf("unknown restore mode %q", s),
		"use one of: all, sites, users, users-only, devices, groups, groups-only, shifts")
}

// plan is the set of kinds a mode touches, applied in fixed dependency
// order: sites, users, devices, groups, shifts.
type plan struct {
	sites, users, devices, groups, shifts bool
}

func (m Mode) plan() plan {
	switch m {
	case ModeAll:
		return plan{sites: true, users: true, devices: true, groups: true, shifts: true}
	case ModeSites:
		return plan{sites: true}
	case ModeUsers:
		return plan{users: true, devices: true}
	case ModeUsersOnly:
		return plan{users: true}
	case ModeDevices:
		return plan{devices: true}
	case ModeGroups:
		return plan{groups: true, shifts: true}
	case ModeGroupsOnly:
		return plan{groups: true}
	case ModeShifts:
		return plan{shifts: true}
	}
	return plan{}
}

// Engine drives one restore run: load each selected kind in dependency
// order, apply every record through its upserter, and aggregate outcomes.
// Strictly sequential; a record is never upserted before its dependencies'
// creates have returned and been cached.
type Engine struct {
	cfg    *config.Config
	dir    directory.Directory
	res    *resolver.Resolver
	reader *capture.Reader
	log    logger.Logger

	pending []pendingSupervisors
}

func New(cfg *config.Config, dir directory.Directory, log logger.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		dir:    dir,
		res:    resolver.New(dir, log),
		reader: capture.NewReader(cfg),
		log:    log,
	}
}

// Run executes the mode's plan and returns the run report. The returned
// error is non-nil only for cancellation; every per-record and per-kind
// failure is captured in the report instead.
func (e *Engine) Run(ctx context.Context, mode Mode) (*Report, error) {
	p := mode.plan()
	report := NewReport(string(mode), e.cfg.Instance, e.cfg.DryRun)
	defer report.Finish()

	steps := []struct {
		selected bool
		run      func(context.Context, *Report) error
	}{
		{p.sites, e.runSites},
		{p.users, func(ctx context.Context, r *Report) error { return e.runUsers(ctx, r, p.devices) }},
		{p.devices && !p.users, e.runDevices},
		{p.groups, e.runGroups},
		{p.shifts, e.runShifts},
	}
	for _, step := range steps {
		if !step.selected {
			continue
		}
		if err := step.run(ctx, report); err != nil {
			report.AddNote("run cancelled; report covers records processed before cancellation")
			return report, err
		}
	}
	return report, nil
}

func (e *Engine) runSites(ctx context.Context, report *Report) error {
	records, err := e.reader.Read(capture.FileSites)
	if err != nil {
		e.log.Error("cannot load sites", "kind", capture.KindSite, "error", err)
		report.AddKindError(capture.KindSite, err)
		return nil
	}

	bar := e.bar(len(records), "Restoring sites")
	defer bar.Finish()
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		report.Add(e.restoreSite(ctx, rec))
		bar.Add(1)
	}
	return nil
}

func (e *Engine) runUsers(ctx context.Context, report *Report, includeDevices bool) error {
	records, err := e.reader.Read(capture.FileUsers)
	if err != nil {
		e.log.Error("cannot load users", "kind", capture.KindUser, "error", err)
		report.AddKindError(capture.KindUser, err)
		return nil
	}

	bar := e.bar(len(records), "Restoring users")
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			bar.Finish()
			return err
		}
		for _, event := range e.restoreUser(ctx, rec, includeDevices) {
			report.Add(event)
		}
		bar.Add(1)
	}
	bar.Finish()

	// Second pass: supervisors may appear anywhere in the capture file, so
	// they are applied only after every user exists.
	for _, p := range e.pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		if event, fail := e.applySupervisors(ctx, report, p); fail {
			report.Add(event)
		}
	}
	e.pending = nil
	return nil
}

// runDevices restores devices from the users file without re-upserting the
// users; owners resolve against whatever the target already has.
func (e *Engine) runDevices(ctx context.Context, report *Report) error {
	records, err := e.reader.Read(capture.FileUsers)
	if err != nil {
		e.log.Error("cannot load users for device restore", "kind", capture.KindDevice, "error", err)
		report.AddKindError(capture.KindDevice, err)
		return nil
	}

	bar := e.bar(len(records), "Restoring devices")
	defer bar.Finish()
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		bar.Add(1)

		targetName := rec.Str("targetName")
		if targetName == "" || len(rec.Children) == 0 {
			continue
		}
		ownerID, err := e.res.Resolve(ctx, capture.KindUser, targetName)
		if err != nil {
			for _, dev := range rec.Children {
				report.Add(failed(capture.KindDevice,
					directory.CompositeKey(targetName, dev.Str("name")), err))
			}
			continue
		}
		for _, dev := range rec.Children {
			for _, event := range e.restoreDevice(ctx, ownerID, targetName, dev) {
				report.Add(event)
			}
		}
	}
	return nil
}

func (e *Engine) runGroups(ctx context.Context, report *Report) error {
	records, err := e.reader.Read(capture.FileGroups)
	if err != nil {
		e.log.Error("cannot load groups", "kind", capture.KindGroup, "error", err)
		report.AddKindError(capture.KindGroup, err)
		return nil
	}

	bar := e.bar(len(records), "Restoring groups")
	defer bar.Finish()
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		report.Add(e.restoreGroup(ctx, rec))
		bar.Add(1)
	}
	return nil
}

// runShifts restores shifts from the groups file, then walks the groups
// again to append shift members; members may reference groups that only
// exist once every shift of the run is in place.
func (e *Engine) runShifts(ctx context.Context, report *Report) error {
	records, err := e.reader.Read(capture.FileGroups)
	if err != nil {
		e.log.Error("cannot load groups for shift restore", "kind", capture.KindShift, "error", err)
		report.AddKindError(capture.KindShift, err)
		return nil
	}

	bar := e.bar(len(records), "Restoring shifts")
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			bar.Finish()
			return err
		}
		bar.Add(1)

		groupID, targetName, ok := e.resolveShiftGroup(ctx, report, rec)
		if !ok {
			continue
		}
		for _, event := range e.restoreShifts(ctx, groupID, targetName, rec.Children) {
			report.Add(event)
		}
	}
	bar.Finish()

	memberBar := e.bar(len(records), "Restoring shift members")
	defer memberBar.Finish()
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		memberBar.Add(1)

		if len(rec.Children) == 0 {
			continue
		}
		groupID, targetName, ok := e.resolveShiftGroup(ctx, nil, rec)
		if !ok {
			continue
		}
		for _, event := range e.restoreShiftMembers(ctx, groupID, targetName, rec.Children) {
			report.Add(event)
		}
	}
	return nil
}

// resolveShiftGroup finds the parent group of a captured group record's
// shifts. Failures are reported once, on the shift pass; the member pass
// passes a nil report to stay silent about the same group.
func (e *Engine) resolveShiftGroup(ctx context.Context, report *Report, rec capture.Record) (string, string, bool) {
	targetName := rec.Str("targetName")
	if targetName == "" {
		if report != nil {
			report.Add(failed(capture.KindShift, "?",
				xmerrors.NewValidationError("group record is missing the required targetName field")))
		}
		return "", "", false
	}
	groupID, err := e.res.Resolve(ctx, capture.KindGroup, targetName)
	if err != nil {
		if report != nil {
			for _, shift := range rec.Children {
				report.Add(failed(capture.KindShift,
					directory.CompositeKey(targetName, shift.Str("name")), err))
			}
		}
		return "", "", false
	}
	return groupID, targetName, true
}

func (e *Engine) bar(total int, description string) *progress.Bar {
	return progress.NewBar(total, description, !e.cfg.NoProgress && !e.cfg.JSONReport)
}

package restore

import (
	"context"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/capture"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/fs"
)

// Preflight verifies the target instance is reachable with the configured
// credentials before any record is touched, and warns about capture files
// the mode will need but cannot find. Missing files are not fatal here; the
// run reports them per kind.
func (e *Engine) Preflight(ctx context.Context, mode Mode) error {
	if err := e.dir.Ping(ctx); err != nil {
		return err
	}
	e.log.Info("target instance is reachable", "url", e.cfg.XmodURL)

	p := mode.plan()
	files := map[capture.FileKind]bool{
		capture.FileSites:  p.sites,
		capture.FileUsers:  p.users || p.devices,
		capture.FileGroups: p.groups || p.shifts,
	}
	for kind, needed := range files {
		if !needed {
			continue
		}
		path := e.reader.Filename(kind)
		if ok, err := fs.Exists(path); err != nil || !ok {
			e.log.Warn("capture file not found", "detail", path)
		}
	}
	return nil
}

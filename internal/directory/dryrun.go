package directory

import (
	"context"

	"github.com/google/uuid"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/capture"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/logger"
)

// DryRun wraps a Directory, delegating reads while swallowing every write.
// Writes fabricate uuid RemoteIds so the engine's resolution cache behaves as
// it would on a real run, letting later records resolve their references.
type DryRun struct {
	inner Directory
	log   logger.Logger
}

// NewDryRun creates a dry-run wrapper around a real directory.
func NewDryRun(inner Directory, log logger.Logger) *DryRun {
	return &DryRun{inner: inner, log: log}
}

func (d *DryRun) Ping(ctx context.Context) error {
	return d.inner.Ping(ctx)
}

func (d *DryRun) FindByKey(ctx context.Context, kind capture.Kind, key string) (string, error) {
	return d.inner.FindByKey(ctx, kind, key)
}

func (d *DryRun) Upsert(ctx context.Context, kind capture.Kind, body map[string]any) (Result, error) {
	_, hasID := body["id"]
	id, _ := body["id"].(string)
	if id == "" {
		id = uuid.NewString()
	}
	d.log.Info("DRY-RUN: would upsert", "kind", kind, "id", id, "outcome", createdLabel(!hasID))
	return Result{ID: id, Created: !hasID}, nil
}

func (d *DryRun) Delete(ctx context.Context, kind capture.Kind, key string) error {
	d.log.Info("DRY-RUN: would delete", "kind", kind, "key", key)
	return nil
}

func (d *DryRun) AddShiftMember(ctx context.Context, groupID, shiftName string, member map[string]any) (string, error) {
	d.log.Info("DRY-RUN: would add shift member", "kind", capture.KindShift,
		"key", CompositeKey(groupID, shiftName))
	return uuid.NewString(), nil
}

func createdLabel(created bool) string {
	if created {
		return "create"
	}
	return "update"
}

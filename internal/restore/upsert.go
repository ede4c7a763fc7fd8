package restore

import (
	"context"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/capture"
	xmerrors "github.com/xmatters/xm-labs-restore-instance-data/internal/errors"
)

// applyKeyed runs the create-or-update flow shared by every kind: look the
// business key up (cache first), carry the existing id on the body when the
// target already has the entity, upsert, and write the resulting id through
// to the resolution cache. Capture ids never survive into the body; the
// target regenerates them.
func (e *Engine) applyKeyed(ctx context.Context, kind capture.Kind, key string, body map[string]any) (Event, string) {
	delete(body, "id")

	existingID, err := e.res.Resolve(ctx, kind, key)
	switch {
	case err == nil:
		body["id"] = existingID
	case isUnresolved(err):
		// Absent on the target: create.
	default:
		return failed(kind, key, err), ""
	}

	result, err := e.dir.Upsert(ctx, kind, body)
	if err != nil {
		return failed(kind, key, err), ""
	}
	e.res.Put(kind, key, result.ID)

	if result.Created {
		e.log.Info("created "+string(kind), "kind", kind, "key", key, "id", result.ID)
		return created(kind, key), result.ID
	}
	e.log.Info("updated "+string(kind), "kind", kind, "key", key, "id", result.ID)
	return updated(kind, key), result.ID
}

func isUnresolved(err error) bool {
	return xmerrors.GetCode(err) == xmerrors.ErrCodeUnresolvedRef
}

func isNotImplemented(err error) bool {
	return xmerrors.GetCode(err) == xmerrors.ErrCodeNotImplemented
}

// flattenNames turns a {total, data:[{name}]} envelope into a plain name list.
func flattenNames(v any) []string {
	var names []string
	for _, item := range capture.EnvelopeData(v) {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := obj["name"].(string); ok {
			names = append(names, name)
		}
	}
	return names
}

// flattenTargetNames turns a {total, data:[{targetName}]} envelope into a
// plain targetName list.
func flattenTargetNames(v any) []string {
	var names []string
	for _, item := range capture.EnvelopeData(v) {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := obj["targetName"].(string); ok {
			names = append(names, name)
		}
	}
	return names
}

// resolveAll resolves a list of user targetNames, returning the ids that
// resolved and the targetNames that did not.
func (e *Engine) resolveAll(ctx context.Context, kind capture.Kind, keys []string) (ids, missing []string) {
	for _, key := range keys {
		id, err := e.res.Resolve(ctx, kind, key)
		if err != nil {
			missing = append(missing, key)
			continue
		}
		ids = append(ids, id)
	}
	return ids, missing
}

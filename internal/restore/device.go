package restore

import (
	"context"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/capture"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/directory"
	xmerrors "github.com/xmatters/xm-labs-restore-instance-data/internal/errors"
)

// restoreDevice applies one captured device for an already-resolved owner,
// then its embedded timeframes. The captured targetName ("owner|name") is
// the business key but never part of the body; the target derives it.
func (e *Engine) restoreDevice(ctx context.Context, ownerID, ownerTargetName string, rec capture.Record) []Event {
	name := rec.Str("name")
	if name == "" {
		return []Event{failed(capture.KindDevice, ownerTargetName+"|?", xmerrors.NewValidationError("device record is missing the required name field"))}
	}
	key := directory.CompositeKey(ownerTargetName, name)

	body := rec.CloneFields()
	delete(body, "targetName")
	delete(body, "links")
	body["owner"] = ownerID

	event, deviceID := e.applyKeyed(ctx, capture.KindDevice, key, body)
	events := []Event{event}
	if event.Status == StatusFailed {
		return events
	}

	for _, tf := range rec.Children {
		events = append(events, e.restoreTimeframe(ctx, deviceID, tf))
	}
	return events
}

// restoreTimeframe applies one timeframe under its parent device. The body
// carries the parent id for the directory to route on.
func (e *Engine) restoreTimeframe(ctx context.Context, deviceID string, rec capture.Record) Event {
	name := rec.Str("name")
	if name == "" {
		return failed(capture.KindTimeframe, deviceID+"|?", xmerrors.NewValidationError("timeframe record is missing the required name field"))
	}
	key := directory.CompositeKey(deviceID, name)

	body := rec.CloneFields()
	delete(body, "links")
	body["device"] = deviceID

	event, _ := e.applyKeyed(ctx, capture.KindTimeframe, key, body)
	return event
}

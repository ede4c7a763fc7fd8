package restore

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/capture"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/directory"
	xmerrors "github.com/xmatters/xm-labs-restore-instance-data/internal/errors"
)

// newGroupDefaultShift is the shift the target auto-creates with every new
// group. When the captured group never had one, the auto-created copy is
// removed after the captured shifts are applied.
const newGroupDefaultShift = "24x7 Shift"

// recipientGroup is the recipientType marking a group recipient in a shift
// member; anything else resolves against users.
const recipientGroup = "GROUP"

// restoreShifts applies a group's captured shifts in rotation order. The
// target cannot update a shift in place, so a same-name shift is deleted
// first and the shift re-created; that round-trip reports as Updated. A
// create the target answers with "not implemented" means the shift already
// exists and cannot be replaced, reported as Skipped.
func (e *Engine) restoreShifts(ctx context.Context, groupID, groupTargetName string, shifts []capture.Record) []Event {
	var events []Event
	hadDefault := false

	for _, shift := range shifts {
		name := shift.Str("name")
		if name == "" {
			events = append(events, failed(capture.KindShift, groupTargetName+"|?",
				xmerrors.NewValidationError("shift record is missing the required name field")))
			continue
		}
		if name == newGroupDefaultShift {
			hadDefault = true
		}
		key := directory.CompositeKey(groupID, name)
		displayKey := directory.CompositeKey(groupTargetName, name)

		_, err := e.res.Resolve(ctx, capture.KindShift, key)
		existed := err == nil
		if existed {
			if err := e.deleteShift(ctx, groupID, name); err != nil {
				events = append(events, failed(capture.KindShift, displayKey, err))
				continue
			}
		}

		body := shift.CloneFields()
		delete(body, "group")
		delete(body, "links")
		delete(body, "members")
		body["group"] = groupID

		result, err := e.dir.Upsert(ctx, capture.KindShift, body)
		switch {
		case isNotImplemented(err):
			e.log.Info("shift already exists, skipping", "kind", capture.KindShift, "key", displayKey)
			events = append(events, skipped(capture.KindShift, displayKey, "shift already exists on target"))
			continue
		case err != nil:
			events = append(events, failed(capture.KindShift, displayKey, err))
			continue
		}
		e.res.Put(capture.KindShift, key, result.ID)

		if existed {
			e.log.Info("recreated shift", "kind", capture.KindShift, "key", displayKey, "id", result.ID)
			events = append(events, updated(capture.KindShift, displayKey))
		} else {
			e.log.Info("created shift", "kind", capture.KindShift, "key", displayKey, "id", result.ID)
			events = append(events, created(capture.KindShift, displayKey))
		}
	}

	if !hadDefault {
		if event, cleaned := e.cleanupDefaultShift(ctx, groupID, groupTargetName); cleaned {
			events = append(events, event)
		}
	}
	return events
}

// deleteShift removes one shift and drops its cache entry. An already-gone
// shift is not an error.
func (e *Engine) deleteShift(ctx context.Context, groupID, name string) error {
	key := directory.CompositeKey(groupID, name)
	err := e.dir.Delete(ctx, capture.KindShift, key)
	if err != nil && !stderrors.Is(err, directory.ErrNotFound) {
		return err
	}
	e.res.Forget(capture.KindShift, key)
	return nil
}

// cleanupDefaultShift removes the auto-created default shift from a group
// whose capture never had one. Checked against the live target, not the
// cache; the shift only exists when the group was created this run.
func (e *Engine) cleanupDefaultShift(ctx context.Context, groupID, groupTargetName string) (Event, bool) {
	key := directory.CompositeKey(groupID, newGroupDefaultShift)
	if _, err := e.dir.FindByKey(ctx, capture.KindShift, key); err != nil {
		return Event{}, false
	}
	displayKey := directory.CompositeKey(groupTargetName, newGroupDefaultShift)
	if err := e.deleteShift(ctx, groupID, newGroupDefaultShift); err != nil {
		return failed(capture.KindShift, displayKey, err), true
	}
	e.log.Info("removed auto-created default shift", "kind", capture.KindShift, "key", displayKey)
	return skipped(capture.KindShift, displayKey, "auto-created default shift removed"), true
}

// restoreShiftMembers is the second pass over a group's shifts: each
// captured member's recipient is rewritten from targetName to the id the
// target assigned this run, then appended to the shift's rotation. A member
// that fails resolves or posts individually; the shift itself stands.
func (e *Engine) restoreShiftMembers(ctx context.Context, groupID, groupTargetName string, shifts []capture.Record) []Event {
	var events []Event

	for _, shift := range shifts {
		name := shift.Str("name")
		if name == "" {
			continue
		}
		displayKey := directory.CompositeKey(groupTargetName, name)

		members, _ := shift.Fields["members"].([]any)
		for _, raw := range members {
			captured, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			member := make(map[string]any, len(captured))
			for k, v := range captured {
				member[k] = v
			}
			delete(member, "shift")

			recipient, _ := member["recipient"].(map[string]any)
			recipType, _ := recipient["recipientType"].(string)
			recipTarget, _ := recipient["targetName"].(string)
			if recipTarget == "" {
				events = append(events, failed(capture.KindShift, displayKey,
					xmerrors.NewValidationError("shift member is missing its recipient targetName")))
				continue
			}

			recipKind := capture.KindUser
			if recipType == recipientGroup {
				recipKind = capture.KindGroup
			}
			recipID, err := e.res.Resolve(ctx, recipKind, recipTarget)
			if err != nil {
				events = append(events, Event{
					Kind:   capture.KindShift,
					Key:    displayKey,
					Status: StatusFailed,
					Reason: fmt.Sprintf("member %q: %s", recipTarget, reasonOf(err)),
				})
				continue
			}
			member["recipient"] = map[string]any{
				"recipientType": recipType,
				"id":            recipID,
			}

			if _, err := e.dir.AddShiftMember(ctx, groupID, name, member); err != nil {
				events = append(events, Event{
					Kind:   capture.KindShift,
					Key:    displayKey,
					Status: StatusFailed,
					Reason: fmt.Sprintf("member %q: %s", recipTarget, reasonOf(err)),
				})
				continue
			}
			e.log.Info("added shift member", "kind", capture.KindShift, "key", displayKey, "detail", recipTarget)
		}
	}
	return events
}

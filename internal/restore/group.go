package restore

import (
	"context"
	"fmt"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/capture"
	xmerrors "github.com/xmatters/xm-labs-restore-instance-data/internal/errors"
)

// restoreGroup applies one captured group. Observers are never posted back;
// the target's API cannot restore them. The site reference is optional and
// dropped when it no longer resolves; supervisors resolve inline because
// every user already exists by the time groups run.
func (e *Engine) restoreGroup(ctx context.Context, rec capture.Record) Event {
	targetName := rec.Str("targetName")
	if targetName == "" {
		return failed(capture.KindGroup, "?", xmerrors.NewValidationError("group record is missing the required targetName field"))
	}

	body := rec.CloneFields()
	delete(body, "links")

	var notes []string
	if _, ok := body["observers"]; ok {
		delete(body, "observers")
		e.log.Info("observers are not restorable; dropped", "kind", capture.KindGroup, "key", targetName)
		notes = append(notes, "observers not restored")
	}

	if siteName := siteNameOf(body["site"]); siteName != "" {
		siteID, err := e.res.Resolve(ctx, capture.KindSite, siteName)
		if err != nil {
			delete(body, "site")
			e.log.Warn("group site not found; dropped", "kind", capture.KindGroup, "key", targetName, "detail", siteName)
			notes = append(notes, fmt.Sprintf("site %q not found; dropped", siteName))
		} else {
			body["site"] = siteID
		}
	}

	if supervisors := flattenTargetNames(body["supervisors"]); len(supervisors) > 0 {
		ids, missing := e.resolveAll(ctx, capture.KindUser, supervisors)
		for _, m := range missing {
			e.log.Warn("group supervisor not found; dropped", "kind", capture.KindGroup, "key", targetName, "detail", m)
			notes = append(notes, fmt.Sprintf("supervisor %q not found; dropped", m))
		}
		if len(ids) > 0 {
			body["supervisors"] = ids
		} else {
			delete(body, "supervisors")
		}
	} else {
		delete(body, "supervisors")
	}

	event, _ := e.applyKeyed(ctx, capture.KindGroup, targetName, body)
	for _, n := range notes {
		event = event.withNote(n)
	}
	return event
}

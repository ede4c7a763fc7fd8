package restore

import (
	"context"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/capture"
	xmerrors "github.com/xmatters/xm-labs-restore-instance-data/internal/errors"
)

// roleCompanyAdmin marks the internal users the target manages itself;
// posting one back is always rejected, so they are skipped up front.
const roleCompanyAdmin = "Company Admin"

// pendingSupervisors is a user whose supervisor links are applied in a
// second pass, once every user of the run exists on the target.
type pendingSupervisors struct {
	userID      string
	targetName  string
	supervisors []string
}

// restoreUser applies one captured user, then its embedded devices when the
// mode asks for them. Supervisor references are held back for the second
// pass because a supervisor may appear later in the capture file.
func (e *Engine) restoreUser(ctx context.Context, rec capture.Record, includeDevices bool) []Event {
	targetName := rec.Str("targetName")
	if targetName == "" {
		return []Event{failed(capture.KindUser, "?", xmerrors.NewValidationError("user record is missing the required targetName field"))}
	}

	roles := flattenNames(rec.Fields["roles"])
	for _, role := range roles {
		if role == roleCompanyAdmin {
			e.log.Warn("skipping internal user", "kind", capture.KindUser, "key", targetName, "detail", "holds the Company Admin role")
			return []Event{skipped(capture.KindUser, targetName, "internal user holding the Company Admin role")}
		}
	}

	body := rec.CloneFields()
	delete(body, "links")
	body["roles"] = roles

	siteName := siteNameOf(body["site"])
	if siteName == "" {
		return []Event{failed(capture.KindUser, targetName, xmerrors.NewValidationError("user record is missing the required site reference"))}
	}
	siteID, err := e.res.Resolve(ctx, capture.KindSite, siteName)
	if err != nil {
		return []Event{failed(capture.KindUser, targetName, err)}
	}
	body["site"] = siteID

	supervisors := flattenTargetNames(body["supervisors"])
	body["supervisors"] = []string{}

	event, userID := e.applyKeyed(ctx, capture.KindUser, targetName, body)
	events := []Event{event}
	if event.Status == StatusFailed {
		return events
	}

	if len(supervisors) > 0 {
		e.pending = append(e.pending, pendingSupervisors{userID: userID, targetName: targetName, supervisors: supervisors})
	}

	if includeDevices {
		for _, dev := range rec.Children {
			events = append(events, e.restoreDevice(ctx, userID, targetName, dev)...)
		}
	}
	return events
}

// applySupervisors is the second pass: resolve each supervisor targetName
// and post the id list back onto the user. The user already has its
// first-pass event, so this pass only records run notes for dropped
// supervisors; the returned event is meaningful only when the update
// itself fails.
func (e *Engine) applySupervisors(ctx context.Context, report *Report, p pendingSupervisors) (Event, bool) {
	ids, missing := e.resolveAll(ctx, capture.KindUser, p.supervisors)

	for _, m := range missing {
		e.log.Warn("supervisor not found", "kind", capture.KindUser, "key", p.targetName, "detail", m)
		report.AddNote("user %s: supervisor %q not found; dropped", p.targetName, m)
	}
	if len(ids) == 0 {
		report.AddNote("user %s: no resolvable supervisors; supervisor links left unset", p.targetName)
		return Event{}, false
	}

	body := map[string]any{
		"id":          p.userID,
		"targetName":  p.targetName,
		"supervisors": ids,
	}
	if _, err := e.dir.Upsert(ctx, capture.KindUser, body); err != nil {
		return failed(capture.KindUser, p.targetName, err), true
	}
	e.log.Info("updated user supervisors", "kind", capture.KindUser, "key", p.targetName)
	return Event{}, false
}

// siteNameOf digs the site name out of the captured form, a {name: ...}
// object (users) or a plain string (groups).
func siteNameOf(v any) string {
	switch site := v.(type) {
	case string:
		return site
	case map[string]any:
		name, _ := site["name"].(string)
		return name
	}
	return ""
}

package restore

import (
	"context"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/capture"
	xmerrors "github.com/xmatters/xm-labs-restore-instance-data/internal/errors"
)

// restoreSite applies one captured site. Sites carry no foreign references,
// so this is the plain keyed upsert.
func (e *Engine) restoreSite(ctx context.Context, rec capture.Record) Event {
	name := rec.Str("name")
	if name == "" {
		return failed(capture.KindSite, "?", xmerrors.NewValidationError("site record is missing the required name field"))
	}

	body := rec.CloneFields()
	delete(body, "links")

	event, _ := e.applyKeyed(ctx, capture.KindSite, name, body)
	return event
}

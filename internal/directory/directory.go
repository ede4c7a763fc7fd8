// Package directory is the thin shim over the target instance's REST API.
// The restore engine talks to the Directory interface only; retry policy,
// authentication, and URL layout all live here.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/capture"
)

// ErrNotFound is returned by FindByKey when the target has no entity under
// the given business key.
var ErrNotFound = errors.New("entity not found on target")

// Result is the outcome of an upsert: the identifier the target assigned and
// whether the call created a new entity or replaced an existing one.
type Result struct {
	ID      string
	Created bool
}

// Directory is the remote directory capability consumed by the engine.
// FindByKey looks an entity up by business key; Upsert creates or replaces
// by posted body; Delete removes (shifts only, pre-create); AddShiftMember
// appends one member to an existing shift's rotation.
type Directory interface {
	Ping(ctx context.Context) error
	FindByKey(ctx context.Context, kind capture.Kind, key string) (string, error)
	Upsert(ctx context.Context, kind capture.Kind, body map[string]any) (Result, error)
	Delete(ctx context.Context, kind capture.Kind, key string) error
	AddShiftMember(ctx context.Context, groupID, shiftName string, member map[string]any) (string, error)
}

// CompositeKey joins a parent identifier and a child name into the business
// key form used for shifts ("groupID|name"), timeframes and devices.
func CompositeKey(parent, name string) string {
	return parent + "|" + name
}

// SplitCompositeKey is the inverse of CompositeKey.
func SplitCompositeKey(key string) (parent, name string, err error) {
	parent, name, ok := strings.Cut(key, "|")
	if !ok || parent == "" || name == "" {
		return "", "", fmt.Errorf("malformed composite key %q", key)
	}
	return parent, name, nil
}

// Package resolver maps business keys to the RemoteIds the target instance
// assigned, caching both hits and misses for the duration of one run.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/patrickmn/go-cache"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/capture"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/directory"
	xmerrors "github.com/xmatters/xm-labs-restore-instance-data/internal/errors"
	"github.com/xmatters/xm-labs-restore-instance-data/internal/logger"
)

// notFound marks a cached negative lookup. Within one run an absent key stays
// absent until a create writes through.
type notFound struct{}

// Resolver is a cache-plus-lookup over the remote directory. It never invents
// identifiers: a key resolves to the cached id, the live id, or not at all.
type Resolver struct {
	dir   directory.Directory
	cache *cache.Cache
	log   logger.Logger
}

// New creates a resolver over dir. Entries live for the whole run.
func New(dir directory.Directory, log logger.Logger) *Resolver {
	return &Resolver{
		dir:   dir,
		cache: cache.New(cache.NoExpiration, 0),
		log:   log,
	}
}

func cacheKey(kind capture.Kind, key string) string {
	// \x00 cannot appear in a business key, unlike '|'
	return string(kind) + "\x00" + key
}

// Resolve returns the RemoteId for (kind, key): cache first, then a live
// lookup, caching the outcome either way. A key absent from both yields an
// UnresolvedReference error; the caller decides whether that is fatal.
func (r *Resolver) Resolve(ctx context.Context, kind capture.Kind, key string) (string, error) {
	ck := cacheKey(kind, key)

	if v, ok := r.cache.Get(ck); ok {
		if _, miss := v.(notFound); miss {
			return "", unresolved(kind, key)
		}
		id := v.(string)
		r.log.Debug("Resolved from cache", "kind", kind, "key", key, "id", id)
		return id, nil
	}

	id, err := r.dir.FindByKey(ctx, kind, key)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			r.cache.Set(ck, notFound{}, cache.NoExpiration)
			return "", unresolved(kind, key)
		}
		return "", err
	}

	r.cache.Set(ck, id, cache.NoExpiration)
	r.log.Debug("Resolved via live lookup", "kind", kind, "key", key, "id", id)
	return id, nil
}

// Forget drops a cached entry, eg. after the entity is deleted on the target.
func (r *Resolver) Forget(kind capture.Kind, key string) {
	r.cache.Delete(cacheKey(kind, key))
}

// Put records the RemoteId a successful create or update returned,
// overwriting any cached negative so later records in the run resolve it.
func (r *Resolver) Put(kind capture.Kind, key, id string) {
	r.cache.Set(cacheKey(kind, key), id, cache.NoExpiration)
}

func unresolved(kind capture.Kind, key string) error {
	return xmerrors.NewReferenceError(
		fmt.Sprintf("%s %q not found in this run or on the target", kind, key))
}

// Package lock serialises work per key, in-process or across instances via Redis.
package lock

import (
	"context"
	"errors"
	"sort"
)

var ErrTimeout = errors.New("timed out waiting for lock")

// Locker grants exclusive access to a key until release is called.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// ResourceKey is the lock key guarding allocations of one resource.
func ResourceKey(resourceID string) string {
	return "resource_lock:" + resourceID
}

// AcquireAll takes every key in sorted order, skipping duplicates, so two
// callers asking for overlapping sets never deadlock. On failure nothing
// stays held.
func AcquireAll(ctx context.Context, l Locker, keys []string) (func(), error) {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	releases := make([]func(), 0, len(sorted))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}

	for i, key := range sorted {
		if i > 0 && key == sorted[i-1] {
			continue
		}
		release, err := l.Acquire(ctx, key)
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, release)
	}
	return releaseAll, nil
}

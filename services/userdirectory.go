package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"golang.org/x/sync/singleflight"

	"teamboard/model"
	"teamboard/repository"
)

// SummaryCache is the subset of cache.Cache used for user summaries.
type SummaryCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// UserDirectory resolves user ids to display summaries for task population.
// Reads go through the cache when one is configured; the misses are loaded in
// one batch and concurrent identical batches share a single repository call.
type UserDirectory struct {
	users repository.UserRepository
	cache SummaryCache
	group singleflight.Group
}

func NewUserDirectory(users repository.UserRepository, cache SummaryCache) *UserDirectory {
	return &UserDirectory{users: users, cache: cache}
}

func summaryKey(id string) string {
	return "user:" + id
}

// Summaries returns the summaries of the ids that resolve. Unknown ids are
// absent from the result.
func (d *UserDirectory) Summaries(ctx context.Context, ids []string) (map[string]model.UserSummary, error) {
	result := make(map[string]model.UserSummary, len(ids))
	var missing []string

	for _, id := range dedupe(ids) {
		if d.cache == nil {
			missing = append(missing, id)
			continue
		}
		var s model.UserSummary
		found, err := d.cache.Get(ctx, summaryKey(id), &s)
		if err != nil {
			log.Printf("[user] Warning: summary cache read failed for %s: %v", id, err)
		}
		if found {
			result[id] = s
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return result, nil
	}

	found, err := d.load(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, summary := range found {
		result[id] = summary
		if d.cache != nil {
			if err := d.cache.Set(ctx, summaryKey(id), summary); err != nil {
				log.Printf("[user] Warning: failed to cache summary for %s: %v", id, err)
			}
		}
	}
	return result, nil
}

// load reads ids from the repository in one batch. Concurrent loads of the
// same id set share the call; it is detached from the first caller's
// cancellation so the other waiters are not failed by it.
func (d *UserDirectory) load(ctx context.Context, ids []string) (map[string]model.UserSummary, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	shared := context.WithoutCancel(ctx)

	v, err, _ := d.group.Do(strings.Join(sorted, ","), func() (any, error) {
		users, err := d.users.FindByIDs(shared, sorted)
		if err != nil {
			return nil, err
		}
		found := make(map[string]model.UserSummary, len(users))
		for _, u := range users {
			found[u.UserID] = u.Summary()
		}
		return found, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: resolve users: %v", model.ErrStoreFailure, err)
	}
	return v.(map[string]model.UserSummary), nil
}

// Exists reports whether id resolves to a user, bypassing the cache.
func (d *UserDirectory) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := d.users.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", model.ErrStoreFailure, err)
	}
	return true, nil
}

// Invalidate drops a cached summary after the user changed.
func (d *UserDirectory) Invalidate(ctx context.Context, id string) {
	if d.cache == nil {
		return
	}
	if err := d.cache.Delete(ctx, summaryKey(id)); err != nil {
		log.Printf("[user] Warning: failed to invalidate summary for %s: %v", id, err)
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

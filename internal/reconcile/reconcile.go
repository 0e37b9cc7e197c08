// Package reconcile merges records derived from the remote feed into the
// records loaded from the local todo.txt file.
package reconcile

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/Tiliavir/gitlab-todotxt-sync/internal/config"
	"github.com/Tiliavir/gitlab-todotxt-sync/internal/model"
	"github.com/Tiliavir/gitlab-todotxt-sync/internal/todotxt"
)

// IDKey is the data tag key holding the external identifier.
const IDKey = "id"

// ErrNoID is returned by ID for records without an id tag.
var ErrNoID = errors.New("record is missing an id data tag")

// Result holds counters for a merge.
type Result struct {
	New       int
	Updated   int
	Unchanged int
	Removed   int
}

// ID returns the external identifier stored in the record's id:<n> tag.
func ID(r model.Record) (uint64, error) {
	raw, ok := todotxt.GetData(r, IDKey)
	if !ok {
		return 0, ErrNoID
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("couldn't parse id %q: %w", raw, err)
	}
	return id, nil
}

// Merge reconciles local against incoming and returns the new list.
//
// Local records without a usable id are kept as they are. Records whose id is
// in incoming are replaced when they differ; records whose id is not are
// dropped. Incoming records that matched nothing are appended in id order,
// done ones only under PolicyAdd. Neither argument is modified.
func Merge(local []model.Record, incoming map[uint64]model.Record, policy config.DonePolicy, logger *slog.Logger) ([]model.Record, Result) {
	if logger == nil {
		logger = slog.Default()
	}

	var res Result
	seen := make(map[uint64]bool, len(incoming))
	out := make([]model.Record, 0, len(local)+len(incoming))

	for _, rec := range local {
		id, err := ID(rec)
		if err != nil {
			logger.Warn("keeping record without usable id", "error", err, "record", todotxt.Format(rec))
			out = append(out, rec.Clone())
			continue
		}
		remote, ok := incoming[id]
		if !ok || seen[id] {
			logger.Debug("removing record", "id", id)
			res.Removed++
			continue
		}
		seen[id] = true
		if rec.Equal(remote) {
			res.Unchanged++
			out = append(out, rec.Clone())
			continue
		}
		logger.Debug("updating record", "id", id)
		res.Updated++
		out = append(out, remote.Clone())
	}

	ids := make([]uint64, 0, len(incoming))
	for id := range incoming {
		if !seen[id] {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	res.New = len(ids)

	for _, id := range ids {
		rec := incoming[id]
		if rec.Done && policy != config.PolicyAdd {
			logger.Debug("skipping done record", "id", id, "policy", policy)
			continue
		}
		out = append(out, rec.Clone())
	}
	return out, res
}

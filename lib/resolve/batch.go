// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"errors"

	"github.com/ohchase/blizztools/lib/blte"
	"github.com/ohchase/blizztools/lib/hashid"
	"github.com/ohchase/blizztools/lib/manifest"
)

// Summary counts the outcomes of a batch resolution.
type Summary struct {
	Resolved int `json:"resolved"`

	// Unsupported counts keys whose containers use an encoding mode
	// this package does not decode.
	Unsupported int `json:"unsupported"`

	// Failed counts every other failure.
	Failed int `json:"failed"`
}

// Visit receives each key's outcome. Exactly one of data and err is
// set. Returning false stops the batch.
type Visit func(key hashid.ID, data []byte, err error) bool

// ResolveAll resolves keys in order and reports each outcome to visit.
// A failing key does not stop the batch. The returned error is set
// only when ctx ends the batch early.
func (r *Resolver) ResolveAll(ctx context.Context, encoding *manifest.Encoding, keys []hashid.ID, visit Visit) (Summary, error) {
	var summary Summary
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		data, err := r.ResolveContentKey(ctx, encoding, key)
		switch {
		case err == nil:
			summary.Resolved++
		case errors.Is(err, blte.ErrUnsupported):
			summary.Unsupported++
			r.logger().Warn("skipping object with unsupported encoding", "content_key", key, "error", err)
		default:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return summary, ctxErr
			}
			summary.Failed++
			r.logger().Warn("object failed to resolve", "content_key", key, "error", err)
		}

		if !visit(key, data, err) {
			break
		}
	}
	return summary, nil
}

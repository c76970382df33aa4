// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package cache

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/tasklane/internal/models"
)

// MergeMaps merges src into dst. Keys whose values are maps on both sides are
// merged recursively; every other value in src replaces the one in dst.
// src values are deep copied so dst never aliases the patch.
func MergeMaps(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[k] = MergeMaps(dstMap, srcMap)
			continue
		}
		if srcIsMap {
			dst[k] = models.DeepCopyMap(srcMap)
			continue
		}
		dst[k] = v
	}
	return dst
}

// DecodeObject decodes a JSON object keeping numbers as json.Number so that
// int64 identifiers survive a merge round trip.
func DecodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// applyPatch returns current with partial merged over it.
func applyPatch[V any](current V, partial map[string]any) (V, error) {
	var zero V

	data, err := json.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("marshal snapshot: %w", err)
	}
	base, err := DecodeObject(data)
	if err != nil {
		return zero, fmt.Errorf("decode snapshot: %w", err)
	}

	merged, err := json.Marshal(MergeMaps(base, partial))
	if err != nil {
		return zero, fmt.Errorf("marshal merged snapshot: %w", err)
	}

	var out V
	if err := json.Unmarshal(merged, &out); err != nil {
		return zero, fmt.Errorf("decode merged snapshot: %w", err)
	}
	return out, nil
}

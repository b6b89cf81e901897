// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package completion

import "embed"

//go:embed defaults/*.json
var defaultTreeFS embed.FS

// embeddedDefaultTrees returns the raw bytes of every bundled default
// completion tree, in filename order.
func embeddedDefaultTrees() [][]byte {
	entries, err := defaultTreeFS.ReadDir("defaults")
	if err != nil {
		return nil
	}
	out := make([][]byte, 0, len(entries))
	for _, e := range entries {
		raw, err := defaultTreeFS.ReadFile("defaults/" + e.Name())
		if err != nil {
			continue
		}
		out = append(out, raw)
	}
	return out
}

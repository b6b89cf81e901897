// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package editor

import "strings"

// computeGhost queries the history store for the best-frecent command
// starting with the current buffer and returns the suffix to render dim
// after the cursor (spec.md §4.F's ghost suggestion), or "" when no
// suggestion applies: the cursor isn't at end-of-line, the buffer is
// empty, or no history entry extends it.
func (m *model) computeGhost() string {
	if m.editor.History == nil {
		return ""
	}
	if m.cursor != len(m.buf) || m.buf == "" {
		return ""
	}

	best, ok := m.editor.History.SearchPrefixWithContext(m.buf, m.contextTag())
	if !ok || len(best) <= len(m.buf) {
		return ""
	}
	if !strings.HasPrefix(best, m.buf) {
		return ""
	}
	return best[len(m.buf):]
}

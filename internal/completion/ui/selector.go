// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package ui implements the completion engine's two interactive
// backends (spec.md §4.E): an inline grid that draws under the prompt,
// and a full-screen fuzzy finder. Both share the Selector contract so
// the input editor can swap one for the other (Tab vs Ctrl+R) without
// caring which is active.
package ui

import "github.com/staranto/dsh/internal/completion"

// Result is what a Selector returns once the user leaves it.
type Result struct {
	// Accepted is true when the user chose a candidate with Enter (or
	// with Tab on a single filtered match in the fuzzy finder), and when
	// the inline grid is given exactly one candidate, which it accepts
	// without showing the picker.
	Accepted bool
	Value    string

	// Cancelled is true when the selector closed without a choice: Esc,
	// Ctrl+C, an empty candidate list, or a carried key (see HasCarried).
	Cancelled bool

	// Carried holds a printable rune the user typed to dismiss the
	// selector mid-interaction (spec.md §4.E: "the interaction loop
	// converts any non-navigation key to 'cancelled with carried
	// input'"); the editor inserts it at the cursor. HasCarried is false
	// for both a plain Accepted and a plain Cancelled result.
	Carried    rune
	HasCarried bool
}

// Selector is the common contract both completion UI backends implement.
type Selector interface {
	// Select runs the interactive picker over candidates and blocks until
	// the user accepts, cancels, or carries input out of it.
	Select(candidates []completion.Candidate) Result
}

// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package shell

import "sort"

// NotFoundError reports that argv0 resolved to neither a builtin nor a
// PATH executable. Suggestions holds up to three candidate names within
// an edit-distance budget of max(2, 30% of len(argv0)).
type NotFoundError struct {
	Argv0       string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	msg := e.Argv0 + ": command not found"
	for i, s := range e.Suggestions {
		if i == 0 {
			msg += " (did you mean: " + s
		} else {
			msg += ", " + s
		}
	}
	if len(e.Suggestions) > 0 {
		msg += "?)"
	}
	return msg
}

// suggestionBudget returns the maximum edit distance a candidate may be
// from name and still be offered as a "did you mean" suggestion.
func suggestionBudget(name string) int {
	budget := len(name) * 30 / 100
	if budget < 2 {
		budget = 2
	}
	return budget
}

// suggest returns up to 3 candidates within name's edit-distance budget,
// nearest first.
func suggest(name string, candidates []string) []string {
	budget := suggestionBudget(name)

	type scored struct {
		name string
		dist int
	}
	var hits []scored
	seen := make(map[string]bool)
	for _, c := range candidates {
		if c == name || seen[c] {
			continue
		}
		seen[c] = true
		d := levenshtein(name, c)
		if d <= budget {
			hits = append(hits, scored{c, d})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].name < hits[j].name
	})

	out := make([]string, 0, 3)
	for i := 0; i < len(hits) && i < 3; i++ {
		out = append(out, hits[i].name)
	}
	return out
}

// levenshtein computes the classic edit distance between a and b using a
// two-row dynamic-programming table.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			curr[j] = m
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package expand

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandBracesNoCommaLeftLiteral(t *testing.T) {
	assert.Equal(t, "pre{a}post", ExpandBraces("pre{a}post"))
}

func TestExpandBracesCartesianList(t *testing.T) {
	got := ExpandBraces("echo pre{a,b,c}post")
	assert.Equal(t, "echo preapost prebpost precpost", got)
}

func TestExpandBracesAdjacentGroups(t *testing.T) {
	got := ExpandBraces("echo {a,b}{1,2}")
	assert.Equal(t, "echo a1 a2 b1 b2", got)
}

func TestExpandBracesNested(t *testing.T) {
	got := ExpandBraces("echo {a,b{c,d}}")
	assert.Equal(t, "echo a bc bd", got)
}

func TestExpandBracesEmptyAlternative(t *testing.T) {
	got := ExpandBraces("echo file{,.bak}")
	assert.Equal(t, "echo file file.bak", got)
}

func TestExpandBracesQuotedWordUntouched(t *testing.T) {
	got := ExpandBraces(`echo '{a,b}'`)
	assert.Equal(t, `echo '{a,b}'`, got)
}

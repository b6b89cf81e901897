// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package expand

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpanderFullPipeline(t *testing.T) {
	aliases := map[string]string{"ll": "ls -l"}
	vars := map[string]string{"USER": "ava"}
	exec := &fakeExecutor{outputs: map[string]string{"whoami": "ava\n"}}

	e := New(
		func(n string) (string, bool) { v, ok := aliases[n]; return v, ok },
		func(n string) (string, bool) { v, ok := vars[n]; return v, ok },
		exec,
		"/home/ava",
	)

	got, warnings := e.Expand(context.Background(), "ll ~/src/$USER-$(whoami)")
	assert.Empty(t, warnings)
	assert.Equal(t, "ls -l /home/ava/src/ava-ava", got)
}

func TestExpanderNilCollaboratorsPassThrough(t *testing.T) {
	e := New(nil, nil, nil, "")
	got, warnings := e.Expand(context.Background(), "echo {a,b}")
	assert.Empty(t, warnings)
	assert.Equal(t, "echo a b", got)
}

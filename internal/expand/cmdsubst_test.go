// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package expand

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExecutor struct {
	outputs map[string]string
	err     error
}

func (f *fakeExecutor) CaptureOutput(ctx context.Context, command string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.outputs[command], nil
}

func TestExpandCommandSubstitutionDollarParen(t *testing.T) {
	exec := &fakeExecutor{outputs: map[string]string{"date": "Sun\n"}}
	got, warnings := ExpandCommandSubstitution(context.Background(), "echo $(date)", exec)
	assert.Empty(t, warnings)
	assert.Equal(t, "echo Sun", got)
}

func TestExpandCommandSubstitutionBackticks(t *testing.T) {
	exec := &fakeExecutor{outputs: map[string]string{"date": "Sun\n"}}
	got, warnings := ExpandCommandSubstitution(context.Background(), "echo `date`", exec)
	assert.Empty(t, warnings)
	assert.Equal(t, "echo Sun", got)
}

func TestExpandCommandSubstitutionTrimsOnlyOneNewline(t *testing.T) {
	exec := &fakeExecutor{outputs: map[string]string{"two": "a\n\n"}}
	got, _ := ExpandCommandSubstitution(context.Background(), "echo $(two)", exec)
	assert.Equal(t, "echo a\n", got)
}

func TestExpandCommandSubstitutionDoesNotTouchArithmetic(t *testing.T) {
	exec := &fakeExecutor{}
	got, warnings := ExpandCommandSubstitution(context.Background(), "echo $((1+2))", exec)
	assert.Empty(t, warnings)
	assert.Equal(t, "echo $((1+2))", got)
}

func TestExpandCommandSubstitutionErrorYieldsWarning(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("boom")}
	got, warnings := ExpandCommandSubstitution(context.Background(), "echo $(bad)", exec)
	assert.NotEmpty(t, warnings)
	assert.Equal(t, "echo ", got)
}

func TestExpandCommandSubstitutionSingleQuotedUntouched(t *testing.T) {
	exec := &fakeExecutor{}
	got, warnings := ExpandCommandSubstitution(context.Background(), `echo '$(date)'`, exec)
	assert.Empty(t, warnings)
	assert.Equal(t, `echo '$(date)'`, got)
}

// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/dsh/internal/parser"
)

func literalSpan(s string) *parser.Span {
	return &parser.Span{Parts: []parser.SpanPart{{Kind: parser.PartBareword, Text: s}}}
}

func TestOpenRedirectsMissingInputFileErrorText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "does-not-exist")

	_, _, _, err := openRedirects([]*parser.Redirect{
		{Kind: parser.Input, Target: literalSpan(path)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input redirect file")
}

func TestOpenRedirectsInputOpensExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	stdin, stdout, stderr, err := openRedirects([]*parser.Redirect{
		{Kind: parser.Input, Target: literalSpan(path)},
	})
	require.NoError(t, err)
	defer closeIfSet(stdin)

	require.NotNil(t, stdin)
	assert.Nil(t, stdout)
	assert.Nil(t, stderr)

	buf := make([]byte, 5)
	n, _ := stdin.Read(buf)
	assert.Equal(t, "hello", string(buf[:n]))
}

func TestOpenRedirectsOutputTruncatesByDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("old contents"), 0o644))

	_, stdout, _, err := openRedirects([]*parser.Redirect{
		{Kind: parser.StdoutOutput, Target: literalSpan(path)},
	})
	require.NoError(t, err)
	defer closeIfSet(stdout)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, got, "> must truncate, not append")
}

func TestOpenRedirectsAppendPreservesContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("old-"), 0o644))

	_, stdout, _, err := openRedirects([]*parser.Redirect{
		{Kind: parser.StdoutAppend, Target: literalSpan(path)},
	})
	require.NoError(t, err)
	_, _ = stdout.WriteString("new")
	closeIfSet(stdout)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old-new", string(got))
}

func TestOpenRedirectsCombinedSharesOneFd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "combined.txt")

	_, stdout, stderr, err := openRedirects([]*parser.Redirect{
		{Kind: parser.StdoutErrOutput, Target: literalSpan(path)},
	})
	require.NoError(t, err)
	defer closeIfSet(stdout)

	require.NotNil(t, stdout)
	assert.Same(t, stdout, stderr, "&> must share a single fd between stdout and stderr")
}

func TestOpenRedirectsLaterOverridesEarlierSameStream(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.txt")
	second := filepath.Join(dir, "second.txt")

	_, stdout, _, err := openRedirects([]*parser.Redirect{
		{Kind: parser.StdoutOutput, Target: literalSpan(first)},
		{Kind: parser.StdoutOutput, Target: literalSpan(second)},
	})
	require.NoError(t, err)
	defer closeIfSet(stdout)

	assert.Equal(t, second, stdout.Name())
}

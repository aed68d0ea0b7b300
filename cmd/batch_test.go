package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPair_Label(t *testing.T) {
	assert.Equal(t, "sub-01", Pair{Name: "sub-01", Left: "a", Right: "b"}.Label())
	assert.Equal(t, "a vs b", Pair{Left: "a", Right: "b"}.Label())
}

func TestResolveRelative(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"left.tsv", filepath.Join("/data", "left.tsv")},
		{"v23/left.tsv", filepath.Join("/data", "v23", "left.tsv")},
		{"/abs/left.tsv", "/abs/left.tsv"},
		{"https://example.com/left.tsv", "https://example.com/left.tsv"},
		{"ftp://example.com/left.tsv", "ftp://example.com/left.tsv"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveRelative("/data", tt.source))
		})
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeTable(t, dir, "manifest.yaml", `pairs:
  - name: sub-01
    left: v23/left.tsv
    right: https://example.com/right.tsv
  - left: /abs/a.tsv
    right: b.tsv
`)

	m, err := loadManifest(path)
	require.NoError(t, err)
	require.Len(t, m.Pairs, 2)

	assert.Equal(t, "sub-01", m.Pairs[0].Name)
	assert.Equal(t, filepath.Join(dir, "v23", "left.tsv"), m.Pairs[0].Left)
	assert.Equal(t, "https://example.com/right.tsv", m.Pairs[0].Right)
	assert.Equal(t, "/abs/a.tsv", m.Pairs[1].Left)
	assert.Equal(t, filepath.Join(dir, "b.tsv"), m.Pairs[1].Right)
}

func TestLoadManifest_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"empty", "pairs: []\n", "lists no pairs"},
		{"missing right", "pairs:\n  - left: a.tsv\n", "needs both left and right"},
		{"bad yaml", "pairs: [\n", "parse manifest"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTable(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".yaml", tt.content)
			_, err := loadManifest(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := loadManifest(filepath.Join(dir, "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read manifest")
	})
}

func TestProcessBatch_OrderAndFailures(t *testing.T) {
	dir := t.TempDir()
	left := writeTable(t, dir, "left.tsv", leftTSV)
	right := writeTable(t, dir, "right.tsv", rightTSV)

	c, err := newComparer(testConfig(), false)
	require.NoError(t, err)

	pairs := []Pair{
		{Name: "changed", Left: left, Right: right},
		{Name: "broken", Left: left, Right: filepath.Join(dir, "missing.tsv")},
		{Name: "same", Left: left, Right: left},
	}

	var out bytes.Buffer
	err = processBatch(context.Background(), pairs, 3, c, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 comparisons failed")

	got := out.String()
	iChanged := strings.Index(got, "== changed ==")
	iBroken := strings.Index(got, "== broken ==")
	iSame := strings.Index(got, "== same ==")
	require.True(t, iChanged >= 0 && iBroken >= 0 && iSame >= 0, got)
	assert.Less(t, iChanged, iBroken)
	assert.Less(t, iBroken, iSame)

	assert.Contains(t, got[iChanged:iBroken], "A -> R\t001\t2.2500\n")
	assert.Contains(t, got[iBroken:iSame], "error: ")
	assert.Contains(t, got[iSame:], "No differences in classification")
}

func TestProcessBatch_AllSucceed(t *testing.T) {
	dir := t.TempDir()
	left := writeTable(t, dir, "left.tsv", leftTSV)
	right := writeTable(t, dir, "right.tsv", rightTSV)

	c, err := newComparer(testConfig(), true)
	require.NoError(t, err)

	pairs := []Pair{
		{Left: left, Right: right},
		{Left: right, Right: left},
	}

	var out bytes.Buffer
	require.NoError(t, processBatch(context.Background(), pairs, 1, c, &out))

	got := out.String()
	assert.Contains(t, got, "== "+left+" vs "+right+" ==\n")
	assert.Contains(t, got, "== "+right+" vs "+left+" ==\n")
	assert.Contains(t, got, "R -> A\t001\t2.2500\t[1]\n")
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "v23/left.tsv", leftTSV)
	writeTable(t, dir, "v24/right.tsv", rightTSV)
	manifest := writeTable(t, dir, "manifest.yaml", `pairs:
  - name: sub-01
    left: v23/left.tsv
    right: v24/right.tsv
`)

	out, err := executeRoot(t, "batch", "--manifest", manifest, "--concurrency", "2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "== sub-01 ==\n"), out)
	assert.Contains(t, out, "I -> R\t001\t0.5000\n")
}

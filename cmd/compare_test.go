package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dtm-tools/internal/config"
	"github.com/sells-group/dtm-tools/internal/report"
)

const leftTSV = "Component\tclassification\tclassification_tags\tvariance explained\n" +
	"ICA_00\taccepted\tLikely BOLD\t10.5\n" +
	"ICA_01\taccepted\tLikely BOLD\t2.25\n" +
	"ICA_02\trejected\tUnlikely BOLD\t1.0\n" +
	"ICA_03\taccepted\tLow variance\t0.5\n"

const rightTSV = "Component\tclassification\tclassification_tags\tvariance explained\n" +
	"ICA_00\taccepted\tLikely BOLD\t10.5\n" +
	"ICA_01\trejected\tUnlikely BOLD\t2.25\n" +
	"ICA_02\taccepted\tLikely BOLD\t1.0\n" +
	"ICA_03\trejected\tUnlikely BOLD\t0.5\n"

func testConfig() *config.Config {
	return &config.Config{
		Compare: config.CompareConfig{
			Policy:          "three-way",
			TagColumn:       "classification_tags",
			VarexColumn:     "variance explained",
			RationaleColumn: "rationale",
			Format:          "text",
		},
		Load:  config.LoadConfig{Encoding: "utf-8"},
		Fetch: config.FetchConfig{TimeoutSecs: 5, MaxRetries: 1, UserAgent: "dtm-tools-test"},
		Batch: config.BatchConfig{Concurrency: 2},
		Log:   config.LogConfig{Level: "error", Format: "console"},
	}
}

func TestNewComparer_InvalidSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"policy", func(c *config.Config) { c.Compare.Policy = "four-way" }},
		{"format", func(c *config.Config) { c.Compare.Format = "xml" }},
		{"delimiter", func(c *config.Config) { c.Load.Delimiter = "||" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testConfig()
			tt.mutate(c)
			_, err := newComparer(c, false)
			assert.Error(t, err)
		})
	}
}

func TestComparer_Run_Text(t *testing.T) {
	dir := t.TempDir()
	left := writeTable(t, dir, "left.tsv", leftTSV)
	right := writeTable(t, dir, "right.tsv", rightTSV)

	c, err := newComparer(testConfig(), false)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, c.run(context.Background(), left, right, &out))

	got := out.String()
	assert.Contains(t, got, left+" is of type kundu-dtm\n")
	assert.Contains(t, got, right+" is of type minimal-dtm\n")
	assert.Contains(t, got, "CHANGE\tNC\tVAREX\n")
	assert.Contains(t, got, "A -> R\t001\t2.2500\n")
	assert.Contains(t, got, "R -> A\t001\t1.0000\n")
	assert.Contains(t, got, "I -> R\t001\t0.5000\n")
	assert.NotContains(t, got, "COMP\tCHANGE")
}

func TestComparer_Run_Verbose(t *testing.T) {
	dir := t.TempDir()
	left := writeTable(t, dir, "left.tsv", leftTSV)
	right := writeTable(t, dir, "right.tsv", rightTSV)

	c, err := newComparer(testConfig(), true)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, c.run(context.Background(), left, right, &out))

	got := out.String()
	assert.Contains(t, got, "CHANGE\tNC\tVAREX\tCOMPS\n")
	assert.Contains(t, got, "A -> R\t001\t2.2500\t[1]\n")
	assert.Contains(t, got, "\nCOMP\tCHANGE\tLEFT\tRIGHT\n")
	assert.Contains(t, got, "001\tA -> R\tLikely BOLD\tUnlikely BOLD\n")
	assert.Contains(t, got, "003\tI -> R\tLow variance\tUnlikely BOLD\n")
}

func TestComparer_Run_TwoWayPolicy(t *testing.T) {
	dir := t.TempDir()
	left := writeTable(t, dir, "left.tsv", leftTSV)
	right := writeTable(t, dir, "right.tsv", rightTSV)

	cfg := testConfig()
	cfg.Compare.Policy = "two-way"
	c, err := newComparer(cfg, false)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, c.run(context.Background(), left, right, &out))

	got := out.String()
	assert.Contains(t, got, "A -> R\t002\t2.7500\n")
	assert.Contains(t, got, "R -> A\t001\t1.0000\n")
	assert.NotContains(t, got, "I -> ")
}

func TestComparer_Run_NoDifferences(t *testing.T) {
	dir := t.TempDir()
	left := writeTable(t, dir, "a.tsv", leftTSV)
	right := writeTable(t, dir, "b.tsv", leftTSV)

	c, err := newComparer(testConfig(), false)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, c.run(context.Background(), left, right, &out))
	assert.Contains(t, out.String(), report.NoDifferences)
	assert.NotContains(t, out.String(), "CHANGE")
}

func TestComparer_Run_RowCountMismatch(t *testing.T) {
	dir := t.TempDir()
	left := writeTable(t, dir, "left.tsv", leftTSV)
	right := writeTable(t, dir, "short.tsv",
		"Component\tclassification\tclassification_tags\tvariance explained\n"+
			"ICA_00\taccepted\tLikely BOLD\t10.5\n")

	c, err := newComparer(testConfig(), false)
	require.NoError(t, err)

	var out bytes.Buffer
	err = c.run(context.Background(), left, right, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has 4 components, but")
	assert.Empty(t, out.String())
}

func TestComparer_Run_MissingFile(t *testing.T) {
	dir := t.TempDir()
	left := writeTable(t, dir, "left.tsv", leftTSV)

	c, err := newComparer(testConfig(), false)
	require.NoError(t, err)

	var out bytes.Buffer
	err = c.run(context.Background(), left, dir+"/missing.tsv", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.tsv")
	assert.Empty(t, out.String())
}

func TestComparer_Run_JSON(t *testing.T) {
	dir := t.TempDir()
	left := writeTable(t, dir, "left.tsv", leftTSV)
	right := writeTable(t, dir, "right.tsv", rightTSV)

	cfg := testConfig()
	cfg.Compare.Format = "json"
	c, err := newComparer(cfg, false)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, c.run(context.Background(), left, right, &out))

	var doc report.Document
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, "kundu-dtm", doc.Left.Type)
	assert.Equal(t, 4, doc.Left.Rows)
	assert.Equal(t, 3, doc.TotalChanges)
	require.Len(t, doc.Buckets, 3)
	assert.Equal(t, "A -> R", doc.Buckets[0].Change)
	assert.Equal(t, []int{1}, doc.Buckets[0].Components)
	assert.Empty(t, doc.Rows)
}

func TestRootCommand_Compare(t *testing.T) {
	dir := t.TempDir()
	left := writeTable(t, dir, "left.tsv", leftTSV)
	right := writeTable(t, dir, "right.tsv", rightTSV)

	out, err := executeRoot(t, "-v", left, right)
	require.NoError(t, err)
	assert.Contains(t, out, "A -> R\t001\t2.2500\t[1]\n")
	assert.Contains(t, out, "COMP\tCHANGE\tLEFT\tRIGHT")
}

func TestTypesCommand(t *testing.T) {
	dir := t.TempDir()
	left := writeTable(t, dir, "left.tsv", leftTSV)
	mainTbl := writeTable(t, dir, "main.tsv", "Component\tclassification\trationale\tvariance explained\nICA_00\taccepted\t\t1.0\n")

	out, err := executeRoot(t, "types", left, mainTbl)
	require.NoError(t, err)
	assert.Equal(t, left+" is of type kundu-dtm\n"+mainTbl+" is of type kundu-main\n", out)
}

func TestCodesCommand(t *testing.T) {
	out, err := executeRoot(t, "codes")
	require.NoError(t, err)
	assert.Contains(t, out, "CODE\tDESCRIPTION\n")
	assert.Contains(t, out, "I008\tLow variance\n")
}

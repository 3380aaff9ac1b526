package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdlhea/heapp/internal/composition"
	"github.com/mdlhea/heapp/internal/descriptor"
	"github.com/mdlhea/heapp/internal/refdata"
	"github.com/mdlhea/heapp/internal/store"
)

func writeStore(t *testing.T, dir string, formulas ...string) string {
	t.Helper()
	ref, err := refdata.Default()
	require.NoError(t, err)
	engine := descriptor.NewEngine(ref)

	w, err := store.Create(dir, uuid.NewString())
	require.NoError(t, err)
	for _, f := range formulas {
		c, err := composition.ParseFormula(f)
		require.NoError(t, err)
		ds, err := engine.Calculate(c.Fractions())
		require.NoError(t, err)
		require.NoError(t, w.Append(descriptor.NewAlloyResult(c, ds)))
	}
	require.NoError(t, w.Close())
	return w.Path()
}

func TestExportCommand_CSV(t *testing.T) {
	dir := t.TempDir()
	storePath := writeStore(t, dir, "FeNi", "CoCrFeNi", "CoCrFeMnNi")
	dest := filepath.Join(dir, "out", "alloys.csv")

	out, err := runCLI(t, dir, "export", storePath, dest, "--summary", filepath.Join(dir, "s.md"))
	require.NoError(t, err)
	assert.Contains(t, out, "holds 3 results")
	assert.Contains(t, out, "Exported 3 rows to "+dest)

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "Fe₅₀Ni₅₀", records[1][0])

	assert.NoFileExists(t, storePath)
	assert.FileExists(t, filepath.Join(dir, "s.md"))
}

func TestExportCommand_KeepStore(t *testing.T) {
	dir := t.TempDir()
	storePath := writeStore(t, dir, "FeNi")

	out, err := runCLI(t, dir, "export", storePath, filepath.Join(dir, "out.xlsx"), "--keep-store")
	require.NoError(t, err)
	assert.Contains(t, out, "Intermediate results kept in")
	assert.FileExists(t, storePath)
}

func TestExportCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	storePath := writeStore(t, dir, "FeNi")

	_, err := runCLI(t, dir, "export", filepath.Join(dir, "missing"+store.Ext), filepath.Join(dir, "out.csv"))
	require.Error(t, err)

	_, err = runCLI(t, dir, "export", storePath, filepath.Join(dir, "out.pdf"))
	require.ErrorContains(t, err, "unsupported export extension")
	assert.FileExists(t, storePath)
}

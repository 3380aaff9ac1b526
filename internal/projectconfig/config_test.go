package projectconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_ReturnsAllDefaults(t *testing.T) {
	cfg := New()

	// Paths
	assertEqual(t, "Paths.DataDir", "", cfg.Paths.DataDir)
	assertEqual(t, "Paths.StoreDir", "", cfg.Paths.StoreDir)
	assertEqual(t, "Paths.ExportDir", "results/", cfg.Paths.ExportDir)

	// Batch
	assertEqualInt(t, "Batch.Step", 5, cfg.Batch.Step)
	assertEqualInt(t, "Batch.Workers", 1, cfg.Batch.Workers)
	assertEqualInt(t, "Batch.ProgressInterval", 100, cfg.Batch.ProgressInterval)
	assertEqualInt(t, "Batch.ChunkSize", 100, cfg.Batch.ChunkSize)
	assertEqualInt(t, "Batch.TableThreshold", 20000, cfg.Batch.TableThreshold)
	assertEqual(t, "Batch.InputMode", "at", cfg.Batch.InputMode)
	assertBoolPtr(t, "Batch.ConsumeStore", true, cfg.Batch.ConsumeStore)

	assertEqual(t, "Restriction", "", cfg.Restriction)
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
paths:
  data_dir: data
  store_dir: /var/tmp/heapp
  export_dir: out/
batch:
  step: 10
  workers: 8
  progress_interval: 250
  chunk_size: 500
  table_threshold: 1000
  input_mode: wt
  consume_store: false
restriction: fcc-only.yaml
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	assertEqual(t, "Paths.DataDir", "data", cfg.Paths.DataDir)
	assertEqual(t, "Paths.StoreDir", "/var/tmp/heapp", cfg.Paths.StoreDir)
	assertEqual(t, "Paths.ExportDir", "out/", cfg.Paths.ExportDir)
	assertEqualInt(t, "Batch.Step", 10, cfg.Batch.Step)
	assertEqualInt(t, "Batch.Workers", 8, cfg.Batch.Workers)
	assertEqualInt(t, "Batch.ProgressInterval", 250, cfg.Batch.ProgressInterval)
	assertEqualInt(t, "Batch.ChunkSize", 500, cfg.Batch.ChunkSize)
	assertEqualInt(t, "Batch.TableThreshold", 1000, cfg.Batch.TableThreshold)
	assertEqual(t, "Batch.InputMode", "wt", cfg.Batch.InputMode)
	assertBoolPtr(t, "Batch.ConsumeStore", false, cfg.Batch.ConsumeStore)
	assertEqual(t, "Restriction", "fcc-only.yaml", cfg.Restriction)

	assertEqual(t, "Resolve(data)", filepath.Join(cfg.Dir(), "data"), cfg.Resolve(cfg.Paths.DataDir))
	assertEqual(t, "Resolve(abs)", "/var/tmp/heapp", cfg.Resolve(cfg.Paths.StoreDir))
	assertEqual(t, "Resolve(empty)", "", cfg.Resolve(""))
}

func TestLoad_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
batch:
  step: 2
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertEqualInt(t, "Batch.Step", 2, cfg.Batch.Step)
	assertEqualInt(t, "Batch.ChunkSize", DefaultChunkSize, cfg.Batch.ChunkSize)
	assertEqual(t, "Paths.ExportDir", DefaultExportDir, cfg.Paths.ExportDir)
	assertBoolPtr(t, "Batch.ConsumeStore", true, cfg.Batch.ConsumeStore)
}

func TestLoad_MissingFile_ReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertEqualInt(t, "Batch.Step", DefaultStep, cfg.Batch.Step)
	assertEqual(t, "Dir", "", cfg.Dir())
	assertEqual(t, "Resolve(rel)", "rel", cfg.Resolve("rel"))
}

func TestLoad_InvalidYAML_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
batch:
  step: [unclosed
`)

	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "step too large",
			content: "batch:\n  step: 150\n",
			want:    []string{"Batch.Step", "max=100"},
		},
		{
			name:    "unknown input mode",
			content: "batch:\n  input_mode: moles\n",
			want:    []string{"Batch.InputMode", "oneof"},
		},
		{
			name:    "negative workers and chunk size",
			content: "batch:\n  workers: -1\n  chunk_size: -5\n",
			want:    []string{"Batch.Workers", "Batch.ChunkSize"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, FileName, tt.content)

			_, err := Load(dir)
			if err == nil {
				t.Fatal("expected validation error")
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error %q does not mention %q", err, w)
				}
			}
		})
	}
}

func TestLoad_WalksUpDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, FileName, `
paths:
  export_dir: exports/
`)
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(nested)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertEqual(t, "Paths.ExportDir", "exports/", cfg.Paths.ExportDir)
	assertEqual(t, "Resolve", filepath.Join(cfg.Dir(), "exports/"), cfg.Resolve(cfg.Paths.ExportDir))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func assertEqual(t *testing.T, field, want, got string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %q, want %q", field, got, want)
	}
}

func assertEqualInt(t *testing.T, field string, want, got int) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %d, want %d", field, got, want)
	}
}

func assertBoolPtr(t *testing.T, field string, want bool, got *bool) {
	t.Helper()
	if got == nil {
		t.Errorf("%s is nil, want *%v", field, want)
		return
	}
	if *got != want {
		t.Errorf("%s = %v, want %v", field, *got, want)
	}
}

// Package projectconfig provides the ProjectConfig struct and loader for
// .heapp.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".heapp.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultExportDir = "results/"

	DefaultStep             = 5
	DefaultWorkers          = 1
	DefaultProgressInterval = 100
	DefaultChunkSize        = 100
	DefaultTableThreshold   = 20000
	DefaultInputMode        = "at"
)

// maxWalkUp bounds the parent directories searched for FileName.
const maxWalkUp = 10

// PathsConfig holds directory paths for reference data, intermediate stores
// and exports. Empty DataDir selects the embedded dataset; empty StoreDir
// the system temp directory.
type PathsConfig struct {
	DataDir   string `yaml:"data_dir,omitempty"`
	StoreDir  string `yaml:"store_dir,omitempty"`
	ExportDir string `yaml:"export_dir,omitempty" validate:"required"`
}

// BatchConfig holds batch pipeline parameters.
type BatchConfig struct {
	Step             int    `yaml:"step,omitempty" validate:"min=1,max=100"`
	Workers          int    `yaml:"workers,omitempty" validate:"min=1,max=256"`
	ProgressInterval int    `yaml:"progress_interval,omitempty" validate:"min=1"`
	ChunkSize        int    `yaml:"chunk_size,omitempty" validate:"min=1"`
	TableThreshold   int    `yaml:"table_threshold,omitempty" validate:"min=0"`
	InputMode        string `yaml:"input_mode,omitempty" validate:"oneof=at ratio wt mass"`
	ConsumeStore     *bool  `yaml:"consume_store,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .heapp.yaml.
type ProjectConfig struct {
	Paths PathsConfig `yaml:"paths,omitempty"`
	Batch BatchConfig `yaml:"batch,omitempty"`
	// Restriction is a restriction file applied when --restrict is not given.
	Restriction string `yaml:"restriction,omitempty"`

	// dir is the directory the file was found in; relative paths resolve
	// against it.
	dir string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			ExportDir: DefaultExportDir,
		},
		Batch: BatchConfig{
			Step:             DefaultStep,
			Workers:          DefaultWorkers,
			ProgressInterval: DefaultProgressInterval,
			ChunkSize:        DefaultChunkSize,
			TableThreshold:   DefaultTableThreshold,
			InputMode:        DefaultInputMode,
			ConsumeStore:     boolPtr(true),
		},
	}
}

// Load finds .heapp.yaml by walking up from startDir (max 10 levels),
// unmarshals it, fills in missing fields with defaults and validates the
// result. If no config file is found, returns defaults with a nil error.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	path, data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	mergeConfig(cfg, &fileCfg)
	cfg.dir = filepath.Dir(path)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the struct-tag constraints and reports every violation.
func (c *ProjectConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "ProjectConfig.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is %s", field, fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// Resolve makes p absolute relative to the directory the configuration file
// was found in. Absolute and empty paths are returned unchanged.
func (c *ProjectConfig) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// Dir returns the directory holding the loaded file, or "" for defaults.
func (c *ProjectConfig) Dir() string { return c.dir }

// findConfigFile walks up from dir looking for .heapp.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found. Propagates real I/O
// errors (e.g. permission denied) instead of silently swallowing them.
func findConfigFile(dir string) (string, []byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for range maxWalkUp {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return "", nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Paths
	if src.Paths.DataDir != "" {
		dst.Paths.DataDir = src.Paths.DataDir
	}
	if src.Paths.StoreDir != "" {
		dst.Paths.StoreDir = src.Paths.StoreDir
	}
	if src.Paths.ExportDir != "" {
		dst.Paths.ExportDir = src.Paths.ExportDir
	}

	// Batch
	if src.Batch.Step != 0 {
		dst.Batch.Step = src.Batch.Step
	}
	if src.Batch.Workers != 0 {
		dst.Batch.Workers = src.Batch.Workers
	}
	if src.Batch.ProgressInterval != 0 {
		dst.Batch.ProgressInterval = src.Batch.ProgressInterval
	}
	if src.Batch.ChunkSize != 0 {
		dst.Batch.ChunkSize = src.Batch.ChunkSize
	}
	if src.Batch.TableThreshold != 0 {
		dst.Batch.TableThreshold = src.Batch.TableThreshold
	}
	if src.Batch.InputMode != "" {
		dst.Batch.InputMode = src.Batch.InputMode
	}
	if src.Batch.ConsumeStore != nil {
		dst.Batch.ConsumeStore = src.Batch.ConsumeStore
	}

	if src.Restriction != "" {
		dst.Restriction = src.Restriction
	}
}

func boolPtr(b bool) *bool {
	return &b
}

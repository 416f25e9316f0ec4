// Package config loads the application settings from a YAML file and
// environment variables.
package config

import (
	"fmt"
	"path/filepath"
)

// Config holds every runtime setting of both pipeline stages.
type Config struct {
	Corpus Corpus `yaml:"corpus"`
	Output Output `yaml:"output"`
	Names  Names  `yaml:"names"`
	Log    Log    `yaml:"log"`
}

// Corpus locates the zipped résumé tree.
type Corpus struct {
	// BasePath is the directory holding the numbered corpus folders
	// ("00" .. "99").
	BasePath string `yaml:"base_path" env:"CORPUS_BASE_PATH"`
	// MaxFolders bounds the walk to folders 00 .. MaxFolders-1.
	MaxFolders int `yaml:"max_folders" env:"CORPUS_MAX_FOLDERS"`
}

// Output configures the working directory shared by both stages.
type Output struct {
	Dir                string `yaml:"dir"                 env:"OUTPUT_DIR"          env-default:"output_lattes"`
	CheckpointInterval int    `yaml:"checkpoint_interval" env:"CHECKPOINT_INTERVAL" env-default:"100"`
}

// Names locates the gender reference dataset.
type Names struct {
	ReferenceFile string `yaml:"reference_file" env:"NAMES_REFERENCE_FILE" env-default:"grupos.csv"`
}

// Log configures logging output. Pretty defaults to off: structured JSON
// is what unattended batch runs want.
type Log struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL" env-default:"info"`
	Pretty bool   `yaml:"pretty" env:"LOG_PRETTY"`
}

// Validate rejects settings the pipelines cannot run with.
func (c *Config) Validate() error {
	if c.Corpus.BasePath == "" {
		return fmt.Errorf("corpus.base_path is required")
	}
	if c.Corpus.MaxFolders < 1 || c.Corpus.MaxFolders > 100 {
		return fmt.Errorf("corpus.max_folders must be between 1 and 100, got %d", c.Corpus.MaxFolders)
	}
	if c.Output.CheckpointInterval < 1 {
		return fmt.Errorf("output.checkpoint_interval must be positive, got %d", c.Output.CheckpointInterval)
	}
	return nil
}

// Paths of the files both stages read and write under the output directory.

func (c *Config) CheckpointPath() string { return filepath.Join(c.Output.Dir, "checkpoint.json") }
func (c *Config) RecordLogPath() string  { return filepath.Join(c.Output.Dir, "curriculos_data.jsonl") }
func (c *Config) ErrorLogPath() string   { return filepath.Join(c.Output.Dir, "errors.log") }
func (c *Config) StatisticsPath() string { return filepath.Join(c.Output.Dir, "statistics.json") }

func (c *Config) ParquetPath() string {
	return filepath.Join(c.Output.Dir, "curriculos_processados.parquet")
}

func (c *Config) CSVPath() string {
	return filepath.Join(c.Output.Dir, "curriculos_processados.csv")
}

func (c *Config) UnclassifiedPath() string {
	return filepath.Join(c.Output.Dir, "nomes_nao_classificados.txt")
}

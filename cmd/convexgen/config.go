package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/syssam/convexgen"
)

// ProjectConfig is the on-disk configuration of a generation run, usually
// convexgen.yml next to the schema. Command line flags override it field
// by field.
type ProjectConfig struct {
	// Schema is the path to the schema document.
	Schema string `yaml:"schema,omitempty"`

	// Functions are the documents scanned for function declarations.
	Functions []string `yaml:"functions,omitempty"`

	// Out is the generated Go file.
	Out string `yaml:"out,omitempty"`

	// Package overrides the generated package name.
	Package string `yaml:"package,omitempty"`

	// HelperStubs maps import patterns to stub documents whose exported
	// validators resolve references the real modules would provide. A value
	// naming an existing file is read; anything else is taken as inline
	// source.
	HelperStubs map[string]string `yaml:"helper_stubs,omitempty"`

	// Workers bounds concurrent file parsing.
	Workers int `yaml:"workers,omitempty"`
}

// LoadProjectConfig reads and decodes a yaml project file. Paths inside the
// file are kept relative to the file's directory.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	if cfg.Schema != "" && !filepath.IsAbs(cfg.Schema) {
		cfg.Schema = filepath.Join(dir, cfg.Schema)
	}
	for i, fn := range cfg.Functions {
		if !filepath.IsAbs(fn) {
			cfg.Functions[i] = filepath.Join(dir, fn)
		}
	}
	if cfg.Out != "" && !filepath.IsAbs(cfg.Out) {
		cfg.Out = filepath.Join(dir, cfg.Out)
	}
	for pattern, stub := range cfg.HelperStubs {
		src, err := loadStub(dir, stub)
		if err != nil {
			return nil, err
		}
		cfg.HelperStubs[pattern] = src
	}
	return &cfg, nil
}

// loadStub reads a stub document by path when one exists; anything else is
// taken as inline source.
func loadStub(dir, stub string) (string, error) {
	path := stub
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return stub, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read helper stub %s: %w", path, err)
	}
	return string(data), nil
}

// merge applies non-zero flag values over the file configuration.
func (c *ProjectConfig) merge(flags *ProjectConfig) {
	if flags.Schema != "" {
		c.Schema = flags.Schema
	}
	if len(flags.Functions) > 0 {
		c.Functions = flags.Functions
	}
	if flags.Out != "" {
		c.Out = flags.Out
	}
	if flags.Package != "" {
		c.Package = flags.Package
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
}

// genConfig lowers the project configuration to a generator run.
func (c *ProjectConfig) genConfig() *convexgen.Config {
	return &convexgen.Config{
		SchemaPath:    c.Schema,
		FunctionPaths: c.Functions,
		OutFile:       c.Out,
		Package:       c.Package,
		HelperStubs:   c.HelperStubs,
		Workers:       c.Workers,
	}
}

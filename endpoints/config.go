// Package endpoints selects which stock history backend the client talks to.
// A fixed table of named configs is embedded in the binary; the active one is
// chosen by an environment selection, a persisted override or the default.
package endpoints

import (
	_ "embed"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/jrsteele09/quant-web-client/internal/errors"
	"gopkg.in/yaml.v3"
)

// Config names
const (
	JavaBackend  = "JAVA_BACKEND"
	PythonDirect = "PYTHON_DIRECT"

	DefaultConfig = JavaBackend
)

// Logical operations
const (
	OpHealth  = "health"
	OpHistory = "history"
	OpLatest  = "latest"
)

var (
	ErrUnknownConfig   = errors.ErrUnknownConfig
	ErrUnknownEndpoint = errors.ErrUnknownEndpoint
)

//go:embed configs.yaml
var configsYAML []byte

// Config is a named backend: base URL plus path templates keyed by operation.
// Templates use {param} placeholders.
type Config struct {
	Key         string            `yaml:"-"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	BaseURL     string            `yaml:"baseURL"`
	Endpoints   map[string]string `yaml:"endpoints"`
}

// Path expands the template for operation, substituting params.
func (c Config) Path(operation string, params map[string]string) (string, error) {
	tmpl, ok := c.Endpoints[operation]
	if !ok {
		return "", errors.Wrapf(ErrUnknownEndpoint, "%s has no %q endpoint", c.Key, operation)
	}
	for name, value := range params {
		tmpl = strings.ReplaceAll(tmpl, "{"+name+"}", url.PathEscape(value))
	}
	return tmpl, nil
}

// URL joins the base URL and path.
func (c Config) URL(path string) string {
	return c.BaseURL + path
}

func (c Config) clone() Config {
	eps := make(map[string]string, len(c.Endpoints))
	for k, v := range c.Endpoints {
		eps[k] = v
	}
	c.Endpoints = eps
	return c
}

// Table is a set of configs keyed by name.
type Table map[string]Config

// Keys returns the config names in sorted order.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseTable decodes a YAML document of configs keyed by name.
func ParseTable(content []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(content, &t); err != nil {
		return nil, fmt.Errorf("failed to parse endpoint configs: %w", err)
	}
	for k, c := range t {
		if c.BaseURL == "" {
			return nil, fmt.Errorf("endpoint config %s has no baseURL", k)
		}
		c.Key = k
		t[k] = c
	}
	return t, nil
}

var builtin = mustParse(configsYAML)

func mustParse(content []byte) Table {
	t, err := ParseTable(content)
	if err != nil {
		panic(err)
	}
	return t
}

// Configs returns a copy of the built-in table.
func Configs() Table {
	out := make(Table, len(builtin))
	for k, c := range builtin {
		out[k] = c.clone()
	}
	return out
}

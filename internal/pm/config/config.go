// Package config persists named watermark templates for the pm command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// EnvTemplate overrides default_template from the config file.
	EnvTemplate = "PHOTOMARK_TEMPLATE"
)

var ErrUnknownTemplate = errors.New("unknown template")

type Config struct {
	DefaultTemplate string              `yaml:"default_template,omitempty"`
	Templates       map[string]Template `yaml:"templates,omitempty"`
}

func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "photomark"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func Load() (*Config, error) {
	cfg := &Config{
		Templates: make(map[string]Template),
	}

	path, err := Path()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if cfg.Templates == nil {
		cfg.Templates = make(map[string]Template)
	}

	if env := os.Getenv(EnvTemplate); env != "" {
		cfg.DefaultTemplate = env
	}

	return cfg, nil
}

func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	path, err := Path()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// GetTemplate looks in the user's templates first, then the built-ins.
func (c *Config) GetTemplate(name string) (Template, bool) {
	if t, ok := c.Templates[name]; ok {
		return t, true
	}
	if t, ok := BuiltinTemplates[name]; ok {
		return t, true
	}
	return Template{}, false
}

// ResolveTemplate picks name, else the configured default, else classic.
func (c *Config) ResolveTemplate(name string) (Template, string, error) {
	if name == "" {
		name = c.DefaultTemplate
	}
	if name == "" {
		name = DefaultTemplateName
	}
	t, ok := c.GetTemplate(name)
	if !ok {
		return Template{}, name, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	return t, name, nil
}

func (c *Config) SetTemplate(name string, t Template) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("template name is empty")
	}
	if _, err := t.Spec(); err != nil {
		return err
	}
	if c.Templates == nil {
		c.Templates = make(map[string]Template)
	}
	c.Templates[name] = t
	return nil
}

// DeleteTemplate removes a user template. Built-ins cannot be deleted.
func (c *Config) DeleteTemplate(name string) error {
	if _, ok := c.Templates[name]; !ok {
		if IsBuiltin(name) {
			return fmt.Errorf("%s is a built-in template and cannot be deleted", name)
		}
		return fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	delete(c.Templates, name)
	if c.DefaultTemplate == name {
		c.DefaultTemplate = ""
	}
	return nil
}

func (c *Config) SetDefault(name string) error {
	if _, ok := c.GetTemplate(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	c.DefaultTemplate = name
	return nil
}

// TemplateNames lists built-in and user templates once each, sorted.
func (c *Config) TemplateNames() []string {
	seen := make(map[string]bool, len(BuiltinTemplates)+len(c.Templates))
	names := make([]string, 0, len(seen))
	for name := range BuiltinTemplates {
		seen[name] = true
		names = append(names, name)
	}
	for name := range c.Templates {
		if !seen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func IsBuiltin(name string) bool {
	_, ok := BuiltinTemplates[name]
	return ok
}

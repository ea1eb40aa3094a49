package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	TemplatePlush    = "PLUSH"
	TemplateMarkdown = "MARKDOWN"

	DefaultBaseLayout = "templates/layouts/base.plush.html"
	DefaultBundleName = "entry"
	DefaultEntry      = ".build/entry.js"
	DefaultBundleDir  = "static/js"
	DefaultRenderer   = "@codedoc/core/dist/es6/transport/renderer.js"
)

// Load reads a manifest, fills in defaults and validates it.
func Load(filename string) (*SiteManifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return Parse(data)
}

func Parse(data []byte) (*SiteManifest, error) {
	var manifest SiteManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}

	manifest.applyDefaults()
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return &manifest, nil
}

func (m *SiteManifest) applyDefaults() {
	if origin := os.Getenv("APP_ORIGIN"); origin != "" {
		m.Origin = origin
	}
	if m.BaseLayout == "" {
		m.BaseLayout = DefaultBaseLayout
	}
	if m.Bundle.Name == "" {
		m.Bundle.Name = DefaultBundleName
	}
	if m.Bundle.Entry == "" {
		m.Bundle.Entry = DefaultEntry
	}
	if m.Bundle.OutDir == "" {
		m.Bundle.OutDir = DefaultBundleDir
	}
	if m.Bundle.Renderer == "" {
		m.Bundle.Renderer = DefaultRenderer
	}
}

func (m *SiteManifest) Validate() error {
	for i, route := range m.Routes {
		if route.Path == "" {
			return errors.Errorf("route %d: path is required", i)
		}
		switch route.TemplateType {
		case TemplatePlush, TemplateMarkdown:
		default:
			return errors.Errorf("route %s: unsupported template type %q", route.Path, route.TemplateType)
		}
	}

	if _, exists := m.JavascriptTargets[m.Bundle.Name]; exists {
		return errors.Errorf("bundle name %q collides with a javascript target", m.Bundle.Name)
	}

	seen := map[string]bool{}
	for _, c := range m.Bundle.Components {
		if c.Name == "" || c.Module == "" {
			return errors.Errorf("bundle component needs both name and module: %+v", c)
		}
		if seen[c.Name] {
			return errors.Errorf("bundle component %q declared twice", c.Name)
		}
		seen[c.Name] = true
	}
	for _, imp := range append(append([]Import{}, m.Bundle.Setup...), m.Bundle.Init...) {
		if imp.Module == "" || imp.Export == "" {
			return errors.Errorf("bundle import needs both module and export: %+v", imp)
		}
	}
	return nil
}

// BundleTarget is the javascript target the generated entry is compiled as.
func (m *SiteManifest) BundleTarget() JavascriptTarget {
	return JavascriptTarget{
		Source: m.Bundle.Entry,
		OutDir: filepath.ToSlash(m.Bundle.OutDir),
	}
}

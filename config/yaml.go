package config

// config/yaml.go

type Partial struct {
	Source       string `yaml:"source"`
	TemplateType string `yaml:"template_type"`
}

type JavascriptTarget struct {
	Source string `yaml:"source"`
	OutDir string `yaml:"out_dir"`
}

type SiteManifest struct {
	Routes             []Route                     `yaml:"routes"`
	JavascriptTargets  map[string]JavascriptTarget `yaml:"javascript"`
	Translations       []Translation               `yaml:"translations"`
	Origin             string                      `yaml:"origin"`
	NotFoundPageSource string                      `yaml:"not_found_page_source"`
	BaseLayout         string                      `yaml:"base_layout"`
	Partials           map[string]Partial          `yaml:"partials"`
	Hydration          Hydration                   `yaml:"hydration"`
	Bundle             Bundle                      `yaml:"bundle"`
}

type Route struct {
	Path           string   `yaml:"path"`
	Source         string   `yaml:"source"`
	TemplateType   string   `yaml:"template_type"`
	JavascriptDeps []string `yaml:"javascript_deps"`
	PartialDeps    []string `yaml:"partial_deps"`
}

type Translation struct {
	Code       string `yaml:"code"`
	Source     string `yaml:"source"`
	SourceType string `yaml:"source_type"`
}

// Hydration controls the build-time placeholder pass.
type Hydration struct {
	Enabled *bool `yaml:"enabled"`
	// Prerender replaces placeholders of components with a server template.
	// When false every placeholder is left for the client bundle.
	Prerender *bool `yaml:"prerender"`
}

// Bundle describes the generated client entry.
type Bundle struct {
	Name       string      `yaml:"name"`
	Entry      string      `yaml:"entry"`
	OutDir     string      `yaml:"out_dir"`
	Renderer   string      `yaml:"renderer"`
	Setup      []Import    `yaml:"setup"`
	Init       []Import    `yaml:"init"`
	Builtins   *bool       `yaml:"builtins"`
	Components []Component `yaml:"components"`
}

// Import is a module export called once when the bundle loads.
type Import struct {
	Module string `yaml:"module"`
	Export string `yaml:"export"`
}

// Component is a manifest-declared registry entry. Template, when set, is a
// plush file used to prerender it.
type Component struct {
	Name     string `yaml:"name"`
	Module   string `yaml:"module"`
	Template string `yaml:"template"`
}

func (h Hydration) IsEnabled() bool {
	return h.Enabled == nil || *h.Enabled
}

func (h Hydration) PrerenderEnabled() bool {
	return h.Prerender == nil || *h.Prerender
}

func (b Bundle) UseBuiltins() bool {
	return b.Builtins == nil || *b.Builtins
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Parse_Defaults(t *testing.T) {
	t.Setenv("APP_ORIGIN", "")
	m, err := Parse([]byte(`
origin: https://blog.example.com
routes:
  - path: /
    source: pages/index.plush.html
    template_type: PLUSH
`))
	require.NoError(t, err)

	assert.Equal(t, "https://blog.example.com", m.Origin)
	assert.Equal(t, DefaultBaseLayout, m.BaseLayout)
	assert.Equal(t, DefaultEntry, m.Bundle.Entry)
	assert.Equal(t, DefaultRenderer, m.Bundle.Renderer)
	assert.True(t, m.Hydration.IsEnabled())
	assert.True(t, m.Hydration.PrerenderEnabled())
	assert.True(t, m.Bundle.UseBuiltins())
	assert.Equal(t, JavascriptTarget{Source: DefaultEntry, OutDir: "static/js"}, m.BundleTarget())
}

func Test_Parse_Overrides(t *testing.T) {
	t.Setenv("APP_ORIGIN", "https://override.example.com")
	m, err := Parse([]byte(`
origin: https://blog.example.com
hydration:
  enabled: false
bundle:
  builtins: false
  components:
    - name: Chart
      module: ./components/chart.js
      template: components/chart.plush.html
  init:
    - module: ./behaviors/copy.js
      export: initCopy
`))
	require.NoError(t, err)

	assert.Equal(t, "https://override.example.com", m.Origin)
	assert.False(t, m.Hydration.IsEnabled())
	assert.False(t, m.Bundle.UseBuiltins())
	require.Len(t, m.Bundle.Components, 1)
	assert.Equal(t, "components/chart.plush.html", m.Bundle.Components[0].Template)
	assert.Equal(t, []Import{{Module: "./behaviors/copy.js", Export: "initCopy"}}, m.Bundle.Init)
}

func Test_Parse_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
	}{
		{"bad yaml", "routes: [:"},
		{"missing path", "routes:\n  - source: x\n    template_type: PLUSH\n"},
		{"bad template type", "routes:\n  - path: /\n    template_type: HAML\n"},
		{"component without module", "bundle:\n  components:\n    - name: X\n"},
		{"duplicate component", "bundle:\n  components:\n    - {name: X, module: a}\n    - {name: X, module: b}\n"},
		{"import without export", "bundle:\n  init:\n    - module: a\n"},
		{"bundle name collision", "javascript:\n  entry:\n    source: a.js\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.manifest))
			assert.Error(t, err)
		})
	}
}

func Test_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte("origin: https://a.example.com\n"), 0644))

	t.Setenv("APP_ORIGIN", "")
	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://a.example.com", m.Origin)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

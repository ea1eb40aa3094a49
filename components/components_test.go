package components

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZacxDev/go-static-blog/config"
	"github.com/ZacxDev/go-static-blog/hydrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderDescriptor(t *testing.T, d hydrate.Descriptor, props hydrate.Props) string {
	t.Helper()
	c, err := d.Create(props)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func Test_Default(t *testing.T) {
	reg, err := hydrate.NewRegistry(Default()...)
	require.NoError(t, err)
	assert.Equal(t, 5, reg.Len())

	prerendered := reg.Filter(hydrate.Descriptor.Prerendered)
	names := []string{}
	for _, d := range prerendered.Descriptors() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"ArticleCard", "Author"}, names)
}

func Test_ArticleCard(t *testing.T) {
	out := renderDescriptor(t, ArticleCard, hydrate.Props{
		"src":   "/blog/first",
		"title": "First post",
		"date":  "2024-01-02",
	})

	assert.Contains(t, out, `href="/blog/first"`)
	assert.Contains(t, out, `<h3 class="article-card-title">First post</h3>`)
	assert.Contains(t, out, `<time class="article-card-date">2024-01-02</time>`)
	assert.NotContains(t, out, "article-card-banner")
	assert.NotContains(t, out, "article-card-subtitle")
}

func Test_Author(t *testing.T) {
	plain := renderDescriptor(t, Author, hydrate.Props{"name": "Sam"})
	assert.Contains(t, plain, `<span class="author-name">Sam</span>`)

	linked := renderDescriptor(t, Author, hydrate.Props{"name": "Sam", "link": "https://example.com/sam"})
	assert.Contains(t, linked, `<a class="author-name" href="https://example.com/sam">Sam</a>`)
}

func Test_ClientOnlyCannotRender(t *testing.T) {
	_, err := DarkModeSwitch.Create(hydrate.Props{})
	assert.ErrorIs(t, err, hydrate.ErrClientOnly)
}

func Test_Registry(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "components"), 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "components", "badge.plush.html"),
		[]byte(`<span class="badge"><%= label %></span>`),
		0644,
	))

	reg, err := Registry(root, config.Bundle{
		Components: []config.Component{
			{Name: "Badge", Module: "./components/badge.js", Template: "components/badge.plush.html"},
			{Name: "Chart", Module: "./components/chart.js"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 7, reg.Len())

	badge, ok := reg.ByName("Badge")
	require.True(t, ok)
	assert.True(t, badge.Prerendered())
	assert.Equal(t, `<span class="badge">new</span>`, renderDescriptor(t, badge, hydrate.Props{"label": "new"}))

	chart, ok := reg.ByName("Chart")
	require.True(t, ok)
	assert.False(t, chart.Prerendered())

	off := false
	reg, err = Registry(root, config.Bundle{Builtins: &off})
	require.NoError(t, err)
	assert.Equal(t, 0, reg.Len())
}

func Test_Registry_MissingTemplate(t *testing.T) {
	_, err := Registry(t.TempDir(), config.Bundle{
		Components: []config.Component{{Name: "Badge", Module: "./b.js", Template: "nope.plush.html"}},
	})
	assert.Error(t, err)
}

func Test_Registry_NameClash(t *testing.T) {
	_, err := Registry(t.TempDir(), config.Bundle{
		Components: []config.Component{{Name: "Author", Module: blogPath + "/components/author/index.js"}},
	})
	assert.ErrorIs(t, err, hydrate.ErrDuplicateHash)
}

// Package components holds the registry entries a site starts with and the
// plush-backed renderers used to prerender them.
package components

import (
	"context"
	"embed"
	"io"
	"os"
	"path/filepath"

	"github.com/ZacxDev/go-static-blog/config"
	"github.com/ZacxDev/go-static-blog/hydrate"
	"github.com/a-h/templ"
	"github.com/gobuffalo/plush"
	"github.com/pkg/errors"
)

//go:embed templates/*.plush.html
var templates embed.FS

const (
	corePath = "@codedoc/core/dist/es6"
	blogPath = "@codedoc/coding-blog-plugin/dist/es5"
)

type ArticleCardProps struct {
	Src      string `json:"src"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Banner   string `json:"banner,omitempty"`
	Date     string `json:"date,omitempty"`
}

type AuthorProps struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Link   string `json:"link,omitempty"`
}

var (
	ToCToggle       = hydrate.ClientOnly("ToCToggle", corePath+"/components/page/toc/toggle/index.js")
	DarkModeSwitch  = hydrate.ClientOnly("DarkModeSwitch", corePath+"/components/darkmode/index.js")
	ConfigTransport = hydrate.ClientOnly("ConfigTransport", corePath+"/transport/config.js")

	ArticleCard = hydrate.Define("ArticleCard", blogPath+"/components/article-card/index.js",
		func(p ArticleCardProps) templ.Component {
			return embedded("templates/article_card.plush.html", p)
		})
	Author = hydrate.Define("Author", blogPath+"/components/author/index.js",
		func(p AuthorProps) templ.Component {
			return embedded("templates/author.plush.html", p)
		})
)

// Setup runs before any init behaviour.
var Setup = []config.Import{
	{Module: corePath + "/transport/setup-jss.js", Export: "initJssCs"},
}

// DefaultInit is the page behaviour every generated bundle starts.
var DefaultInit = []config.Import{
	{Module: blogPath + "/components/article-card/count-cards.js", Export: "countCards"},
	{Module: corePath + "/components/code/selection.js", Export: "codeSelection"},
	{Module: corePath + "/components/code/same-line-length.js", Export: "sameLineLengthInCodes"},
	{Module: corePath + "/components/code/line-hint/index.js", Export: "initHintBox"},
	{Module: corePath + "/components/code/line-ref/index.js", Export: "initCodeLineRef"},
	{Module: corePath + "/components/code/smart-copy.js", Export: "initSmartCopy"},
	{Module: corePath + "/components/heading/copy-headings.js", Export: "copyHeadings"},
	{Module: corePath + "/components/page/contentnav/highlight.js", Export: "contentNavHighlight"},
	{Module: corePath + "/transport/deferred-iframe.js", Export: "loadDeferredIFrames"},
	{Module: corePath + "/transport/smooth-loading.js", Export: "smoothLoading"},
	{Module: corePath + "/components/page/toc/toc-highlight.js", Export: "tocHighlight"},
	{Module: corePath + "/components/page/toc/search/post-nav/index.js", Export: "postNavSearch"},
}

func Default() []hydrate.Descriptor {
	return []hydrate.Descriptor{ToCToggle, DarkModeSwitch, ConfigTransport, ArticleCard, Author}
}

// FromManifest turns manifest components into descriptors. Templates are
// resolved against root and read once, here.
func FromManifest(root string, declared []config.Component) ([]hydrate.Descriptor, error) {
	out := make([]hydrate.Descriptor, 0, len(declared))
	for _, c := range declared {
		if c.Template == "" {
			out = append(out, hydrate.ClientOnly(c.Name, c.Module))
			continue
		}

		source, err := os.ReadFile(filepath.Join(root, c.Template))
		if err != nil {
			return nil, errors.Wrapf(err, "reading template for %s", c.Name)
		}
		tmpl := string(source)
		out = append(out, hydrate.Define(c.Name, c.Module, func(p hydrate.Props) templ.Component {
			return Plush(tmpl, p)
		}))
	}
	return out, nil
}

// Registry builds the registry for a manifest: the built-ins (unless disabled)
// followed by the declared components.
func Registry(root string, b config.Bundle) (*hydrate.Registry, error) {
	var ds []hydrate.Descriptor
	if b.UseBuiltins() {
		ds = append(ds, Default()...)
	}
	declared, err := FromManifest(root, b.Components)
	if err != nil {
		return nil, err
	}
	ds = append(ds, declared...)

	reg, err := hydrate.NewRegistry(ds...)
	if err != nil {
		return nil, errors.Wrap(err, "building component registry")
	}
	return reg, nil
}

// Plush renders a plush template with props bound to "props". For a property
// bag every key is also bound on its own.
func Plush(source string, props any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		ctx := plush.NewContext()
		ctx.Set("props", props)
		if bag, ok := props.(hydrate.Props); ok {
			for k, v := range bag {
				if k == "props" {
					continue
				}
				ctx.Set(k, v)
			}
		}

		out, err := plush.Render(source, ctx)
		if err != nil {
			return errors.Wrap(err, "rendering plush component")
		}
		_, err = io.WriteString(w, out)
		return errors.WithStack(err)
	})
}

func embedded(name string, props any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		source, err := templates.ReadFile(name)
		if err != nil {
			return errors.WithStack(err)
		}
		return Plush(string(source), props).Render(ctx, w)
	})
}

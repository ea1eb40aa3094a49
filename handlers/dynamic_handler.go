package handlers

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"regexp"
	"strings"

	"github.com/ZacxDev/go-static-blog/config"
	"github.com/ZacxDev/go-static-blog/hydrate"
	"github.com/gobuffalo/plush"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

func (s *Site) DynamicHandler(route config.Route) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := s.newContext(r, route)

		var content string
		var err error

		switch route.TemplateType {
		case config.TemplatePlush:
			content, err = renderPlushTemplate(route.Source, ctx)
		case config.TemplateMarkdown:
			var title, desc string
			content, title, desc, err = renderMarkdownTemplate(route.Source)
			ctx.Set("title", title)
			ctx.Set("description", desc)
		default:
			http.Error(w, "Unsupported template type", http.StatusInternalServerError)
			return
		}

		if err != nil {
			http.Error(w, fmt.Sprintf("Error rendering template: %v", err), http.StatusInternalServerError)
			return
		}

		ctx.Set("yield", template.HTML(content))

		pageHtml, err := renderPlushTemplate(s.Manifest.BaseLayout, ctx)
		if err != nil {
			http.Error(w, fmt.Sprintf("Error executing base layout: %v", err), http.StatusInternalServerError)
			return
		}

		s.writePage(w, r, http.StatusOK, pageHtml)
	}
}

// writePage sends the page through the hydrator when hydration is on and
// writes it with status.
func (s *Site) writePage(w http.ResponseWriter, r *http.Request, status int, pageHtml string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if s.hydrator == nil {
		w.WriteHeader(status)
		w.Write([]byte(pageHtml))
		return
	}

	var out bytes.Buffer
	stats, err := s.hydrator.Page(r.Context(), strings.NewReader(pageHtml), &out)
	if err != nil {
		s.Log.Error(err, "hydration failed", "path", r.URL.Path)
		http.Error(w, fmt.Sprintf("Error hydrating page: %v", err), http.StatusInternalServerError)
		return
	}
	s.Log.V(1).Info("hydrated page", "path", r.URL.Path,
		"prerendered", stats.Prerendered, "deferred", stats.Deferred, "missing", stats.Missing)

	w.WriteHeader(status)
	if _, err := w.Write(out.Bytes()); err != nil {
		s.Log.Error(err, "writing response", "path", r.URL.Path)
	}
}

func (s *Site) newContext(r *http.Request, route config.Route) *plush.Context {
	ctx := plush.NewContext()
	vars := mux.Vars(r)
	ctx.Set("params", vars)
	ctx.Set("registeredRoutes", s.registeredRoutes)
	ctx.Set("title", "")
	ctx.Set("description", "")

	// Get language from URL parameter, default to "en"
	lang := vars["lang"]
	if lang == "" {
		lang = "en"
	}

	// Add translation helper
	ctx.Set("text", func(key string) string {
		if t, ok := s.translations[lang][key]; ok {
			return t
		}
		return key
	})

	ctx.Set("lang", lang)
	ctx.Set("supportedLangs", s.Languages())
	ctx.Set("appOrigin", s.Manifest.Origin)

	ctx.Set("startsWith", func(str string, prefix string) bool {
		return strings.HasPrefix(str, prefix)
	})

	ctx.Set("matches", func(str string, pat string) bool {
		re := regexp.MustCompile(pat)
		return re.Match([]byte(str))
	})

	ctx.Set("replace", func(str string, old string, n string) string {
		return strings.Replace(str, old, n, 1)
	})

	ctx.Set("replaceAll", func(str string, old string, n string) string {
		return strings.ReplaceAll(str, old, n)
	})

	ctx.Set("replacePattern", func(str string, pat, n string) string {
		re := regexp.MustCompile(pat)
		return re.ReplaceAllString(str, n)
	})

	// Add canonical URL helper
	pathNoLang := strings.Replace(r.URL.Path, "/"+lang+"/", "/", 1)
	ctx.Set("canonical", fmt.Sprintf("%s/%s%s", strings.TrimSuffix(s.Manifest.Origin, "/"), lang, pathNoLang))
	ctx.Set("currentPath", r.URL.Path)

	scripts := make([]string, 0, len(route.JavascriptDeps))
	for _, dep := range route.JavascriptDeps {
		if src, ok := s.Scripts[dep]; ok {
			scripts = append(scripts, src)
		}
	}
	ctx.Set("scripts", scripts)

	ids := hydrate.NewIDs(r.URL.Path)
	ctx.Set("island", func(name string, props map[string]interface{}) (template.HTML, error) {
		return s.island(r.Context(), ids, name, props)
	})

	ctx.Set("include", func(name string) (template.HTML, error) {
		return s.include(name, ctx)
	})

	return ctx
}

// island renders the placeholder for a registered component.
func (s *Site) island(ctx context.Context, ids *hydrate.IDs, name string, props map[string]interface{}) (template.HTML, error) {
	if s.Registry == nil {
		return "", errors.Errorf("no component registry for island %q", name)
	}
	d, ok := s.Registry.ByName(name)
	if !ok {
		return "", errors.Errorf("unknown component %q", name)
	}

	var buf bytes.Buffer
	if err := hydrate.Placeholder(d, hydrate.Props(props), ids.Next()).Render(ctx, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func (s *Site) include(name string, ctx *plush.Context) (template.HTML, error) {
	partial, ok := s.Manifest.Partials[name]
	if !ok {
		return "", errors.Errorf("unknown partial %q", name)
	}

	var content string
	var err error
	switch partial.TemplateType {
	case config.TemplateMarkdown:
		content, _, _, err = renderMarkdownTemplate(partial.Source)
	default:
		content, err = renderPlushTemplate(partial.Source, ctx)
	}
	if err != nil {
		return "", errors.Wrapf(err, "rendering partial %s", name)
	}
	return template.HTML(content), nil
}

func renderPlushTemplate(source string, ctx *plush.Context) (string, error) {
	content, err := os.ReadFile(source)
	if err != nil {
		return "", errors.WithStack(err)
	}

	tmpl, err := plush.Parse(string(content))
	if err != nil {
		return "", errors.Wrapf(err, "parsing %s", source)
	}

	return tmpl.Exec(ctx)
}

func renderMarkdownTemplate(source string) (string, string, string, error) {
	content, err := os.ReadFile(source)
	if err != nil {
		return "", "", "", errors.WithStack(err)
	}

	// Split the content into frontmatter and Markdown
	parts := strings.SplitN(string(content), "\n---\n", 3)
	if len(parts) != 2 {
		return "", "", "", fmt.Errorf("invalid Markdown file format: %s", source)
	}

	// Parse the frontmatter
	var metadata map[string]string
	err = yaml.Unmarshal([]byte(parts[0]), &metadata)
	if err != nil {
		return "", "", "", fmt.Errorf("error parsing frontmatter: %v", err)
	}

	// Parse the Markdown content
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	htmlContent := markdown.ToHTML([]byte(parts[1]), p, nil)
	contentHtml := strings.Replace(`
  <article class="flex flex-col gap-4 blog-container">
  [content]
  </article>
  `, "[content]", string(htmlContent), 1)

	return contentHtml, metadata["title"], metadata["description"], nil
}

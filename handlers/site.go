package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZacxDev/go-static-blog/config"
	"github.com/ZacxDev/go-static-blog/hydrate"
	"github.com/ZacxDev/go-static-blog/utils"
	"github.com/go-logr/logr"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const defaultNotFoundPage = "templates/404.plush.html"

// Site is everything a request needs to render a page.
type Site struct {
	Manifest *config.SiteManifest
	Registry *hydrate.Registry
	// Scripts maps javascript target names to their emitted public paths.
	Scripts map[string]string
	Log     logr.Logger

	hydrator         *hydrate.Hydrator
	translations     map[string]map[string]string
	registeredRoutes []string
}

func NewSite(manifest *config.SiteManifest, registry *hydrate.Registry, scripts map[string]string, log logr.Logger) (*Site, error) {
	translations, err := loadTranslations("translations")
	if err != nil {
		return nil, fmt.Errorf("error loading translations: %v", err)
	}

	site := &Site{
		Manifest:     manifest,
		Registry:     registry,
		Scripts:      scripts,
		Log:          log,
		translations: translations,
	}

	if manifest.Hydration.IsEnabled() && registry != nil {
		server := registry.Filter(hydrate.Descriptor.Prerendered)
		if !manifest.Hydration.PrerenderEnabled() {
			server, _ = hydrate.NewRegistry()
		}
		site.hydrator = &hydrate.Hydrator{
			Registry:  server,
			Renderer:  hydrate.HTMLRenderer{},
			BundleSrc: scripts[manifest.Bundle.Name],
			Log:       log.WithName("hydrate"),
		}
	}

	return site, nil
}

// Languages returns the translation codes, sorted.
func (s *Site) Languages() []string {
	langs := make([]string, 0, len(s.translations))
	for lang := range s.translations {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

func (s *Site) langPrefix() string {
	langs := s.Languages()
	if len(langs) == 0 {
		return ""
	}
	return "/{lang:" + strings.Join(langs, "|") + "}"
}

func (s *Site) SetupRouter() (*mux.Router, error) {
	router := mux.NewRouter()
	s.registeredRoutes = nil

	router.NotFoundHandler = http.HandlerFunc(s.Custom404Handler)

	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	prefix := s.langPrefix()
	for _, route := range s.Manifest.Routes {
		if strings.Contains(route.Path, ":slug") {
			// Handle dynamic blog post routes
			if err := s.setupBlogRoutes(router, route); err != nil {
				return nil, fmt.Errorf("error setting up blog routes: %v", err)
			}
			continue
		}

		// Set up route with optional language parameter
		if prefix != "" {
			router.HandleFunc(prefix+route.Path, s.DynamicHandler(route)).Methods("GET")
			s.registeredRoutes = append(s.registeredRoutes, prefix+route.Path)
		}
		router.HandleFunc(route.Path, s.DynamicHandler(route)).Methods("GET")
		s.registeredRoutes = append(s.registeredRoutes, route.Path)
	}

	sitemap, err := utils.GenerateSitemapContent(s.Manifest.Origin, s.Languages(), s.registeredRoutes)
	if err != nil {
		return nil, errors.Wrap(err, "generating sitemap")
	}
	router.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(sitemap))
	}).Methods("GET")

	return router, nil
}

func (s *Site) setupBlogRoutes(router *mux.Router, route config.Route) error {
	blogPosts, err := filepath.Glob("pages/blog/*")
	if err != nil {
		return errors.WithStack(err)
	}

	for _, postDir := range blogPosts {
		isDir, err := isDirectory(postDir)
		if err != nil {
			return errors.WithStack(err)
		}

		if !isDir {
			continue
		}

		slug := filepath.Base(postDir)
		if slug == "" {
			continue
		}

		langPath := strings.Replace(route.Path, ":slug", slug, 1)
		if len(s.translations) == 0 {
			router.HandleFunc(langPath, s.DynamicHandler(config.Route{
				Path:           langPath,
				Source:         filepath.Join(postDir, "index.md"),
				TemplateType:   route.TemplateType,
				JavascriptDeps: route.JavascriptDeps,
				PartialDeps:    route.PartialDeps,
			})).Methods("GET")
			s.registeredRoutes = append(s.registeredRoutes, langPath)
			continue
		}

		for _, supportedLang := range s.Languages() {
			// Route with language parameter
			router.HandleFunc("/"+supportedLang+langPath, s.DynamicHandler(config.Route{
				Path:           langPath,
				Source:         filepath.Join(postDir, supportedLang+".md"),
				TemplateType:   route.TemplateType,
				JavascriptDeps: route.JavascriptDeps,
				PartialDeps:    route.PartialDeps,
			})).Methods("GET")
			s.registeredRoutes = append(s.registeredRoutes, "/"+supportedLang+langPath)
		}
	}

	return nil
}

func (s *Site) RegisteredRoutes() []string {
	return s.registeredRoutes
}

func loadTranslations(dir string) (map[string]map[string]string, error) {
	translations := make(map[string]map[string]string)

	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		lang := strings.TrimSuffix(filepath.Base(file), ".yaml")
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}

		var langTranslations map[string]string
		err = yaml.Unmarshal(data, &langTranslations)
		if err != nil {
			return nil, err
		}

		translations[lang] = langTranslations
	}

	return translations, nil
}

func isDirectory(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

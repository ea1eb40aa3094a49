package handlers

import (
	"html/template"
	"net/http"

	"github.com/ZacxDev/go-static-blog/config"
)

func (s *Site) Custom404Handler(w http.ResponseWriter, r *http.Request) {
	source := s.Manifest.NotFoundPageSource
	if source == "" {
		source = defaultNotFoundPage
	}

	ctx := s.newContext(r, config.Route{Source: source, TemplateType: config.TemplatePlush})

	// Load the 404 template
	notFoundContent, err := renderPlushTemplate(source, ctx)
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	// Set the 404 content in the base layout context
	ctx.Set("yield", template.HTML(notFoundContent))

	pageHtml, err := renderPlushTemplate(s.Manifest.BaseLayout, ctx)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	s.writePage(w, r, http.StatusNotFound, pageHtml)
}

package hydrate

import (
	"context"
	"encoding/json"
	"io"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// Stats summarizes one hydrated page.
type Stats struct {
	Prerendered int
	Deferred    int
	Missing     int
}

// Hydrator runs the placeholders of a page through a Dispatcher over
// Registry. Placeholders it cannot render stay in the page for the client
// bundle; when any remain and BundleSrc is set, the bundle script is appended
// to the body.
type Hydrator struct {
	Registry  *Registry
	Renderer  Renderer
	BundleSrc string
	Log       logr.Logger
}

func (h *Hydrator) Page(ctx context.Context, r io.Reader, w io.Writer) (Stats, error) {
	var stats Stats

	doc, err := ParseDocument(r)
	if err != nil {
		return stats, err
	}

	renderer := h.Renderer
	if renderer == nil {
		renderer = HTMLRenderer{}
	}
	registry := h.Registry
	if registry == nil {
		registry, _ = NewRegistry()
	}

	requests, skipped, err := h.collect(doc, registry)
	if err != nil {
		return stats, err
	}
	stats.Deferred = skipped

	var chain Chain
	chain.Install(func(Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req Request) error {
			stats.Deferred++
			return nil
		})
	})
	chain.Install(Dispatcher(registry, renderer, doc, h.Log))

	for _, req := range requests {
		if _, known := registry.Lookup(req.Hash); known && doc.ElementByID(req.ID) == nil {
			stats.Missing++
		}
		if err := chain.Hydrate(ctx, req); err != nil {
			return stats, err
		}
	}
	stats.Prerendered = len(requests) + skipped - stats.Deferred - stats.Missing

	if stats.Deferred > 0 && h.BundleSrc != "" {
		doc.AppendScript(h.BundleSrc)
	}

	if err := doc.Render(w); err != nil {
		return stats, err
	}
	return stats, nil
}

// collect reads every placeholder before any of them is replaced. Props that
// do not parse only fail the page when registry would render the placeholder;
// others are left for the client and counted as skipped.
func (h *Hydrator) collect(doc *Document, registry *Registry) ([]Request, int, error) {
	nodes := doc.Placeholders()
	requests := make([]Request, 0, len(nodes))
	skipped := 0
	for _, n := range nodes {
		req, err := requestFor(n)
		if err != nil {
			if _, known := registry.Lookup(req.Hash); known {
				return nil, 0, err
			}
			h.Log.V(1).Info("leaving placeholder with unreadable props", "id", req.ID, "hash", req.Hash)
			skipped++
			continue
		}
		requests = append(requests, req)
	}
	return requests, skipped, nil
}

func requestFor(n *html.Node) (Request, error) {
	req := Request{
		ID:    attr(n, "id"),
		Hash:  attr(n, HashAttr),
		Props: Props{},
	}
	if raw := attr(n, PropsAttr); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Props); err != nil {
			return req, errors.Wrapf(ErrInvalidProps, "#%s: %v", req.ID, err)
		}
	}
	return req, nil
}

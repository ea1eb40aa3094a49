package hydrate

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
)

// Dispatcher returns a middleware that hydrates the hashes found in reg
// against dom and passes every other request to the handler it wraps.
//
// A known hash whose element is not in dom is dropped without rendering, so
// repeating a request for an id that was already replaced has no effect.
func Dispatcher(reg *Registry, r Renderer, dom DOM, log logr.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req Request) error {
			d, ok := reg.Lookup(req.Hash)
			if !ok {
				if next != nil {
					return next.Hydrate(ctx, req)
				}
				log.V(1).Info("unhandled hash", "id", req.ID, "hash", req.Hash)
				return nil
			}

			target := dom.ElementByID(req.ID)
			if target == nil {
				log.V(1).Info("placeholder not found", "id", req.ID, "component", d.Name)
				return nil
			}

			c, err := r.Create(d, req.Props)
			if err != nil {
				return errors.Wrapf(err, "creating %s for #%s", d.Name, req.ID)
			}
			frag, err := r.Render(ctx, c)
			if err != nil {
				return errors.Wrapf(err, "rendering %s for #%s", d.Name, req.ID)
			}
			if err := frag.After(target); err != nil {
				return errors.Wrapf(err, "placing %s after #%s", d.Name, req.ID)
			}
			dom.Remove(target)

			log.V(1).Info("hydrated", "id", req.ID, "component", d.Name)
			return nil
		})
	}
}

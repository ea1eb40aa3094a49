package hydrate

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type labelProps struct {
	Label string `json:"label"`
	Count int    `json:"count,omitempty"`
}

func componentA() Descriptor {
	return Define("ComponentA", "./a.js", func(p labelProps) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, err := fmt.Fprintf(w, `<span class="a">%s</span>`, html.EscapeString(p.Label))
			return err
		})
	})
}

func parse(t *testing.T, page string) *Document {
	t.Helper()
	doc, err := ParseDocument(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func render(t *testing.T, doc *Document) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, doc.Render(&sb))
	return sb.String()
}

func chainFor(t *testing.T, doc *Document, prev Handler, ds ...Descriptor) *Chain {
	t.Helper()
	reg, err := NewRegistry(ds...)
	require.NoError(t, err)

	var chain Chain
	if prev != nil {
		chain.Install(func(Handler) Handler { return prev })
	}
	chain.Install(Dispatcher(reg, HTMLRenderer{}, doc, logr.Discard()))
	return &chain
}

func Test_Dispatcher_ReplacesKnownHash(t *testing.T) {
	a := componentA()
	doc := parse(t, `<html><body><p id="before"></p><div id="x"></div><p id="after"></p></body></html>`)
	chain := chainFor(t, doc, nil, a)

	err := chain.Hydrate(context.Background(), Request{ID: "x", Hash: a.Hash, Props: Props{"label": "hi"}})
	require.NoError(t, err)

	assert.Nil(t, doc.ElementByID("x"))
	out := render(t, doc)
	assert.Contains(t, out, `<p id="before"></p><span class="a">hi</span><p id="after"></p>`)
}

func Test_Dispatcher_ForwardsUnknownHash(t *testing.T) {
	a := componentA()
	doc := parse(t, `<html><body><div id="y"></div></body></html>`)
	before := render(t, doc)

	var calls []Request
	prev := HandlerFunc(func(ctx context.Context, req Request) error {
		calls = append(calls, req)
		return nil
	})
	chain := chainFor(t, doc, prev, a)

	err := chain.Hydrate(context.Background(), Request{ID: "y", Hash: "H2", Props: Props{}})
	require.NoError(t, err)

	require.Len(t, calls, 1)
	assert.Equal(t, Request{ID: "y", Hash: "H2", Props: Props{}}, calls[0])
	assert.Equal(t, before, render(t, doc))
}

func Test_Dispatcher_UnknownHashWithoutFallback(t *testing.T) {
	doc := parse(t, `<html><body><div id="y"></div></body></html>`)
	before := render(t, doc)
	chain := chainFor(t, doc, nil, componentA())

	err := chain.Hydrate(context.Background(), Request{ID: "y", Hash: "UNKNOWN", Props: Props{}})
	require.NoError(t, err)
	assert.Equal(t, before, render(t, doc))
}

func Test_Dispatcher_RepeatedIDIsNoop(t *testing.T) {
	a := componentA()
	doc := parse(t, `<html><body><div id="x"></div><div id="other"></div></body></html>`)
	chain := chainFor(t, doc, nil, a)
	ctx := context.Background()
	req := Request{ID: "x", Hash: a.Hash, Props: Props{"label": "once"}}

	require.NoError(t, chain.Hydrate(ctx, req))
	first := render(t, doc)

	require.NoError(t, chain.Hydrate(ctx, req))
	assert.Equal(t, first, render(t, doc))
	assert.NotNil(t, doc.ElementByID("other"))
	assert.Equal(t, 1, strings.Count(first, `class="a"`))
}

func Test_Dispatcher_RenderErrorLeavesPlaceholder(t *testing.T) {
	boom := errors.New("boom")
	broken := Define("Broken", "./broken.js", func(labelProps) templ.Component {
		return templ.ComponentFunc(func(context.Context, io.Writer) error { return boom })
	})
	doc := parse(t, `<html><body><div id="x"></div></body></html>`)
	chain := chainFor(t, doc, nil, broken)

	err := chain.Hydrate(context.Background(), Request{ID: "x", Hash: broken.Hash})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.NotNil(t, doc.ElementByID("x"))
}

func Test_Dispatcher_ClientOnlyDescriptor(t *testing.T) {
	c := ClientOnly("Toggle", "./toggle.js")
	doc := parse(t, `<html><body><div id="x"></div></body></html>`)
	chain := chainFor(t, doc, nil, c)

	err := chain.Hydrate(context.Background(), Request{ID: "x", Hash: c.Hash})
	assert.True(t, errors.Is(err, ErrClientOnly))
	assert.NotNil(t, doc.ElementByID("x"))
}

func Test_Chain_InstallOrder(t *testing.T) {
	var order []string
	layer := func(name string, handles string) Middleware {
		return func(next Handler) Handler {
			return HandlerFunc(func(ctx context.Context, req Request) error {
				order = append(order, name)
				if req.Hash == handles || next == nil {
					return nil
				}
				return next.Hydrate(ctx, req)
			})
		}
	}

	var chain Chain
	assert.NoError(t, chain.Hydrate(context.Background(), Request{Hash: "any"}))
	assert.Equal(t, 0, chain.Len())

	chain.Install(layer("first", "a"))
	chain.Install(layer("second", "b"))
	assert.Equal(t, 2, chain.Len())

	require.NoError(t, chain.Hydrate(context.Background(), Request{Hash: "a"}))
	assert.Equal(t, []string{"second", "first"}, order)

	order = nil
	require.NoError(t, chain.Hydrate(context.Background(), Request{Hash: "b"}))
	assert.Equal(t, []string{"second"}, order)
}

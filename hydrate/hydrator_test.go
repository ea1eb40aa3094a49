package hydrate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func placeholderHTML(t *testing.T, d Descriptor, props any, id string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Placeholder(d, props, id).Render(context.Background(), &buf))
	return buf.String()
}

func Test_Placeholder(t *testing.T) {
	a := componentA()
	out := placeholderHTML(t, a, labelProps{Label: "hi"}, "x")
	assert.Equal(t,
		`<div id="x" data-hydrate="`+a.Hash+`" data-props="{&#34;label&#34;:&#34;hi&#34;}"></div>`,
		out,
	)

	tricky := placeholderHTML(t, a, labelProps{Label: `<"a" & 'b'>`, Count: 2}, "y")
	doc := parse(t, "<html><body>"+tricky+"</body></html>")
	reg, err := NewRegistry(a)
	require.NoError(t, err)
	reqs, _, err := (&Hydrator{Log: logr.Discard()}).collect(doc, reg)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "y", reqs[0].ID)
	assert.Equal(t, a.Hash, reqs[0].Hash)
	assert.Equal(t, Props{"label": `<"a" & 'b'>`, "count": float64(2)}, reqs[0].Props)
}

func Test_IDs(t *testing.T) {
	first := NewIDs("/blog/post")
	second := NewIDs("/blog/post")

	a, b := first.Next(), first.Next()
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "h-"))
	assert.Equal(t, a, second.Next())
	assert.NotEqual(t, a, NewIDs("/other").Next())
}

func Test_Hydrator_Page(t *testing.T) {
	a := componentA()
	toggle := ClientOnly("Toggle", "./toggle.js")
	reg, err := NewRegistry(a, toggle)
	require.NoError(t, err)

	page := "<html><body>" +
		placeholderHTML(t, a, Props{"label": "one"}, "p1") +
		placeholderHTML(t, toggle, nil, "p2") +
		placeholderHTML(t, a, Props{"label": "two"}, "p3") +
		"</body></html>"

	h := &Hydrator{
		Registry:  reg.Filter(Descriptor.Prerendered),
		BundleSrc: "/static/js/entry_abc.js",
		Log:       logr.Discard(),
	}

	var out bytes.Buffer
	stats, err := h.Page(context.Background(), strings.NewReader(page), &out)
	require.NoError(t, err)
	assert.Equal(t, Stats{Prerendered: 2, Deferred: 1}, stats)

	got := out.String()
	assert.Contains(t, got, `<span class="a">one</span>`)
	assert.Contains(t, got, `<span class="a">two</span>`)
	assert.NotContains(t, got, `id="p1"`)
	assert.NotContains(t, got, `id="p3"`)
	assert.Contains(t, got, `id="p2"`)
	assert.Contains(t, got, `<script type="module" src="/static/js/entry_abc.js"></script></body>`)
}

func Test_Hydrator_NoBundleWhenEverythingPrerendered(t *testing.T) {
	a := componentA()
	reg, err := NewRegistry(a)
	require.NoError(t, err)

	page := "<html><body>" + placeholderHTML(t, a, Props{"label": "one"}, "p1") + "</body></html>"
	h := &Hydrator{Registry: reg, BundleSrc: "/bundle.js"}

	var out bytes.Buffer
	stats, err := h.Page(context.Background(), strings.NewReader(page), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Prerendered)
	assert.NotContains(t, out.String(), "/bundle.js")
}

func Test_Hydrator_InvalidProps(t *testing.T) {
	a := componentA()
	reg, err := NewRegistry(a)
	require.NoError(t, err)

	page := `<html><body><div id="x" data-hydrate="` + a.Hash + `" data-props="{not json"></div></body></html>`
	h := &Hydrator{Registry: reg}

	_, err = h.Page(context.Background(), strings.NewReader(page), &bytes.Buffer{})
	assert.True(t, errors.Is(err, ErrInvalidProps))
}

func Test_Hydrator_InvalidPropsForeignHash(t *testing.T) {
	a := componentA()
	reg, err := NewRegistry(a)
	require.NoError(t, err)

	page := "<html><body>" +
		`<div id="x" data-hydrate="H" data-props="{not json"></div>` +
		placeholderHTML(t, a, Props{"label": "one"}, "p1") +
		"</body></html>"
	h := &Hydrator{Registry: reg, BundleSrc: "/bundle.js"}

	var out bytes.Buffer
	stats, err := h.Page(context.Background(), strings.NewReader(page), &out)
	require.NoError(t, err)
	assert.Equal(t, Stats{Prerendered: 1, Deferred: 1}, stats)
	assert.Contains(t, out.String(), `<div id="x" data-hydrate="H" data-props="{not json"></div>`)
	assert.Contains(t, out.String(), `<span class="a">one</span>`)
	assert.Contains(t, out.String(), `<script type="module" src="/bundle.js"></script>`)
}

func Test_Hydrator_MissingID(t *testing.T) {
	a := componentA()
	reg, err := NewRegistry(a)
	require.NoError(t, err)

	page := `<html><body><div data-hydrate="` + a.Hash + `"></div></body></html>`
	h := &Hydrator{Registry: reg}

	var out bytes.Buffer
	stats, err := h.Page(context.Background(), strings.NewReader(page), &out)
	require.NoError(t, err)
	assert.Equal(t, Stats{Missing: 1}, stats)
	assert.Contains(t, out.String(), `data-hydrate="`+a.Hash+`"`)
}

func Test_NodeList_AfterDetached(t *testing.T) {
	assert.True(t, errors.Is(NodeList{}.After(nil), ErrDetached))
}

func tableRow() Descriptor {
	return Define("Row", "./row.js", func(p labelProps) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, err := fmt.Fprintf(w, `<tr class="row"><td>%s</td></tr>`, p.Label)
			return err
		})
	})
}

func Test_Dispatcher_TableContext(t *testing.T) {
	row := tableRow()
	doc := parse(t, `<html><body><table><tbody><tr id="first"><td>a</td></tr><tr id="x"></tr></tbody></table></body></html>`)
	chain := chainFor(t, doc, nil, row)

	err := chain.Hydrate(context.Background(), Request{ID: "x", Hash: row.Hash, Props: Props{"label": "cell"}})
	require.NoError(t, err)

	assert.Nil(t, doc.ElementByID("x"))
	assert.Contains(t, render(t, doc), `<tbody><tr id="first"><td>a</td></tr><tr class="row"><td>cell</td></tr></tbody>`)
}

func Test_Markup_AfterTopLevel(t *testing.T) {
	parent := &html.Node{Type: html.DocumentNode}
	target := &html.Node{Type: html.ElementNode, Data: "div"}
	parent.AppendChild(target)

	require.NoError(t, Markup(`<p>x</p>`).After(target))
	require.NotNil(t, target.NextSibling)
	assert.Equal(t, "p", target.NextSibling.Data)
}

func Test_Markup_AfterDetached(t *testing.T) {
	assert.True(t, errors.Is(Markup(`<p>x</p>`).After(&html.Node{Type: html.ElementNode, Data: "div"}), ErrDetached))
}

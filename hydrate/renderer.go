package hydrate

import (
	"bytes"
	"context"

	"github.com/a-h/templ"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// Renderer turns a descriptor and its props into nodes that can be placed in
// a document.
type Renderer interface {
	Create(d Descriptor, props Props) (templ.Component, error)
	Render(ctx context.Context, c templ.Component) (Fragment, error)
}

// Fragment is rendered output not yet attached to a document.
type Fragment interface {
	After(target *html.Node) error
}

// HTMLRenderer renders templ components to markup. The markup is parsed when
// it is placed, in the context of the element it lands in, so rows, cells and
// options survive inside tables and selects.
type HTMLRenderer struct{}

func (HTMLRenderer) Create(d Descriptor, props Props) (templ.Component, error) {
	return d.Create(props)
}

func (HTMLRenderer) Render(ctx context.Context, c templ.Component) (Fragment, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return nil, errors.Wrap(err, "rendering component")
	}
	return Markup(buf.Bytes()), nil
}

// Markup is a Fragment of unparsed HTML.
type Markup []byte

// After parses m with target's parent as context and inserts the result as
// the next siblings of target.
func (m Markup) After(target *html.Node) error {
	if target == nil || target.Parent == nil {
		return ErrDetached
	}
	nodes, err := html.ParseFragment(bytes.NewReader(m), fragmentContext(target.Parent))
	if err != nil {
		return errors.Wrap(err, "parsing rendered component")
	}
	return NodeList(nodes).After(target)
}

// fragmentContext returns an element the parser can use as context. The
// document node itself is not an element, so top level output parses as body
// content.
func fragmentContext(parent *html.Node) *html.Node {
	if parent.Type == html.ElementNode {
		return parent
	}
	return &html.Node{Type: html.ElementNode, Data: "body"}
}

// NodeList is a Fragment made of detached sibling nodes.
type NodeList []*html.Node

// After inserts the nodes, in order, as the next siblings of target.
func (l NodeList) After(target *html.Node) error {
	if target == nil || target.Parent == nil {
		return ErrDetached
	}
	parent, next := target.Parent, target.NextSibling
	for _, n := range l {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		parent.InsertBefore(n, next)
	}
	return nil
}

package hydrate

import (
	"io"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	HashAttr  = "data-hydrate"
	PropsAttr = "data-props"
)

// DOM is the part of a document the Dispatcher mutates.
type DOM interface {
	ElementByID(id string) *html.Node
	Remove(n *html.Node)
}

// Document is a parsed HTML page.
type Document struct {
	root *html.Node
}

func ParseDocument(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "parsing html")
	}
	return &Document{root: root}, nil
}

// ElementByID returns the first element whose id is id, or nil.
func (d *Document) ElementByID(id string) *html.Node {
	if id == "" {
		return nil
	}
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Remove detaches n from the tree. Detached nodes are ignored.
func (d *Document) Remove(n *html.Node) {
	if n == nil || n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Placeholders returns the elements carrying a hydrate hash, in document order.
func (d *Document) Placeholders() []*html.Node {
	var out []*html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && hasAttr(n, HashAttr) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// AppendScript adds a module script to the end of body.
func (d *Document) AppendScript(src string) {
	var body *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			body = n
			return false
		}
		return true
	})
	if body == nil {
		return
	}
	body.AppendChild(&html.Node{
		Type:     html.ElementNode,
		Data:     "script",
		DataAtom: atom.Script,
		Attr: []html.Attribute{
			{Key: "type", Val: "module"},
			{Key: "src", Val: src},
		},
	})
}

func (d *Document) Render(w io.Writer) error {
	return errors.WithStack(html.Render(w, d.root))
}

// walk visits n and its descendants depth first until visit returns false.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return true
		}
	}
	return false
}

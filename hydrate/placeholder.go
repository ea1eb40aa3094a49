package hydrate

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"sync"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Placeholder renders the server-side marker for d. props may be a Props bag
// or any value that marshals to a JSON object.
func Placeholder(d Descriptor, props any, id string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if props == nil {
			props = Props{}
		}
		raw, err := json.Marshal(props)
		if err != nil {
			return errors.Wrapf(err, "encoding props for %s", d.Name)
		}
		_, err = fmt.Fprintf(w, `<div id="%s" %s="%s" %s="%s"></div>`,
			html.EscapeString(id),
			HashAttr, html.EscapeString(d.Hash),
			PropsAttr, html.EscapeString(string(raw)),
		)
		return errors.WithStack(err)
	})
}

// IDs hands out placeholder ids that are stable for a given page, so that
// rebuilding an unchanged site produces identical output.
type IDs struct {
	mu   sync.Mutex
	page string
	seq  int
}

func NewIDs(page string) *IDs {
	return &IDs{page: page}
}

func (g *IDs) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s#%d", g.page, g.seq)))
	return "h-" + id.String()
}

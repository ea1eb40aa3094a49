package javascript

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/ZacxDev/go-static-blog/config"
	"github.com/ZacxDev/go-static-blog/hydrate"
	"github.com/pkg/errors"
)

// Entry is everything the generated bundle entry imports. Relative module
// specifiers ("./x.js", "../x.js") are relative to Root, the working directory
// when Root is empty.
type Entry struct {
	Root     string
	Renderer string
	Setup    []config.Import
	Init     []config.Import
	Registry *hydrate.Registry
}

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

type entryImport struct {
	Module string
	Export string
	Call   bool
}

type entryComponent struct {
	Hash   string
	Export string
}

var entryTemplate = template.Must(template.New("entry").Funcs(template.FuncMap{
	"quote": strconv.Quote,
}).Parse(`import { getRenderer } from {{ quote .Renderer }};
{{ range .Imports }}import { {{ .Export }} } from {{ quote .Module }};{{ if .Call }}{{ .Export }}();{{ end }}
{{ end }}
const components = {
{{- range $i, $c := .Components }}{{ if $i }},{{ end }}
  {{ quote $c.Hash }}: {{ $c.Export }}
{{- end }}
};

const renderer = getRenderer();
const ogtransport = window.__sdh_transport;
window.__sdh_transport = function(id, hash, props) {
  if (Object.prototype.hasOwnProperty.call(components, hash)) {
    const target = document.getElementById(id);
    if (!target) return;
    renderer.render(renderer.create(components[hash], props)).after(target);
    target.remove();
  }
  else if (ogtransport) ogtransport(id, hash, props);
};

function hydratePlaceholders() {
  document.querySelectorAll('[{{ .HashAttr }}]').forEach(function(el) {
    const raw = el.getAttribute('{{ .PropsAttr }}');
    window.__sdh_transport(el.id, el.getAttribute('{{ .HashAttr }}'), raw ? JSON.parse(raw) : {});
  });
}

if (document.readyState === 'loading') document.addEventListener('DOMContentLoaded', hydratePlaceholders);
else hydratePlaceholders();
`))

// GenerateEntry renders the bundle entry source for e. Output depends only on
// e, so rebuilding with an unchanged manifest yields the same bundle hash.
func GenerateEntry(e Entry) ([]byte, error) {
	return e.generate(func(module string) (string, error) { return module, nil })
}

func (e Entry) generate(resolve func(string) (string, error)) ([]byte, error) {
	if e.Renderer == "" {
		return nil, errors.New("entry renderer module is required")
	}

	renderer, err := resolve(e.Renderer)
	if err != nil {
		return nil, err
	}

	data := struct {
		Renderer   string
		Imports    []entryImport
		Components []entryComponent
		HashAttr   string
		PropsAttr  string
	}{
		Renderer:  renderer,
		HashAttr:  hydrate.HashAttr,
		PropsAttr: hydrate.PropsAttr,
	}

	for _, imp := range e.Setup {
		data.Imports = append(data.Imports, entryImport{Module: imp.Module, Export: imp.Export, Call: true})
	}
	for _, imp := range e.Init {
		data.Imports = append(data.Imports, entryImport{Module: imp.Module, Export: imp.Export, Call: true})
	}
	if e.Registry != nil {
		for _, d := range e.Registry.Descriptors() {
			data.Imports = append(data.Imports, entryImport{Module: d.Module, Export: d.Name})
			data.Components = append(data.Components, entryComponent{Hash: d.Hash, Export: d.Name})
		}
	}

	for i, imp := range data.Imports {
		if !identifier.MatchString(imp.Export) {
			return nil, errors.Errorf("export %q from %s is not a javascript identifier", imp.Export, imp.Module)
		}
		if data.Imports[i].Module, err = resolve(imp.Module); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := entryTemplate.Execute(&buf, data); err != nil {
		return nil, errors.WithStack(err)
	}
	return buf.Bytes(), nil
}

// WriteEntry generates the entry and writes it to path, creating parent
// directories as needed. Relative specifiers are rewritten so they resolve
// from the directory of path.
func WriteEntry(path string, e Entry) error {
	src, err := e.generate(func(module string) (string, error) {
		return relocate(module, e.Root, filepath.Dir(path))
	})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(path, src, 0644))
}

// relocate rewrites a specifier relative to root into one relative to dir.
// Bare package specifiers are returned unchanged.
func relocate(module, root, dir string) (string, error) {
	if !strings.HasPrefix(module, "./") && !strings.HasPrefix(module, "../") {
		return module, nil
	}
	from, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.WithStack(err)
	}
	to, err := filepath.Abs(filepath.Join(root, filepath.FromSlash(module)))
	if err != nil {
		return "", errors.WithStack(err)
	}
	rel, err := filepath.Rel(from, to)
	if err != nil {
		return "", errors.Wrapf(err, "relocating %s", module)
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel, nil
}

package hydrate

import (
	"crypto/md5"
	"encoding/base64"

	"github.com/a-h/templ"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

// Props is the property bag carried by a placeholder.
type Props map[string]any

// Descriptor describes one registered component variant: the client export it
// maps to and, for prerenderable components, how to build it from props.
type Descriptor struct {
	Name   string
	Module string
	Hash   string

	create func(Props) (templ.Component, error)
}

// Hash returns the registry key of the export name in module.
func Hash(module, name string) string {
	sum := md5.Sum([]byte(module + "#" + name))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Define builds a prerenderable descriptor. Props are decoded into P using
// the json struct tags of P before render is called.
func Define[P any](name, module string, render func(P) templ.Component) Descriptor {
	return Descriptor{
		Name:   name,
		Module: module,
		Hash:   Hash(module, name),
		create: func(props Props) (templ.Component, error) {
			var p P
			if err := DecodeProps(props, &p); err != nil {
				return nil, errors.Wrapf(err, "decoding props for %s", name)
			}
			return render(p), nil
		},
	}
}

// ClientOnly builds a descriptor that is only ever hydrated by the browser
// bundle.
func ClientOnly(name, module string) Descriptor {
	return Descriptor{
		Name:   name,
		Module: module,
		Hash:   Hash(module, name),
	}
}

// Prerendered reports whether d can be rendered on the server.
func (d Descriptor) Prerendered() bool {
	return d.create != nil
}

// Create builds the component for props.
func (d Descriptor) Create(props Props) (templ.Component, error) {
	if d.create == nil {
		return nil, errors.Wrap(ErrClientOnly, d.Name)
	}
	return d.create(props)
}

// DecodeProps copies a property bag into the struct pointed to by out.
func DecodeProps(props Props, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(dec.Decode(map[string]any(props)))
}

package hydrate

import (
	"sort"

	"github.com/pkg/errors"
)

// Registry maps component hashes to descriptors. It is never mutated after
// NewRegistry returns, so it can be shared freely.
type Registry struct {
	byHash map[string]Descriptor
	byName map[string]string
}

func NewRegistry(descriptors ...Descriptor) (*Registry, error) {
	reg := &Registry{
		byHash: make(map[string]Descriptor, len(descriptors)),
		byName: make(map[string]string, len(descriptors)),
	}

	for _, d := range descriptors {
		if d.Hash == "" {
			return nil, errors.Wrap(ErrEmptyHash, d.Name)
		}
		if prev, exists := reg.byHash[d.Hash]; exists {
			return nil, errors.Wrapf(ErrDuplicateHash, "%s and %s share %q", prev.Name, d.Name, d.Hash)
		}
		if _, exists := reg.byName[d.Name]; exists {
			return nil, errors.Wrapf(ErrDuplicateName, "%q", d.Name)
		}
		reg.byHash[d.Hash] = d
		reg.byName[d.Name] = d.Hash
	}

	return reg, nil
}

func (reg *Registry) Lookup(hash string) (Descriptor, bool) {
	d, ok := reg.byHash[hash]
	return d, ok
}

func (reg *Registry) ByName(name string) (Descriptor, bool) {
	hash, ok := reg.byName[name]
	if !ok {
		return Descriptor{}, false
	}
	return reg.byHash[hash], true
}

func (reg *Registry) Len() int {
	return len(reg.byHash)
}

// Descriptors returns every entry ordered by name.
func (reg *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(reg.byHash))
	for _, d := range reg.byHash {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Filter returns a new registry holding the entries keep accepts.
func (reg *Registry) Filter(keep func(Descriptor) bool) *Registry {
	out := &Registry{
		byHash: make(map[string]Descriptor),
		byName: make(map[string]string),
	}
	for hash, d := range reg.byHash {
		if keep(d) {
			out.byHash[hash] = d
			out.byName[d.Name] = hash
		}
	}
	return out
}

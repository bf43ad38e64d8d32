// Package templates holds the catalog of built-in scenarios resolvable by
// exact name.
package templates

import (
	"sort"

	"github.com/regweaver/regweaver/internal/script"
	rwerrors "github.com/regweaver/regweaver/pkg/errors"
)

// Entry describes one catalog template for listings.
type Entry struct {
	Name        string
	Description string
	Kind        script.Kind
}

// catalog keys are the scripts' own names, so the listing, resolution, and
// the report header always agree.
var catalog = buildCatalog(
	twoWalletSend,
	replaceByFee,
	multisigCPFP,
)

func buildCatalog(builders ...func() *script.Script) map[string]func() *script.Script {
	m := make(map[string]func() *script.Script, len(builders))
	for _, build := range builders {
		m[build().Name] = build
	}
	return m
}

// Resolve returns a fresh copy of the named template. Unknown names yield a
// TemplateNotFoundError, which callers keep distinct from parse failures.
func Resolve(name string) (*script.Script, error) {
	build, ok := catalog[name]
	if !ok {
		return nil, rwerrors.NewTemplateNotFoundError(name)
	}
	return build(), nil
}

// List returns the catalog entries sorted by name.
func List() []Entry {
	entries := make([]Entry, 0, len(catalog))
	for name, build := range catalog {
		s := build()
		entries = append(entries, Entry{Name: name, Description: s.Description, Kind: s.Kind})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

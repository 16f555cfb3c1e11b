// Package category maintains the fixed business-category vocabulary: the
// canonical categories a user can analyze, their aliases, and the
// per-provider code sections each adapter reads to translate the category
// into its own request vocabulary. Tables are built at startup (defaults
// plus an optional YAML file) and treated as immutable afterwards.
package category

import (
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Key is the canonical identifier of a supported category.
type Key string

// Category describes one analyzable business category. The provider code
// sections are each consulted only by the adapter that owns the vocabulary;
// nothing downstream of the adapters reads them.
type Category struct {
	Key Key `yaml:"key"`

	// Display is the Korean display name, used in locality-scoped keyword
	// queries and in reports.
	Display string `yaml:"display"`

	// KakaoGroupCode is the Kakao Local category group code (e.g. "CE7").
	KakaoGroupCode string `yaml:"kakao_group_code"`

	// KakaoNameFilters narrows a coarse Kakao group: when non-empty, a
	// listing counts as a structured match only if its category path
	// contains one of these substrings (e.g. group FD6 + "치킨").
	KakaoNameFilters []string `yaml:"kakao_name_filters,omitempty"`

	// SemasCodes are SEMAS mid-class code prefixes counting as this
	// category (e.g. "I212"). Empty means the keyword fallback carries the
	// match for that provider.
	SemasCodes []string `yaml:"semas_codes,omitempty"`

	// Keywords drive the fallback name match, compared case-folded against
	// business names and Naver category paths.
	Keywords []string `yaml:"keywords"`

	// Aliases are accepted user inputs resolving to this category.
	Aliases []string `yaml:"aliases,omitempty"`
}

// Registry resolves free-text user input to a canonical category.
type Registry struct {
	categories map[Key]Category
	aliases    map[string]Key
}

// NewRegistry returns a registry preloaded with the built-in categories.
func NewRegistry() *Registry {
	r := &Registry{
		categories: make(map[Key]Category),
		aliases:    make(map[string]Key),
	}
	for _, c := range defaultCategories {
		r.add(c)
	}
	return r
}

func (r *Registry) add(c Category) {
	r.categories[c.Key] = c
	r.aliases[normalizeAlias(string(c.Key))] = c.Key
	r.aliases[normalizeAlias(c.Display)] = c.Key
	for _, a := range c.Aliases {
		r.aliases[normalizeAlias(a)] = c.Key
	}
}

func normalizeAlias(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// Resolve maps free-text user input ("카페", "cafe", "커피숍") to its
// canonical category.
func (r *Registry) Resolve(input string) (Category, error) {
	key, ok := r.aliases[normalizeAlias(input)]
	if !ok {
		return Category{}, eris.Errorf("category: unsupported category %q (supported: %s)",
			input, strings.Join(r.keyStrings(), ", "))
	}
	return r.categories[key], nil
}

// Get returns the category for a canonical key.
func (r *Registry) Get(k Key) (Category, bool) {
	c, ok := r.categories[k]
	return c, ok
}

// All returns every registered category sorted by key.
func (r *Registry) All() []Category {
	out := make([]Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (r *Registry) keyStrings() []string {
	keys := make([]string, 0, len(r.categories))
	for k := range r.categories {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}

// LoadFile merges categories from a YAML file into the registry. Entries
// with a known key override the built-in definition; new keys extend the
// set. The file has a top-level "categories" list.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "category: read config %s", path)
	}

	var wrapper struct {
		Categories []Category `yaml:"categories"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return eris.Wrap(err, "category: parse config")
	}

	for _, c := range wrapper.Categories {
		if err := validate(c); err != nil {
			return err
		}
		r.add(c)
	}
	return nil
}

func validate(c Category) error {
	switch {
	case c.Key == "":
		return eris.New("category: entry missing key")
	case c.Display == "":
		return eris.Errorf("category: %s missing display name", c.Key)
	case c.KakaoGroupCode == "":
		return eris.Errorf("category: %s missing kakao group code", c.Key)
	case len(c.Keywords) == 0:
		return eris.Errorf("category: %s missing keywords", c.Key)
	}
	return nil
}

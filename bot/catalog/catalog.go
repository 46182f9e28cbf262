// Package catalog holds the immutable browsing data: site templates, UI component
// blocks and style snippets. A Snapshot never changes after it is built; reloads
// build a new one and swap it into the Store.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"
	"unicode/utf8"
)

// ErrCatalogLoad marks failures to read or parse a catalog source.
var ErrCatalogLoad = errors.New("catalog load failed")

// LoadError describes a missing or malformed catalog source.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrCatalogLoad) match any LoadError.
func (e *LoadError) Is(target error) bool { return target == ErrCatalogLoad }

// Code is the stable error code used in logs.
func (e *LoadError) Code() string { return "CATALOG_LOAD" }

// Price is an amount in whole currency units.
type Price struct {
	Amount   int64
	Currency string
}

func (p Price) String() string {
	amount := strconv.FormatInt(p.Amount, 10)
	switch {
	case p.Currency == "":
		return amount
	case utf8.RuneCountInString(p.Currency) == 1:
		return amount + p.Currency
	}
	return amount + " " + p.Currency
}

// Template is a site template offered for ordering.
type Template struct {
	ID          int64
	Name        string
	Category    string
	Price       Price
	Features    []string
	Description string
	Preview     string
	Tags        []string
}

// Component is a UI block with its markup fragment.
type Component struct {
	ID       string
	Name     string
	Category string
	Markup   string
}

// StyleKind groups style entries.
type StyleKind string

const (
	StyleGradient   StyleKind = "gradients"
	StyleShadow     StyleKind = "shadows"
	StyleEffect     StyleKind = "effects"
	StylePredefined StyleKind = "predefined"
)

// StyleKinds lists every kind in menu order.
var StyleKinds = []StyleKind{StyleGradient, StyleShadow, StyleEffect, StylePredefined}

// ParseStyleKind validates a style kind key.
func ParseStyleKind(key string) (StyleKind, bool) {
	k := StyleKind(key)
	return k, slices.Contains(StyleKinds, k)
}

// Style is a CSS snippet of a given kind.
type Style struct {
	ID   string
	Name string
	Kind StyleKind
	CSS  string
}

// Category groups templates under a display name and icon.
type Category struct {
	Key  string
	Name string
	Icon string
}

// DefaultCategoryIcon is used for categories referenced by templates but not declared.
const DefaultCategoryIcon = "📁"

// Counts summarises snapshot sizes.
type Counts struct {
	Templates  int
	Categories int
	Components int
	Styles     int
}

// Snapshot is an immutable view of the catalog. Accessors return copies.
type Snapshot struct {
	source   string
	loadedAt time.Time

	templates     []Template
	byID          map[int64]int
	byCategory    map[string][]int
	categories    map[string]Category
	categoryOrder []string

	components     map[string][]Component
	componentOrder []string

	styles map[StyleKind][]Style
}

// Source names where the snapshot came from: a file path or "demo".
func (s *Snapshot) Source() string { return s.source }

// LoadedAt is when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// IsDemo reports whether this is the built-in demo dataset.
func (s *Snapshot) IsDemo() bool { return s.source == DemoSource }

// Templates returns every template in source order.
func (s *Snapshot) Templates() []Template {
	out := make([]Template, len(s.templates))
	for i, t := range s.templates {
		out[i] = t.clone()
	}
	return out
}

// TemplatesByCategory returns the templates of a category in source order.
func (s *Snapshot) TemplatesByCategory(key string) []Template {
	idx := s.byCategory[key]
	out := make([]Template, len(idx))
	for i, n := range idx {
		out[i] = s.templates[n].clone()
	}
	return out
}

// TemplateByID looks a template up by id.
func (s *Snapshot) TemplateByID(id int64) (Template, bool) {
	n, ok := s.byID[id]
	if !ok {
		return Template{}, false
	}
	return s.templates[n].clone(), true
}

// Categories returns the category mapping keyed by category key.
func (s *Snapshot) Categories() map[string]Category {
	out := make(map[string]Category, len(s.categories))
	for k, v := range s.categories {
		out[k] = v
	}
	return out
}

// CategoryKeys returns category keys in display order.
func (s *Snapshot) CategoryKeys() []string {
	return slices.Clone(s.categoryOrder)
}

// Category returns a single category.
func (s *Snapshot) Category(key string) (Category, bool) {
	c, ok := s.categories[key]
	return c, ok
}

// ComponentCategories returns component groups in source order.
func (s *Snapshot) ComponentCategories() []string {
	return slices.Clone(s.componentOrder)
}

// Components returns the components of a group; ok is false for unknown groups.
func (s *Snapshot) Components(category string) ([]Component, bool) {
	list, ok := s.components[category]
	return slices.Clone(list), ok
}

// Styles returns the entries of a style kind.
func (s *Snapshot) Styles(kind StyleKind) []Style {
	return slices.Clone(s.styles[kind])
}

// Counts returns collection sizes.
func (s *Snapshot) Counts() Counts {
	c := Counts{
		Templates:  len(s.templates),
		Categories: len(s.categories),
	}
	for _, list := range s.components {
		c.Components += len(list)
	}
	for _, list := range s.styles {
		c.Styles += len(list)
	}
	return c
}

func (t Template) clone() Template {
	t.Features = slices.Clone(t.Features)
	t.Tags = slices.Clone(t.Tags)
	return t
}

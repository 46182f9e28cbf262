package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// field is one key/value pair of a JSON object, kept in document order.
type field[T any] struct {
	Key   string
	Value T
}

// object decodes a JSON object while preserving key order.
type object[T any] []field[T]

func (o *object[T]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*o = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	var out object[T]
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		var v T
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("%v: %w", keyTok, err)
		}
		out = append(out, field[T]{Key: keyTok.(string), Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*o = out
	return nil
}

// amount accepts 5000, "5000" or "5 000".
type amount int64

func (a *amount) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	raw = strings.Map(func(r rune) rune {
		if r == ' ' || r == ' ' || r == ' ' {
			return -1
		}
		return r
	}, raw)
	if raw == "" || raw == "null" {
		*a = 0
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid price %s", data)
	}
	*a = amount(n)
	return nil
}

type templateDoc struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Price        amount   `json:"price"`
	Currency     string   `json:"currency"`
	Features     []string `json:"features"`
	Description  string   `json:"description"`
	PreviewImage string   `json:"preview_image"`
	Tags         []string `json:"tags"`
}

type categoryDoc struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type componentDoc struct {
	Name string `json:"name"`
	HTML string `json:"html"`
}

type styleDoc struct {
	Name string `json:"name"`
	CSS  string `json:"css"`
}

type stylesDoc struct {
	Gradients  object[styleDoc] `json:"gradients"`
	Shadows    object[styleDoc] `json:"shadows"`
	Effects    object[styleDoc] `json:"effects"`
	Predefined object[styleDoc] `json:"predefined_styles"`
}

type document struct {
	Templates  []templateDoc                `json:"templates"`
	Categories object[categoryDoc]          `json:"categories"`
	Components object[object[componentDoc]] `json:"components"`
	Styles     stylesDoc                    `json:"styles"`
}

// Load reads and validates the catalog document at path.
// Any failure is reported as a *LoadError.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	snap, err := Parse(data)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	snap.source = path
	return snap, nil
}

// Parse builds a snapshot from a catalog document.
func Parse(data []byte) (*Snapshot, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return build(doc)
}

func build(doc document) (*Snapshot, error) {
	if len(doc.Templates) == 0 {
		return nil, errors.New("no templates")
	}
	s := &Snapshot{
		loadedAt:   time.Now(),
		byID:       make(map[int64]int, len(doc.Templates)),
		byCategory: make(map[string][]int),
		categories: make(map[string]Category),
		components: make(map[string][]Component),
		styles:     make(map[StyleKind][]Style),
	}

	for _, c := range doc.Categories {
		if _, dup := s.categories[c.Key]; dup {
			return nil, fmt.Errorf("duplicate category %q", c.Key)
		}
		s.addCategory(Category{Key: c.Key, Name: firstNonEmpty(c.Value.Name, c.Key), Icon: firstNonEmpty(c.Value.Icon, DefaultCategoryIcon)})
	}

	for i, td := range doc.Templates {
		switch {
		case td.ID <= 0:
			return nil, fmt.Errorf("template #%d: id must be positive", i)
		case strings.TrimSpace(td.Name) == "":
			return nil, fmt.Errorf("template %d: empty name", td.ID)
		case strings.TrimSpace(td.Category) == "":
			return nil, fmt.Errorf("template %d: empty category", td.ID)
		}
		if _, dup := s.byID[td.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %d", td.ID)
		}
		if _, known := s.categories[td.Category]; !known {
			s.addCategory(Category{Key: td.Category, Name: td.Category, Icon: DefaultCategoryIcon})
		}
		s.byID[td.ID] = len(s.templates)
		s.byCategory[td.Category] = append(s.byCategory[td.Category], len(s.templates))
		s.templates = append(s.templates, Template{
			ID:          td.ID,
			Name:        td.Name,
			Category:    td.Category,
			Price:       Price{Amount: int64(td.Price), Currency: td.Currency},
			Features:    td.Features,
			Description: td.Description,
			Preview:     td.PreviewImage,
			Tags:        dedupe(td.Tags),
		})
	}

	seenComponents := make(map[string]string)
	for _, group := range doc.Components {
		if _, dup := s.components[group.Key]; dup {
			return nil, fmt.Errorf("duplicate component group %q", group.Key)
		}
		list := make([]Component, 0, len(group.Value))
		for _, c := range group.Value {
			if other, dup := seenComponents[c.Key]; dup {
				return nil, fmt.Errorf("duplicate component id %q in %q and %q", c.Key, other, group.Key)
			}
			seenComponents[c.Key] = group.Key
			list = append(list, Component{ID: c.Key, Name: firstNonEmpty(c.Value.Name, c.Key), Category: group.Key, Markup: c.Value.HTML})
		}
		s.components[group.Key] = list
		s.componentOrder = append(s.componentOrder, group.Key)
	}

	seenStyles := make(map[string]StyleKind)
	for kind, entries := range map[StyleKind]object[styleDoc]{
		StyleGradient:   doc.Styles.Gradients,
		StyleShadow:     doc.Styles.Shadows,
		StyleEffect:     doc.Styles.Effects,
		StylePredefined: doc.Styles.Predefined,
	} {
		for _, e := range entries {
			if other, dup := seenStyles[e.Key]; dup {
				return nil, fmt.Errorf("duplicate style id %q in %s and %s", e.Key, other, kind)
			}
			seenStyles[e.Key] = kind
			s.styles[kind] = append(s.styles[kind], Style{ID: e.Key, Name: firstNonEmpty(e.Value.Name, e.Key), Kind: kind, CSS: e.Value.CSS})
		}
	}
	return s, nil
}

func (s *Snapshot) addCategory(c Category) {
	s.categories[c.Key] = c
	s.categoryOrder = append(s.categoryOrder, c.Key)
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

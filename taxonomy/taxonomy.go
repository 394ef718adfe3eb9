// Package taxonomy holds the habitability issue catalog: the valid category
// codes and the option codes nested under each of them.
package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"

	"discovery-backend/models"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

var (
	ErrUnknownCategory = errors.New("unknown issue category")
	ErrUnknownOption   = errors.New("unknown issue option")
	ErrEmptyCatalog    = errors.New("issue catalog has no categories")
)

// Option is one selectable issue inside a category
type Option struct {
	Code  string `yaml:"code" json:"code"`
	Label string `yaml:"label" json:"label"`
}

// Category groups related issue options
type Category struct {
	Code    string   `yaml:"code" json:"code"`
	Name    string   `yaml:"name" json:"name"`
	Options []Option `yaml:"options" json:"options"`
}

// Catalog is an immutable, validated issue taxonomy
type Catalog struct {
	categories []Category
	index      map[string]map[string]bool
}

type catalogFile struct {
	Categories []Category `yaml:"categories"`
}

// Default returns the catalog embedded in the binary
func Default() (*Catalog, error) {
	return Parse(catalogYAML)
}

// Parse builds a catalog from YAML
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse issue catalog: %w", err)
	}
	return New(f.Categories)
}

// New builds a catalog from categories, rejecting duplicate or empty codes
func New(categories []Category) (*Catalog, error) {
	if len(categories) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		categories: make([]Category, 0, len(categories)),
		index:      make(map[string]map[string]bool, len(categories)),
	}
	for _, cat := range categories {
		if cat.Code == "" {
			return nil, errors.New("issue category with empty code")
		}
		if _, dup := c.index[cat.Code]; dup {
			return nil, fmt.Errorf("duplicate issue category %q", cat.Code)
		}
		opts := make(map[string]bool, len(cat.Options))
		for _, opt := range cat.Options {
			if opt.Code == "" {
				return nil, fmt.Errorf("category %q has an option with empty code", cat.Code)
			}
			if opts[opt.Code] {
				return nil, fmt.Errorf("duplicate option %q in category %q", opt.Code, cat.Code)
			}
			opts[opt.Code] = true
		}
		c.index[cat.Code] = opts
		c.categories = append(c.categories, Category{
			Code:    cat.Code,
			Name:    cat.Name,
			Options: append([]Option(nil), cat.Options...),
		})
	}
	return c, nil
}

// Categories returns the categories in declaration order
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// HasCategory reports whether code is a known category
func (c *Catalog) HasCategory(code string) bool {
	_, ok := c.index[code]
	return ok
}

// Validate checks that option belongs to category
func (c *Catalog) Validate(category, option string) error {
	opts, ok := c.index[category]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	if !opts[option] {
		return fmt.Errorf("%w: %q in category %q", ErrUnknownOption, option, category)
	}
	return nil
}

// ValidateSelection checks every (category, option) of sel. Categories are
// visited in sorted order so the reported error is stable.
func (c *Catalog) ValidateSelection(sel models.IssueSelection) error {
	for _, cat := range sel.Categories() {
		for _, opt := range sel[cat] {
			if err := c.Validate(cat, opt); err != nil {
				return err
			}
		}
	}
	return nil
}

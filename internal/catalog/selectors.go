package catalog

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rickgao/stockwatch/internal/model"
)

// Selectors locate listing fields within a catalog page.
type Selectors struct {
	Item string `yaml:"item"`

	Name             string `yaml:"name"`
	NameAttr         string `yaml:"name_attr"` // Read this attribute instead of the text
	NameFallback     string `yaml:"name_fallback"`
	NameFallbackAttr string `yaml:"name_fallback_attr"`

	Link string `yaml:"link"` // Element carrying the product href

	Price         string `yaml:"price"`
	PriceFallback string `yaml:"price_fallback"`

	// Stock selects the availability block. When empty every item gets
	// DefaultStatus.
	Stock     string      `yaml:"stock"`
	StockAttr string      `yaml:"stock_attr"` // Classify this attribute instead of the text
	Rules     []StockRule `yaml:"stock_rules"`

	// DefaultStatus applies when the stock block exists but no rule matches.
	DefaultStatus model.StockStatus `yaml:"default_status"`

	// MissingStatus applies when Stock is set but the block is absent.
	MissingStatus model.StockStatus `yaml:"missing_status"`
}

// StockRule maps a stock block to a status. Contains matches a substring of
// the classified text (case-insensitive); Has matches a descendant element.
type StockRule struct {
	Contains string            `yaml:"contains"`
	Has      string            `yaml:"has"`
	Status   model.StockStatus `yaml:"status"`
}

// Validate checks that the selectors can produce a listing.
func (s Selectors) Validate() error {
	if s.Item == "" {
		return errors.New("item selector is required")
	}
	if s.Name == "" {
		return errors.New("name selector is required")
	}
	if s.Link == "" {
		return errors.New("link selector is required")
	}
	if s.Price == "" {
		return errors.New("price selector is required")
	}
	for _, r := range s.Rules {
		if r.Contains == "" && r.Has == "" {
			return errors.New("stock rule needs contains or has")
		}
	}
	return nil
}

// classify returns the stock status of one item.
func (s Selectors) classify(item *goquery.Selection) model.StockStatus {
	if s.Stock == "" {
		return s.DefaultStatus
	}

	block := item.Find(s.Stock).First()
	if block.Length() == 0 {
		return s.MissingStatus
	}

	var text string
	if s.StockAttr != "" {
		text, _ = block.Attr(s.StockAttr)
	} else {
		text = block.Text()
	}
	text = strings.ToLower(text)

	for _, r := range s.Rules {
		if r.Has != "" && block.Find(r.Has).Length() > 0 {
			return r.Status
		}
		if r.Contains != "" && strings.Contains(text, strings.ToLower(r.Contains)) {
			return r.Status
		}
	}
	return s.DefaultStatus
}

// field reads the text, or attr when set, of the first match of sel.
func field(item *goquery.Selection, sel, attr string) string {
	if sel == "" {
		return ""
	}
	node := item.Find(sel).First()
	if node.Length() == 0 {
		return ""
	}
	if attr != "" {
		v, _ := node.Attr(attr)
		return collapse(v)
	}
	return collapse(node.Text())
}

// collapse trims and folds internal whitespace runs to one space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

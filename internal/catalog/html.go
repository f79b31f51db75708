package catalog

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rickgao/stockwatch/internal/fetch"
	"github.com/rickgao/stockwatch/internal/model"
)

// HTML is a source that scrapes one catalog listing page.
type HTML struct {
	name    string
	pageURL string
	base    *url.URL
	sel     Selectors
	client  *fetch.Client
	logger  *slog.Logger
}

// Config describes one HTML catalog source.
type Config struct {
	Name      string
	URL       string // Listing page to fetch
	BaseURL   string // Resolves relative product links; defaults to URL
	Selectors Selectors
}

// NewHTML creates an HTML source. A nil client uses fetch defaults.
func NewHTML(cfg Config, client *fetch.Client, logger *slog.Logger) (*HTML, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = fetch.NewClient(fetch.WithLogger(logger))
	}
	if err := cfg.Selectors.Validate(); err != nil {
		return nil, fmt.Errorf("source %s: %w", cfg.Name, err)
	}

	page, err := url.Parse(cfg.URL)
	if err != nil || page.Scheme == "" || page.Host == "" {
		return nil, fmt.Errorf("source %s: invalid url %q", cfg.Name, cfg.URL)
	}

	base := page
	if cfg.BaseURL != "" {
		base, err = url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("source %s: invalid base url %q: %w", cfg.Name, cfg.BaseURL, err)
		}
	}

	return &HTML{
		name:    cfg.Name,
		pageURL: cfg.URL,
		base:    base,
		sel:     cfg.Selectors,
		client:  client,
		logger:  logger.With("source", cfg.Name),
	}, nil
}

func (h *HTML) Name() string { return h.name }

// Fetch downloads the listing page and extracts its listings.
func (h *HTML) Fetch(ctx context.Context) ([]model.RawListing, error) {
	body, err := h.client.Get(ctx, h.pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return h.extract(doc), nil
}

// extract walks every item on the page. Items lacking a name or a link are
// skipped.
func (h *HTML) extract(doc *goquery.Document) []model.RawListing {
	items := doc.Find(h.sel.Item)
	if items.Length() == 0 {
		h.logger.Warn("no product items found on page", "url", h.pageURL)
		return nil
	}

	var listings []model.RawListing
	var skipped int
	items.Each(func(_ int, item *goquery.Selection) {
		name := field(item, h.sel.Name, h.sel.NameAttr)
		if name == "" {
			name = field(item, h.sel.NameFallback, h.sel.NameFallbackAttr)
		}

		link := h.resolve(item)
		if name == "" || link == "" {
			skipped++
			return
		}

		priceText := field(item, h.sel.Price, "")
		if priceText == "" {
			priceText = field(item, h.sel.PriceFallback, "")
		}

		listings = append(listings, model.RawListing{
			Name:      name,
			PriceText: priceText,
			URL:       link,
			Status:    h.sel.classify(item),
		})
	})

	h.logger.Debug("page extracted",
		"items", items.Length(),
		"listings", len(listings),
		"skipped", skipped,
	)
	return listings
}

// resolve returns the absolute product URL of an item, or "".
func (h *HTML) resolve(item *goquery.Selection) string {
	href, ok := item.Find(h.sel.Link).First().Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return h.base.ResolveReference(ref).String()
}

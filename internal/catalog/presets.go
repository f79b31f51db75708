package catalog

import (
	"slices"

	"github.com/rickgao/stockwatch/internal/model"
)

// Preset is a ready-made description of a known catalog's listing page.
type Preset struct {
	Description string
	BaseURL     string
	Selectors   Selectors
}

var presets = map[string]Preset{
	"ldlc": {
		Description: "LDLC category listing",
		BaseURL:     "https://www.ldlc.com",
		Selectors: Selectors{
			Item:          "li.pdt-item",
			Name:          ".pdt-desc h3 a",
			Link:          ".pdt-desc h3 a",
			Price:         ".basket .price .price",
			PriceFallback: ".price",
			Stock:         ".wrap-stock .stock-web",
			Rules: []StockRule{
				{Contains: "rupture", Status: model.OutOfStock},
				{Contains: "indisponible", Status: model.OutOfStock},
			},
			DefaultStatus: model.InStock,
			MissingStatus: model.Unknown,
		},
	},
	"grosbill": {
		Description: "Grosbill graphics card listing",
		BaseURL:     "https://www.grosbill.com",
		Selectors: Selectors{
			Item:             "div.grb__liste-produit__liste__produit",
			Name:             ".grb__liste-produit__liste__produit__information__libelle p",
			NameFallback:     "a.prod_txt_left img",
			NameFallbackAttr: "alt",
			Link:             "a[href*='/carte-graphique/']",
			Price:            "span.grb__liste-produit__liste__produit__reference-container__content_prix_produit",
			PriceFallback:    "div.grb__liste-produit__liste__produit__achat__prix",
			Stock:            "div.grb__liste-produit__disponibilite",
			Rules: []StockRule{
				{Has: "span.prodfiche_nodispo", Status: model.OutOfStock},
			},
			DefaultStatus: model.InStock,
			MissingStatus: model.Unknown,
		},
	},
	"pccomponentes": {
		Description: "PCComponentes graphics card listing",
		BaseURL:     "https://www.pccomponentes.fr",
		Selectors: Selectors{
			Item:          "div.product-card",
			Name:          "h3.product-card__title",
			Link:          "a[href*='/carte-graphique']",
			Price:         "span.product-card__price-container",
			PriceFallback: "span[data-e2e*='price-card']",
			DefaultStatus: model.InStock,
		},
	},
	"infomaxparis": {
		Description: "Infomax Paris product listing",
		BaseURL:     "https://infomaxparis.com",
		Selectors: Selectors{
			Item:          "div.product-container",
			Name:          "h5.product-name a",
			Link:          "h5.product-name a",
			Price:         "span.price",
			DefaultStatus: model.InStock,
		},
	},
	"1fodiscount": {
		Description: "1fodiscount product tiles",
		BaseURL:     "https://www.1fodiscount.com",
		Selectors: Selectors{
			Item:      "div.product-tile",
			Name:      "a.title",
			Link:      "a.title",
			Price:     "div.product-tile_buybox_offers_offer_price",
			Stock:     "div.product-tile_stock",
			StockAttr: "class",
			Rules: []StockRule{
				{Contains: "-instock", Status: model.InStock},
				{Contains: "-delay", Status: model.Delayed},
				{Contains: "-rupture", Status: model.OutOfStock},
			},
			DefaultStatus: model.Unknown,
			MissingStatus: model.Unknown,
		},
	},
}

// LookupPreset returns the named preset.
func LookupPreset(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

// PresetNames lists the built-in presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Config builds a source config for pageURL using the preset's selectors.
func (p Preset) Config(name, pageURL string) Config {
	return Config{
		Name:      name,
		URL:       pageURL,
		BaseURL:   p.BaseURL,
		Selectors: p.Selectors,
	}
}

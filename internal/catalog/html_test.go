package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/rickgao/stockwatch/internal/fetch"
	"github.com/rickgao/stockwatch/internal/model"
)

const ldlcPage = `<html><body><ul>
<li class="pdt-item">
  <div class="pdt-desc"><h3><a href="/fiche/PB001.html">Carte  graphique
     RTX&nbsp;5080</a></h3></div>
  <div class="wrap-stock"><div class="stock-web">En stock</div></div>
  <div class="basket"><div class="price"><div class="price">1 299€<sup>95</sup></div></div></div>
</li>
<li class="pdt-item">
  <div class="pdt-desc"><h3><a href="/fiche/PB002.html">RTX 5090</a></h3></div>
  <div class="wrap-stock"><div class="stock-web">Rupture</div></div>
  <div class="basket"><div class="price"><div class="price">2 499€<sup>00</sup></div></div></div>
</li>
<li class="pdt-item">
  <div class="pdt-desc"><h3><a href="https://other.example/p3">RTX 5070</a></h3></div>
  <div class="basket"><div class="price"><div class="price">649€<sup>99</sup></div></div></div>
</li>
<li class="pdt-item">
  <div class="pdt-desc"><h3>No link here</h3></div>
</li>
</ul></body></html>`

const fodiscountPage = `<html><body>
<div class="product-tile">
  <a class="title" href="/p/1">RX 9070 XT</a>
  <div class="product-tile_stock -inStock"></div>
  <div class="product-tile_buybox_offers_offer_price">689,90 €</div>
</div>
<div class="product-tile">
  <a class="title" href="/p/2">RX 9070</a>
  <div class="product-tile_stock -delay"></div>
  <div class="product-tile_buybox_offers_offer_price">599,90 €</div>
</div>
<div class="product-tile">
  <a class="title" href="/p/3">RX 9060</a>
  <div class="product-tile_stock -rupture"></div>
  <div class="product-tile_buybox_offers_offer_price">349,90 €</div>
</div>
</body></html>`

func serve(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newPresetSource(t *testing.T, preset, pageURL string) *HTML {
	t.Helper()
	p, ok := LookupPreset(preset)
	if !ok {
		t.Fatalf("preset %q not found", preset)
	}
	src, err := NewHTML(p.Config(preset, pageURL), nil, nil)
	if err != nil {
		t.Fatalf("NewHTML failed: %v", err)
	}
	return src
}

func TestHTML_LDLCPreset(t *testing.T) {
	server := serve(t, ldlcPage)
	src := newPresetSource(t, "ldlc", server.URL+"/informatique/cartes-graphiques")

	got, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	want := []model.RawListing{
		{Name: "Carte graphique RTX 5080", PriceText: "1 299€95", URL: "https://www.ldlc.com/fiche/PB001.html", Status: model.InStock},
		{Name: "RTX 5090", PriceText: "2 499€00", URL: "https://www.ldlc.com/fiche/PB002.html", Status: model.OutOfStock},
		{Name: "RTX 5070", PriceText: "649€99", URL: "https://other.example/p3", Status: model.Unknown},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("listings mismatch (-want +got):\n%s", diff)
	}
}

func TestHTML_AttributeStockRules(t *testing.T) {
	server := serve(t, fodiscountPage)
	src := newPresetSource(t, "1fodiscount", server.URL)

	got, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	statuses := make([]model.StockStatus, len(got))
	for i, l := range got {
		statuses[i] = l.Status
	}
	want := []model.StockStatus{model.InStock, model.Delayed, model.OutOfStock}
	if diff := cmp.Diff(want, statuses); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}
	if got[0].URL != "https://www.1fodiscount.com/p/1" {
		t.Errorf("URL = %q", got[0].URL)
	}
}

func TestHTML_HasRuleAndFallbacks(t *testing.T) {
	page := `<html><body>
<div class="grb__liste-produit__liste__produit">
  <a class="prod_txt_left" href="/carte-graphique/a.aspx"><img alt="Fallback Name"></a>
  <a href="/carte-graphique/a.aspx">link</a>
  <div class="grb__liste-produit__disponibilite"><span>Dispo</span></div>
  <div class="grb__liste-produit__liste__produit__achat__prix">799,00 €</div>
</div>
<div class="grb__liste-produit__liste__produit">
  <div class="grb__liste-produit__liste__produit__information__libelle"><p>Sold Out Card</p></div>
  <a href="/carte-graphique/b.aspx">link</a>
  <div class="grb__liste-produit__disponibilite"><span class="prodfiche_nodispo">Rupture</span></div>
</div>
</body></html>`
	server := serve(t, page)
	src := newPresetSource(t, "grosbill", server.URL)

	got, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Name != "Fallback Name" || got[0].PriceText != "799,00 €" || got[0].Status != model.InStock {
		t.Errorf("first listing = %+v", got[0])
	}
	if got[1].Status != model.OutOfStock {
		t.Errorf("second listing status = %v, want out_of_stock", got[1].Status)
	}
}

func TestHTML_EmptyPage(t *testing.T) {
	server := serve(t, "<html><body><p>maintenance</p></body></html>")
	src := newPresetSource(t, "infomaxparis", server.URL)

	got, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("listings = %+v, want none", got)
	}
}

func TestHTML_HTTPErrorIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	p, _ := LookupPreset("pccomponentes")
	client := fetch.NewClient(fetch.WithRetries(0, time.Millisecond))
	src, err := NewHTML(p.Config("pcc", server.URL), client, nil)
	if err != nil {
		t.Fatalf("NewHTML failed: %v", err)
	}

	_, err = src.Fetch(context.Background())
	var statusErr *fetch.StatusError
	if !errors.As(err, &statusErr) {
		t.Errorf("err = %v, want *fetch.StatusError", err)
	}
}

func TestNewHTML_Invalid(t *testing.T) {
	p, _ := LookupPreset("ldlc")

	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing url", cfg: p.Config("ldlc", "")},
		{name: "relative url", cfg: p.Config("ldlc", "/cartes")},
		{name: "missing item selector", cfg: Config{Name: "x", URL: "https://x.example", Selectors: Selectors{Name: "a", Link: "a", Price: "p"}}},
		{name: "empty rule", cfg: Config{Name: "x", URL: "https://x.example", Selectors: Selectors{
			Item: "li", Name: "a", Link: "a", Price: "p", Rules: []StockRule{{Status: model.InStock}},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewHTML(tt.cfg, nil, nil); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestPresetNames(t *testing.T) {
	want := []string{"1fodiscount", "grosbill", "infomaxparis", "ldlc", "pccomponentes"}
	if diff := cmp.Diff(want, PresetNames()); diff != "" {
		t.Errorf("preset names mismatch (-want +got):\n%s", diff)
	}
	for _, name := range PresetNames() {
		p, _ := LookupPreset(name)
		if err := p.Selectors.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

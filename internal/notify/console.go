package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/rickgao/stockwatch/internal/model"
	"github.com/rickgao/stockwatch/internal/price"
)

const bell = "\a"

// ConsoleOptions controls what the console prints.
type ConsoleOptions struct {
	ShowCurrent bool   // Also print the full ranked list every cycle
	Bell        bool   // Ring the terminal bell when something was added
	Locale      string // BCP 47 tag for price formatting (default fr-FR)
	Currency    string // ISO 4217 code (default EUR)
}

// Console renders cycle results as tables on a writer.
type Console struct {
	out    io.Writer
	opts   ConsoleOptions
	prices *price.Formatter

	mu sync.Mutex
}

// NewConsole creates a Console writing to out.
func NewConsole(out io.Writer, opts ConsoleOptions) *Console {
	if opts.Locale == "" {
		opts.Locale = "fr-FR"
	}
	if opts.Currency == "" {
		opts.Currency = "EUR"
	}
	return &Console{
		out:    out,
		opts:   opts,
		prices: price.NewFormatter(opts.Locale, opts.Currency),
	}
}

// HandleResult prints the products added this cycle, then the current list
// when ShowCurrent is set. Cycles without additions print nothing unless
// ShowCurrent is set.
func (c *Console) HandleResult(ctx context.Context, res model.PollResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(res.Added) > 0 {
		if c.opts.Bell {
			if _, err := io.WriteString(c.out, bell); err != nil {
				return fmt.Errorf("write bell: %w", err)
			}
		}
		c.render("New in-stock products", res.Added)
	}

	if len(res.Removed) > 0 {
		if _, err := fmt.Fprintf(c.out, "%d product(s) no longer in stock\n", len(res.Removed)); err != nil {
			return fmt.Errorf("write removed: %w", err)
		}
	}

	if c.opts.ShowCurrent {
		c.render(fmt.Sprintf("In stock now (%d)", len(res.Current)), res.Current)
	}
	return nil
}

func (c *Console) render(title string, products []model.Product) {
	t := table.NewWriter()
	t.SetOutputMirror(c.out)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Price", "Name", "Source", "URL"})

	for _, p := range products {
		t.AppendRow(table.Row{c.prices.Format(p.Price), p.Name, p.Source, p.URL})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, WidthMax: 60},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// Package catalog implements sources that read product listings from
// catalog HTML pages.
//
// A page is described by CSS selectors: one for each product item, and,
// relative to the item, selectors for its name, link, price and stock
// block. Stock text (or an attribute such as class) is classified by an
// ordered list of rules. Built-in presets cover the catalogs the watcher
// was first written for.
package catalog

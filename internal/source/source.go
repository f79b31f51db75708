package source

import (
	"context"
	"fmt"

	"github.com/rickgao/stockwatch/internal/model"
)

// Source produces the raw listings of one catalog.
type Source interface {
	// Name identifies the source in logs and failure reports.
	Name() string

	// Fetch returns the finite set of listings visible right now.
	Fetch(ctx context.Context) ([]model.RawListing, error)
}

// Func adapts a function to the Source interface.
type Func struct {
	SourceName string
	FetchFunc  func(ctx context.Context) ([]model.RawListing, error)
}

func (f Func) Name() string { return f.SourceName }

func (f Func) Fetch(ctx context.Context) ([]model.RawListing, error) {
	return f.FetchFunc(ctx)
}

// Static returns the same listings on every fetch.
func Static(name string, listings ...model.RawListing) Source {
	return Func{
		SourceName: name,
		FetchFunc: func(context.Context) ([]model.RawListing, error) {
			return listings, nil
		},
	}
}

// Failure is a single source's failed fetch.
type Failure struct {
	Source string
	Err    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("source %s: %v", f.Source, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Report converts the failure into its serializable form.
func (f *Failure) Report() model.SourceFailure {
	return model.SourceFailure{Source: f.Source, Error: f.Err.Error()}
}

// PanicError wraps a value recovered from a panicking Fetch.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("fetch panicked: %v", e.Value)
}

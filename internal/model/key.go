package model

import (
	"cmp"
	"fmt"
	"strings"
)

// Key identifies a catalog entry for deduplication and change tracking.
// Name is only populated under KeyByURLAndName.
type Key struct {
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
}

func (k Key) String() string {
	if k.Name == "" {
		return k.URL
	}
	return k.URL + " [" + k.Name + "]"
}

// Compare orders keys by URL, then Name.
func (k Key) Compare(other Key) int {
	if c := strings.Compare(k.URL, other.URL); c != 0 {
		return c
	}
	return cmp.Compare(k.Name, other.Name)
}

// KeyPolicy selects which fields form a Key.
type KeyPolicy string

const (
	// KeyByURL treats every listing at the same URL as one entry.
	KeyByURL KeyPolicy = "url"

	// KeyByURLAndName tracks differently named listings at one URL separately
	// (bundle variants and the like).
	KeyByURLAndName KeyPolicy = "url+name"
)

// ParseKeyPolicy validates a policy name. Empty selects KeyByURL.
func ParseKeyPolicy(s string) (KeyPolicy, error) {
	switch KeyPolicy(s) {
	case "", KeyByURL:
		return KeyByURL, nil
	case KeyByURLAndName:
		return KeyByURLAndName, nil
	}
	return "", fmt.Errorf("unknown key policy %q", s)
}

// KeyOf builds the key of p under the policy.
func (policy KeyPolicy) KeyOf(p Product) Key {
	if policy == KeyByURLAndName {
		return Key{URL: p.URL, Name: p.Name}
	}
	return Key{URL: p.URL}
}

package normalize

import (
	"fmt"
	"slices"
	"strings"
)

// Entry describes one canonical product and every spelling that should map
// to it.
type Entry struct {
	ID       string            `mapstructure:"id" json:"id"`
	Names    map[string]string `mapstructure:"names" json:"names"` // language code -> display name
	Variants []string          `mapstructure:"variants" json:"variants"`
}

// Dictionary is an immutable lookup from folded names to canonical ids.
type Dictionary struct {
	keys    []string
	lookup  map[string]string
	display map[string]string
}

// NewDictionary folds every id, name and variant of entries into lookup keys.
// A key claimed by two different ids is a configuration error.
func NewDictionary(entries []Entry) (*Dictionary, error) {
	d := &Dictionary{
		lookup:  make(map[string]string),
		display: make(map[string]string),
	}

	for _, e := range entries {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			return nil, fmt.Errorf("dictionary entry without id: %v", e.Variants)
		}

		display := e.Names["en"]
		if display == "" {
			display = strings.ReplaceAll(id, "_", " ")
		}
		d.display[id] = display

		spellings := []string{strings.ReplaceAll(id, "_", " ")}
		for _, name := range e.Names {
			spellings = append(spellings, name)
		}
		spellings = append(spellings, e.Variants...)

		for _, s := range spellings {
			key := CleanName(s)
			if key == "" {
				continue
			}
			if owner, ok := d.lookup[key]; ok && owner != id {
				return nil, fmt.Errorf("dictionary key %q maps to both %q and %q", key, owner, id)
			}
			d.lookup[key] = id
		}
	}

	d.keys = make([]string, 0, len(d.lookup))
	for k := range d.lookup {
		d.keys = append(d.keys, k)
	}
	slices.Sort(d.keys)
	return d, nil
}

// Exact returns the canonical id for an already-cleaned name.
func (d *Dictionary) Exact(key string) (string, bool) {
	id, ok := d.lookup[key]
	return id, ok
}

// Closest returns the key most similar to text. Keys are scanned in sorted
// order and only a strictly better score replaces the current best, so the
// result is deterministic.
func (d *Dictionary) Closest(text string) (key string, id string, score float64) {
	for _, k := range d.keys {
		if s := Similarity(text, k); s > score {
			key, id, score = k, d.lookup[k], s
		}
	}
	return key, id, score
}

// DisplayName returns the English display name for id, or "" when id is unknown.
func (d *Dictionary) DisplayName(id string) string {
	return d.display[id]
}

// Len returns the number of lookup keys.
func (d *Dictionary) Len() int {
	return len(d.keys)
}

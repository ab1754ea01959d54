// Package catalog reads ROM catalogs that describe known ROMs, the quirks
// they need and how host keys map to the CHIP-8 keypad.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Quirks are the compatibility switches a ROM needs.
type Quirks struct {
	LoadStore bool `json:"loadStore"`
	Shift     bool `json:"shift"`
}

// Entry describes a single ROM.
type Entry struct {
	Title       string         `json:"title"`
	Author      string         `json:"author"`
	Year        int            `json:"year"`
	Description string         `json:"description"`
	Filename    string         `json:"filename"`
	Quirks      Quirks         `json:"quirks"`
	Keymap      map[string]int `json:"keymap"`
}

// MachineQuirks returns the quirks of the entry as machine quirks.
func (e *Entry) MachineQuirks() chip8.Quirks {
	return chip8.Quirks{
		LoadStore: e.Quirks.LoadStore,
		Shift:     e.Quirks.Shift,
	}
}

// Key returns the keypad key that a host key name is mapped to.
func (e *Entry) Key(name string) (int, bool) {
	key, ok := e.Keymap[strings.ToLower(name)]
	return key, ok
}

// KeyNames returns the sorted host key names of the keymap.
func (e *Entry) KeyNames() []string {
	names := maps.Keys(e.Keymap)
	slices.Sort(names)
	return names
}

// Catalog is a set of ROM entries indexed by filename.
type Catalog struct {
	entries []*Entry
	files   map[string]*Entry
}

// LoadFile reads a catalog from a JSON file.
func LoadFile(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	cat, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	return cat, nil
}

// Parse reads a catalog from a JSON array of ROM entries.
func Parse(reader io.Reader) (*Catalog, error) {
	var entries []*Entry
	if err := json.NewDecoder(reader).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}

	cat := &Catalog{
		files: make(map[string]*Entry, len(entries)),
	}
	for i, entry := range entries {
		if entry.Filename == "" {
			return nil, fmt.Errorf("entry %d '%s' has no filename", i, entry.Title)
		}
		if err := normalizeKeymap(entry); err != nil {
			return nil, fmt.Errorf("entry '%s': %w", entry.Filename, err)
		}

		name := strings.ToLower(entry.Filename)
		if _, ok := cat.files[name]; ok {
			return nil, fmt.Errorf("duplicate entry for file '%s'", entry.Filename)
		}
		cat.files[name] = entry
		cat.entries = append(cat.entries, entry)
	}

	sort.SliceStable(cat.entries, func(i, j int) bool {
		return cat.entries[i].Title < cat.entries[j].Title
	})
	return cat, nil
}

// normalizeKeymap lower cases the host key names and validates the keypad keys.
func normalizeKeymap(entry *Entry) error {
	keymap := make(map[string]int, len(entry.Keymap))
	for name, key := range entry.Keymap {
		if key < 0 || key >= chip8.KeyCount {
			return fmt.Errorf("keymap entry '%s' maps to invalid key %d", name, key)
		}
		keymap[strings.ToLower(name)] = key
	}
	entry.Keymap = keymap
	return nil
}

// Lookup returns the entry for the given ROM file path, matched by base name.
func (c *Catalog) Lookup(path string) (*Entry, bool) {
	entry, ok := c.files[strings.ToLower(filepath.Base(path))]
	return entry, ok
}

// Entries returns all entries sorted by title.
func (c *Catalog) Entries() []*Entry {
	return c.entries
}

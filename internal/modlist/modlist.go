package modlist

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Entry is one line of a mod-list.json file.
type Entry struct {
	Name    string
	Enabled bool
}

// List is the decoded content of a mod-list.json file.
type List struct {
	Entries []Entry
}

// Parser reads mod-list.json files.
type Parser struct{}

// NewParser creates a new mod-list parser.
func NewParser() *Parser {
	return &Parser{}
}

type document struct {
	Mods []map[string]json.RawMessage `json:"mods"`
}

// Parse reads the mod-list file at path.
func (p *Parser) Parse(path string) (*List, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening mod list: %w", err)
	}
	defer file.Close()

	list, err := p.Read(file)
	if err != nil {
		return nil, fmt.Errorf("reading mod list %s: %w", path, err)
	}
	return list, nil
}

// Read decodes a mod list from r. Entries lacking a string "name" or a
// boolean "enabled" are skipped.
func (p *Parser) Read(r io.Reader) (*List, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding mod list: %w", err)
	}

	list := &List{}
	for _, raw := range doc.Mods {
		var e Entry
		if err := json.Unmarshal(raw["name"], &e.Name); err != nil || e.Name == "" {
			continue
		}
		if err := json.Unmarshal(raw["enabled"], &e.Enabled); err != nil {
			continue
		}
		list.Entries = append(list.Entries, e)
	}
	return list, nil
}

// Names returns the names of entries whose enabled state equals enabled,
// in file order.
func (l *List) Names(enabled bool) []string {
	var names []string
	for _, e := range l.Entries {
		if e.Enabled == enabled {
			names = append(names, e.Name)
		}
	}
	return names
}

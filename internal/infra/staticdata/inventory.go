package staticdata

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// seedInventory mirrors the demo stockroom. Quantities are informational
// context for prompts; no check ever decrements them.
var seedInventory = map[string]int{
	"blood_o_positive":    50,
	"blood_ab_negative":   12,
	"surgical_gloves":     1000,
	"anesthesia_propofol": 100,
	"sterile_instruments": 50,
	"iv_fluids":           200,
}

// Inventory is an in-memory, read-only item → units snapshot provider.
type Inventory struct {
	items map[string]int
}

// NewInventory returns a provider seeded with the built-in stock levels.
// If path is non-empty, levels are loaded from that YAML file instead.
func NewInventory(path string) (*Inventory, error) {
	if path == "" {
		return &Inventory{items: seedInventory}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory file: %w", err)
	}

	items := make(map[string]int)
	if err := yaml.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("parse inventory file: %w", err)
	}
	return &Inventory{items: items}, nil
}

// CurrentInventory returns a copy of the snapshot so callers cannot
// mutate the seed data.
func (i *Inventory) CurrentInventory(_ context.Context) (map[string]int, error) {
	snapshot := make(map[string]int, len(i.items))
	for item, qty := range i.items {
		snapshot[item] = qty
	}
	return snapshot, nil
}

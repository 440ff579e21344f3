package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/roach88/minerush/internal/game"
)

//go:embed catalog.yaml
var defaultYAML []byte

// Catalog is the static definition of every purchasable and unlockable item.
//
// Entries carry their starting values. A fresh game is a copy of the
// catalog; a saved game is the catalog with the player's progress merged in.
type Catalog struct {
	Rocks           []game.Rock           `json:"rocks"`
	Upgrades        []game.Upgrade        `json:"upgrades"`
	AutoMiners      []game.AutoMiner      `json:"autoMiners"`
	SpecialUpgrades []game.SpecialUpgrade `json:"specialUpgrades"`
	Achievements    []game.Achievement    `json:"achievements"`
	Abilities       []game.Ability        `json:"abilities"`
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the embedded catalog. It panics if the embedded file does
// not validate, which is a build defect rather than a runtime condition.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Parse(defaultYAML)
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("embedded catalog invalid: %v", defaultErr))
	}
	return defaultCat
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog, normalizes ids and validates the result.
//
// YAML is decoded generically and re-decoded through the JSON tags of the
// game types with unknown fields rejected, so a typo such as "clickpwr"
// fails instead of silently defaulting.
func Parse(data []byte) (*Catalog, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	js, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to convert catalog: %w", err)
	}

	var c Catalog
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	c.normalizeIDs()

	if errs := Validate(&c); len(errs) > 0 {
		return nil, errs
	}
	return &c, nil
}

func (c *Catalog) normalizeIDs() {
	for i := range c.Rocks {
		c.Rocks[i].ID = game.NormalizeID(c.Rocks[i].ID)
	}
	for i := range c.Upgrades {
		c.Upgrades[i].ID = game.NormalizeID(c.Upgrades[i].ID)
	}
	for i := range c.AutoMiners {
		c.AutoMiners[i].ID = game.NormalizeID(c.AutoMiners[i].ID)
	}
	for i := range c.SpecialUpgrades {
		c.SpecialUpgrades[i].ID = game.NormalizeID(c.SpecialUpgrades[i].ID)
	}
	for i := range c.Achievements {
		c.Achievements[i].ID = game.NormalizeID(c.Achievements[i].ID)
	}
	for i := range c.Abilities {
		c.Abilities[i].ID = game.NormalizeID(c.Abilities[i].ID)
	}
}

// NewState returns the fixed default snapshot built from the catalog.
//
// Derived rates are left at zero; the reducer recomputes them.
func (c *Catalog) NewState() *game.GameState {
	s := &game.GameState{
		BonusMultiplier: 1,
		Rocks:           append([]game.Rock(nil), c.Rocks...),
		Upgrades:        append([]game.Upgrade(nil), c.Upgrades...),
		AutoMiners:      append([]game.AutoMiner(nil), c.AutoMiners...),
		SpecialUpgrades: append([]game.SpecialUpgrade(nil), c.SpecialUpgrades...),
		Achievements:    append([]game.Achievement(nil), c.Achievements...),
		Abilities:       append([]game.Ability(nil), c.Abilities...),
		Settings: game.Settings{
			Sound:           true,
			Haptics:         true,
			Notifications:   true,
			OfflineProgress: true,
		},
	}
	s.SelectedRock = baselineRock(s)
	s.SelectedPickaxe = bestPickaxe(s)
	return s
}

// baselineRock returns the cheapest unlocked rock.
func baselineRock(s *game.GameState) string {
	best := -1
	for i, r := range s.Rocks {
		if r.Unlocked && (best < 0 || r.Cost < s.Rocks[best].Cost) {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return s.Rocks[best].ID
}

// bestPickaxe returns the owned pickaxe with the highest rank.
func bestPickaxe(s *game.GameState) string {
	best := -1
	for i, u := range s.Upgrades {
		if u.Owned && (best < 0 || u.Rank > s.Upgrades[best].Rank) {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return s.Upgrades[best].ID
}

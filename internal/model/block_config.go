package model

import (
	"encoding/json"
	"strconv"
)

const (
	blockConfigEntityPrefix = "nid_"
	blockConfigViewMode     = "view_mode"
)

// BlockConfig is the persisted configuration of a display block instance:
// one entity ID per content type, keyed "nid_<type>", plus a single view mode.
// It marshals to a flat JSON object.
type BlockConfig struct {
	settings map[string]string
}

// NewBlockConfig creates an empty configuration.
func NewBlockConfig() BlockConfig {
	return BlockConfig{settings: map[string]string{}}
}

// EntityKey returns the configuration key holding the entity ID for a content type.
func EntityKey(typeID string) string {
	return blockConfigEntityPrefix + typeID
}

// EntityIDFor returns the configured entity ID for a content type.
// An empty, missing or malformed value reports false.
func (c BlockConfig) EntityIDFor(typeID string) (int64, bool) {
	raw, ok := c.settings[EntityKey(typeID)]
	if !ok || raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// SetEntityIDFor stores an entity ID for a content type. Zero clears the entry
// but keeps the key so the stored schema lists every known type.
func (c *BlockConfig) SetEntityIDFor(typeID string, id int64) {
	c.ensure()
	if id <= 0 {
		c.settings[EntityKey(typeID)] = ""
		return
	}
	c.settings[EntityKey(typeID)] = strconv.FormatInt(id, 10)
}

// ViewMode returns the configured view mode, or "" if none.
func (c BlockConfig) ViewMode() string {
	return c.settings[blockConfigViewMode]
}

// SetViewMode stores the view mode.
func (c *BlockConfig) SetViewMode(viewMode string) {
	c.ensure()
	c.settings[blockConfigViewMode] = viewMode
}

// Get returns a raw setting.
func (c BlockConfig) Get(key string) string {
	return c.settings[key]
}

func (c *BlockConfig) ensure() {
	if c.settings == nil {
		c.settings = map[string]string{}
	}
}

// MarshalJSON implements json.Marshaler.
func (c BlockConfig) MarshalJSON() ([]byte, error) {
	if c.settings == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c.settings)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *BlockConfig) UnmarshalJSON(data []byte) error {
	settings := map[string]string{}
	if err := json.Unmarshal(data, &settings); err != nil {
		return err
	}
	c.settings = settings
	return nil
}

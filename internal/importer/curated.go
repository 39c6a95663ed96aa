package importer

import (
	_ "embed"
	"fmt"

	toml "github.com/pelletier/go-toml/v2"
)

//go:embed curated.toml
var curatedTOML []byte

// CuratedFeed is a starter feed shipped with the binary.
type CuratedFeed struct {
	Name string   `toml:"name"`
	URL  string   `toml:"url"`
	Tags []string `toml:"tags"`
}

type curatedConfig struct {
	Feeds []CuratedFeed `toml:"feeds"`
}

// CuratedFeeds returns the embedded starter feed list.
func CuratedFeeds() ([]CuratedFeed, error) {
	var config curatedConfig
	if err := toml.Unmarshal(curatedTOML, &config); err != nil {
		return nil, fmt.Errorf("parsing curated feeds: %w", err)
	}
	return config.Feeds, nil
}

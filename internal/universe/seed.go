package universe

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/guttosm/b3penny/internal/logger"
)

//go:embed seed_tickers.json
var embeddedSeed []byte

type seedFile struct {
	Tickers []string `json:"tickers"`
}

// DefaultSeed returns the built-in list of tickers that is always evaluated.
func DefaultSeed() []string {
	s, err := parseSeed(embeddedSeed)
	if err != nil {
		// The embedded file is part of the build; a parse failure is a bug.
		panic(fmt.Sprintf("universe: embedded seed list: %v", err))
	}
	return s
}

// LoadSeed reads a {"tickers": [...]} file. An empty path, or a file that
// cannot be read or parsed, falls back to DefaultSeed.
func LoadSeed(path string) []string {
	if path == "" {
		return DefaultSeed()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.L().Warn().Str("path", path).Err(err).Msg("read seed file, using built-in seed list")
		}
		return DefaultSeed()
	}
	s, err := parseSeed(data)
	if err != nil {
		logger.L().Warn().Str("path", path).Err(err).Msg("malformed seed file, using built-in seed list")
		return DefaultSeed()
	}
	return s
}

func parseSeed(data []byte) ([]string, error) {
	var f seedFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Tickers, nil
}

package automatic

import (
	"encoding/base64"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"lukechampine.com/frand"
)

// SeedFile is the on-disk form of a set of game seeds.
type SeedFile struct {
	Comment string   `yaml:"comment,omitempty"`
	Seeds   []string `yaml:"seeds"`
}

// GenerateSeeds creates n random 32-byte seeds for repeatable game runs.
func GenerateSeeds(n int) [][32]byte {
	seeds := make([][32]byte, n)
	for i := range seeds {
		frand.Read(seeds[i][:])
	}
	return seeds
}

// SaveSeeds writes seeds to a YAML file, URL-safe base64 encoded.
func SaveSeeds(seeds [][32]byte, path string) error {
	sf := SeedFile{
		Comment: "piece bag seeds (base64 URL-safe encoded, 32 bytes each)",
		Seeds:   make([]string, len(seeds)),
	}
	for i, seed := range seeds {
		sf.Seeds[i] = base64.RawURLEncoding.EncodeToString(seed[:])
	}
	out, err := yaml.Marshal(&sf)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write seed file: %w", err)
	}
	return nil
}

// LoadSeeds reads a file written by SaveSeeds.
func LoadSeeds(path string) ([][32]byte, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	var sf SeedFile
	if err := yaml.Unmarshal(contents, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	seeds := make([][32]byte, 0, len(sf.Seeds))
	for i, line := range sf.Seeds {
		decoded, err := base64.RawURLEncoding.DecodeString(line)
		if err != nil {
			return nil, fmt.Errorf("failed to decode seed %d: %w", i, err)
		}
		if len(decoded) != 32 {
			return nil, fmt.Errorf("invalid seed length for seed %d: got %d bytes, expected 32", i, len(decoded))
		}
		var seed [32]byte
		copy(seed[:], decoded)
		seeds = append(seeds, seed)
	}
	return seeds, nil
}

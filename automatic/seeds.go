package automatic

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"lukechampine.com/frand"
)

const seedsHeader = "# jieqi game seeds, one per game: base64 (URL alphabet, no padding) of 32 bytes\n"

var ErrBadSeed = errors.New("bad seed")

// GenerateSeeds makes n seeds. A game started from a seed deals the same
// hidden identities and gives both players the same random streams, so a
// batch run from a seeds file can be replayed move for move.
func GenerateSeeds(n int) [][32]byte {
	seeds := make([][32]byte, n)
	for i := range seeds {
		seeds[i] = frand.Entropy256()
	}
	return seeds
}

func SaveSeeds(seeds [][32]byte, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	w.WriteString(seedsHeader)
	for _, seed := range seeds {
		w.WriteString(base64.RawURLEncoding.EncodeToString(seed[:]))
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadSeeds reads a file written by SaveSeeds. Blank lines and lines
// starting with # are skipped.
func LoadSeeds(path string) ([][32]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var seeds [][32]byte
	scanner := bufio.NewScanner(f)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		decoded, err := base64.RawURLEncoding.DecodeString(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrBadSeed, lineNum, err)
		}
		if len(decoded) != 32 {
			return nil, fmt.Errorf("%w: line %d has %d bytes, want 32", ErrBadSeed, lineNum, len(decoded))
		}
		seeds = append(seeds, [32]byte(decoded))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("%w: no seeds in %s", ErrBadSeed, path)
	}
	return seeds, nil
}

// Package snapshot persists the discovery result and serves it from memory.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sydlexius/bassline/internal/discovery"
	"github.com/sydlexius/bassline/internal/filesystem"
)

// DefaultPath is where the snapshot lives when no path is configured.
const DefaultPath = "data/sa-artists.json"

const filePerm = 0o644

// Encode renders res as two-space indented JSON with a trailing newline.
func Encode(res *discovery.Result) ([]byte, error) {
	if res == nil {
		return nil, errors.New("nil result")
	}
	out := *res
	if out.Artists == nil {
		out.Artists = []discovery.DiscoveredArtist{}
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a snapshot document.
func Decode(data []byte) (*discovery.Result, error) {
	var res discovery.Result
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&res); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if res.Artists == nil {
		res.Artists = []discovery.DiscoveredArtist{}
	}
	return &res, nil
}

// Write replaces the snapshot at path in one step. The previous document
// survives any failure.
func Write(path string, res *discovery.Result) error {
	data, err := Encode(res)
	if err != nil {
		return err
	}
	if err := filesystem.WriteFileAtomic(path, data, filePerm); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	return nil
}

// Load reads the snapshot at path. A missing file yields an empty result
// and no error.
func Load(path string) (*discovery.Result, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from configuration
	if errors.Is(err, fs.ErrNotExist) {
		return discovery.Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	return Decode(data)
}

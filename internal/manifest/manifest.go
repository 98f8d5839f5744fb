package manifest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"cardpress/internal/logging"
)

// Record is one raw manifest entry. Raw preserves the original JSON verbatim
// so retry manifests can carry the full payload unchanged.
type Record struct {
	Key string
	Raw json.RawMessage
}

// Manifest is the ordered card list loaded from a .cardconjurer file.
type Manifest struct {
	Path    string
	Records []Record
}

// Keys returns the record keys in manifest order.
func (m *Manifest) Keys() []string {
	keys := make([]string, 0, len(m.Records))
	for _, r := range m.Records {
		keys = append(keys, r.Key)
	}
	return keys
}

// Load reads and parses a manifest file. Entry-level problems (malformed
// records, missing or duplicate keys) are skipped with a warning; a wholly
// unparseable file is fatal.
func Load(path string, logger *slog.Logger) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(data, logger)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	m.Path = path
	return m, nil
}

// Parse decodes manifest bytes. See Load for the error contract.
func Parse(data []byte, logger *slog.Logger) (*Manifest, error) {
	logger = logging.NewComponentLogger(logger, "manifest")

	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("not a JSON array of cards: %w", err)
	}

	m := &Manifest{Records: make([]Record, 0, len(elements))}
	seen := make(map[string]struct{}, len(elements))
	for i, raw := range elements {
		var probe struct {
			Key string `json:"key"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			logger.Warn("skipping malformed manifest entry",
				logging.Int("index", i),
				logging.Error(err),
			)
			continue
		}
		if probe.Key == "" {
			logger.Warn("skipping manifest entry without a key", logging.Int("index", i))
			continue
		}
		if _, dup := seen[probe.Key]; dup {
			logger.Warn("skipping duplicate manifest key, keeping the first occurrence",
				logging.String(logging.FieldCardKey, probe.Key),
			)
			continue
		}
		seen[probe.Key] = struct{}{}
		m.Records = append(m.Records, Record{Key: probe.Key, Raw: raw})
	}

	return m, nil
}

// Write serializes the manifest to path in the input schema: a JSON array of
// the original record payloads.
func (m *Manifest) Write(path string) error {
	elements := make([]json.RawMessage, 0, len(m.Records))
	for _, r := range m.Records {
		elements = append(elements, r.Raw)
	}
	data, err := json.MarshalIndent(elements, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}

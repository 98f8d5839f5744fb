package manifest

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Sentinel values Card Conjurer uses when a card carries no set/collector
// information. The namer drops segments equal to these.
const (
	NoSet    = "noset"
	NoNumber = "nonum"
)

// Metadata is the structured card information carried inside a record's data
// payload, extracted tolerantly: absent or oddly-shaped fields stay empty.
type Metadata struct {
	Title  string
	Set    string
	Number string
	Rules  string
}

type recordData struct {
	Data struct {
		Text struct {
			Title struct {
				Text string `json:"text"`
			} `json:"title"`
			Rules struct {
				Text string `json:"text"`
			} `json:"rules"`
		} `json:"text"`
		InfoSet    string `json:"infoSet"`
		InfoNumber string `json:"infoNumber"`
	} `json:"data"`
}

// Metadata extracts structured card information from the raw record payload.
func (r Record) Metadata() Metadata {
	var parsed recordData
	_ = json.Unmarshal(r.Raw, &parsed)
	return Metadata{
		Title:  strings.TrimSpace(parsed.Data.Text.Title.Text),
		Set:    strings.TrimSpace(parsed.Data.InfoSet),
		Number: strings.TrimSpace(parsed.Data.InfoNumber),
		Rules:  parsed.Data.Text.Rules.Text,
	}
}

// ContainsMarker reports whether the raw record payload mentions the given
// dynamic-text marker anywhere. The priming pre-phase uses this; the trigger
// is heuristic, so it scans the whole payload rather than specific fields.
func (r Record) ContainsMarker(marker string) bool {
	if marker == "" {
		return false
	}
	return bytes.Contains(r.Raw, []byte(marker))
}

package afs

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// manifestEntry is the JSON-facing projection of Entry: exported field
// names chosen for the manifest rather than Go convention, since this is
// meant to be read by tooling outside this module.
type manifestEntry struct {
	Name      string `json:"name"`
	Offset    int64  `json:"offset"`
	Length    int64  `json:"length"`
	Timestamp string `json:"timestamp,omitempty"`
}

type manifest struct {
	Version       string          `json:"version"`
	BlockSize     int64           `json:"block_size"`
	HasTimestamps bool            `json:"has_timestamps"`
	Entries       []manifestEntry `json:"entries"`
}

// DescribeJSON renders the archive's entry table as a JSON manifest: a
// read-only inspection aid for tooling built on top of this package,
// supplementing the core read/write protocol rather than replacing it.
func (a *Archive) DescribeJSON() ([]byte, error) {
	m := manifest{
		Version:       versionName(a.settings.Version),
		BlockSize:     a.settings.BlockSize,
		HasTimestamps: a.settings.HasTimestamps,
		Entries:       make([]manifestEntry, len(a.entries)),
	}
	for i, e := range a.entries {
		m.Entries[i] = manifestEntry{
			Name:   e.Name,
			Offset: e.Offset,
			Length: e.Length,
		}
		if a.settings.HasTimestamps {
			m.Entries[i].Timestamp = formatTimestamp(e.Timestamp)
		}
	}
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(m)
}

func formatTimestamp(t Timestamp) string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d",
		t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second)
}

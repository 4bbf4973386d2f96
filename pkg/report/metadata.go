package report

import (
	"encoding/json"
	"io"
	"time"
)

// Metadata describes a batch run.
type Metadata struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Programs    []string  `json:"programs"`
	Replicates  int       `json:"replicates"`
	Completed   int       `json:"completed"`
	Failed      int       `json:"failed"`
	BaseSeed    uint64    `json:"base_seed"`
	Parameters  any       `json:"parameters,omitempty"`
}

// WriteMetadata writes m as indented JSON.
func WriteMetadata(w io.Writer, m Metadata) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

package models

import (
	"fmt"
	"strings"
)

// SchemaVersion selects which EpisodeMetricsResult shape a document uses.
// The two shapes are structurally compatible objects, so the version is
// always supplied by the caller and never guessed from the payload.
type SchemaVersion int

const (
	// SchemaA encodes histogram resolution as "1m" | "30s".
	SchemaA SchemaVersion = iota + 1
	// SchemaB encodes histogram resolution as an integer number of seconds.
	SchemaB
)

func (v SchemaVersion) String() string {
	switch v {
	case SchemaA:
		return "a"
	case SchemaB:
		return "b"
	default:
		return fmt.Sprintf("SchemaVersion(%d)", int(v))
	}
}

func (v SchemaVersion) Valid() bool {
	return v == SchemaA || v == SchemaB
}

func ParseSchemaVersion(s string) (SchemaVersion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a":
		return SchemaA, nil
	case "b":
		return SchemaB, nil
	default:
		return 0, fmt.Errorf("unknown schema version %q", s)
	}
}

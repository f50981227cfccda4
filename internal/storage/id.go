package storage

import "github.com/google/uuid"

// NewAgentID generates a row identifier for records inserted without one
// (file imports, test fixtures). Format: agt_<8 uuid chars>.
func NewAgentID() string {
	return "agt_" + uuid.New().String()[:8]
}

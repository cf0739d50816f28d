package uid

import (
	"github.com/bwmarrin/snowflake"
)

// Snowflake generates time-ordered int64 ids for a single node.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake creates a generator for nodeID (0..1023).
func NewSnowflake(nodeID int64) (*Snowflake, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: node}, nil
}

// Generate returns the next id. Ids from one generator are strictly increasing.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}

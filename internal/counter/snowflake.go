package counter

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// SnowflakeAllocator needs no shared store. Ids are unique per node number and
// time ordered, but long: T1790893462104723456.
type SnowflakeAllocator struct {
	node *snowflake.Node
}

func NewSnowflakeAllocator(nodeID int64) (*SnowflakeAllocator, error) {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &SnowflakeAllocator{node: n}, nil
}

func (a *SnowflakeAllocator) Next(_ context.Context, kind Kind) (string, error) {
	return kind.Prefix() + a.node.Generate().String(), nil
}

package utilities

import (
	"fmt"
	"sync/atomic"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// node generates every snowflake id in the process. It starts as node 1
// and is replaced by SetNode at startup.
var node atomic.Pointer[snowflake.Node]

func init() {
	if n, err := snowflake.NewNode(1); err == nil {
		node.Store(n)
	}
}

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// SetNode selects the snowflake node id (SNOWFLAKE_NODE). Instances sharing
// a database must use distinct nodes.
func SetNode(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	node.Store(n)
	return nil
}

// NewSnowflakeID generates a snowflake ID string from the process node.
// Ids generated within the same millisecond stay unique and ordered. If no
// node is available it falls back to a KSUID string.
func NewSnowflakeID() string {
	n := node.Load()
	if n == nil {
		return NewKSUID()
	}
	return n.Generate().String()
}

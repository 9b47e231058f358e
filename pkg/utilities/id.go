package utilities

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// NewRequestID returns a snowflake id for correlating log lines of one call.
// The node comes from SNOWFLAKE_NODE (default 1); if it cannot be set up the
// id falls back to a KSUID.
func NewRequestID() string {
	nodeOnce.Do(func() {
		node, _ = requestNode(os.Getenv("SNOWFLAKE_NODE"))
	})
	if node == nil {
		return NewKSUID()
	}
	return node.Generate().String()
}

// requestNode builds the snowflake node for raw, which defaults to 1 when
// empty or not a number.
func requestNode(raw string) (*snowflake.Node, error) {
	nodeID := int64(1)
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		nodeID = v
	}
	return snowflake.NewNode(nodeID)
}

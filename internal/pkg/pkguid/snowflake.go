package pkguid

import (
	"crypto/rand"
	"encoding/binary"
	"sync"

	"github.com/bwmarrin/snowflake"
)

const maxNodeID int64 = 1<<10 - 1

//nolint:gochecknoglobals // snowflake.Epoch is package state in the library
var setEpoch sync.Once

// Snowflake generates numeric IDs using the Snowflake algorithm.
type Snowflake struct {
	node *snowflake.Node
}

func generateRandomNodeID() (int64, error) {
	var nodeID int64
	err := binary.Read(rand.Reader, binary.BigEndian, &nodeID)
	if err != nil {
		return 0, err
	}

	return nodeID & maxNodeID, nil
}

// NewSnowflake constructs a Snowflake generator for the given node. A
// negative node picks a random one, which is fine for a single instance.
func NewSnowflake(node int64) (*Snowflake, error) {
	if node < 0 {
		var err error
		if node, err = generateRandomNodeID(); err != nil {
			return nil, err
		}
	}

	setEpoch.Do(func() {
		snowflake.Epoch = 1764522000000 // Mon Dec 01 2025 00:00:00.000 WIB
	})

	n, err := snowflake.NewNode(node & maxNodeID)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: n}, nil
}

// Generate returns a new unique numeric ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}

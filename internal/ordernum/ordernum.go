// Package ordernum issues display-facing order numbers. A bare wall-clock
// number collides under concurrent submissions within one millisecond, so
// the number is <unix-ms><node-tag><counter>: the millisecond prefix keeps
// numbers roughly time-ordered, the node tag separates processes, and the
// atomic counter separates submissions inside one process.
package ordernum

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type Generator struct {
	node    string
	counter atomic.Uint64
}

func NewGenerator() *Generator {
	id := uuid.New()
	return &Generator{node: fmt.Sprintf("%02x%02x", id[0], id[1])}
}

func (g *Generator) Next(at time.Time) string {
	n := g.counter.Add(1)
	return fmt.Sprintf("%d%s%04d", at.UnixMilli(), g.node, n%10000)
}

package analyzer

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

var (
	ridMu  sync.Mutex
	ridRnd = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// NewRequestID builds a correlation key of the form
// lint-{millisecond timestamp}-{7 base36 characters}.
func NewRequestID() string {
	var suffix [7]byte
	ridMu.Lock()
	for i := range suffix {
		suffix[i] = base36[ridRnd.Intn(len(base36))]
	}
	ridMu.Unlock()
	return fmt.Sprintf("lint-%d-%s", time.Now().UnixMilli(), suffix[:])
}

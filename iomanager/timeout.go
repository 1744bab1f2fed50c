package iomanager

import "time"

// Special timeout values. send/receive implementations must honor both
// without conflating either with an ordinary short timeout: NoBlock means
// "try once and give up immediately", Block means "wait as long as it
// takes".
const (
	NoBlock time.Duration = 0
	Block   time.Duration = time.Duration(1<<63 - 1) // math.MaxInt64
)

package configs

import "time"

const (
	// Queue capacity the demo command writes into its queue:// uri. A
	// queue uri that omits its <capacity> segment is rejected; this
	// value is not substituted for it.
	kDefaultQueueCapacity = 64

	kDefaultChannelBufferSize  = 50
	kDefaultMaximumMessageSize = 4 * 1024 * 1024

	// Callback-loop poll intervals (spec.md §4.4): small enough that
	// remove_callback observes the cleared flag quickly, large enough
	// that idle spin is negligible.
	kDefaultQueuePollInterval   = 250 * time.Millisecond
	kDefaultNetworkPollInterval = 2 * time.Millisecond

	AppName = "iomanager"
)

var (
	QueueCapacity      = kDefaultQueueCapacity
	ChannelBufferSize  = kDefaultChannelBufferSize
	MaximumMessageSize = kDefaultMaximumMessageSize

	QueuePollInterval   = kDefaultQueuePollInterval
	NetworkPollInterval = kDefaultNetworkPollInterval
)

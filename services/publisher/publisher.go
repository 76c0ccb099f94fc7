package publisher

// Publisher represents a sink for assembled auction records
type Publisher interface {
	// Publish publishes one serialized record under the given key
	Publish(key string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}

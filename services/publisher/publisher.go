package publisher

// Publisher represents a service for publishing price events
type Publisher interface {
	// Publish publishes a serialized price event
	Publish(message []byte) error

	// Close closes the publisher connection
	Close() error
}

package queue

import "fmt"

// NewQueue creates a Queue instance based on the configured driver.
// Parameters:
//   - driver: "sqs" or "memory".
//   - cfg: SQS settings; ignored by the memory driver.
// Returns:
//   - Queue: initialized queue implementation.
//   - error: non-nil if the driver is unknown or the client cannot be created.
func NewQueue(driver string, cfg *SQSConfig) (Queue, error) {
	switch driver {
	case "", "sqs":
		return NewSQSQueue(cfg)
	case "memory":
		return NewMemoryQueue(0), nil
	default:
		return nil, fmt.Errorf("unknown queue driver %q", driver)
	}
}

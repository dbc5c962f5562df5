package storage

import "fmt"

// NewStore creates an ObjectStore instance based on the configured driver.
// Parameters:
//   - driver: "s3" (covers MinIO and other S3-compatible services) or "memory".
//   - cfg: S3 settings; ignored by the memory driver.
// Returns:
//   - ObjectStore: initialized storage implementation.
//   - error: non-nil if the driver is unknown or the client cannot be created.
func NewStore(driver string, cfg *S3Config) (ObjectStore, error) {
	switch driver {
	case "", "s3":
		return NewS3Store(cfg)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

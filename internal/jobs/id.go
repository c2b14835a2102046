package jobs

import "github.com/google/uuid"

// NewID generates a job id for a caller that didn't supply one, the
// same way internal/lidar's scene store mints scene ids.
func NewID() string {
	return uuid.New().String()
}

package pipeline

import "github.com/oklog/ulid/v2"

// generateULID returns a sortable job ID. ulid.Make draws from a
// process-wide monotonic source, so IDs minted in the same millisecond
// still sort in creation order.
func generateULID() string {
	return ulid.Make().String()
}

package storage

import (
	"context"
	"fmt"
)

// ObjectStore defines the object-storage operations the splitter needs.
// Containers hold flat object names; a name may contain '/' separators.
type ObjectStore interface {
	// EnsureContainer creates the container if it does not exist yet
	EnsureContainer(ctx context.Context, container string) error

	// Exists reports whether the object exists. A missing container is reported
	// as a missing object, not as an error.
	Exists(ctx context.Context, container, name string) (bool, error)

	// Download reads the full content of an object
	Download(ctx context.Context, container, name string) ([]byte, error)

	// Upload writes data under name, replacing any existing object
	Upload(ctx context.Context, container, name string, data []byte, contentType string) error
}

// ObjectLocation formats the location of an object for results and logs.
func ObjectLocation(container, name string) string {
	return fmt.Sprintf("%s/%s", container, name)
}

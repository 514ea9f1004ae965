package topic

import (
	"fmt"
	"strings"
)

// Builder constructs topic strings of the form {root}/{segment}/{id}.
type Builder struct {
	// root is the base namespace for all topics (e.g. "seatrack/v1").
	root string
}

// NewBuilder creates a Builder for the given root namespace. Trailing
// slashes are trimmed.
func NewBuilder(root string) *Builder {
	return &Builder{root: strings.TrimRight(root, "/")}
}

// Build returns {root}/{segment}/{id}.
func (b *Builder) Build(segment, id string) string {
	return fmt.Sprintf("%s/%s/%s", b.root, segment, id)
}

// Wildcard returns {root}/{segment}/+, matching every device.
func (b *Builder) Wildcard(segment string) string {
	return b.Build(segment, Wildcard)
}

// Root returns the namespace.
func (b *Builder) Root() string {
	return b.root
}

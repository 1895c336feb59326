package registry

// PushOption configures a Push call.
type PushOption func(*pushConfig)

type pushConfig struct {
	tags        []string
	annotations map[string]string
}

// WithTags applies additional tags to the pushed manifest.
func WithTags(tags ...string) PushOption {
	return func(c *pushConfig) {
		c.tags = append(c.tags, tags...)
	}
}

// WithAnnotations sets custom annotations on the pushed manifest.
// The root tree annotation is always set and cannot be overridden.
func WithAnnotations(annotations map[string]string) PushOption {
	return func(c *pushConfig) {
		c.annotations = annotations
	}
}

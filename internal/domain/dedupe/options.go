package dedupe

type options struct {
	capacity int
}

// Option applies a configuration option to the deduper.
type Option func(*options)

// WithCapacity pre-sizes the key set. Non-positive values are ignored.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

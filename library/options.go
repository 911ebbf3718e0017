package library

import "github.com/rs/zerolog"

// Option customises a store at construction time.
type Option func(*storeOptions)

type storeOptions struct {
	logger zerolog.Logger
	clock  Clock
	ids    IDGen
	seed   bool
}

func defaultOptions() storeOptions {
	return storeOptions{
		logger: zerolog.Nop(),
		clock:  realClock{},
		ids:    newULIDGen(),
		seed:   true,
	}
}

func buildOptions(opts []Option) storeOptions {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func WithLogger(l zerolog.Logger) Option { return func(o *storeOptions) { o.logger = l } }

func WithClock(c Clock) Option { return func(o *storeOptions) { o.clock = c } }

func WithIDGen(g IDGen) Option { return func(o *storeOptions) { o.ids = g } }

// WithSeed controls whether an empty storage starts with the built-in admin
// account and sample books.
func WithSeed(enabled bool) Option { return func(o *storeOptions) { o.seed = enabled } }

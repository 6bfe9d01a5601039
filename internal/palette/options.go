package palette

// Options tunes the k-means extractor.
type Options struct {
	// Independent restarts; the lowest-inertia run wins.
	Attempts int
	// Per-attempt iteration cap.
	MaxIterations int
	// Stop once no center moves farther than this (8-bit RGB units).
	Epsilon float64
	// Downsample images above this many pixels before clustering. 0 disables.
	MaxSamples int
	// PRNG seed; 0 draws a random one.
	Seed uint64
}

// DefaultOptions returns the defaults: 10 attempts, 200 iterations, epsilon 0.1.
func DefaultOptions() Options {
	return Options{
		Attempts:      10,
		MaxIterations: 200,
		Epsilon:       0.1,
		MaxSamples:    250000,
	}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Attempts <= 0 {
		o.Attempts = d.Attempts
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.Epsilon <= 0 {
		o.Epsilon = d.Epsilon
	}
	if o.MaxSamples < 0 {
		o.MaxSamples = 0
	}
	return o
}

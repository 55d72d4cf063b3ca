package attainment

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithBlendWeights sets the direct/indirect percentage split used when
// blending program-outcome attainment. Pairs that do not sum to 100 are
// accepted; the result is then no longer guaranteed to stay within [0,3].
func WithBlendWeights(directPct, indirectPct float64) Option {
	return func(e *Engine) {
		if directPct >= 0 && indirectPct >= 0 {
			e.blend = BlendWeights{DirectPct: directPct, IndirectPct: indirectPct}
		}
	}
}

// WithDefaultIndirect sets the indirect attainment assumed for program
// outcomes with no stored survey value.
func WithDefaultIndirect(v float64) Option {
	return func(e *Engine) {
		if v >= 0 && v <= 3 {
			e.defaultIndirect = v
		}
	}
}

package dat

import (
	"github.com/jhh67/extractdat/internal/options"
)

// DecoderConfig holds the decoder configuration applied through functional
// options.
type DecoderConfig struct {
	elementNames []string
	lenient      bool
}

// setElementNames stores the element names used for mass slot naming.
func (c *DecoderConfig) setElementNames(names []string) {
	c.elementNames = names
}

// setLenient enables or disables lenient tagged word handling.
func (c *DecoderConfig) setLenient(enabled bool) {
	c.lenient = enabled
}

// DecoderOption represents a functional option for configuring a Decoder.
// This is a type alias for the generic Option interface specialized for
// DecoderConfig.
type DecoderOption = options.Option[*DecoderConfig]

// WithElementNames supplies element names for the mass slots, positionally:
// names[i] labels mass slot i. The usual source is the FIN2 sidecar parsed
// by ParseFIN2. Slots beyond the supplied names, and slots whose name is
// empty, fall back to generated MassNN placeholders.
func WithElementNames(names []string) DecoderOption {
	return options.NoError(func(c *DecoderConfig) {
		c.setElementNames(names)
	})
}

// WithLenientTags controls how the decoder treats scan payload words it
// does not recognize. When enabled, a scan containing an unknown tag key
// or detector type is skipped with a warning instead of failing the whole
// decode. Structural faults such as bad signatures, truncation, and shape
// mismatches still fail regardless of this option.
func WithLenientTags(enabled bool) DecoderOption {
	return options.NoError(func(c *DecoderConfig) {
		c.setLenient(enabled)
	})
}

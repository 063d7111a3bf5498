package converter

// Policy decides what happens when a converter produces no value.
type Policy int

const (
	// PolicyRequired turns NoMatch and Invalid into a parse failure.
	PolicyRequired Policy = iota
	// PolicyOptional leaves the value unset and lets parsing continue.
	PolicyOptional
	// PolicyDefaulting substitutes a preset value and lets parsing continue.
	PolicyDefaulting
)

func (p Policy) String() string {
	switch p {
	case PolicyOptional:
		return "optional"
	case PolicyDefaulting:
		return "defaulting"
	default:
		return "required"
	}
}

// HumanizeFunc turns a parse failure into the text shown to the user. The
// tokens are the raw input the converter was offered. Returning an error
// propagates that error instead.
type HumanizeFunc func(err error, tokens []string) (string, error)

// Spec is a converter plus the policy that applies when it yields nothing.
type Spec[T any] struct {
	Converter Converter[T]
	Policy    Policy
	Default   T
	Humanize  HumanizeFunc
}

// Required wraps c so a missing or invalid value fails the parse.
func Required[T any](c Converter[T]) Spec[T] {
	return Spec[T]{Converter: c, Policy: PolicyRequired}
}

// Optional wraps c so a missing or invalid value is left unset.
func Optional[T any](c Converter[T]) Spec[T] {
	return Spec[T]{Converter: c, Policy: PolicyOptional}
}

// Defaulting wraps c so a missing or invalid value becomes def.
func Defaulting[T any](c Converter[T], def T) Spec[T] {
	return Spec[T]{Converter: c, Policy: PolicyDefaulting, Default: def}
}

// WithHumanizer sets the error-humanization hook.
func (s Spec[T]) WithHumanizer(fn HumanizeFunc) Spec[T] {
	s.Humanize = fn
	return s
}

// HandleError applies the humanization hook. Without one the error is
// returned unchanged.
func (s Spec[T]) HandleError(err error, tokens []string) (string, error) {
	if s.Humanize == nil {
		return "", err
	}
	return s.Humanize(err, tokens)
}

package protocol

// Decoding limits. Length prefixes and counts come from the network and are
// checked before anything is allocated.
const (
	// DefaultMaxAllocation bounds a single string or byte slice (4MB).
	DefaultMaxAllocation = 4 << 20

	// HardMaxAllocation bounds any frame payload, compressed or not (16MB).
	HardMaxAllocation = 16 << 20

	// MaxCollectionCount bounds the element count of any list or map.
	MaxCollectionCount = 100_000

	// MaxNodeDepth bounds the nesting of paint nodes.
	MaxNodeDepth = 256

	// MaxValueDepth bounds the nesting of array values.
	MaxValueDepth = 32
)

// Limits configures a Decoder. Zero fields take the defaults.
type Limits struct {
	MaxAllocation int
	MaxCollection int
	MaxNodeDepth  int
	MaxValueDepth int
}

// DefaultLimits returns the default decoding limits.
func DefaultLimits() Limits {
	return Limits{
		MaxAllocation: DefaultMaxAllocation,
		MaxCollection: MaxCollectionCount,
		MaxNodeDepth:  MaxNodeDepth,
		MaxValueDepth: MaxValueDepth,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxAllocation <= 0 {
		l.MaxAllocation = d.MaxAllocation
	}
	l.MaxAllocation = min(l.MaxAllocation, HardMaxAllocation)
	if l.MaxCollection <= 0 {
		l.MaxCollection = d.MaxCollection
	}
	if l.MaxNodeDepth <= 0 {
		l.MaxNodeDepth = d.MaxNodeDepth
	}
	if l.MaxValueDepth <= 0 {
		l.MaxValueDepth = d.MaxValueDepth
	}
	return l
}

// depth tracks recursion while decoding nested structures.
type depth struct {
	current int
	max     int
}

func (d *depth) enter() error {
	if d.current >= d.max {
		return ErrMaxDepthExceeded
	}
	d.current++
	return nil
}

func (d *depth) leave() {
	d.current--
}

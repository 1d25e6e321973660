// Package policy decides the page size used to back allocation requests.
package policy

import "github.com/sarchlab/vmsim/mem/vm"

// Page-size policy modes. ModeSmall and ModeLarge always pick the
// corresponding page size. ModeDynamic picks the large page size for
// requests larger than the configured threshold.
const (
	ModeSmall   = "small"
	ModeLarge   = "large"
	ModeDynamic = "dynamic"
)

// An Engine selects the page size for an allocation request. It is a pure
// configured value with no state beyond its configuration.
type Engine struct {
	mode          string
	threshold     uint64
	smallPageSize uint64
	largePageSize uint64
}

// MakeEngine returns an Engine with default configuration: dynamic mode with
// a 1 MiB threshold, deciding between the default small and large page sizes.
func MakeEngine() Engine {
	return Engine{
		mode:          ModeDynamic,
		threshold:     1 * 1024 * 1024,
		smallPageSize: vm.DefaultSmallPageSize,
		largePageSize: vm.DefaultLargePageSize,
	}
}

// WithMode sets the policy mode. Unrecognized modes are not rejected; they
// degrade to always choosing the small page size.
func (e Engine) WithMode(mode string) Engine {
	e.mode = mode
	return e
}

// WithThreshold sets the request size in bytes above which dynamic mode
// picks the large page size. Only consulted in dynamic mode.
func (e Engine) WithThreshold(bytes uint64) Engine {
	e.threshold = bytes
	return e
}

// WithPageSizes sets the small and large page sizes the engine decides
// between.
func (e Engine) WithPageSizes(small, large uint64) Engine {
	e.smallPageSize = small
	e.largePageSize = large
	return e
}

// DecidePageSize returns the page size to use for a request of the given
// size.
func (e Engine) DecidePageSize(requestSize uint64) uint64 {
	switch e.mode {
	case ModeSmall:
		return e.smallPageSize
	case ModeLarge:
		return e.largePageSize
	case ModeDynamic:
		if requestSize > e.threshold {
			return e.largePageSize
		}
		return e.smallPageSize
	default:
		return e.smallPageSize
	}
}

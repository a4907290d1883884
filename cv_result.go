package convoker

import (
	"math/big"

	"github.com/hashicorp/go-multierror"
)

// Input is the bound, typed input of a command, keyed by field key. A field
// with no value, no default and no requirement is absent from the map.
type Input map[string]any

func (in Input) Has(key string) bool {
	_, ok := in[key]
	return ok
}

// Value returns the field under key as a T. ok is false when the field is
// absent or holds a different type.
func Value[T any](in Input, key string) (T, bool) {
	v, ok := in[key].(T)
	return v, ok
}

func (in Input) String(key string) string {
	v, _ := Value[string](in, key)
	return v
}

func (in Input) Bool(key string) bool {
	v, _ := Value[bool](in, key)
	return v
}

func (in Input) Number(key string) float64 {
	v, _ := Value[float64](in, key)
	return v
}

func (in Input) BigInt(key string) *big.Int {
	v, _ := Value[*big.Int](in, key)
	return v
}

func (in Input) Strings(key string) []string {
	v, _ := Value[[]string](in, key)
	return v
}

func (in Input) Numbers(key string) []float64 {
	v, _ := Value[[]float64](in, key)
	return v
}

// ParseResult is the outcome of one Parse call.
type ParseResult struct {
	Command   *Cmd
	Input     Input
	Errors    []error
	IsHelp    bool
	IsVersion bool
}

// Err aggregates Errors into one error, or returns nil when there are none.
func (r *ParseResult) Err() error {
	var merr *multierror.Error
	for _, err := range r.Errors {
		merr = multierror.Append(merr, err)
	}
	return merr.ErrorOrNil()
}

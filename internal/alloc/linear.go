// Package alloc hands out ranges of device GPU memory.
package alloc

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"

	"github.com/gogpu/vgr/gpudata"
)

// ErrOutOfMemory is returned when an allocation does not fit the budget.
var ErrOutOfMemory = errors.New("alloc: out of device memory")

// Linear is a bump allocator over the global address space. Ranges are
// never freed individually; Reset releases everything at once.
//
// Every range starts on a gpudata.BlockAlignment boundary.
//
// Linear is not safe for concurrent use.
type Linear struct {
	budget uint32
	next   uint32
	count  int
}

// NewLinear returns an allocator for budget words. The budget is clamped
// to the addressable range.
func NewLinear(budget uint32) *Linear {
	if budget > gpudata.MaxOffset {
		budget = gpudata.MaxOffset
	}
	return &Linear{budget: budget}
}

func alignUp[T constraints.Integer](x, align T) T {
	if r := x % align; r != 0 {
		return x + align - r
	}
	return x
}

// Allocate reserves size words and returns their range. The range length
// is always size.
func (a *Linear) Allocate(size uint32) (gpudata.AddressRange, error) {
	start := alignUp(uint64(a.next), gpudata.BlockAlignment)
	end := start + uint64(size)
	if end > uint64(a.budget) {
		return gpudata.AddressRange{}, fmt.Errorf("%w: %d words requested, %d of %d available",
			ErrOutOfMemory, size, a.Available(), a.budget)
	}
	a.next = uint32(end)
	a.count++
	return gpudata.NewAddressRange(gpudata.GlobalAddress(uint32(start)), gpudata.GlobalAddress(uint32(end))), nil
}

// Owns reports whether r lies entirely inside memory handed out so far.
func (a *Linear) Owns(r gpudata.AddressRange) bool {
	return r.Start().Type() == gpudata.Global && r.End().Offset() <= a.next
}

// Used returns the number of words allocated, padding included.
func (a *Linear) Used() uint32 { return a.next }

// Available returns the number of words left, ignoring alignment.
func (a *Linear) Available() uint32 { return a.budget - a.next }

// Budget returns the total number of words.
func (a *Linear) Budget() uint32 { return a.budget }

// Reset releases every allocation.
func (a *Linear) Reset() {
	a.next = 0
	a.count = 0
}

// Stats reports allocator usage.
type Stats struct {
	Budget      uint32
	Used        uint32
	Allocations int
}

// Stats returns the current usage.
func (a *Linear) Stats() Stats {
	return Stats{Budget: a.budget, Used: a.next, Allocations: a.count}
}

// String returns a human-readable summary.
func (s Stats) String() string {
	var pct float64
	if s.Budget > 0 {
		pct = float64(s.Used) / float64(s.Budget) * 100
	}
	return fmt.Sprintf("Linear[%.1f%% used, %d/%d words, %d allocations]", pct, s.Used, s.Budget, s.Allocations)
}

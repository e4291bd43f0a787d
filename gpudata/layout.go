package gpudata

import (
	"fmt"
	"slices"

	"golang.org/x/exp/constraints"
)

// ScalarType is the element type of a DataType.
type ScalarType uint8

const (
	ScalarI32 ScalarType = iota
	ScalarF32
	ScalarAddress
	ScalarUnknown
)

func (s ScalarType) String() string {
	switch s {
	case ScalarI32:
		return "i32"
	case ScalarF32:
		return "f32"
	case ScalarAddress:
		return "address"
	default:
		return "unknown"
	}
}

// DataType describes a field as a scalar kind and a size in words.
type DataType struct {
	Scalar ScalarType
	Size   uint32
}

// Alignment returns the word alignment of the type.
//
// Sizes 1 and 2 align to themselves, 3 aligns to 4, and larger sizes align
// to their size rounded down to a multiple of 4. This is a packing policy
// for word-sized scalars, tuned for 2D transforms (6 words) and vec4s.
func (t DataType) Alignment() uint32 {
	switch t.Size {
	case 0, 1:
		return 1
	case 2:
		return 2
	case 3:
		return 4
	default:
		return (t.Size / 4) * 4
	}
}

func (t DataType) String() string {
	return fmt.Sprintf("%s[%d]", t.Scalar, t.Size)
}

func Float() DataType       { return DataType{Scalar: ScalarF32, Size: 1} }
func Vec2() DataType        { return DataType{Scalar: ScalarF32, Size: 2} }
func Vec3() DataType        { return DataType{Scalar: ScalarF32, Size: 3} }
func Vec4() DataType        { return DataType{Scalar: ScalarF32, Size: 4} }
func Transform2D() DataType { return DataType{Scalar: ScalarF32, Size: 6} }
func Transform3D() DataType { return DataType{Scalar: ScalarF32, Size: 16} }
func Int() DataType         { return DataType{Scalar: ScalarI32, Size: 1} }
func IVec2() DataType       { return DataType{Scalar: ScalarI32, Size: 2} }
func IVec3() DataType       { return DataType{Scalar: ScalarI32, Size: 3} }
func IVec4() DataType       { return DataType{Scalar: ScalarI32, Size: 4} }

// AddressField is a single word holding a packed Address.
func AddressField() DataType { return DataType{Scalar: ScalarAddress, Size: 1} }

// Member is one field of a MemoryLayout.
type Member struct {
	Type   DataType
	Offset Address
}

// MemoryLayout is an append-only record of typed fields in the shared or
// the instance address space.
type MemoryLayout struct {
	members []Member
	size    uint32
	space   AddressType
}

// NewMemoryLayout returns an empty layout for space, which must be Shared
// or Instance.
func NewMemoryLayout(space AddressType) *MemoryLayout {
	if space != Shared && space != Instance {
		panic(fmt.Sprintf("gpudata: layouts describe shared or instance memory, not %v", space))
	}
	return &MemoryLayout{space: space}
}

func nextMultipleOf[T constraints.Integer](x, y T) T {
	r := x % y
	if r == 0 {
		return x
	}
	return x + y - r
}

// Alloc appends a field of type ty at the next offset aligned for it and
// returns that offset tagged with the layout's space. Offsets strictly
// increase and the same sequence of calls always yields the same offsets.
func (l *MemoryLayout) Alloc(ty DataType) Address {
	if ty.Size == 0 {
		panic("gpudata: zero-sized field")
	}
	offset := nextMultipleOf(l.size, ty.Alignment())
	addr := NewAddress(l.space, offset)
	l.members = append(l.members, Member{Type: ty, Offset: addr})
	l.size = offset + ty.Size
	return addr
}

// Size returns the record size in words, including padding.
func (l *MemoryLayout) Size() uint32 { return l.size }

// Space returns the address space the layout describes.
func (l *MemoryLayout) Space() AddressType { return l.space }

// Members returns a copy of the fields in allocation order.
func (l *MemoryLayout) Members() []Member { return slices.Clone(l.members) }

// Lookup returns the member allocated at addr.
func (l *MemoryLayout) Lookup(addr Address) (Member, bool) {
	i, ok := slices.BinarySearchFunc(l.members, addr.Raw(), func(m Member, raw uint32) int {
		switch {
		case m.Offset.Raw() < raw:
			return -1
		case m.Offset.Raw() > raw:
			return 1
		}
		return 0
	})
	if !ok {
		return Member{}, false
	}
	return l.members[i], true
}

// Validate reports whether a write of type ty at addr matches a field of
// the layout. It is for code that writes its own fields; Memory does not
// consult layouts.
func (l *MemoryLayout) Validate(addr Address, ty DataType) error {
	m, ok := l.Lookup(addr)
	if !ok {
		return fmt.Errorf("%w: no %v field at %v", ErrLayoutMismatch, l.space, addr)
	}
	if m.Type != ty {
		return fmt.Errorf("%w: field at %v is %v, not %v", ErrLayoutMismatch, addr, m.Type, ty)
	}
	return nil
}

// Clone returns an independent copy of the layout.
func (l *MemoryLayout) Clone() *MemoryLayout {
	return &MemoryLayout{
		members: slices.Clone(l.members),
		size:    l.size,
		space:   l.space,
	}
}

// Equal reports whether two layouts have the same space and fields.
func (l *MemoryLayout) Equal(other *MemoryLayout) bool {
	return l.space == other.space && l.size == other.size && slices.Equal(l.members, other.members)
}

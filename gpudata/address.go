package gpudata

import "fmt"

// Header layout of an Address. The top byte is reserved; the two highest
// bits select the space.
const (
	headerMask     uint32 = 0xFF000000
	offsetMask     uint32 = ^headerMask
	globalHeader   uint32 = 0x00000000
	instanceHeader uint32 = 0x80000000
	sharedHeader   uint32 = 0x40000000
)

// MaxOffset is the largest word offset an Address can carry.
const MaxOffset = offsetMask

// AddressType is the memory space an Address points into.
type AddressType uint8

const (
	// Global is device memory and authoring buffers.
	Global AddressType = iota
	// Instance is the per-instance data block.
	Instance
	// Shared is the uniform block shared by every instance of an image.
	Shared
)

// String returns the space name.
func (t AddressType) String() string {
	switch t {
	case Global:
		return "global"
	case Instance:
		return "instance"
	case Shared:
		return "shared"
	default:
		return fmt.Sprintf("AddressType(%d)", uint8(t))
	}
}

func (t AddressType) header() uint32 {
	switch t {
	case Global:
		return globalHeader
	case Instance:
		return instanceHeader
	case Shared:
		return sharedHeader
	default:
		panic(fmt.Sprintf("gpudata: invalid address type %d", uint8(t)))
	}
}

// Address is a tagged word offset into one of the GPU memory spaces.
//
// The zero value is global offset 0.
type Address struct {
	raw uint32
}

func checkOffset(offset uint32) {
	if offset&headerMask != 0 {
		panic(fmt.Sprintf("gpudata: offset %#x overlaps the address header", offset))
	}
}

// NewAddress returns the address of offset in space ty.
// It panics if offset does not fit in the offset field.
func NewAddress(ty AddressType, offset uint32) Address {
	checkOffset(offset)
	return Address{raw: offset | ty.header()}
}

// GlobalAddress returns a global address.
func GlobalAddress(offset uint32) Address {
	checkOffset(offset)
	return Address{raw: offset}
}

// InstanceAddress returns a per-instance address.
func InstanceAddress(offset uint32) Address {
	checkOffset(offset)
	return Address{raw: offset | instanceHeader}
}

// SharedAddress returns a shared-uniform address.
func SharedAddress(offset uint32) Address {
	checkOffset(offset)
	return Address{raw: offset | sharedHeader}
}

// AddressFromRaw reinterprets a packed word, e.g. a vertex primitive id.
// The header is validated lazily by Type.
func AddressFromRaw(raw uint32) Address {
	return Address{raw: raw}
}

// Raw returns the packed representation.
func (a Address) Raw() uint32 { return a.raw }

// Offset returns the word offset within the address space.
func (a Address) Offset() uint32 { return a.raw & offsetMask }

// Type decodes the space tag. It panics if the header is corrupted.
func (a Address) Type() AddressType {
	switch a.raw & headerMask {
	case globalHeader:
		return Global
	case instanceHeader:
		return Instance
	case sharedHeader:
		return Shared
	default:
		panic(fmt.Sprintf("gpudata: invalid address header in %#08x", a.raw))
	}
}

// Add returns the address n words further in the same space.
// The offset wraps within the offset field; n itself must not touch the
// header bits.
func (a Address) Add(n uint32) Address {
	checkOffset(n)
	header := a.raw & headerMask
	return Address{raw: header | ((a.raw + n) & offsetMask)}
}

// String formats the address as space:offset.
func (a Address) String() string {
	switch a.raw & headerMask {
	case globalHeader, instanceHeader, sharedHeader:
		return fmt.Sprintf("%s:%d", a.Type(), a.Offset())
	default:
		return fmt.Sprintf("invalid:%#08x", a.raw)
	}
}

// AddressRange is the half-open region [Start, End) of one address space.
type AddressRange struct {
	start Address
	end   Address
}

// NewAddressRange returns [start, end). It panics if the bounds belong to
// different spaces or end precedes start.
func NewAddressRange(start, end Address) AddressRange {
	if start.Type() != end.Type() {
		panic(fmt.Sprintf("gpudata: range bounds in different spaces: %v, %v", start, end))
	}
	if end.Offset() < start.Offset() {
		panic(fmt.Sprintf("gpudata: range end %v before start %v", end, start))
	}
	return AddressRange{start: start, end: end}
}

// Start returns the first address of the range.
func (r AddressRange) Start() Address { return r.start }

// End returns the address one past the range.
func (r AddressRange) End() Address { return r.end }

// Len returns the number of words in the range.
func (r AddressRange) Len() uint32 { return r.end.Offset() - r.start.Offset() }

// IsEmpty reports whether the range holds no words.
func (r AddressRange) IsEmpty() bool { return r.start == r.end }

// Contains reports whether addr lies in the range.
func (r AddressRange) Contains(addr Address) bool {
	if addr.raw&headerMask != r.start.raw&headerMask {
		return false
	}
	off := addr.Offset()
	return off >= r.start.Offset() && off < r.end.Offset()
}

// ShrinkLeft drops the first n words. It panics if n exceeds Len.
func (r *AddressRange) ShrinkLeft(n uint32) {
	if n > r.Len() {
		panic(fmt.Sprintf("gpudata: cannot shrink range of %d words by %d", r.Len(), n))
	}
	r.start = r.start.Add(n)
}

// Split removes the first n words from r and returns them as a range.
func (r *AddressRange) Split(n uint32) AddressRange {
	head := r.start
	r.ShrinkLeft(n)
	return AddressRange{start: head, end: r.start}
}

// String formats the range as [start, end).
func (r AddressRange) String() string {
	return fmt.Sprintf("[%v, %v)", r.start, r.end)
}

package tess

import (
	"errors"
	"fmt"
	"math"
)

// Tessellation errors.
var (
	// ErrInvalidTolerance is returned for a tolerance that is not a
	// positive finite number.
	ErrInvalidTolerance = errors.New("tess: tolerance must be positive and finite")

	// ErrInvalidPath is returned when a path contains NaN or infinite
	// coordinates.
	ErrInvalidPath = errors.New("tess: path contains non-finite coordinates")

	// ErrInvalidOptions is returned for stroke options outside their domain.
	ErrInvalidOptions = errors.New("tess: invalid stroke options")

	// ErrTriangulation is returned when a contour cannot be triangulated,
	// typically because it intersects itself.
	ErrTriangulation = errors.New("tess: contour cannot be triangulated")

	// ErrTooManyVertices is returned when the output exceeds the 16-bit
	// index range.
	ErrTooManyVertices = errors.New("tess: too many vertices for 16-bit indices")
)

// MaxVertices is the largest number of vertices a VertexBuffers can hold.
const MaxVertices = math.MaxUint16

// VertexID indexes a vertex in the output buffers.
type VertexID uint16

// Count is the amount of geometry produced by one tessellation.
type Count struct {
	Vertices int
	Indices  int
}

// GeometryBuilder receives the output of a tessellator.
//
// A tessellator calls BeginGeometry once, then AddVertex and AddTriangle any
// number of times, then EndGeometry on success or AbortGeometry on failure.
type GeometryBuilder[V any] interface {
	BeginGeometry()
	AddVertex(v V) (VertexID, error)
	AddTriangle(a, b, c VertexID)
	EndGeometry() Count
	AbortGeometry()
}

// VertexBuffers holds indexed triangle-list geometry.
type VertexBuffers[V any] struct {
	Vertices []V
	Indices  []uint16
}

// Len returns the number of vertices.
func (b *VertexBuffers[V]) Len() int { return len(b.Vertices) }

// Truncate drops everything past the given counts.
func (b *VertexBuffers[V]) Truncate(vertices, indices int) {
	b.Vertices = b.Vertices[:vertices]
	b.Indices = b.Indices[:indices]
}

// VertexConstructor converts a tessellator vertex into an output vertex.
type VertexConstructor[In, Out any] func(In) Out

// BuffersBuilder is a GeometryBuilder appending to VertexBuffers.
type BuffersBuilder[In, Out any] struct {
	buffers     *VertexBuffers[Out]
	ctor        VertexConstructor[In, Out]
	firstVertex int
	firstIndex  int
}

// NewBuffersBuilder returns a builder appending to buffers through ctor.
func NewBuffersBuilder[In, Out any](buffers *VertexBuffers[Out], ctor VertexConstructor[In, Out]) *BuffersBuilder[In, Out] {
	return &BuffersBuilder[In, Out]{buffers: buffers, ctor: ctor}
}

// BeginGeometry records the rollback point.
func (b *BuffersBuilder[In, Out]) BeginGeometry() {
	b.firstVertex = len(b.buffers.Vertices)
	b.firstIndex = len(b.buffers.Indices)
}

// AddVertex converts and appends v.
func (b *BuffersBuilder[In, Out]) AddVertex(v In) (VertexID, error) {
	n := len(b.buffers.Vertices)
	if n >= MaxVertices {
		return 0, fmt.Errorf("%w: limit is %d", ErrTooManyVertices, MaxVertices)
	}
	b.buffers.Vertices = append(b.buffers.Vertices, b.ctor(v))
	return VertexID(n), nil //nolint:gosec // n < MaxVertices
}

// AddTriangle appends one triangle.
func (b *BuffersBuilder[In, Out]) AddTriangle(a, c, d VertexID) {
	b.buffers.Indices = append(b.buffers.Indices, uint16(a), uint16(c), uint16(d))
}

// EndGeometry returns what was added since BeginGeometry.
func (b *BuffersBuilder[In, Out]) EndGeometry() Count {
	return Count{
		Vertices: len(b.buffers.Vertices) - b.firstVertex,
		Indices:  len(b.buffers.Indices) - b.firstIndex,
	}
}

// AbortGeometry removes what was added since BeginGeometry.
func (b *BuffersBuilder[In, Out]) AbortGeometry() {
	b.buffers.Truncate(b.firstVertex, b.firstIndex)
}

func validTolerance(tol float64) error {
	if !(tol > 0) || math.IsInf(tol, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidTolerance, tol)
	}
	return nil
}

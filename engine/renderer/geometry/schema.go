package geometry

import (
	"fmt"

	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

/** @brief Describes one field of a vertex or instance record. */
type Attribute struct {
	/** @brief Number of scalars, 1 to 4. */
	ElementCount uint32
	/** @brief The scalar type of every element. */
	Scalar metadata.ScalarType
	/** @brief Advances once per instance instead of once per vertex. */
	PerInstance bool
}

// Size is the number of bytes the attribute occupies in its buffer.
func (a Attribute) Size() uint32 {
	return a.ElementCount * a.Scalar.ByteSize()
}

/** @brief A resolved attribute pointer, ready to be handed to the backend. */
type AttributeBinding struct {
	/** @brief Attribute location. Shared numbering across vertex and instance attributes. */
	Slot   uint32
	Size   int32
	Scalar metadata.ScalarType
	Stride int32
	Offset uintptr
	/** @brief 0 for per-vertex data, 1 for per-instance data. */
	Divisor uint32
}

// Schema is the ordered attribute layout of one vertex record and one instance record.
// It is append-only and stops accepting attributes once frozen.
type Schema struct {
	attributes     []Attribute
	vertexStride   uint32
	instanceStride uint32
	frozen         bool
}

func NewSchema() *Schema {
	return &Schema{}
}

// AddAttribute appends an attribute. Its slot is its position in the schema.
func (s *Schema) AddAttribute(elementCount uint32, scalar metadata.ScalarType, perInstance bool) error {
	if s.frozen {
		err := fmt.Errorf("func AddAttribute: %w", core.ErrSchemaFrozen)
		core.LogError("%s", err)
		return err
	}
	if elementCount < 1 || elementCount > 4 || !scalar.Valid() {
		err := fmt.Errorf("func AddAttribute - %d x %s: %w", elementCount, scalar, core.ErrInvalidArgument)
		core.LogError("%s", err)
		return err
	}
	a := Attribute{ElementCount: elementCount, Scalar: scalar, PerInstance: perInstance}
	s.attributes = append(s.attributes, a)
	if perInstance {
		s.instanceStride += a.Size()
	} else {
		s.vertexStride += a.Size()
	}
	return nil
}

func (s *Schema) AddFloat(elementCount uint32, perInstance bool) error {
	return s.AddAttribute(elementCount, metadata.ScalarTypeFloat32, perInstance)
}

func (s *Schema) AddUint(elementCount uint32, perInstance bool) error {
	return s.AddAttribute(elementCount, metadata.ScalarTypeUInt32, perInstance)
}

func (s *Schema) AddInt(elementCount uint32, perInstance bool) error {
	return s.AddAttribute(elementCount, metadata.ScalarTypeInt32, perInstance)
}

func (s *Schema) AddUbyte(elementCount uint32, perInstance bool) error {
	return s.AddAttribute(elementCount, metadata.ScalarTypeUByte, perInstance)
}

func (s *Schema) VertexStride() uint32 {
	return s.vertexStride
}

func (s *Schema) InstanceStride() uint32 {
	return s.instanceStride
}

// UsesInstancing reports whether at least one per-instance attribute is declared.
func (s *Schema) UsesInstancing() bool {
	return s.instanceStride > 0
}

func (s *Schema) Len() int {
	return len(s.attributes)
}

// Attributes returns a copy of the declared attributes.
func (s *Schema) Attributes() []Attribute {
	out := make([]Attribute, len(s.attributes))
	copy(out, s.attributes)
	return out
}

func (s *Schema) Frozen() bool {
	return s.frozen
}

// Freeze stops the schema from accepting further attributes.
func (s *Schema) Freeze() {
	s.frozen = true
}

func (s *Schema) unfreeze() {
	s.frozen = false
}

// Bindings resolves the attribute pointers for one buffer kind. The schema is walked in
// declaration order and attributes of the other kind are skipped, but every attribute
// keeps its global position as slot.
func (s *Schema) Bindings(perInstance bool) []AttributeBinding {
	stride := s.vertexStride
	var divisor uint32
	if perInstance {
		stride = s.instanceStride
		divisor = 1
	}

	var offset uint32
	bindings := make([]AttributeBinding, 0, len(s.attributes))
	for i, a := range s.attributes {
		if a.PerInstance != perInstance {
			continue
		}
		bindings = append(bindings, AttributeBinding{
			Slot:    uint32(i),
			Size:    int32(a.ElementCount),
			Scalar:  a.Scalar,
			Stride:  int32(stride),
			Offset:  uintptr(offset),
			Divisor: divisor,
		})
		offset += a.Size()
	}
	return bindings
}

// Clone returns an unfrozen deep copy.
func (s *Schema) Clone() *Schema {
	return &Schema{
		attributes:     s.Attributes(),
		vertexStride:   s.vertexStride,
		instanceStride: s.instanceStride,
	}
}

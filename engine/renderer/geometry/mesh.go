package geometry

import (
	"encoding/binary"
	"fmt"

	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/renderer"
)

// NoInstance is the instance record of meshes that are not instanced.
type NoInstance struct{}

// Mesh is a typed view over a Buffer. V and I must be fixed-size records (no slices,
// strings or pointers) whose packed size equals the vertex and instance stride. Records
// are packed field by field in native byte order, so V and I must not carry padding the
// shader does not expect. A UByte attribute of n elements occupies 4n bytes: declare its
// n bytes followed by a blank field of 3n bytes, e.g. Colour [4]uint8; _ [12]byte.
type Mesh[V any, I any] struct {
	*Buffer
}

// NewMesh wraps a new Buffer. The schema is checked against the record sizes when the
// first record is pushed, since attributes may still be added until then.
func NewMesh[V any, I any](backend renderer.RendererBackend, schema *Schema, opts ...BufferOption) *Mesh[V, I] {
	return &Mesh[V, I]{Buffer: NewBuffer(backend, schema, opts...)}
}

// WrapMesh gives a typed view over an existing buffer.
func WrapMesh[V any, I any](b *Buffer) *Mesh[V, I] {
	return &Mesh[V, I]{Buffer: b}
}

func recordSize[T any](fn string, stride uint32) (int, error) {
	var zero T
	size := binary.Size(zero)
	if size < 0 {
		return 0, fmt.Errorf("func %s - %T is not a fixed-size record: %w", fn, zero, core.ErrInvalidArgument)
	}
	if uint32(size) != stride {
		return 0, fmt.Errorf("func %s - %T is %d bytes, stride is %d: %w", fn, zero, size, stride, core.ErrStrideMismatch)
	}
	return size, nil
}

func pack[T any](fn string, stride uint32, records []T) ([]byte, error) {
	size, err := recordSize[T](fn, stride)
	if err != nil {
		core.LogError("%s", err)
		return nil, err
	}
	out := make([]byte, 0, size*len(records))
	for _, r := range records {
		out, err = binary.Append(out, binary.NativeEndian, r)
		if err != nil {
			err = fmt.Errorf("func %s: %w", fn, err)
			core.LogError("%s", err)
			return nil, err
		}
	}
	return out, nil
}

func unpack[T any](fn string, stride uint32, data []byte) ([]T, error) {
	size, err := recordSize[T](fn, stride)
	if err != nil {
		core.LogError("%s", err)
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}
	out := make([]T, len(data)/size)
	for i := range out {
		if _, err := binary.Decode(data[i*size:(i+1)*size], binary.NativeEndian, &out[i]); err != nil {
			err = fmt.Errorf("func %s: %w", fn, err)
			core.LogError("%s", err)
			return nil, err
		}
	}
	return out, nil
}

func (m *Mesh[V, I]) PushVertex(v V) error {
	return m.PushVertices(v)
}

func (m *Mesh[V, I]) PushVertices(vs ...V) error {
	data, err := pack("PushVertices", m.schema.VertexStride(), vs)
	if err != nil {
		return err
	}
	return m.PushVertexBytes(data)
}

func (m *Mesh[V, I]) PushInstance(inst I) error {
	return m.PushInstances(inst)
}

func (m *Mesh[V, I]) PushInstances(insts ...I) error {
	data, err := pack("PushInstances", m.schema.InstanceStride(), insts)
	if err != nil {
		return err
	}
	return m.PushInstanceBytes(data)
}

func (m *Mesh[V, I]) SetInstance(index uint32, inst I) error {
	data, err := pack("SetInstance", m.schema.InstanceStride(), []I{inst})
	if err != nil {
		return err
	}
	return m.SetInstanceBytes(index, data)
}

// Vertices decodes the staged vertices.
func (m *Mesh[V, I]) Vertices() ([]V, error) {
	return unpack[V]("Vertices", m.schema.VertexStride(), m.vertices)
}

// Instances decodes the staged instances.
func (m *Mesh[V, I]) Instances() ([]I, error) {
	return unpack[I]("Instances", m.schema.InstanceStride(), m.instances)
}

func (m *Mesh[V, I]) UpdateVertexRange(start, end uint32, vs []V) error {
	data, err := pack("UpdateVertexRange", m.schema.VertexStride(), vs)
	if err != nil {
		return err
	}
	return m.Buffer.UpdateVertexRange(start, end, data)
}

func (m *Mesh[V, I]) UpdateInstanceRange(start, end uint32, insts []I) error {
	data, err := pack("UpdateInstanceRange", m.schema.InstanceStride(), insts)
	if err != nil {
		return err
	}
	return m.Buffer.UpdateInstanceRange(start, end, data)
}

// ReadVertices reads vertices [start, end) back from the native vertex buffer.
func (m *Mesh[V, I]) ReadVertices(start, end uint32) ([]V, error) {
	data, err := m.ReadVertexBytes(start, end)
	if err != nil {
		return nil, err
	}
	return unpack[V]("ReadVertices", m.schema.VertexStride(), data)
}

// Clone copies the mesh into one with its own native objects.
func (m *Mesh[V, I]) Clone() *Mesh[V, I] {
	return &Mesh[V, I]{Buffer: m.Buffer.Clone()}
}

// Move transfers ownership to a new mesh, leaving m empty.
func (m *Mesh[V, I]) Move() *Mesh[V, I] {
	return &Mesh[V, I]{Buffer: m.Buffer.Move()}
}

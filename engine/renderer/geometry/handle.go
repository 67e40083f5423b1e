package geometry

import (
	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/renderer"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

// Handle exclusively owns one native graphics object. A Handle is never copied: ownership
// moves with take and ends with Release.
type Handle struct {
	kind metadata.ObjectKind
	id   uint32
}

func newHandle(backend renderer.RendererBackend, kind metadata.ObjectKind) Handle {
	var id uint32
	switch kind {
	case metadata.ObjectKindBuffer:
		id = backend.GenBuffer()
	case metadata.ObjectKindVertexArray:
		id = backend.GenVertexArray()
	case metadata.ObjectKindQuery:
		id = backend.GenQuery()
	}
	core.LogGen("generated %s %d", kind, id)
	return Handle{kind: kind, id: id}
}

func (h *Handle) Valid() bool {
	return h.id != 0
}

func (h *Handle) ID() uint32 {
	return h.id
}

func (h *Handle) Kind() metadata.ObjectKind {
	return h.kind
}

// Release deletes the native object. Releasing an empty handle does nothing.
func (h *Handle) Release(backend renderer.RendererBackend) {
	if h.id == 0 {
		return
	}
	switch h.kind {
	case metadata.ObjectKindBuffer:
		backend.DeleteBuffer(h.id)
	case metadata.ObjectKindVertexArray:
		backend.DeleteVertexArray(h.id)
	case metadata.ObjectKindQuery:
		backend.DeleteQuery(h.id)
	}
	core.LogGen("deleted %s %d", h.kind, h.id)
	h.id = 0
}

// take moves the object out of h, leaving h empty.
func (h *Handle) take() Handle {
	out := *h
	h.id = 0
	return out
}

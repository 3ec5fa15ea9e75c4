package component

// MeshID and MaterialID are handles owned by the render backend.
type MeshID uint32
type MaterialID uint32

// Renderable marks an entity for drawing.
type Renderable struct {
	Mesh     MeshID
	Material MaterialID
	Hidden   bool
}

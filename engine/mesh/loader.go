package mesh

import (
	"path"
	"strings"

	"github.com/pkg/errors"
)

// Load dispatches to the loader matching the file extension:
// .stl (binary), .gltf/.glb, or .tri/.txt (plain nine-float records).
func Load(filename string) (*Mesh, error) {
	switch strings.ToLower(path.Ext(filename)) {
	case ".stl":
		return LoadSTL(filename)
	case ".gltf", ".glb":
		return LoadGLTF(filename)
	case ".tri", ".txt":
		return LoadRaw(filename)
	default:
		return nil, errors.Errorf("unsupported model format %q", path.Ext(filename))
	}
}

package mesh

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// short name, for convenience
var le = binary.LittleEndian

// stlTriangle is the 50-byte record of the binary STL format: a facet
// normal, three corners and a two-byte attribute count. The normal and
// attribute are parsed but ignored; the implied normal is recomputable
// from winding and the voxelizer has no use for either.
type stlTriangle struct {
	Normal [3]float32
	Vertex [3][3]float32
	Attr   uint16
}

// ReadSTL decodes a binary STL stream: 80-byte header, uint32 triangle
// count, then the packed 50-byte facet records, all little-endian.
func ReadSTL(r io.Reader) (*Mesh, error) {
	var header [80]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, errors.Wrap(err, "reading STL header")
	}

	var count uint32
	if err := binary.Read(r, le, &count); err != nil {
		return nil, errors.Wrap(err, "reading STL triangle count")
	}

	triangles := make([]Triangle, 0, count)
	for i := uint32(0); i < count; i++ {
		var facet stlTriangle
		if err := binary.Read(r, le, &facet); err != nil {
			return nil, errors.Wrapf(err, "reading STL facet %d of %d", i, count)
		}
		var tri Triangle
		for c := 0; c < 3; c++ {
			tri[c] = mgl64.Vec3{
				float64(facet.Vertex[c][0]),
				float64(facet.Vertex[c][1]),
				float64(facet.Vertex[c][2]),
			}
		}
		triangles = append(triangles, tri)
	}
	return NewMesh(triangles), nil
}

func LoadSTL(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", filename)
	}
	defer file.Close()
	return ReadSTL(file)
}

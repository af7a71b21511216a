package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/MattNet/minetest-from-models/engine/util"
)

// LoadGLTF flattens every triangle primitive reachable from the default
// scene of a .gltf/.glb document into a single triangle soup, with node
// transforms baked into the vertices.
func LoadGLTF(filename string) (*Mesh, error) {
	doc, err := gltf.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", filename)
	}
	defaultSceneIndex := 0
	if doc.Scene != nil {
		defaultSceneIndex = int(*doc.Scene)
	}
	defaultScene := doc.Scenes[defaultSceneIndex]

	var triangles []Triangle
	for _, nodeIndex := range defaultScene.Nodes {
		triangles, err = appendNodeTriangles(doc, int(nodeIndex), mgl64.Ident4(), triangles)
		if err != nil {
			return nil, err
		}
	}
	util.LogMeshDebug(fmt.Sprintf("[LoadGLTF] %s: %d triangle(s)", filename, len(triangles)))
	return NewMesh(triangles), nil
}

func appendNodeTriangles(doc *gltf.Document, nodeIndex int, parent mgl64.Mat4, triangles []Triangle) ([]Triangle, error) {
	node := doc.Nodes[nodeIndex]
	transform := parent.Mul4(nodeTransform(node))
	if node.Mesh != nil {
		var err error
		triangles, err = appendMeshTriangles(doc, int(*node.Mesh), transform, triangles)
		if err != nil {
			return nil, err
		}
	}
	for _, child := range node.Children {
		var err error
		triangles, err = appendNodeTriangles(doc, int(child), transform, triangles)
		if err != nil {
			return nil, err
		}
	}
	return triangles, nil
}

func nodeTransform(node *gltf.Node) mgl64.Mat4 {
	t := node.TranslationOrDefault()
	r := node.RotationOrDefault()
	s := node.ScaleOrDefault()
	translation := mgl64.Translate3D(float64(t[0]), float64(t[1]), float64(t[2]))
	rotation := mgl64.Quat{
		W: float64(r[3]),
		V: mgl64.Vec3{float64(r[0]), float64(r[1]), float64(r[2])},
	}.Mat4()
	scale := mgl64.Scale3D(float64(s[0]), float64(s[1]), float64(s[2]))
	return translation.Mul4(rotation).Mul4(scale)
}

func appendMeshTriangles(doc *gltf.Document, meshIndex int, transform mgl64.Mat4, triangles []Triangle) ([]Triangle, error) {
	gltfMesh := doc.Meshes[meshIndex]
	for primIndex, primitive := range gltfMesh.Primitives {
		if primitive.Mode != gltf.PrimitiveTriangles {
			util.LogMeshInfo(fmt.Sprintf("[LoadGLTF] skipping non-triangle primitive %d of mesh %q", primIndex, gltfMesh.Name))
			continue
		}
		positionAccessor, ok := primitive.Attributes[gltf.POSITION]
		if !ok {
			return nil, errors.Errorf("mesh %q primitive %d has no POSITION attribute", gltfMesh.Name, primIndex)
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[positionAccessor], nil)
		if err != nil {
			return nil, errors.Wrapf(err, "reading positions of mesh %q", gltfMesh.Name)
		}

		var indices []uint32
		if primitive.Indices != nil {
			indices, err = modeler.ReadIndices(doc, doc.Accessors[*primitive.Indices], nil)
			if err != nil {
				return nil, errors.Wrapf(err, "reading indices of mesh %q", gltfMesh.Name)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			var tri Triangle
			for c := 0; c < 3; c++ {
				p := positions[indices[i+c]]
				local := mgl64.Vec3{float64(p[0]), float64(p[1]), float64(p[2])}
				tri[c] = mgl64.TransformCoordinate(local, transform)
			}
			triangles = append(triangles, tri)
		}
	}
	return triangles, nil
}

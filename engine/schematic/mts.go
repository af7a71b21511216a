package schematic

import (
	"compress/zlib"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/MattNet/minetest-from-models/engine/voxel"
)

// Minetest schematic (.mts) constants. All integers are big-endian.
const (
	mtsMagic   = "MTSM"
	mtsVersion = 4
)

const (
	// probAlways places the node unconditionally when the schematic is
	// stamped into a map.
	probAlways = 0x7F
	// probNever keeps air cells from overwriting existing terrain.
	probNever = 0x00
)

// WriteMTS serializes the voxel set as a Minetest schematic. Every member
// becomes one nodeName node; the rest of the enclosing box is air with
// placement probability zero. The scan's vertical axis (z) maps onto
// Minetest's Y-up convention. The schematic origin is the set's minimum
// corner, so schematics are placement-relative.
func WriteMTS(w io.Writer, set *voxel.Set, nodeName string) error {
	min, max, ok := set.Bounds()
	if !ok {
		return errors.New("refusing to write an empty schematic")
	}
	// core (x, y, z) -> mts (x, z, y)
	sizeX := int(max.X-min.X) + 1
	sizeY := int(max.Z-min.Z) + 1
	sizeZ := int(max.Y-min.Y) + 1
	if sizeX > 0xFFFF || sizeY > 0xFFFF || sizeZ > 0xFFFF {
		return errors.Errorf("schematic size %dx%dx%d exceeds the uint16 dimension limit", sizeX, sizeY, sizeZ)
	}

	if _, err := w.Write([]byte(mtsMagic)); err != nil {
		return errors.Wrap(err, "writing mts magic")
	}
	header := []interface{}{
		uint16(mtsVersion),
		uint16(sizeX), uint16(sizeY), uint16(sizeZ),
	}
	for _, field := range header {
		if err := binary.Write(w, binary.BigEndian, field); err != nil {
			return errors.Wrap(err, "writing mts header")
		}
	}

	// Per-Y-slice placement probability.
	sliceProbs := make([]byte, sizeY)
	for i := range sliceProbs {
		sliceProbs[i] = probAlways
	}
	if _, err := w.Write(sliceProbs); err != nil {
		return errors.Wrap(err, "writing slice probabilities")
	}

	// Name-id palette: 0 = air, 1 = the configured node.
	if err := binary.Write(w, binary.BigEndian, uint16(2)); err != nil {
		return errors.Wrap(err, "writing name count")
	}
	for _, name := range []string{"air", nodeName} {
		if err := binary.Write(w, binary.BigEndian, uint16(len(name))); err != nil {
			return errors.Wrap(err, "writing name length")
		}
		if _, err := w.Write([]byte(name)); err != nil {
			return errors.Wrap(err, "writing name")
		}
	}

	volume := sizeX * sizeY * sizeZ
	param0 := make([]uint16, volume)
	param1 := make([]byte, volume)
	param2 := make([]byte, volume)
	for _, p := range set.Members() {
		x := int(p.X - min.X)
		y := int(p.Z - min.Z)
		z := int(p.Y - min.Y)
		index := x + y*sizeX + z*sizeX*sizeY
		param0[index] = 1
		param1[index] = probAlways
	}
	for i := range param1 {
		if param0[i] == 0 {
			param1[i] = probNever
		}
	}

	compressed := zlib.NewWriter(w)
	if err := binary.Write(compressed, binary.BigEndian, param0); err != nil {
		return errors.Wrap(err, "writing node ids")
	}
	if _, err := compressed.Write(param1); err != nil {
		return errors.Wrap(err, "writing node probabilities")
	}
	if _, err := compressed.Write(param2); err != nil {
		return errors.Wrap(err, "writing node param2")
	}
	if err := compressed.Close(); err != nil {
		return errors.Wrap(err, "flushing node data")
	}
	return nil
}

func SaveMTS(filename string, set *voxel.Set, nodeName string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "creating %s", filename)
	}
	if err := WriteMTS(file, set, nodeName); err != nil {
		file.Close()
		return err
	}
	return errors.Wrapf(file.Close(), "closing %s", filename)
}

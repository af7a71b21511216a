package schematic

import (
	"bytes"
	"testing"

	"github.com/MattNet/minetest-from-models/engine/voxel"
)

func TestConstructionRoundTrip(t *testing.T) {
	set := voxel.NewSet()
	// Spread over several sections, including negative coordinates.
	points := []voxel.Int3{
		{X: 0, Y: 0, Z: 0},
		{X: 15, Y: 15, Z: 15},
		{X: 16, Y: 0, Z: 0},
		{X: -1, Y: -1, Z: -1},
		{X: -17, Y: 3, Z: 40},
	}
	for _, p := range points {
		set.Add(p)
	}

	var buf bytes.Buffer
	if err := WriteConstruction(&buf, set, "default:stone"); err != nil {
		t.Fatalf("WriteConstruction: %v", err)
	}

	construction, err := ReadConstruction(buf.Bytes())
	if err != nil {
		t.Fatalf("ReadConstruction: %v", err)
	}
	if construction.Blocks.Len() != set.Len() {
		t.Fatalf("read back %d voxels, want %d: %v", construction.Blocks.Len(), set.Len(), construction.Blocks.Members())
	}
	for _, p := range points {
		if !construction.Blocks.Contains(p) {
			t.Errorf("voxel %v lost in the round trip", p)
		}
	}
	if construction.Node == nil || construction.Node.NameSpace != "default" || construction.Node.Name != "stone" {
		t.Errorf("palette node = %+v, want default:stone", construction.Node)
	}
}

func TestConstructionMagicChecks(t *testing.T) {
	if _, err := ReadConstruction([]byte("notaconstruction")); err == nil {
		t.Error("expected an error for a bogus stream")
	}
	if _, err := ReadConstruction(nil); err == nil {
		t.Error("expected an error for an empty stream")
	}
}

func TestPaletteEntry(t *testing.T) {
	entry := paletteEntry("stone")
	if entry.NameSpace != "minecraft" || entry.Name != "stone" {
		t.Errorf("bare name = %+v, want minecraft:stone", entry)
	}
	entry = paletteEntry("mod:block")
	if entry.NameSpace != "mod" || entry.Name != "block" {
		t.Errorf("qualified name = %+v, want mod:block", entry)
	}
}

func TestWriteConstructionEmptySet(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteConstruction(&buf, voxel.NewSet(), "default:stone"); err == nil {
		t.Error("expected an error for an empty voxel set")
	}
}

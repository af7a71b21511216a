package schematic

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"io"
	"os"
	"strings"

	"github.com/Tnze/go-mc/nbt"
	"github.com/pkg/errors"

	"github.com/MattNet/minetest-from-models/engine/voxel"
)

// Amulet construction format: "constrct" magic, gzipped NBT sections, a
// gzipped NBT metadata compound carrying the palette and a 23-byte-record
// section index table, then the metadata offset and the magic again.
// Section payloads live at absolute file offsets; index records are
// little-endian while the trailing offset is big-endian.
const (
	constructionMagic = "constrct"
	sectionSize       = 16
	// byteArraySection marks sections whose block arrays fit in bytes.
	// Two palette entries always do.
	byteArraySection = 7
)

type BlockDefinition struct {
	Name       string         `nbt:"blockname"`
	NameSpace  string         `nbt:"namespace"`
	Properties map[string]any `nbt:"properties"`
}

type BlockEntity struct {
	Namespace string `nbt:"namespace"`
	Name      string `nbt:"base_name"`
	X         int32  `nbt:"x"`
	Y         int32  `nbt:"y"`
	Z         int32  `nbt:"z"`
}

type constructionMetadata struct {
	SelectionBoxes    []int32 `nbt:"selection_boxes"`
	SectionIndexTable []byte  `nbt:"section_index_table"`
	SectionVersion    byte    `nbt:"section_version"`
	ExportVersion     struct {
		Edition string  `nbt:"edition"`
		Version []int32 `nbt:"version"`
	} `nbt:"export_version"`
	BlockPalette []*BlockDefinition `nbt:"block_palette"`
	CreatedWith  string             `nbt:"created_with"`
}

type constructionSection struct {
	BlockEntities   []BlockEntity `nbt:"block_entities"`
	BlocksArrayType byte          `nbt:"blocks_array_type"`
	Blocks          []byte        `nbt:"blocks"`
}

type sectionIndex struct {
	MinBlockX int32
	MinBlockY int32
	MinBlockZ int32
	ShapeX    uint8
	ShapeY    uint8
	ShapeZ    uint8
	Offset    uint32
	Size      uint32
	// 23 bytes per record
}

// Construction is the in-memory form handed between the writer, the reader
// and the verifying caller: occupied cells in construction space plus the
// block the palette maps them to.
type Construction struct {
	Blocks *voxel.Set
	Node   *BlockDefinition
}

// paletteEntry splits "namespace:name" into a palette definition. A bare
// name lands in the minecraft namespace, matching what map editors expect.
func paletteEntry(nodeName string) *BlockDefinition {
	namespace, name, found := strings.Cut(nodeName, ":")
	if !found {
		return &BlockDefinition{NameSpace: "minecraft", Name: nodeName, Properties: map[string]any{}}
	}
	return &BlockDefinition{NameSpace: namespace, Name: name, Properties: map[string]any{}}
}

// WriteConstruction serializes the voxel set as an Amulet construction.
// The scan's vertical z axis maps to construction Y-up; the volume is cut
// into 16^3 sections and empty sections are not written at all. Blocks
// carry no entities and no extra metadata.
func WriteConstruction(w io.Writer, set *voxel.Set, nodeName string) error {
	min, max, ok := set.Bounds()
	if !ok {
		return errors.New("refusing to write an empty construction")
	}

	var buf bytes.Buffer
	buf.WriteString(constructionMagic)

	sections, err := writeSections(&buf, set)
	if err != nil {
		return err
	}

	metadataOffset := int32(buf.Len())
	metadata := constructionMetadata{
		// core (x, y, z) -> construction (x, z, y); max bounds exclusive
		SelectionBoxes: []int32{
			min.X, min.Z, min.Y,
			max.X + 1, max.Z + 1, max.Y + 1,
		},
		SectionIndexTable: encodeSectionTable(sections),
		SectionVersion:    0,
		BlockPalette:      []*BlockDefinition{airBlock(), paletteEntry(nodeName)},
		CreatedWith:       "minetest-from-models",
	}
	metadata.ExportVersion.Edition = "java"
	metadata.ExportVersion.Version = []int32{1, 20, 4}
	if err := writeGzippedNBT(&buf, metadata); err != nil {
		return errors.Wrap(err, "writing construction metadata")
	}

	if err := binary.Write(&buf, binary.BigEndian, metadataOffset); err != nil {
		return errors.Wrap(err, "writing metadata offset")
	}
	buf.WriteString(constructionMagic)

	_, err = w.Write(buf.Bytes())
	return errors.Wrap(err, "writing construction")
}

func airBlock() *BlockDefinition {
	return &BlockDefinition{NameSpace: "universal_minecraft", Name: "air", Properties: map[string]any{}}
}

// writeSections appends every non-empty 16^3 section to buf and returns
// the index records pointing at them.
func writeSections(buf *bytes.Buffer, set *voxel.Set) ([]sectionIndex, error) {
	grouped := make(map[voxel.Int3][]voxel.Int3)
	for _, p := range set.Members() {
		// construction space, sectioned
		c := voxel.Int3{X: p.X, Y: p.Z, Z: p.Y}
		key := voxel.Int3{
			X: floorDiv(c.X, sectionSize),
			Y: floorDiv(c.Y, sectionSize),
			Z: floorDiv(c.Z, sectionSize),
		}
		grouped[key] = append(grouped[key], c)
	}

	var sections []sectionIndex
	for key, members := range grouped {
		origin := key.Mul(sectionSize)
		blocks := make([]byte, sectionSize*sectionSize*sectionSize)
		for _, c := range members {
			local := c.Sub(origin)
			blocks[sectionBlockIndex(local, sectionSize, sectionSize)] = 1
		}
		offset := uint32(buf.Len())
		section := constructionSection{
			BlockEntities:   []BlockEntity{},
			BlocksArrayType: byteArraySection,
			Blocks:          blocks,
		}
		if err := writeGzippedNBT(buf, section); err != nil {
			return nil, errors.Wrap(err, "writing construction section")
		}
		sections = append(sections, sectionIndex{
			MinBlockX: origin.X,
			MinBlockY: origin.Y,
			MinBlockZ: origin.Z,
			ShapeX:    sectionSize,
			ShapeY:    sectionSize,
			ShapeZ:    sectionSize,
			Offset:    offset,
			Size:      uint32(buf.Len()) - offset,
		})
	}
	return sections, nil
}

// sectionBlockIndex orders a section's block array XYZ, z fastest.
func sectionBlockIndex(local voxel.Int3, shapeY, shapeZ int32) int {
	return int(local.X*shapeY*shapeZ + local.Y*shapeZ + local.Z)
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func writeGzippedNBT(buf *bytes.Buffer, value any) error {
	gzipWriter := gzip.NewWriter(buf)
	if err := nbt.NewEncoder(gzipWriter).Encode(value, ""); err != nil {
		return err
	}
	return gzipWriter.Close()
}

func encodeSectionTable(sections []sectionIndex) []byte {
	table := make([]byte, len(sections)*23)
	for i, s := range sections {
		record := table[i*23 : i*23+23]
		binary.LittleEndian.PutUint32(record[0:4], uint32(s.MinBlockX))
		binary.LittleEndian.PutUint32(record[4:8], uint32(s.MinBlockY))
		binary.LittleEndian.PutUint32(record[8:12], uint32(s.MinBlockZ))
		record[12] = s.ShapeX
		record[13] = s.ShapeY
		record[14] = s.ShapeZ
		binary.LittleEndian.PutUint32(record[15:19], s.Offset)
		binary.LittleEndian.PutUint32(record[19:23], s.Size)
	}
	return table
}

func decodeSectionTable(table []byte) []sectionIndex {
	sectionCount := len(table) / 23
	sections := make([]sectionIndex, sectionCount)
	for i := 0; i < sectionCount; i++ {
		sections[i].MinBlockX = int32(binary.LittleEndian.Uint32(table[i*23 : i*23+4]))
		sections[i].MinBlockY = int32(binary.LittleEndian.Uint32(table[i*23+4 : i*23+8]))
		sections[i].MinBlockZ = int32(binary.LittleEndian.Uint32(table[i*23+8 : i*23+12]))
		sections[i].ShapeX = table[i*23+12]
		sections[i].ShapeY = table[i*23+13]
		sections[i].ShapeZ = table[i*23+14]
		sections[i].Offset = binary.LittleEndian.Uint32(table[i*23+15 : i*23+19])
		sections[i].Size = binary.LittleEndian.Uint32(table[i*23+19 : i*23+23])
	}
	return sections
}

// ReadConstruction parses a construction stream back into core voxel
// space. It understands the subset the writer produces (byte block
// arrays, palette index 0 = air); it exists for round-trip verification
// of written files.
func ReadConstruction(data []byte) (*Construction, error) {
	if len(data) < len(constructionMagic)*2+4 {
		return nil, errors.New("construction too short")
	}
	if string(data[:len(constructionMagic)]) != constructionMagic {
		return nil, errors.New("invalid construction magic")
	}
	if string(data[len(data)-len(constructionMagic):]) != constructionMagic {
		return nil, errors.New("invalid trailing construction magic")
	}
	offsetPos := len(data) - len(constructionMagic) - 4
	metadataOffset := int32(binary.BigEndian.Uint32(data[offsetPos : offsetPos+4]))
	if metadataOffset < 0 || int(metadataOffset) > offsetPos {
		return nil, errors.Errorf("metadata offset %d out of range", metadataOffset)
	}

	var metadata constructionMetadata
	if err := readGzippedNBT(data[metadataOffset:offsetPos], &metadata); err != nil {
		return nil, errors.Wrap(err, "reading construction metadata")
	}
	if len(metadata.BlockPalette) < 2 {
		return nil, errors.Errorf("expected a two-entry palette, got %d", len(metadata.BlockPalette))
	}

	blocks := voxel.NewSet()
	for _, index := range decodeSectionTable(metadata.SectionIndexTable) {
		end := index.Offset + index.Size
		if int(end) > len(data) {
			return nil, errors.Errorf("section at %d overruns the file", index.Offset)
		}
		var section constructionSection
		if err := readGzippedNBT(data[index.Offset:end], &section); err != nil {
			return nil, errors.Wrapf(err, "reading section at %d", index.Offset)
		}
		if section.BlocksArrayType != byteArraySection {
			return nil, errors.Errorf("unsupported blocks array type %d", section.BlocksArrayType)
		}
		shapeY, shapeZ := int32(index.ShapeY), int32(index.ShapeZ)
		for i, paletteID := range section.Blocks {
			if paletteID == 0 {
				continue
			}
			local := voxel.Int3{
				X: int32(i) / (shapeY * shapeZ),
				Y: (int32(i) / shapeZ) % shapeY,
				Z: int32(i) % shapeZ,
			}
			// construction (x, y, z) -> core (x, z, y)
			blocks.Add(voxel.Int3{
				X: index.MinBlockX + local.X,
				Y: index.MinBlockZ + local.Z,
				Z: index.MinBlockY + local.Y,
			})
		}
	}
	return &Construction{Blocks: blocks, Node: metadata.BlockPalette[1]}, nil
}

func readGzippedNBT(data []byte, value any) error {
	gzipReader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if _, err := nbt.NewDecoder(gzipReader).Decode(value); err != nil {
		return err
	}
	return gzipReader.Close()
}

func SaveConstruction(filename string, set *voxel.Set, nodeName string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "creating %s", filename)
	}
	if err := WriteConstruction(file, set, nodeName); err != nil {
		file.Close()
		return err
	}
	return errors.Wrapf(file.Close(), "closing %s", filename)
}

func LoadConstruction(filename string) (*Construction, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", filename)
	}
	return ReadConstruction(data)
}

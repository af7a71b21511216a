package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// MalformedInputError identifies a triangle record that could not be parsed.
// A corrupt triangle would silently punch a hole in the solid, so loading
// stops at the first bad record instead of recovering.
type MalformedInputError struct {
	Record int // zero-based triangle record index
	Line   int // one-based line number in the input
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed triangle record %d (line %d): %s", e.Record, e.Line, e.Reason)
}

// ReadRaw parses the plain-text triangle list format: one triangle per
// line, nine whitespace-separated floats (three XYZ corners). Blank lines
// and lines starting with '#' are skipped.
func ReadRaw(r io.Reader) (*Mesh, error) {
	var triangles []Triangle
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		record := len(triangles)
		if len(fields) != 9 {
			return nil, &MalformedInputError{
				Record: record,
				Line:   lineNo,
				Reason: fmt.Sprintf("expected 9 coordinates, got %d", len(fields)),
			}
		}
		var coords [9]float64
		for i, field := range fields {
			value, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, &MalformedInputError{
					Record: record,
					Line:   lineNo,
					Reason: fmt.Sprintf("coordinate %d is not a number: %q", i, field),
				}
			}
			coords[i] = value
		}
		triangles = append(triangles, Triangle{
			mgl64.Vec3{coords[0], coords[1], coords[2]},
			mgl64.Vec3{coords[3], coords[4], coords[5]},
			mgl64.Vec3{coords[6], coords[7], coords[8]},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading triangle list")
	}
	return NewMesh(triangles), nil
}

func LoadRaw(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", filename)
	}
	defer file.Close()
	return ReadRaw(file)
}

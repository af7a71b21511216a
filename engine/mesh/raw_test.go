package mesh

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

func TestReadRaw(t *testing.T) {
	input := `# a comment
0 0 0  1 0 0  0 1 0

0.5 -0.5 1.5  2 2 2  3 3 3
`
	m, err := ReadRaw(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}
	if m.TriangleCount() != 2 {
		t.Fatalf("expected 2 triangles, got %d", m.TriangleCount())
	}
	want := Triangle{
		mgl64.Vec3{0.5, -0.5, 1.5},
		mgl64.Vec3{2, 2, 2},
		mgl64.Vec3{3, 3, 3},
	}
	if m.Triangles[1] != want {
		t.Errorf("triangle 1 = %v, want %v", m.Triangles[1], want)
	}
}

func TestReadRawWrongFieldCount(t *testing.T) {
	input := "0 0 0 1 0 0 0 1 0\n1 2 3 4 5 6 7 8\n"
	_, err := ReadRaw(strings.NewReader(input))
	if err == nil {
		t.Fatal("expected an error for an 8-field record")
	}
	var malformed *MalformedInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedInputError, got %T: %v", err, err)
	}
	if malformed.Record != 1 || malformed.Line != 2 {
		t.Errorf("expected record 1 on line 2, got record %d line %d", malformed.Record, malformed.Line)
	}
}

func TestReadRawNonNumeric(t *testing.T) {
	input := "0 0 0 1 0 banana 0 1 0\n"
	_, err := ReadRaw(strings.NewReader(input))
	var malformed *MalformedInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedInputError, got %T: %v", err, err)
	}
	if !strings.Contains(malformed.Reason, "banana") {
		t.Errorf("expected the offending token in the reason, got %q", malformed.Reason)
	}
}

func TestReadRawEmptyInput(t *testing.T) {
	m, err := ReadRaw(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}
	if m.TriangleCount() != 0 {
		t.Errorf("expected an empty mesh, got %d triangles", m.TriangleCount())
	}
}

// Package loader reads Wavefront OBJ files into mesh data.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"MirrorShade/internal/logger"
	"MirrorShade/internal/mesh"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// LoadOBJ reads an OBJ file. Texture coordinates and materials are ignored.
// Normals are recalculated from the faces when the file has none or when
// recalculateNormals is set; some exporters write broken ones.
func LoadOBJ(path string, recalculateNormals bool) (*mesh.Data, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	data, err := ParseOBJ(file, name, recalculateNormals)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Log.Info("Model loaded",
		zap.String("path", path),
		zap.Int("vertices", len(data.Positions)),
		zap.Int("triangles", data.TriangleCount()))
	return data, nil
}

type faceVertex struct {
	vertexIdx int32
	normalIdx int32 // -1 when the face gives no normal
}

// ParseOBJ reads OBJ statements from r. Faces with more than three vertices
// are split into a triangle fan.
func ParseOBJ(r io.Reader, name string, recalculateNormals bool) (*mesh.Data, error) {
	var positions, normals []mgl32.Vec3
	var faces []faceVertex

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case "v":
			v, err := parseVec3(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: vertex: %w", line, err)
			}
			positions = append(positions, v)
		case "vn":
			n, err := parseVec3(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: normal: %w", line, err)
			}
			normals = append(normals, n)
		case "f":
			face, err := parseFace(parts[1:], len(positions), len(normals))
			if err != nil {
				return nil, fmt.Errorf("line %d: face: %w", line, err)
			}
			faces = append(faces, face...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(faces) == 0 {
		return nil, fmt.Errorf("no faces")
	}

	// Unify the separate position and normal indices into one index buffer.
	data := &mesh.Data{Name: name}
	unified := make(map[faceVertex]uint32)
	missingNormals := false
	for _, fv := range faces {
		if idx, ok := unified[fv]; ok {
			data.Indices = append(data.Indices, idx)
			continue
		}
		idx := uint32(len(data.Positions))
		unified[fv] = idx
		data.Positions = append(data.Positions, positions[fv.vertexIdx])
		if fv.normalIdx >= 0 {
			data.Normals = append(data.Normals, normals[fv.normalIdx])
		} else {
			data.Normals = append(data.Normals, mgl32.Vec3{})
			missingNormals = true
		}
		data.Indices = append(data.Indices, idx)
	}

	if missingNormals || recalculateNormals {
		RecalculateNormals(data)
	}
	return data, nil
}

func parseVec3(parts []string) (mgl32.Vec3, error) {
	if len(parts) < 3 {
		return mgl32.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(parts))
	}
	var v mgl32.Vec3
	for i := 0; i < 3; i++ {
		val, err := strconv.ParseFloat(parts[i], 32)
		if err != nil {
			return mgl32.Vec3{}, fmt.Errorf("invalid value %v: %v", parts[i], err)
		}
		v[i] = float32(val)
	}
	return v, nil
}

// parseFace resolves 1-based and negative (relative) indices against the
// counts read so far.
func parseFace(parts []string, vertexCount, normalCount int) ([]faceVertex, error) {
	if len(parts) < 3 {
		return nil, fmt.Errorf("expected at least 3 vertices, got %d", len(parts))
	}
	face := make([]faceVertex, 0, len(parts))
	for _, part := range parts {
		vals := strings.Split(part, "/")

		vertexIdx, err := resolveIndex(vals[0], vertexCount)
		if err != nil {
			return nil, fmt.Errorf("vertex index: %w", err)
		}
		normalIdx := int32(-1)
		if len(vals) > 2 && vals[2] != "" {
			normalIdx, err = resolveIndex(vals[2], normalCount)
			if err != nil {
				return nil, fmt.Errorf("normal index: %w", err)
			}
		}
		face = append(face, faceVertex{vertexIdx: vertexIdx, normalIdx: normalIdx})
	}

	if len(face) == 3 {
		return face, nil
	}
	triangulated := make([]faceVertex, 0, 3*(len(face)-2))
	for i := 1; i < len(face)-1; i++ {
		triangulated = append(triangulated, face[0], face[i], face[i+1])
	}
	return triangulated, nil
}

func resolveIndex(s string, count int) (int32, error) {
	idx, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid index %v: %v", s, err)
	}
	if idx < 0 {
		idx += int64(count) + 1
	}
	if idx < 1 || idx > int64(count) {
		return 0, fmt.Errorf("index %v out of range 1..%d", s, count)
	}
	return int32(idx - 1), nil // OBJ indices start at 1
}

// RecalculateNormals replaces the normals of data with area-weighted face
// normals averaged over each vertex.
func RecalculateNormals(data *mesh.Data) {
	normals := make([]mgl32.Vec3, len(data.Positions))
	for i := 0; i+2 < len(data.Indices); i += 3 {
		i0, i1, i2 := data.Indices[i], data.Indices[i+1], data.Indices[i+2]
		v0, v1, v2 := data.Positions[i0], data.Positions[i1], data.Positions[i2]
		normal := v1.Sub(v0).Cross(v2.Sub(v0))
		normals[i0] = normals[i0].Add(normal)
		normals[i1] = normals[i1].Add(normal)
		normals[i2] = normals[i2].Add(normal)
	}
	for i, n := range normals {
		if n.Len() > 0 {
			normals[i] = n.Normalize()
		}
	}
	data.Normals = normals
}

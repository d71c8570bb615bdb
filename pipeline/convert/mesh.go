package convert

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/1siamBot/asset-exporter/pipeline/asset"
)

const objEOL = "\r\n"

// Mesh writes the mesh as Wavefront OBJ.
func (c *Converter) Mesh(rec *asset.Record, name, dir string) (string, error) {
	m, err := payload[asset.Mesh](rec)
	if err != nil {
		return "", err
	}
	text, err := MeshOBJ(m)
	if err != nil {
		return "", fmt.Errorf("mesh %q: %w", rec.Name, err)
	}
	path, err := c.reserve(rec, name, dir, ".obj")
	if err != nil {
		return "", err
	}
	return path, c.writeBytes(path, []byte(text))
}

// MeshOBJ renders m as OBJ text. X is negated on positions and normals to
// move from the engine's left-handed space; faces are written with reversed
// winding for the same reason. Each vertex index is reused for position,
// texcoord and normal. NaN components are written as 0.
func MeshOBJ(m *asset.Mesh) (string, error) {
	n := m.VertexCount
	if n <= 0 {
		return "", fmt.Errorf("vertex count %d: %w", n, asset.ErrMalformed)
	}
	if len(m.Vertices) == 0 {
		return "", fmt.Errorf("no positions: %w", asset.ErrMalformed)
	}

	var sb strings.Builder
	sb.WriteString("g " + m.Name + objEOL)

	stride := 3
	if len(m.Vertices) == n*4 {
		stride = 4
	}
	if len(m.Vertices) < (n-1)*stride+3 {
		return "", fmt.Errorf("%d position components for %d vertices: %w", len(m.Vertices), n, asset.ErrMalformed)
	}
	for v := 0; v < n; v++ {
		p := m.Vertices[v*stride:]
		writeLine(&sb, "v", -p[0], p[1], p[2])
	}

	if len(m.UV0) > 0 {
		stride = 4
		switch len(m.UV0) {
		case n * 2:
			stride = 2
		case n * 3:
			stride = 3
		}
		if len(m.UV0) < (n-1)*stride+2 {
			return "", fmt.Errorf("%d texcoord components for %d vertices: %w", len(m.UV0), n, asset.ErrMalformed)
		}
		for v := 0; v < n; v++ {
			uv := m.UV0[v*stride:]
			writeLine(&sb, "vt", uv[0], uv[1])
		}
	}

	if len(m.Normals) > 0 {
		stride = 3
		if len(m.Normals) == n*4 {
			stride = 4
		}
		if len(m.Normals) < (n-1)*stride+3 {
			return "", fmt.Errorf("%d normal components for %d vertices: %w", len(m.Normals), n, asset.ErrMalformed)
		}
		for v := 0; v < n; v++ {
			nv := m.Normals[v*stride:]
			writeLine(&sb, "vn", -nv[0], nv[1], nv[2])
		}
	}

	cursor := 0
	for i, sub := range m.SubMeshes {
		sb.WriteString("g " + m.Name + "_" + strconv.Itoa(i) + objEOL)
		end := cursor + int(sub.IndexCount)/3
		if end*3 > len(m.Indices) {
			return "", fmt.Errorf("submesh %d needs %d indices, buffer has %d: %w", i, end*3, len(m.Indices), asset.ErrMalformed)
		}
		for f := cursor; f < end; f++ {
			a := m.Indices[f*3+2] + 1
			b := m.Indices[f*3+1] + 1
			c := m.Indices[f*3] + 1
			fmt.Fprintf(&sb, "f %d/%d/%d %d/%d/%d %d/%d/%d"+objEOL, a, a, a, b, b, b, c, c, c)
		}
		cursor = end
	}

	return strings.ReplaceAll(sb.String(), "NaN", "0"), nil
}

func writeLine(sb *strings.Builder, tag string, comps ...float32) {
	sb.WriteString(tag)
	for _, f := range comps {
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))
	}
	sb.WriteString(objEOL)
}

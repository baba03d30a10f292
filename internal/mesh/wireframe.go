package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SidesPerEdge is the number of faces of the prism built around each edge.
const SidesPerEdge = 4

// TrianglesPerEdge is the triangle count Wireframe emits per unique edge.
const TrianglesPerEdge = 2 * SidesPerEdge

type edgeKey struct {
	a, b mgl32.Vec3
}

func newEdgeKey(a, b mgl32.Vec3) edgeKey {
	for k := 0; k < 3; k++ {
		if a[k] != b[k] {
			if b[k] < a[k] {
				a, b = b, a
			}
			break
		}
	}
	return edgeKey{a, b}
}

// Edges returns the unique undirected edges of d's triangles. Edges are keyed
// by position, so vertices split for flat shading still share their edges.
// Degenerate edges are skipped.
func (d *Data) Edges() [][2]mgl32.Vec3 {
	seen := make(map[edgeKey]struct{})
	var edges [][2]mgl32.Vec3
	for i := 0; i+2 < len(d.Indices); i += 3 {
		for k := 0; k < 3; k++ {
			a := d.Positions[d.Indices[i+k]]
			b := d.Positions[d.Indices[i+(k+1)%3]]
			if a == b {
				continue
			}
			key := newEdgeKey(a, b)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			edges = append(edges, [2]mgl32.Vec3{key.a, key.b})
		}
	}
	return edges
}

// Wireframe turns every unique edge of d into a thin prism of the given
// radius. Normals point away from the edge so the tubes shade as round.
func Wireframe(d *Data, radius float32) *Data {
	edges := d.Edges()
	w := &Data{
		Name:      d.Name + "-wireframe",
		Positions: make([]mgl32.Vec3, 0, len(edges)*2*SidesPerEdge),
		Normals:   make([]mgl32.Vec3, 0, len(edges)*2*SidesPerEdge),
		Indices:   make([]uint32, 0, len(edges)*TrianglesPerEdge*3),
	}
	for _, e := range edges {
		w.addTube(e[0], e[1], radius)
	}
	return w
}

func (d *Data) addTube(a, b mgl32.Vec3, radius float32) {
	axis := b.Sub(a).Normalize()
	helper := mgl32.Vec3{0, 1, 0}
	if math.Abs(float64(axis.Y())) > 0.9 {
		helper = mgl32.Vec3{1, 0, 0}
	}
	u := axis.Cross(helper).Normalize()
	v := axis.Cross(u)

	base := uint32(len(d.Positions))
	for k := 0; k < SidesPerEdge; k++ {
		angle := 2 * math.Pi * float64(k) / SidesPerEdge
		n := u.Mul(float32(math.Cos(angle))).Add(v.Mul(float32(math.Sin(angle))))
		d.Positions = append(d.Positions, a.Add(n.Mul(radius)), b.Add(n.Mul(radius)))
		d.Normals = append(d.Normals, n, n)
	}
	for k := uint32(0); k < SidesPerEdge; k++ {
		next := (k + 1) % SidesPerEdge
		a0, b0 := base+2*k, base+2*k+1
		a1, b1 := base+2*next, base+2*next+1
		d.Indices = append(d.Indices, a0, a1, b1, a0, b1, b0)
	}
}

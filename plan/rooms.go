package plan

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/quadtree"
)

// wallGraph is the explicit endpoint-adjacency graph behind room detection:
// nodes are snapped wall endpoints, edges are wall segments. Near-coincident
// endpoints (within the adjacency tolerance) collapse into one node.
type wallGraph struct {
	nodes    []Point
	adj      [][]graphEdge
	segNodes [][2]int // per segment: node index of start and end, -1 for self-loops
	bridge   []bool   // per segment: true when the edge is a bridge (on no cycle)
}

type graphEdge struct {
	to  int
	seg int
}

// endpointRef makes a segment endpoint addressable in the quadtree index.
type endpointRef struct {
	pt   orb.Point
	seg  int
	end  int // 0 = start, 1 = end
	flat int // flat endpoint index: 2*seg + end
}

func (e endpointRef) Point() orb.Point { return e.pt }

// buildWallGraph snaps near-coincident endpoints into nodes and assembles
// the adjacency-list graph. Endpoint clustering uses a quadtree index so the
// neighbor search stays near O(n log n) instead of pairwise scans.
func buildWallGraph(segments []Segment, snapTol float64) *wallGraph {
	g := &wallGraph{segNodes: make([][2]int, len(segments))}
	if len(segments) == 0 {
		return g
	}

	refs := make([]endpointRef, 0, 2*len(segments))
	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	for i, s := range segments {
		for end, p := range [2]Point{s.Start.XY(), s.End.XY()} {
			refs = append(refs, endpointRef{
				pt:   orb.Point{p.X, p.Y},
				seg:  i,
				end:  end,
				flat: 2*i + end,
			})
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
	}

	pad := snapTol + 1.0
	qt := quadtree.New(orb.Bound{
		Min: orb.Point{minX - pad, minY - pad},
		Max: orb.Point{maxX + pad, maxY + pad},
	})
	for _, r := range refs {
		// Bound covers all endpoints, so Add cannot fail here.
		_ = qt.Add(r)
	}

	// Union endpoints within snap tolerance of each other.
	uf := newUnionFind(len(refs))
	var buf []orb.Pointer
	for _, r := range refs {
		box := orb.Bound{
			Min: orb.Point{r.pt[0] - snapTol, r.pt[1] - snapTol},
			Max: orb.Point{r.pt[0] + snapTol, r.pt[1] + snapTol},
		}
		buf = qt.InBound(buf[:0], box)
		for _, other := range buf {
			o := other.(endpointRef)
			if o.flat == r.flat {
				continue
			}
			if planar.Distance(r.pt, o.pt) <= snapTol {
				uf.union(r.flat, o.flat)
			}
		}
	}

	// One node per cluster, positioned at the cluster centroid.
	nodeOf := make(map[int]int)
	sumX := make(map[int]float64)
	sumY := make(map[int]float64)
	count := make(map[int]int)
	for _, r := range refs {
		root := uf.find(r.flat)
		sumX[root] += r.pt[0]
		sumY[root] += r.pt[1]
		count[root]++
	}
	for root := range count {
		nodeOf[root] = len(g.nodes)
		g.nodes = append(g.nodes, Point{
			X: sumX[root] / float64(count[root]),
			Y: sumY[root] / float64(count[root]),
		})
	}

	g.adj = make([][]graphEdge, len(g.nodes))
	for i := range segments {
		n1 := nodeOf[uf.find(2*i)]
		n2 := nodeOf[uf.find(2*i+1)]
		if n1 == n2 {
			// The wall collapsed to a point at snap scale; it cannot bound
			// a room and is excluded from the graph.
			g.segNodes[i] = [2]int{-1, -1}
			continue
		}
		g.segNodes[i] = [2]int{n1, n2}
		g.adj[n1] = append(g.adj[n1], graphEdge{to: n2, seg: i})
		g.adj[n2] = append(g.adj[n2], graphEdge{to: n1, seg: i})
	}

	g.findBridges(len(segments))
	return g
}

// findBridges runs the standard DFS lowlink bridge-finding pass. Edges are
// tracked by segment index so parallel walls between the same node pair are
// handled correctly: a doubled edge is never a bridge.
func (g *wallGraph) findBridges(segCount int) {
	g.bridge = make([]bool, segCount)

	disc := make([]int, len(g.nodes))
	low := make([]int, len(g.nodes))
	for i := range disc {
		disc[i] = -1
	}
	timer := 0

	var dfs func(u, viaSeg int)
	dfs = func(u, viaSeg int) {
		disc[u] = timer
		low[u] = timer
		timer++
		for _, e := range g.adj[u] {
			if e.seg == viaSeg {
				continue
			}
			if disc[e.to] == -1 {
				dfs(e.to, e.seg)
				if low[e.to] < low[u] {
					low[u] = low[e.to]
				}
				if low[e.to] > disc[u] {
					g.bridge[e.seg] = true
				}
			} else if disc[e.to] < low[u] {
				low[u] = disc[e.to]
			}
		}
	}

	for n := range g.nodes {
		if disc[n] == -1 && len(g.adj[n]) > 0 {
			dfs(n, -1)
		}
	}
}

// onCycle reports whether segment i lies on at least one simple cycle.
func (g *wallGraph) onCycle(i int) bool {
	if g.segNodes[i][0] < 0 {
		return false
	}
	return !g.bridge[i]
}

// CycleMembership returns, for each segment, whether it lies on a simple
// cycle in the snapped endpoint-adjacency graph. Used both by the validator
// as a lightweight pre-check and by room detection proper.
func CycleMembership(segments []Segment, tol Tolerances) []bool {
	g := buildWallGraph(segments, tol.AdjacencyGapM)
	out := make([]bool, len(segments))
	for i := range segments {
		out[i] = g.onCycle(i)
	}
	return out
}

// DetectRooms keeps the walls that participate in at least one closed
// boundary cycle and extracts the enclosed rooms. Walls on no cycle
// (bridges, isolated stubs) are dropped: a wall that closes no loop cannot
// bound a room.
//
// Rooms are the bounded faces of the cycle subgraph, found by planar face
// traversal: directed half-edges are walked by always taking the most
// counter-clockwise turn, which traces interior faces counter-clockwise and
// the single outer face clockwise. Faces below Tolerances.MinRoomAreaM2 are
// discarded.
func DetectRooms(segments []Segment, tol Tolerances) ([]Segment, []RoomCandidate) {
	g := buildWallGraph(segments, tol.AdjacencyGapM)

	var walls []Segment
	keep := make([]bool, len(segments))
	for i, s := range segments {
		if g.onCycle(i) {
			keep[i] = true
			walls = append(walls, s)
		}
	}

	rooms := g.extractRooms(segments, keep, tol.MinRoomAreaM2)
	return walls, rooms
}

// halfEdge is one direction of a graph edge: 2*edge for the stored
// direction, 2*edge+1 for its twin.
type halfEdge struct {
	from, to int
	seg      int
}

// extractRooms walks the faces of the cycle subgraph and converts the
// counter-clockwise (interior) faces into room candidates.
func (g *wallGraph) extractRooms(segments []Segment, keep []bool, minArea float64) []RoomCandidate {
	var halves []halfEdge
	outgoing := make([][]int, len(g.nodes))
	for i := range segments {
		if !keep[i] {
			continue
		}
		n1, n2 := g.segNodes[i][0], g.segNodes[i][1]
		halves = append(halves, halfEdge{from: n1, to: n2, seg: i})
		outgoing[n1] = append(outgoing[n1], len(halves)-1)
		halves = append(halves, halfEdge{from: n2, to: n1, seg: i})
		outgoing[n2] = append(outgoing[n2], len(halves)-1)
	}

	edgeAngle := func(h halfEdge) float64 {
		a, b := g.nodes[h.from], g.nodes[h.to]
		return math.Atan2(b.Y-a.Y, b.X-a.X)
	}

	// next returns the half-edge leaving h.to that makes the most
	// counter-clockwise turn relative to h's reverse direction.
	next := func(hIdx int) int {
		h := halves[hIdx]
		twin := hIdx ^ 1
		revAngle := edgeAngle(halves[twin])

		best := twin // fall back to doubling back at a dead end
		bestDiff := -1.0
		for _, cand := range outgoing[h.to] {
			if cand == twin {
				continue
			}
			diff := math.Mod(edgeAngle(halves[cand])-revAngle, 2*math.Pi)
			if diff <= 0 {
				diff += 2 * math.Pi
			}
			if diff > bestDiff {
				bestDiff = diff
				best = cand
			}
		}
		return best
	}

	visited := make([]bool, len(halves))
	var rooms []RoomCandidate

	for start := range halves {
		if visited[start] {
			continue
		}

		var face []int
		h := start
		for !visited[h] {
			visited[h] = true
			face = append(face, h)
			h = next(h)
		}
		if h != start || len(face) < 3 {
			continue
		}

		ring := make(orb.Ring, 0, len(face)+1)
		outline := make([]Point, 0, len(face))
		for _, idx := range face {
			p := g.nodes[halves[idx].from]
			ring = append(ring, orb.Point{p.X, p.Y})
			outline = append(outline, p)
		}
		ring = append(ring, ring[0])

		// Interior faces come out counter-clockwise under the turn rule;
		// the outer face is clockwise and is rejected here.
		if signedRingArea(outline) <= minArea {
			continue
		}

		centroid, area := planar.CentroidArea(ring)
		room := RoomCandidate{
			Outline:  outline,
			Area:     math.Abs(area),
			Centroid: Point{X: centroid[0], Y: centroid[1]},
		}
		for _, idx := range face {
			seg := segments[halves[idx].seg]
			room.Segments = append(room.Segments, seg)
			room.SegmentIDs = append(room.SegmentIDs, segmentID(seg))
		}
		rooms = append(rooms, room)
	}

	return rooms
}

// signedRingArea returns the shoelace area of the polygon: positive for
// counter-clockwise winding.
func signedRingArea(pts []Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	sum := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return sum / 2
}

// segmentID returns the wall's stable identifier: its assigned name when
// present, its source ID otherwise.
func segmentID(s Segment) string {
	if s.Name != "" {
		return s.Name
	}
	return s.SourceID
}

// LabelPoint is a room label extracted by the external OCR collaborator.
type LabelPoint struct {
	Position Point  `json:"position"`
	Text     string `json:"text"`
}

// AttachLabels assigns OCR labels to the rooms whose outline contains the
// label position. Labels matching no room are ignored.
func AttachLabels(rooms []RoomCandidate, labels []LabelPoint) {
	for i := range rooms {
		ring := make(orb.Ring, 0, len(rooms[i].Outline)+1)
		for _, p := range rooms[i].Outline {
			ring = append(ring, orb.Point{p.X, p.Y})
		}
		if len(ring) == 0 {
			continue
		}
		ring = append(ring, ring[0])

		for _, l := range labels {
			if planar.RingContains(ring, orb.Point{l.Position.X, l.Position.Y}) {
				rooms[i].Label = l.Text
				break
			}
		}
	}
}

// unionFind is a plain union-find with path compression, used for endpoint
// snapping.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra != rb {
		uf.parent[ra] = rb
	}
}

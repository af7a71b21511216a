package voxel

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/MattNet/minetest-from-models/engine/mesh"
	"github.com/MattNet/minetest-from-models/engine/util"
)

// Voxelizer converts a triangle soup into the set of lattice cells that lie
// inside the enclosed volume. One vertical ray is cast per (x, y) column of
// the lattice; sorted surface crossings alternate outside/inside, and every
// lattice step inside an enter/exit pair becomes an occupied voxel.
//
// The input is assumed to be a closed surface. An odd number of crossings
// on a column (non-manifold or self-intersecting input) leaves a span that
// never closes; no voxels are emitted for it under either fill strategy.
type Voxelizer struct {
	cfg    Config
	mesh   *mesh.Mesh
	bounds Bounds
}

func NewVoxelizer(m *mesh.Mesh, cfg Config) (*Voxelizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.RoundInput {
		m = m.Rounded()
	}
	return &Voxelizer{
		cfg:    cfg,
		mesh:   m,
		bounds: ComputeBounds(m, cfg.Granularity),
	}, nil
}

func (v *Voxelizer) Bounds() Bounds {
	return v.bounds
}

// gridSize is the number of lattice columns along x and y. The expanded
// bounds are small but never empty, so both counts are at least one for a
// non-empty mesh.
func (v *Voxelizer) gridSize() (nx, ny int) {
	size := v.bounds.Size()
	nx = int(math.Floor(size.X()/v.cfg.Granularity)) + 1
	ny = int(math.Floor(size.Y()/v.cfg.Granularity)) + 1
	return nx, ny
}

// Run scans every column of the lattice and returns the occupied set.
// Columns are independent, so they are fanned out over a worker pool; each
// worker fills a private buffer and the buffers are merged into the shared
// set under one lock once the worker drains. Cancellation is checked
// between columns only.
func (v *Voxelizer) Run(ctx context.Context) (*Set, error) {
	result := NewSet()
	if v.mesh.TriangleCount() == 0 {
		return result, nil
	}

	nx, ny := v.gridSize()
	total := nx * ny

	workers := v.cfg.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	util.LogVoxelInfo(fmt.Sprintf("[Voxelize] %d triangles, %dx%d columns, %d workers, strategy %s",
		v.mesh.TriangleCount(), nx, ny, workers, v.cfg.Strategy))

	var done atomic.Int64
	progressStop := v.startProgress(&done, total)

	jobs := make(chan int, workers*2)
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			local := make([]Int3, 0, 1024)
			hits := make([]float64, 0, 16)
			for column := range jobs {
				x := v.bounds.Min.X() + float64(column%nx)*v.cfg.Granularity
				y := v.bounds.Min.Y() + float64(column/nx)*v.cfg.Granularity
				hits = v.scanColumn(x, y, hits, func(p Int3) {
					local = append(local, p)
				})
				done.Add(1)
			}
			mu.Lock()
			for _, p := range local {
				result.Add(p)
			}
			mu.Unlock()
		}()
	}

	var cancelErr error
feed:
	for column := 0; column < total; column++ {
		if err := ctx.Err(); err != nil {
			cancelErr = err
			break
		}
		select {
		case jobs <- column:
		case <-ctx.Done():
			cancelErr = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	if progressStop != nil {
		progressStop()
	}

	if cancelErr != nil {
		return nil, cancelErr
	}
	util.LogVoxelInfo(fmt.Sprintf("[Voxelize] %d voxels occupied", result.Len()))
	return result, nil
}

// startProgress spawns the monitor goroutine feeding cfg.Progress. The
// returned stop function delivers one final up-to-date call and joins the
// monitor; it is nil when no callback is configured.
func (v *Voxelizer) startProgress(done *atomic.Int64, total int) func() {
	if v.cfg.Progress == nil {
		return nil
	}
	stop := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				v.cfg.Progress(int(done.Load()), total)
			case <-stop:
				v.cfg.Progress(int(done.Load()), total)
				return
			}
		}
	}()
	return func() {
		close(stop)
		<-finished
	}
}

// scanColumn casts the vertical ray of one column, collects the sorted
// crossing distances and emits the interior lattice cells. The hits slice
// is the caller's scratch buffer; the (possibly grown) buffer is returned
// for reuse. All interior/exterior state is local to this call.
func (v *Voxelizer) scanColumn(x, y float64, hits []float64, emit func(Int3)) []float64 {
	minZ, maxZ := v.bounds.Min.Z(), v.bounds.Max.Z()
	rayStart := mgl64.Vec3{x, y, minZ}
	rayEnd := mgl64.Vec3{x, y, maxZ}

	hits = hits[:0]
	for _, tri := range v.mesh.Triangles {
		t, ok := util.IntersectSegmentTriangle(rayStart, rayEnd, tri[0], tri[1], tri[2], v.cfg.Epsilon)
		if ok {
			hits = append(hits, minZ+t*(maxZ-minZ))
		}
	}
	if len(hits) == 0 {
		return hits
	}
	sort.Float64s(hits)
	hits = collapseCoincident(hits, v.cfg.Epsilon)

	switch v.cfg.Strategy {
	case StrategyRunLength:
		v.fillRunLength(x, y, hits, emit)
	default:
		v.fillBruteForce(x, y, hits, emit)
	}
	return hits
}

// fillBruteForce walks every lattice step of the column from bottom to
// top, flipping an inside flag whenever the step passes unconsumed
// crossing events. A step is emitted when the flag is set and an exit
// event is still ahead; a final unpaired event therefore marks nothing.
// Events within epsilon above a lattice step count as passed, so a
// crossing that lands on a lattice plane up to float noise still flips
// at that step.
func (v *Voxelizer) fillBruteForce(x, y float64, hits []float64, emit func(Int3)) {
	minZ, maxZ := v.bounds.Min.Z(), v.bounds.Max.Z()
	inside := false
	cursor := 0
	for step := 0; ; step++ {
		z := minZ + float64(step)*v.cfg.Granularity
		if z > maxZ {
			break
		}
		for cursor < len(hits) && z >= hits[cursor]-v.cfg.Epsilon {
			inside = !inside
			cursor++
		}
		if inside && cursor < len(hits) {
			emit(voxelAt(x, y, z))
		}
	}
}

// fillRunLength walks only the inside spans. Steps are aligned to the same
// z lattice the brute-force walk samples (z = minZ + k*granularity), so
// both strategies agree bit-for-bit on membership: a span covers exactly
// the lattice steps in [enter, exit). A trailing unpaired event is ignored.
func (v *Voxelizer) fillRunLength(x, y float64, hits []float64, emit func(Int3)) {
	minZ, maxZ := v.bounds.Min.Z(), v.bounds.Max.Z()
	g := v.cfg.Granularity
	for i := 0; i+1 < len(hits); i += 2 {
		// The same epsilon slack as the brute-force walk: the span covers
		// lattice steps z with z >= enter-eps and z < exit-eps.
		enter, exit := hits[i]-v.cfg.Epsilon, hits[i+1]-v.cfg.Epsilon
		step := int(math.Ceil((enter - minZ) / g))
		if step < 0 {
			step = 0
		}
		// Guard the ceil against float rounding on either side.
		for minZ+float64(step)*g < enter {
			step++
		}
		for step > 0 && minZ+float64(step-1)*g >= enter {
			step--
		}
		for ; ; step++ {
			z := minZ + float64(step)*g
			if z >= exit || z > maxZ {
				break
			}
			emit(voxelAt(x, y, z))
		}
	}
}

// collapseCoincident merges sorted crossing events closer than epsilon
// into one. A ray through a vertex or through an edge interior shared by
// two triangles reports the same distance twice; counting it twice would
// flip the parity state twice and erase the crossing.
func collapseCoincident(hits []float64, epsilon float64) []float64 {
	kept := 1
	for i := 1; i < len(hits); i++ {
		if hits[i]-hits[kept-1] > epsilon {
			hits[kept] = hits[i]
			kept++
		}
	}
	return hits[:kept]
}

func voxelAt(x, y, z float64) Int3 {
	return Int3{
		X: int32(math.Floor(x)),
		Y: int32(math.Floor(y)),
		Z: int32(math.Floor(z)),
	}
}

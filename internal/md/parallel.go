package md

import (
	"sync"

	"github.com/san-kum/mdsim/internal/particle"
)

const minChunk = 256

// parallelFor runs fn over [0, n) split into at most workers contiguous
// chunks of at least minChunk elements.
func parallelFor(n, minChunk, workers int, fn func(start, end int)) {
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}

	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// accumulateParallel deals blocks round-robin to workers. Each worker
// writes only its own reduction buffer; buffers are folded into the
// particles in worker order once every worker is done, so results are
// deterministic for a given worker count.
func (in *Integrator) accumulateParallel(set ParticleSet) error {
	ps := set.Particles()
	blocks := set.Blocks()
	workers := in.workers
	if workers > blocks {
		workers = blocks
	}

	for len(in.bufs) < workers {
		in.bufs = append(in.bufs, &reduction{})
	}

	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		buf := in.bufs[w]
		buf.reset(len(ps))

		wg.Add(1)
		go func(w int, buf *reduction) {
			defer wg.Done()
			visit := func(i, j int) error {
				a, u, err := in.force.Pair(ps[i].Center, ps[j].Center)
				if err != nil {
					return coincidentError(&ps[i], &ps[j])
				}
				buf.acc[i] = buf.acc[i].Add(a)
				buf.acc[j] = buf.acc[j].Sub(a)
				buf.pot[i] += u
				buf.pot[j] += u
				return nil
			}
			for b := w; b < blocks; b += workers {
				if err := set.VisitBlock(b, visit); err != nil {
					errs[w] = err
					return
				}
			}
		}(w, buf)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	for w := 0; w < workers; w++ {
		fold(ps, in.bufs[w])
	}
	return nil
}

func fold(ps []particle.Particle, buf *reduction) {
	for i := range ps {
		ps[i].Acceleration = ps[i].Acceleration.Add(buf.acc[i])
		ps[i].Potential += buf.pot[i]
	}
}

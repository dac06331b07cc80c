package replay

import "golang.org/x/sync/errgroup"

// persistWorker runs completed-tape persistence off the table's command
// loop (§5: "Replay persistence... occurs after releasing the engine
// lock, on a background worker"). Jobs fan out through a bounded
// errgroup.Group so a slow or failing Persister can't pile up goroutines
// without bound.
type persistWorker struct {
	jobs chan persistJob
	g    *errgroup.Group
	done chan struct{}
}

type persistJob struct {
	gameID string
	format string
	data   []byte
}

const maxConcurrentPersists = 4

func newPersistWorker(p Persister) *persistWorker {
	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentPersists)
	w := &persistWorker{
		jobs: make(chan persistJob, 256),
		g:    g,
		done: make(chan struct{}),
	}
	go w.run(p)
	return w
}

func (w *persistWorker) run(p Persister) {
	for job := range w.jobs {
		job := job
		w.g.Go(func() error {
			return p.Persist(job.gameID, job.format, job.data)
		})
	}
	_ = w.g.Wait()
	close(w.done)
}

// submit queues a persistence job, best-effort: a full queue drops the
// job rather than blocking the eviction path that called it.
func (w *persistWorker) submit(gameID, format string, data []byte) {
	select {
	case w.jobs <- persistJob{gameID: gameID, format: format, data: data}:
	default:
	}
}

func (w *persistWorker) close() error {
	close(w.jobs)
	<-w.done
	return nil
}

package renderer

import (
	"runtime"
	"sync"
)

// RowTask is a band of image rows rendered by one worker
type RowTask struct {
	TaskID   int // For deterministic ordering
	RowStart int // First row, inclusive
	RowEnd   int // Last row, exclusive
}

// RowResult contains the statistics of a finished band
type RowResult struct {
	TaskID int
	Stats  RenderStats
}

// WorkerPool renders row bands in parallel into a shared output buffer.
// Bands never overlap, so workers write to disjoint byte ranges without locking.
type WorkerPool struct {
	taskQueue   chan RowTask
	resultQueue chan RowResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// BandRenderer traces rows [rowStart, rowEnd) into its output and returns their statistics
type BandRenderer func(rowStart, rowEnd int) RenderStats

// Worker traces the bands it receives from the pool
type Worker struct {
	ID          int
	render      BandRenderer
	taskQueue   chan RowTask
	resultQueue chan RowResult
}

// NewWorkerPool creates a pool of numWorkers workers sharing one band
// renderer. maxTasks sizes the queues so submission never blocks.
func NewWorkerPool(render BandRenderer, maxTasks, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if maxTasks > 0 && numWorkers > maxTasks {
		numWorkers = maxTasks
	}

	wp := &WorkerPool{
		taskQueue:   make(chan RowTask, maxTasks),
		resultQueue: make(chan RowResult, maxTasks),
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			render:      render,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask submits a band to the worker pool
func (wp *WorkerPool) SubmitTask(task RowTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed band result
func (wp *WorkerPool) GetResult() (RowResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		stats := w.render(task.RowStart, task.RowEnd)
		w.resultQueue <- RowResult{TaskID: task.TaskID, Stats: stats}
	}
}

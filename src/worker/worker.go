package worker

import (
	"github.com/bbernhard/styletransfer-playground/src/datastructures"
	log "github.com/sirupsen/logrus"
)

// Job holds the attributes needed to perform unit of work.
type Job struct {
	StylizeRequest datastructures.StylizeRequest
}

// NewWorker creates takes a numeric id and a channel w/ worker pool.
func NewWorker(id int, workerPool chan chan Job, processor *Processor) Worker {
	return Worker{
		id:         id,
		jobQueue:   make(chan Job),
		workerPool: workerPool,
		quitChan:   make(chan bool),
		processor:  processor,
	}
}

type Worker struct {
	id         int
	jobQueue   chan Job
	workerPool chan chan Job
	quitChan   chan bool
	processor  *Processor
}

func (w Worker) start() {
	log.Debug("[Worker] Worker ", w.id, " starting")

	go func() {
		for {
			// Add my jobQueue to the worker pool.
			select {
			case w.workerPool <- w.jobQueue:
			case <-w.quitChan:
				log.Debug("[Worker] Worker ", w.id, " stopping")
				return
			}

			select {
			case job := <-w.jobQueue:
				// Dispatcher has added a job to my jobQueue.
				w.processor.Process(job.StylizeRequest)

			case <-w.quitChan:
				// We have been asked to stop.
				log.Debug("[Worker] Worker ", w.id, " stopping")
				return
			}
		}
	}()
}

func (w Worker) stop() {
	go func() {
		w.quitChan <- true
	}()
}

// NewDispatcher creates, and returns a new Dispatcher object.
func NewDispatcher(jobQueue chan Job, maxWorkers int, processor *Processor) *Dispatcher {
	workerPool := make(chan chan Job, maxWorkers)

	return &Dispatcher{
		jobQueue:   jobQueue,
		maxWorkers: maxWorkers,
		workerPool: workerPool,
		processor:  processor,
		quitChan:   make(chan bool),
	}
}

type Dispatcher struct {
	workerPool chan chan Job
	maxWorkers int
	jobQueue   chan Job
	processor  *Processor
	workers    []Worker
	quitChan   chan bool
}

func (d *Dispatcher) Run() {
	for i := 0; i < d.maxWorkers; i++ {
		worker := NewWorker(i+1, d.workerPool, d.processor)
		worker.start()
		d.workers = append(d.workers, worker)
	}

	go d.dispatch()
}

// Stop asks every worker to stop once its current job is done. Jobs that
// are still queued are dropped.
func (d *Dispatcher) Stop() {
	for _, worker := range d.workers {
		worker.stop()
	}
	close(d.quitChan)
}

func (d *Dispatcher) dispatch() {
	for {
		select {
		case job := <-d.jobQueue:
			go d.handOff(job)
		case <-d.quitChan:
			return
		}
	}
}

// handOff passes job to the next idle worker. It returns false if the
// dispatcher was stopped before a worker took the job.
func (d *Dispatcher) handOff(job Job) bool {
	select {
	case workerJobQueue := <-d.workerPool:
		// the worker may have quit after registering itself
		select {
		case workerJobQueue <- job:
			return true
		case <-d.quitChan:
			return false
		}
	case <-d.quitChan:
		return false
	}
}

package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
	"github.com/akolanti/PaperRAG/internal/job"
	"github.com/akolanti/PaperRAG/internal/metrics"
	"github.com/akolanti/PaperRAG/internal/rag"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

// Handler runs one task and returns it in a terminal state.
type Handler func(ctx context.Context, job jobModel.Job) jobModel.Job

// HandlersFor maps every task type to the rag service operation that runs it.
func HandlersFor(svc rag.Service) map[jobModel.JobType]Handler {
	return map[jobModel.JobType]Handler{
		jobModel.JobTypeIngest:    svc.Ingest,
		jobModel.JobTypeAsk:       svc.Ask,
		jobModel.JobTypeSummarize: svc.Summarize,
	}
}

type Pool struct {
	jobService         *job.Service
	handlers           map[jobModel.JobType]Handler
	stopWorkerChannel  chan bool
	workerWaitGroup    sync.WaitGroup
	currentWorkerCount int64
	logger             *logger_i.Logger

	minWorkerCount int64
	maxWorkerCount int64
	idleTimeout    time.Duration
	jobTimeout     time.Duration
	stopOnce       sync.Once
	started        atomic.Bool
	dispatcherDone chan struct{}
}

func NewPool(jobService *job.Service, handlers map[jobModel.JobType]Handler) *Pool {
	return &Pool{
		jobService:        jobService,
		handlers:          handlers,
		stopWorkerChannel: make(chan bool),
		dispatcherDone:    make(chan struct{}),
		logger:            logger_i.NewLogger("WorkerPool"),
		minWorkerCount:    config.MinWorkerCount,
		maxWorkerCount:    config.MaxWorkerCount,
		idleTimeout:       config.IdleWorkerTimeout,
		jobTimeout:        config.JobExecutionTimeout,
	}
}

// Start launches the dispatcher together with the minimum number of workers.
func (p *Pool) Start() {
	p.logger.Info("Initializing worker pool")
	for i := int64(0); i < p.minWorkerCount; i++ {
		p.createWorker()
	}
	p.started.Store(true)
	go p.dispatcher()
}

// Stop tells every worker to return after its current task and waits for them.
// Tasks still queued are finished as failed.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopWorkerChannel)
		if p.started.Load() {
			<-p.dispatcherDone
		}
		p.workerWaitGroup.Wait()
		p.failQueued()
		p.logger.Info("Worker pool stopped")
	})
}

func (p *Pool) WorkerCount() int64 {
	return atomic.LoadInt64(&p.currentWorkerCount)
}

func (p *Pool) dispatcher() {
	p.logger.Info("Dispatcher started")
	defer close(p.dispatcherDone)
	for {
		select {
		case <-p.jobService.DispatcherChannel:
			// no worker may be added once Stop has begun waiting
			select {
			case <-p.stopWorkerChannel:
				return
			default:
			}
			if p.WorkerCount() < p.maxWorkerCount {
				p.logger.Info("Creating new worker", "WorkerCount", p.WorkerCount())
				p.createWorker()
			}
		case <-p.stopWorkerChannel:
			return
		}
	}
}

func (p *Pool) createWorker() {
	p.workerWaitGroup.Add(1)
	atomic.AddInt64(&p.currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
	go p.worker()
}

func (p *Pool) worker() {
	idle := time.NewTimer(p.idleTimeout)
	defer idle.Stop()
	for {
		select {
		case currentJob := <-p.jobService.JobChannel:
			metrics.DecrementJobsInQueue()
			p.executeJob(currentJob)
			resetTimer(idle, p.idleTimeout)

		case <-p.stopWorkerChannel:
			atomic.AddInt64(&p.currentWorkerCount, -1)
			p.removeWorker("Stop worker signal received")
			return

		case <-idle.C:
			if p.tryRetire() {
				p.removeWorker("Idle worker timeout")
				return
			}
			idle.Reset(p.idleTimeout)
		}
	}
}

// tryRetire claims a slot above the minimum so concurrent idle workers never drop the pool below it.
func (p *Pool) tryRetire() bool {
	for {
		current := atomic.LoadInt64(&p.currentWorkerCount)
		if current <= p.minWorkerCount {
			return false
		}
		if atomic.CompareAndSwapInt64(&p.currentWorkerCount, current, current-1) {
			return true
		}
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

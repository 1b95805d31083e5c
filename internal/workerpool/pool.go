package workerpool

import (
	"context"
	"errors"
	"log"
	"sync"
)

var (
	ErrPoolFull   = errors.New("follow-up pool is full")
	ErrPoolClosed = errors.New("follow-up pool is closed")
)

// TaskPool accepts task ids for asynchronous follow-up processing.
type TaskPool interface {
	Enqueue(taskID string) error
}

type Handler interface {
	Handle(ctx context.Context, taskID string) error
}

type HandlerFunc func(ctx context.Context, taskID string) error

func (f HandlerFunc) Handle(ctx context.Context, taskID string) error { return f(ctx, taskID) }

type Pool struct {
	queue   chan string
	handler Handler
	logger  *log.Logger

	mu     sync.RWMutex
	closed bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func New(poolSize int, handler Handler, logger *log.Logger) *Pool {
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		queue:   make(chan string, poolSize),
		handler: handler,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches n workers. Zero workers leaves jobs queued until Shutdown.
func (p *Pool) Start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.work(i)
	}
}

func (p *Pool) work(id int) {
	defer p.wg.Done()

	for taskID := range p.queue {
		if err := p.handler.Handle(p.ctx, taskID); err != nil {
			p.logger.Printf("worker %d: task %s: %v", id, taskID, err)
		}
	}
}

// Enqueue never blocks.
func (p *Pool) Enqueue(taskID string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.queue <- taskID:
		return nil
	default:
		return ErrPoolFull
	}
}

// Shutdown stops intake and waits for workers to drain the queue. If ctx ends
// first, in-flight handlers see a cancelled context and ctx.Err is returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return ctx.Err()
	}
}

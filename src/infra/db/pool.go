package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/puddle/v2"

	"catalog/src/infra/logger"
)

// closeTimeout bounds how long closing a single physical connection may take.
const closeTimeout = 5 * time.Second

// Conn is a single physical connection. *pgx.Conn satisfies it.
type Conn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Connector opens a new physical connection.
type Connector func(ctx context.Context) (Conn, error)

// PoolConfig holds the pool limits.
type PoolConfig struct {
	// MaxSize caps the number of connections leased at once.
	MaxSize int32
	// IdleTimeout closes connections idle for longer than this. Zero keeps
	// idle connections forever.
	IdleTimeout time.Duration
	// AcquireTimeout bounds the wait in Acquire.
	AcquireTimeout time.Duration
}

// Stats is a snapshot of pool accounting.
type Stats struct {
	MaxSize         int32
	Total           int32
	Idle            int32
	Leased          int32
	AcquireCount    int64
	CanceledAcquire int64
}

// Pool is a bounded set of connections to one database.
//
// Leases are handed out by Acquire and must be returned with Release (or
// Destroy for a connection that can no longer be trusted). Drain closes the
// pool: idle connections are closed at once, leased ones when released.
type Pool struct {
	res *puddle.Pool[Conn]
	cfg PoolConfig
	log *slog.Logger

	closed    atomic.Bool
	closing   context.Context
	cancel    context.CancelFunc
	drainOnce sync.Once
	drained   chan struct{}

	stopReaper chan struct{}
	reaperDone chan struct{}
}

// NewPool creates an empty pool. No connection is opened until the first
// Acquire.
func NewPool(connect Connector, cfg PoolConfig, log *slog.Logger) (*Pool, error) {
	if connect == nil {
		return nil, errors.New("db: nil connector")
	}
	if cfg.AcquireTimeout <= 0 {
		return nil, fmt.Errorf("db: acquire timeout must be positive, got %s", cfg.AcquireTimeout)
	}

	res, err := puddle.NewPool(&puddle.Config[Conn]{
		Constructor: puddle.Constructor[Conn](connect),
		Destructor: func(c Conn) {
			ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
			defer cancel()
			_ = c.Close(ctx)
		},
		MaxSize: cfg.MaxSize,
	})
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	closing, cancel := context.WithCancel(context.Background())
	p := &Pool{
		res:     res,
		cfg:     cfg,
		log:     log,
		closing: closing,
		cancel:  cancel,
		drained: make(chan struct{}),
	}

	if cfg.IdleTimeout > 0 {
		p.stopReaper = make(chan struct{})
		p.reaperDone = make(chan struct{})
		go p.reap(cfg.IdleTimeout / 2)
	}

	return p, nil
}

// Acquire leases a connection, opening one if none is idle and the pool has
// room. It fails with PoolExhausted when nothing frees up within the
// acquire timeout and with PoolClosed once Drain has started.
func (p *Pool) Acquire(ctx context.Context) (*Lease, error) {
	if p.closed.Load() {
		return nil, poolError(KindPoolClosed, "pool is closed", nil)
	}

	actx, cancel := context.WithTimeout(ctx, p.cfg.AcquireTimeout)
	defer cancel()
	stop := context.AfterFunc(p.closing, cancel)
	defer stop()

	res, err := p.res.Acquire(actx)
	if err != nil {
		return nil, p.acquireError(ctx, err)
	}
	if p.closed.Load() {
		res.Release()
		return nil, poolError(KindPoolClosed, "pool is closed", nil)
	}
	return &Lease{res: res}, nil
}

func (p *Pool) acquireError(ctx context.Context, err error) error {
	switch {
	case p.closed.Load() || errors.Is(err, puddle.ErrClosedPool):
		return poolError(KindPoolClosed, "pool is closed", err)
	case ctx.Err() != nil:
		return fmt.Errorf("acquire connection: %w", ctx.Err())
	case errors.Is(err, context.DeadlineExceeded):
		return poolError(KindPoolExhausted,
			fmt.Sprintf("no connection available within %s", p.cfg.AcquireTimeout), err)
	default:
		return Classify(fmt.Errorf("connect: %w", err))
	}
}

// Drain closes the pool. It is safe to call more than once; every call waits
// until all connections are closed or ctx is done.
func (p *Pool) Drain(ctx context.Context) error {
	p.drainOnce.Do(func() {
		p.closed.Store(true)
		p.cancel()
		if p.stopReaper != nil {
			close(p.stopReaper)
			<-p.reaperDone
		}
		go func() {
			p.res.Close()
			close(p.drained)
		}()
	})

	select {
	case <-p.drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Closed reports whether Drain has been called.
func (p *Pool) Closed() bool {
	return p.closed.Load()
}

// Stats returns a snapshot of the pool accounting.
func (p *Pool) Stats() Stats {
	s := p.res.Stat()
	return Stats{
		MaxSize:         s.MaxResources(),
		Total:           s.TotalResources(),
		Idle:            s.IdleResources(),
		Leased:          s.AcquiredResources(),
		AcquireCount:    s.AcquireCount(),
		CanceledAcquire: s.CanceledAcquireCount(),
	}
}

func (p *Pool) reap(interval time.Duration) {
	defer close(p.reaperDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopReaper:
			return
		case <-ticker.C:
			if n := p.evictIdle(); n > 0 {
				logger.Debug(p.log, "closed idle connections", "count", n)
			}
		}
	}
}

// evictIdle closes connections that sat idle past the idle timeout and
// returns how many it closed.
func (p *Pool) evictIdle() int {
	evicted := 0
	for _, res := range p.res.AcquireAllIdle() {
		if res.IdleDuration() > p.cfg.IdleTimeout {
			res.Destroy()
			evicted++
			continue
		}
		res.ReleaseUnused()
	}
	return evicted
}

// Lease is exclusive use of one pooled connection.
type Lease struct {
	res  *puddle.Resource[Conn]
	done atomic.Bool
}

// Conn returns the leased connection. It must not be used after Release.
func (l *Lease) Conn() Conn {
	return l.res.Value()
}

// Release returns the connection to the idle set. Calls after the first are
// no-ops.
func (l *Lease) Release() {
	if l.done.CompareAndSwap(false, true) {
		l.res.Release()
	}
}

// Destroy closes the connection instead of returning it to the pool.
func (l *Lease) Destroy() {
	if l.done.CompareAndSwap(false, true) {
		l.res.Destroy()
	}
}

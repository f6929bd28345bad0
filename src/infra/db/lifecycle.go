package db

import "context"

// HealthCheck leases a connection, makes one round-trip and releases it.
// The result is reported; nothing is torn down on failure.
func (d *DB) HealthCheck(ctx context.Context) error {
	if err := d.probe(ctx); err != nil {
		d.log.Warn("database health check failed", "kind", string(KindOf(err)), "error", err)
		return err
	}
	return nil
}

func (d *DB) probe(ctx context.Context) error {
	if d.opts.HealthTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.HealthTimeout)
		defer cancel()
	}

	lease, err := d.pool.Acquire(ctx)
	if err != nil {
		return Classify(err)
	}

	if err := lease.Conn().Ping(ctx); err != nil {
		lease.Destroy()
		return Classify(err)
	}
	lease.Release()
	return nil
}

// Shutdown drains the pool and waits up to the drain timeout for in-flight
// leases. An elapsed grace period is logged and still counts as a completed
// shutdown, so Shutdown always returns nil.
func (d *DB) Shutdown(ctx context.Context) error {
	if d.opts.DrainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.DrainTimeout)
		defer cancel()
	}

	if err := d.pool.Drain(ctx); err != nil {
		d.log.Warn("database drain grace period elapsed",
			"leased", d.pool.Stats().Leased,
			"error", err,
		)
		return nil
	}

	d.log.Info("database connection closed")
	return nil
}

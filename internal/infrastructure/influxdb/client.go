package influxdb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/babylog/internal/infrastructure/config"
)

const (
	connectTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second

	defaultBatchSize     = 100
	defaultFlushInterval = 10 * time.Second
)

// Client writes care metrics to InfluxDB. Points are queued by the library's
// batching write API and sent when a batch fills or the flush interval
// passes, so writes never block a request.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI

	// mu guards closed. Writes hold the read lock so Close cannot release
	// the write API underneath them.
	mu     sync.RWMutex
	closed bool

	onError atomic.Pointer[func(err error)]
	written atomic.Uint64
	failed  atomic.Uint64
}

// Stats counts the points queued since Connect and the batches InfluxDB
// rejected or that could not be delivered.
type Stats struct {
	PointsWritten uint64
	FailedBatches uint64
}

// Connect pings the server and prepares the batching write API for
// cfg.Org and cfg.Bucket. Returns ErrDisabled when cfg.Enabled is false.
func Connect(ctx context.Context, cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, clientOptions(cfg))
	if err := ping(ctx, client, connectTimeout); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c := &Client{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
	}
	// The error channel must be taken before the first write.
	go c.drainErrors(c.writeAPI.Errors())

	return c, nil
}

// clientOptions applies batching defaults. Care logs carry minute
// resolution, so points are written with second precision.
func clientOptions(cfg config.InfluxDBConfig) *influxdb2.Options {
	batchSize := uint(defaultBatchSize)
	if cfg.BatchSize > 0 {
		batchSize = uint(cfg.BatchSize)
	}
	flushInterval := defaultFlushInterval
	if cfg.FlushInterval > 0 {
		flushInterval = time.Duration(cfg.FlushInterval) * time.Second
	}

	// #nosec G115 -- flush interval is positive and small
	return influxdb2.DefaultOptions().
		SetBatchSize(batchSize).
		SetFlushInterval(uint(flushInterval.Milliseconds())).
		SetPrecision(time.Second)
}

func ping(ctx context.Context, client influxdb2.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	if !healthy {
		return errors.New("server not healthy")
	}
	return nil
}

func (c *Client) drainErrors(errs <-chan error) {
	for err := range errs {
		c.failed.Add(1)
		if callback := c.onError.Load(); callback != nil {
			(*callback)(err)
		}
	}
}

// writePoint queues p unless the client is closed.
func (c *Client) writePoint(p *write.Point) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return
	}
	c.writeAPI.WritePoint(p)
	c.written.Add(1)
}

// Close sends every queued point and releases the client. Later writes are
// dropped. It is safe to call more than once and on a nil Client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	c.writeAPI.Flush()
	c.client.Close()
	return nil
}

// HealthCheck pings the server. It fails with ErrClosed after Close.
func (c *Client) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()

	if closed {
		return ErrClosed
	}
	if err := ping(ctx, c.client, pingTimeout); err != nil {
		return fmt.Errorf("influxdb health check failed: %w", err)
	}
	return nil
}

// Stats returns the write counters.
func (c *Client) Stats() Stats {
	return Stats{
		PointsWritten: c.written.Load(),
		FailedBatches: c.failed.Load(),
	}
}

// SetOnError sets a callback for batches that fail asynchronously.
func (c *Client) SetOnError(callback func(err error)) {
	c.onError.Store(&callback)
}

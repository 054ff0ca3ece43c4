package infinity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/infinity-go/internal/logging"
	"github.com/hugr-lab/infinity-go/internal/recovery"
	"github.com/hugr-lab/infinity-go/result"
	"github.com/hugr-lab/infinity-go/translate"
	"github.com/hugr-lab/infinity-go/wire"
)

// Transport delivers a select request to the engine and returns its response.
// Implementations MUST be goroutine-safe and honor ctx cancellation.
type Transport interface {
	Select(ctx context.Context, req *wire.SelectRequest) (*wire.Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req *wire.SelectRequest) (*wire.Response, error)

// Select implements Transport.
func (f TransportFunc) Select(ctx context.Context, req *wire.SelectRequest) (*wire.Response, error) {
	return f(ctx, req)
}

// Client builds requests from queries, sends them through a Transport and
// decodes the responses. Safe for concurrent use.
type Client struct {
	transport  Transport
	translator *translate.Translator
	decoder    *result.Decoder
	allocator  memory.Allocator
	logger     *slog.Logger
	closeOnce  sync.Once
}

// NewClient creates a Client.
// Returns error if config is invalid (e.g., nil Transport).
//
// Example:
//
//	client, err := infinity.NewClient(infinity.ClientConfig{
//	    Transport: transport,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//	res, err := client.Database("default").Table("items").Search().
//	    Output("*", "c2").
//	    Filter("c1 > 3 and c2 < 5.0").
//	    Limit(10).
//	    ToResult(ctx)
func NewClient(config ClientConfig) (*Client, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	logger := logging.Resolve(config.Logger, config.LogLevel)

	allocator := config.Allocator
	if allocator == nil {
		allocator = memory.DefaultAllocator
	}

	decoder, err := result.NewDecoder(&result.Options{
		Logger:        logger,
		MaxColumnSize: config.MaxColumnSize,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		transport: config.Transport,
		translator: translate.New(&translate.Options{
			Operators: config.Operators,
			Parser:    config.Parser,
		}),
		decoder:   decoder,
		allocator: allocator,
		logger:    logger,
	}, nil
}

// Close releases client resources. It does not close the Transport.
// Calling Close more than once is a no-op.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		recovery.Run(c.logger, "close decoder", func() {
			c.decoder.Close()
		})
	})
}

// Database returns a handle to a database. No request is made.
func (c *Client) Database(name string) *Database {
	return &Database{client: c, name: name}
}

// Database is a named database on the engine.
type Database struct {
	client *Client
	name   string
}

// Name returns the database name.
func (d *Database) Name() string { return d.name }

// Table returns a handle to a table of the database. No request is made.
func (d *Database) Table(name string) *Table {
	return &Table{client: d.client, db: d.name, name: name}
}

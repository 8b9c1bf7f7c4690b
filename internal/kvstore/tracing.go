package kvstore

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/mrlokans/linebook/internal/kvstore"

type tracedClient struct {
	next    Client
	tracer  trace.Tracer
	backend string
}

// WithTracing wraps client so every store call runs inside a span named
// "kvstore.<Op>". Spans go to the globally registered tracer provider.
func WithTracing(client Client, backend string) Client {
	return &tracedClient{
		next:    client,
		tracer:  otel.Tracer(tracerName),
		backend: backend,
	}
}

func (c *tracedClient) start(ctx context.Context, op, table string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("kv.backend", c.backend),
		attribute.String("kv.table", table),
	)
	return c.tracer.Start(ctx, "kvstore."+op, trace.WithAttributes(attrs...))
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (c *tracedClient) Get(ctx context.Context, table string, key Key) (Item, error) {
	ctx, span := c.start(ctx, "Get", table, attribute.String("kv.partition", key.Partition))
	item, err := c.next.Get(ctx, table, key)
	end(span, err)
	return item, err
}

func (c *tracedClient) Put(ctx context.Context, table string, item Item) error {
	ctx, span := c.start(ctx, "Put", table, attribute.String("kv.partition", item.Key.Partition))
	err := c.next.Put(ctx, table, item)
	end(span, err)
	return err
}

func (c *tracedClient) Delete(ctx context.Context, table string, key Key) error {
	ctx, span := c.start(ctx, "Delete", table, attribute.String("kv.partition", key.Partition))
	err := c.next.Delete(ctx, table, key)
	end(span, err)
	return err
}

func (c *tracedClient) Query(ctx context.Context, table, partition string, opts QueryOptions) ([]Item, error) {
	ctx, span := c.start(ctx, "Query", table,
		attribute.String("kv.partition", partition),
		attribute.Int("kv.limit", opts.Limit),
		attribute.Bool("kv.descending", opts.Descending),
	)
	items, err := c.next.Query(ctx, table, partition, opts)
	span.SetAttributes(attribute.Int("kv.items", len(items)))
	end(span, err)
	return items, err
}

func (c *tracedClient) BatchWrite(ctx context.Context, table string, reqs []WriteRequest) error {
	ctx, span := c.start(ctx, "BatchWrite", table, attribute.Int("kv.requests", len(reqs)))
	err := c.next.BatchWrite(ctx, table, reqs)
	end(span, err)
	return err
}

func (c *tracedClient) Increment(ctx context.Context, table string, key Key, field string, delta int) error {
	ctx, span := c.start(ctx, "Increment", table,
		attribute.String("kv.partition", key.Partition),
		attribute.String("kv.field", field),
		attribute.Int("kv.delta", delta),
	)
	err := c.next.Increment(ctx, table, key, field, delta)
	end(span, err)
	return err
}

func (c *tracedClient) Ping(ctx context.Context) error {
	ctx, span := c.start(ctx, "Ping", "")
	err := c.next.Ping(ctx)
	end(span, err)
	return err
}

func (c *tracedClient) Close() error {
	return c.next.Close()
}

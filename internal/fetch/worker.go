package fetch

import (
	"context"

	"go.uber.org/zap"

	"lazyddb/internal/dynamo"
	"lazyddb/internal/models"
)

// Worker is the single consumer of the request channel and single producer
// of the response channel. It processes one request at a time, in arrival
// order, and terminates when the request channel closes or the context is
// canceled.
type Worker struct {
	client    *dynamo.Client
	requests  <-chan Request
	responses chan<- Response
	log       *zap.Logger
}

// NewWorker wires a worker to its channel pair.
func NewWorker(client *dynamo.Client, requests <-chan Request, responses chan<- Response, log *zap.Logger) *Worker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{client: client, requests: requests, responses: responses, log: log}
}

// Run is the worker loop. Intended to be spawned as a goroutine before the
// interactive loop starts.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-w.requests:
			if !ok {
				return
			}
			resp := w.handle(ctx, req)
			select {
			case w.responses <- resp:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (w *Worker) handle(ctx context.Context, req Request) Response {
	switch req := req.(type) {
	case ListTablesRequest:
		tables, err := w.client.ListTables(ctx)
		if err != nil {
			w.log.Warn("list tables failed", zap.Error(err))
			tables = nil
		}
		return TablesResponse{Tables: tables}

	case ScanPageRequest:
		page, err := w.client.ScanPage(ctx, req.Table, req.Cursor)
		if err != nil {
			w.log.Warn("scan page failed",
				zap.String("table", req.Table),
				zap.Bool("continuation", req.Continuation),
				zap.Error(err))
			page = dynamo.Page{}
		}
		return PageResponse{
			Table:        req.Table,
			Generation:   req.Generation,
			Continuation: req.Continuation,
			Records:      page.Records,
			Cursor:       page.Cursor,
			HasMore:      page.HasMore,
		}

	case CountRequest:
		count, err := w.client.ApproximateCount(ctx, req.Table)
		if err != nil {
			w.log.Warn("approximate count failed", zap.String("table", req.Table), zap.Error(err))
			count = 0
		}
		return CountResponse{Table: req.Table, Count: count}

	case KeySchemaRequest:
		schema, err := w.client.KeySchema(ctx, req.Table)
		if err != nil {
			w.log.Warn("key schema discovery failed", zap.String("table", req.Table), zap.Error(err))
			schema = models.KeySchema{}
		}
		return KeySchemaResponse{Table: req.Table, Schema: schema}

	case QueryRequest:
		records, err := w.client.QueryByKey(ctx, req.Table, req.Partition, req.PartitionValue, req.Sort, req.SortValue)
		if err != nil {
			w.log.Warn("key query failed", zap.String("table", req.Table), zap.Error(err))
			records = nil
		}
		return QueryResponse{Table: req.Table, Generation: req.Generation, Records: records}

	default:
		// Unreachable: the Request sum is closed within this package.
		w.log.Error("unknown fetch request")
		return nil
	}
}

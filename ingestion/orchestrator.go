package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docqa/ai"
	"github.com/poiesic/docqa/blob"
	"github.com/poiesic/docqa/core"
	"github.com/poiesic/docqa/storage"
	"github.com/poiesic/docqa/vectorstore"
)

// Orchestrator processes uploaded documents asynchronously.
// Enqueue hands a document to a bounded worker pool; the worker claims
// it, chunks it, embeds the chunks, and commits the vectors.
type Orchestrator struct {
	documents   storage.DocumentRepository
	blobs       blob.Store
	embedder    ai.Embedder
	collections *vectorstore.Manager
	chunker     *Chunker
	pool        *ants.Pool
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
	inflight    sync.WaitGroup
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(o *Orchestrator) error {
		if size < 1 {
			size = 1
		}

		if o.pool != nil {
			o.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		o.pool = pool
		return nil
	}
}

// WithChunking sets the chunk size and overlap.
// Defaults are DefaultChunkSize and DefaultChunkOverlap.
func WithChunking(size, overlap int) Option {
	return func(o *Orchestrator) error {
		chunker, err := NewChunker(size, overlap)
		if err != nil {
			return err
		}
		o.chunker = chunker
		return nil
	}
}

// WithRetry sets the per-chunk embedding retry attempts and base delay.
// Default is 3 attempts with a 500ms base delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(o *Orchestrator) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		o.maxAttempts = maxAttempts
		o.baseDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates a new ingestion orchestrator.
func NewOrchestrator(
	documents storage.DocumentRepository,
	blobs blob.Store,
	embedder ai.Embedder,
	collections *vectorstore.Manager,
	opts ...Option,
) (*Orchestrator, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if blobs == nil {
		return nil, ErrBlobStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if collections == nil {
		return nil, ErrManagerRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	chunker, err := NewChunker(DefaultChunkSize, DefaultChunkOverlap)
	if err != nil {
		pool.Release()
		return nil, err
	}

	o := &Orchestrator{
		documents:   documents,
		blobs:       blobs,
		embedder:    embedder,
		collections: collections,
		chunker:     chunker,
		pool:        pool,
		maxAttempts: 3,
		baseDelay:   500 * time.Millisecond,
		logger:      slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(o); optErr != nil {
			o.Release()
			return nil, optErr
		}
	}

	return o, nil
}

// Enqueue submits a document for asynchronous processing. It returns as
// soon as the work is handed to the pool; outcomes are recorded on the
// document record. Enqueueing the same document twice is harmless, the
// claim step lets exactly one worker through.
func (o *Orchestrator) Enqueue(documentID core.ID) error {
	o.inflight.Add(1)
	err := o.pool.Submit(func() {
		defer o.inflight.Done()
		o.process(context.Background(), documentID)
	})
	if err != nil {
		o.inflight.Done()
		return err
	}
	return nil
}

// Wait blocks until every enqueued document has been processed.
func (o *Orchestrator) Wait() {
	o.inflight.Wait()
}

// Release stops the worker pool. Documents already submitted are
// abandoned mid-flight only if the process exits; call Wait first for a
// clean drain.
func (o *Orchestrator) Release() {
	if o.pool != nil {
		o.pool.Release()
	}
}

// process runs the full ingestion workflow for one document.
func (o *Orchestrator) process(ctx context.Context, documentID core.ID) {
	claimed, err := o.documents.ClaimDocument(ctx, documentID)
	if err != nil {
		o.logger.Error("claiming document", "document", documentID, "err", err)
		return
	}
	if !claimed {
		o.logger.Debug("document already claimed", "document", documentID)
		return
	}

	doc, err := o.documents.GetDocument(ctx, documentID)
	if err != nil {
		o.logger.Error("loading claimed document", "document", documentID, "err", err)
		return
	}

	if err := o.ingest(ctx, doc); err != nil {
		o.logger.Warn("document failed", "document", documentID, "filename", doc.Filename, "err", err)
		o.setStatus(ctx, documentID, core.StatusFailed, err.Error())
		return
	}

	o.setStatus(ctx, documentID, core.StatusProcessed, "")
	o.logger.Info("document processed", "document", documentID, "filename", doc.Filename)
}

// ingest runs chunking, embedding and vector commit. Any returned error
// fails the document.
func (o *Orchestrator) ingest(ctx context.Context, doc *core.Document) error {
	content, err := o.loadBlob(ctx, doc.BlobLocator)
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}

	chunks, err := o.chunker.Chunk(doc.Filename, content)
	if err != nil {
		return fmt.Errorf("chunking: %w", err)
	}
	if len(chunks) == 0 {
		return ErrNoContent
	}

	// Embed chunk by chunk. A chunk whose retries are exhausted is
	// skipped, never stored with a stand-in vector.
	records := make([]*core.ChunkRecord, 0, len(chunks))
	for i, chunk := range chunks {
		var vector []float32
		err := RetryWithBackoff(ctx, func() error {
			var embedErr error
			vector, embedErr = o.embedder.EmbedText(ctx, chunk)
			return embedErr
		}, o.maxAttempts, o.baseDelay)
		if err != nil {
			o.logger.Warn("skipping chunk after failed embedding",
				"document", doc.Id, "chunk", i, "err", err)
			continue
		}

		records = append(records, &core.ChunkRecord{
			DocumentId: doc.Id,
			Content:    chunk,
			Vector:     vector,
		})
	}
	if len(records) == 0 {
		return ErrNoUsableVectors
	}

	// The first usable vector's width is the measured dimension the
	// collection is reconciled against.
	if _, err := o.collections.Ensure(ctx, doc.UserId, len(records[0].Vector)); err != nil {
		return fmt.Errorf("reconciling collection: %w", err)
	}

	if err := o.collections.Insert(ctx, doc.UserId, records); err != nil {
		return fmt.Errorf("storing vectors: %w", err)
	}

	o.logger.Debug("vectors committed",
		"document", doc.Id, "chunks", len(chunks), "embedded", len(records))
	return nil
}

func (o *Orchestrator) loadBlob(ctx context.Context, locator string) (string, error) {
	r, err := o.blobs.Open(ctx, locator)
	if err != nil {
		return "", err
	}
	defer r.Close()

	content, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// setStatus records a terminal outcome; a failure here is logged, there
// is nowhere else to surface it.
func (o *Orchestrator) setStatus(ctx context.Context, documentID core.ID, status core.DocumentStatus, errMsg string) {
	if err := o.documents.SetDocumentStatus(ctx, documentID, status, errMsg); err != nil {
		o.logger.Error("recording document status",
			"document", documentID, "status", status, "err", err)
	}
}

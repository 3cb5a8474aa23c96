package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/custodia-labs/docsift/internal/connectors/filesystem"
	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driven"
	"github.com/custodia-labs/docsift/internal/core/ports/driving"
	"github.com/custodia-labs/docsift/internal/keywords"
	"github.com/custodia-labs/docsift/internal/logger"
)

// Verify interface compliance.
var _ driving.ScanOrchestrator = (*ScanOrchestrator)(nil)

// Scan defaults.
const (
	DefaultFileTimeout         = 120 * time.Second
	DefaultSummaryLength       = 300
	DefaultMaxKeywords         = 20
	DefaultMinKeywordFrequency = 2

	fixedLayoutSummary = "Automatically identified as an OFD e-invoice file"
	maxSessionErrors   = 500
)

// KeywordSuggester supplies keywords when rule extraction finds none.
type KeywordSuggester interface {
	Keywords(ctx context.Context, content string, count int) []string
}

// ScanConfig tunes the orchestrator.
type ScanConfig struct {
	FileTimeout         time.Duration
	SummaryLength       int
	MaxKeywords         int
	MinKeywordFrequency int
}

// DefaultScanConfig returns the standard limits.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		FileTimeout:         DefaultFileTimeout,
		SummaryLength:       DefaultSummaryLength,
		MaxKeywords:         DefaultMaxKeywords,
		MinKeywordFrequency: DefaultMinKeywordFrequency,
	}
}

// ScanDeps groups the collaborators of a ScanOrchestrator.
// Index, Vectors and Keywords are optional.
type ScanDeps struct {
	Parsers    driven.ParserRegistry
	Documents  driven.DocumentStore
	Categories driven.CategoryStore
	Scans      driven.ScanStore
	Classifier driven.Classifier
	Summariser driven.Summariser
	Index      driven.FullTextIndex
	Vectors    driven.VectorStore
	Keywords   KeywordSuggester
}

// ScanOrchestrator walks a root path and ingests new or changed files.
// At most one session runs at a time.
type ScanOrchestrator struct {
	deps ScanDeps
	cfg  ScanConfig
	now  func() time.Time

	mu     sync.Mutex
	active *domain.ScanSession
}

// NewScanOrchestrator creates a scan orchestrator. Zero config fields
// take the defaults.
func NewScanOrchestrator(deps ScanDeps, cfg ScanConfig) *ScanOrchestrator {
	def := DefaultScanConfig()
	if cfg.FileTimeout <= 0 {
		cfg.FileTimeout = def.FileTimeout
	}
	if cfg.SummaryLength <= 0 {
		cfg.SummaryLength = def.SummaryLength
	}
	if cfg.MaxKeywords <= 0 {
		cfg.MaxKeywords = def.MaxKeywords
	}
	if cfg.MinKeywordFrequency <= 0 {
		cfg.MinKeywordFrequency = def.MinKeywordFrequency
	}
	return &ScanOrchestrator{deps: deps, cfg: cfg, now: time.Now}
}

// Status returns a snapshot of the active session, or nil when idle.
func (o *ScanOrchestrator) Status() *domain.ScanSession {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active == nil {
		return nil
	}
	return o.active.Clone()
}

// Scan runs one session over root.
func (o *ScanOrchestrator) Scan(
	ctx context.Context,
	root string,
	opts domain.ScanOptions,
	progress driving.ProgressFunc,
) (*domain.ScanSession, error) {
	session := &domain.ScanSession{
		ID:        uuid.NewString(),
		RootPath:  root,
		Status:    domain.ScanRunning,
		StartedAt: o.now(),
	}

	o.mu.Lock()
	if o.active != nil {
		o.mu.Unlock()
		return nil, domain.ErrScanInProgress
	}
	o.active = session
	o.mu.Unlock()
	defer o.release()

	if err := o.deps.Scans.Save(ctx, session.Clone()); err != nil {
		return nil, fmt.Errorf("saving scan session: %w", err)
	}

	logger.Info("Scanning %s (session %s)", root, session.ID)
	run := &scanRun{o: o, session: session, opts: opts, progress: progress}
	if err := o.deps.Categories.Sync(ctx, o.deps.Classifier.Categories()); err != nil {
		return o.finish(ctx, run, fmt.Errorf("syncing categories: %w", err))
	}
	run.index = o.prepareIndex(ctx)

	run.report(domain.PhaseScanning, "")
	paths, err := filesystem.Walk(ctx, root, filesystem.WalkOptions{
		IncludeHidden: opts.IncludeHidden,
		Exclude:       opts.Exclude,
		Accept:        o.acceptFunc(opts.FileTypes),
	})
	if err != nil {
		return o.finish(ctx, run, err)
	}

	fingerprints, err := o.deps.Documents.Fingerprints(ctx)
	if err != nil {
		return o.finish(ctx, run, fmt.Errorf("loading fingerprints: %w", err))
	}

	o.update(func() { session.TotalFiles = len(paths) })
	logger.Debug("Found %d candidate files under %s", len(paths), root)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return o.finish(ctx, run, fmt.Errorf("scan cancelled: %w", err))
		}
		run.report(domain.PhaseProcessing, path)

		var fp *domain.FileFingerprint
		if f, ok := fingerprints[path]; ok {
			fp = &f
		}
		outcome, err := run.processWithTimeout(ctx, path, fp)
		if err != nil && ctx.Err() != nil && !errors.Is(err, domain.ErrTimeout) {
			return o.finish(ctx, run, fmt.Errorf("scan cancelled: %w", ctx.Err()))
		}
		o.record(path, outcome, err)
	}

	return o.finish(ctx, run, nil)
}

// prepareIndex configures the full-text index once per session. A session
// whose index is unreachable skips index writes; reindex repairs it later.
func (o *ScanOrchestrator) prepareIndex(ctx context.Context) driven.FullTextIndex {
	if o.deps.Index == nil {
		return nil
	}
	if err := o.deps.Index.Health(ctx); err != nil {
		logger.Warn("Full-text index unavailable, documents will not be indexed: %v", err)
		return nil
	}
	if err := o.deps.Index.Configure(ctx); err != nil {
		logger.Warn("Failed to configure full-text index: %v", err)
	}
	return o.deps.Index
}

func (o *ScanOrchestrator) acceptFunc(types []domain.FileType) func(string) bool {
	allowed := make(map[domain.FileType]bool, len(types))
	for _, ft := range types {
		allowed[ft] = true
	}
	return func(path string) bool {
		ft, ok := o.deps.Parsers.FileType(path)
		if !ok {
			return false
		}
		return len(allowed) == 0 || allowed[ft]
	}
}

func (o *ScanOrchestrator) record(path string, outcome domain.FileOutcome, err error) {
	o.update(func() {
		s := o.active
		s.ProcessedFiles++
		switch outcome {
		case domain.OutcomeNew:
			s.NewFiles++
		case domain.OutcomeUpdated:
			s.UpdatedFiles++
		case domain.OutcomeUnchanged:
			s.SkippedFiles++
		case domain.OutcomeFailed:
			if len(s.Errors) < maxSessionErrors {
				s.Errors = append(s.Errors, fmt.Sprintf("%s: %v", path, err))
			}
		}
	})
	if err != nil {
		logger.Warn("Failed to process %s: %v", path, err)
	}
}

// finish persists the terminal state. It survives cancellation of ctx so
// an interrupted session is still recorded as failed.
func (o *ScanOrchestrator) finish(ctx context.Context, run *scanRun, cause error) (*domain.ScanSession, error) {
	completed := o.now()
	phase := domain.PhaseCompleted
	o.update(func() {
		run.session.CompletedAt = &completed
		run.session.Status = domain.ScanCompleted
		if cause != nil {
			run.session.Status = domain.ScanFailed
			run.session.Errors = append(run.session.Errors, cause.Error())
			phase = domain.PhaseFailed
		}
	})

	final := o.Status()
	if err := o.deps.Scans.Save(context.WithoutCancel(ctx), final); err != nil {
		logger.Error("Failed to save scan session %s: %v", final.ID, err)
	}
	run.report(phase, "")

	if cause != nil {
		logger.Warn("Scan %s failed: %v", final.ID, cause)
		return final, cause
	}
	logger.Info("Scan %s completed: %d processed, %d new, %d updated, %d unchanged, %d errors",
		final.ID, final.ProcessedFiles, final.NewFiles, final.UpdatedFiles, final.SkippedFiles, len(final.Errors))
	return final, nil
}

func (o *ScanOrchestrator) update(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn()
}

func (o *ScanOrchestrator) release() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.active = nil
}

// scanRun holds per-session state.
type scanRun struct {
	o        *ScanOrchestrator
	session  *domain.ScanSession
	opts     domain.ScanOptions
	progress driving.ProgressFunc
	index    driven.FullTextIndex
}

func (r *scanRun) report(phase domain.ScanPhase, current string) {
	if r.progress == nil {
		return
	}
	snap := r.o.Status()
	if snap == nil {
		snap = r.session.Clone()
	}
	r.progress(domain.ScanProgress{
		SessionID:   snap.ID,
		Phase:       phase,
		CurrentFile: current,
		Total:       snap.TotalFiles,
		Processed:   snap.ProcessedFiles,
		New:         snap.NewFiles,
		Updated:     snap.UpdatedFiles,
		Errors:      len(snap.Errors),
	})
}

type fileResult struct {
	outcome domain.FileOutcome
	err     error
}

// processWithTimeout bounds one file. Parsers that ignore ctx keep running
// in the background but cannot persist once the deadline has passed.
func (r *scanRun) processWithTimeout(
	ctx context.Context,
	path string,
	fp *domain.FileFingerprint,
) (domain.FileOutcome, error) {
	timeout := r.o.cfg.FileTimeout
	if r.opts.Timeout > 0 {
		timeout = r.opts.Timeout
	}
	fileCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan fileResult, 1)
	go func() {
		outcome, err := r.processFile(fileCtx, path, fp)
		done <- fileResult{outcome: outcome, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && errors.Is(fileCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return domain.OutcomeFailed, fmt.Errorf("%w after %s", domain.ErrTimeout, timeout)
		}
		return res.outcome, res.err
	case <-fileCtx.Done():
		if ctx.Err() != nil {
			return domain.OutcomeFailed, ctx.Err()
		}
		return domain.OutcomeFailed, fmt.Errorf("%w after %s", domain.ErrTimeout, timeout)
	}
}

func (r *scanRun) processFile(
	ctx context.Context,
	path string,
	fp *domain.FileFingerprint,
) (domain.FileOutcome, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.OutcomeFailed, fmt.Errorf("stat: %w", err)
	}
	hash, err := hashFile(path)
	if err != nil {
		return domain.OutcomeFailed, fmt.Errorf("hashing: %w", err)
	}
	if fp != nil && fp.ContentHash == hash {
		return domain.OutcomeUnchanged, nil
	}

	ft, ok := r.o.deps.Parsers.FileType(path)
	if !ok {
		return domain.OutcomeFailed, domain.ErrUnsupportedType
	}

	now := r.o.now()
	rec := &domain.DocumentRecord{Document: domain.Document{
		ID:          uuid.NewString(),
		FilePath:    path,
		FileType:    ft,
		FileSize:    info.Size(),
		ContentHash: hash,
		CreatedAt:   now,
		ModifiedAt:  info.ModTime(),
		IndexedAt:   now,
	}}
	outcome := domain.OutcomeNew
	if fp != nil {
		rec.Document.ID = fp.DocumentID
		rec.Document.CreatedAt = fp.CreatedAt
		outcome = domain.OutcomeUpdated
	}

	if ft == domain.FileTypeFixedLayout {
		r.fixedLayout(ctx, rec)
	} else if err := r.analyse(ctx, path, rec); err != nil {
		return domain.OutcomeFailed, err
	}

	if err := ctx.Err(); err != nil {
		return domain.OutcomeFailed, err
	}
	if err := r.o.deps.Documents.SaveDocument(ctx, rec); err != nil {
		return domain.OutcomeFailed, fmt.Errorf("saving document: %w", err)
	}

	r.report(domain.PhaseIndexing, path)
	r.project(ctx, rec)
	return outcome, nil
}

// fixedLayout records an OFD invoice without extracting text.
func (r *scanRun) fixedLayout(ctx context.Context, rec *domain.DocumentRecord) {
	rec.Document.Title = domain.TitleFromPath(rec.Document.FilePath)
	rec.Document.Summary = fixedLayoutSummary
	rec.Document.Metadata = map[string]any{"format": "OFD"}
	rec.Categories = r.o.deps.Classifier.Assign(ctx, domain.FileTypeFixedLayout, rec.Document.Title, "")
}

func (r *scanRun) analyse(ctx context.Context, path string, rec *domain.DocumentRecord) error {
	parsed, err := r.o.deps.Parsers.Parse(ctx, path)
	if err != nil {
		return fmt.Errorf("parsing: %w", err)
	}

	doc := &rec.Document
	doc.Title = parsed.Title
	if doc.Title == "" {
		doc.Title = domain.TitleFromPath(path)
	}
	doc.Content = parsed.Content
	doc.Metadata = parsed.Metadata

	cfg := r.o.cfg
	doc.Summary = r.o.deps.Summariser.Summarise(ctx, doc.Content, cfg.SummaryLength)
	rec.Categories = r.o.deps.Classifier.Assign(ctx, doc.FileType, doc.Title, doc.Content)
	rec.Keywords = keywords.Extract(doc.Content, cfg.MaxKeywords, cfg.MinKeywordFrequency)

	if len(rec.Keywords) == 0 && r.o.deps.Keywords != nil && doc.Content != "" {
		for _, kw := range r.o.deps.Keywords.Keywords(ctx, doc.Content, cfg.MaxKeywords) {
			rec.Keywords = append(rec.Keywords, domain.Keyword{Keyword: kw, Weight: 1, Frequency: 1})
		}
	}
	return nil
}

// project pushes the record to the derived stores. Failures are logged;
// the relational row stays authoritative.
func (r *scanRun) project(ctx context.Context, rec *domain.DocumentRecord) {
	if r.index != nil {
		if err := r.index.Upsert(ctx, toIndexDocument(rec)); err != nil {
			logger.Warn("Failed to index %s: %v", rec.Document.FilePath, err)
		}
	}
	if r.o.deps.Vectors != nil {
		item := toVectorItem(rec)
		if err := r.o.deps.Vectors.Add(ctx, item.ID, item.Text, item.Metadata); err != nil {
			logger.Warn("Failed to embed %s: %v", rec.Document.FilePath, err)
		}
	}
}

// hashFile returns the hex xxhash64 digest of the file bytes.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// toIndexDocument projects a record into the full-text index shape.
func toIndexDocument(rec *domain.DocumentRecord) driven.IndexDocument {
	doc := rec.Document
	return driven.IndexDocument{
		ID:            doc.ID,
		Title:         doc.Title,
		Content:       doc.Content,
		Summary:       doc.Summary,
		FileType:      string(doc.FileType),
		FilePath:      doc.FilePath,
		Categories:    rec.CategoryIDs(),
		CategoryNames: rec.CategoryNames(),
		Keywords:      rec.KeywordTexts(),
		CreatedAt:     doc.CreatedAt.UnixMilli(),
		ModifiedAt:    doc.ModifiedAt.UnixMilli(),
		FileSize:      doc.FileSize,
	}
}

// toVectorItem builds the embedding input for a record.
func toVectorItem(rec *domain.DocumentRecord) driven.VectorItem {
	doc := rec.Document
	return driven.VectorItem{
		ID:   doc.ID,
		Text: doc.Title + " " + doc.Content,
		Metadata: map[string]string{
			"title":    doc.Title,
			"filePath": doc.FilePath,
			"fileType": string(doc.FileType),
		},
	}
}

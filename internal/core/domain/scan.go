package domain

import "time"

// ScanStatus is the lifecycle state of a scan session.
type ScanStatus string

// Scan statuses. A session is terminal once it leaves running.
const (
	ScanRunning   ScanStatus = "running"
	ScanCompleted ScanStatus = "completed"
	ScanFailed    ScanStatus = "failed"
)

// IsTerminal returns true for completed and failed sessions.
func (s ScanStatus) IsTerminal() bool {
	return s == ScanCompleted || s == ScanFailed
}

// ScanPhase is the orchestrator's current activity within a session.
type ScanPhase string

// Scan phases.
const (
	PhaseScanning   ScanPhase = "scanning"
	PhaseProcessing ScanPhase = "processing"
	PhaseIndexing   ScanPhase = "indexing"
	PhaseCompleted  ScanPhase = "completed"
	PhaseFailed     ScanPhase = "failed"
)

// ScanSession is one run of the orchestrator over a root path.
type ScanSession struct {
	ID             string     `json:"id"`
	RootPath       string     `json:"rootPath"`
	Status         ScanStatus `json:"status"`
	StartedAt      time.Time  `json:"startedAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	TotalFiles     int        `json:"totalFiles"`
	ProcessedFiles int        `json:"processedFiles"`
	NewFiles       int        `json:"newFiles"`
	UpdatedFiles   int        `json:"updatedFiles"`
	SkippedFiles   int        `json:"skippedFiles"`
	Errors         []string   `json:"errors"`
}

// Clone returns a deep copy safe to hand to other goroutines.
func (s *ScanSession) Clone() *ScanSession {
	c := *s
	c.Errors = append([]string(nil), s.Errors...)
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// ScanProgress is reported to progress listeners while a scan runs.
type ScanProgress struct {
	SessionID   string    `json:"sessionId"`
	Phase       ScanPhase `json:"phase"`
	CurrentFile string    `json:"currentFile,omitempty"`
	Total       int       `json:"total"`
	Processed   int       `json:"processed"`
	New         int       `json:"new"`
	Updated     int       `json:"updated"`
	Errors      int       `json:"errors"`
}

// Percent returns processed/total in [0, 1].
func (p ScanProgress) Percent() float64 {
	if p.Total == 0 {
		if p.Phase == PhaseCompleted {
			return 1
		}
		return 0
	}
	return float64(p.Processed) / float64(p.Total)
}

// ScanOptions tunes a single scan.
type ScanOptions struct {
	// IncludeHidden disables skipping of dot entries.
	IncludeHidden bool `yaml:"include_hidden"`

	// Exclude holds glob patterns matched against base names.
	Exclude []string `yaml:"exclude"`

	// FileTypes restricts the scan to a subset of supported types.
	FileTypes []FileType `yaml:"file_types"`

	// Timeout overrides the per-file processing ceiling.
	Timeout time.Duration `yaml:"timeout"`
}

// FileOutcome is the result of processing one file.
type FileOutcome string

// File outcomes.
const (
	OutcomeNew       FileOutcome = "new"
	OutcomeUpdated   FileOutcome = "updated"
	OutcomeUnchanged FileOutcome = "unchanged"
	OutcomeFailed    FileOutcome = "failed"
)

// CorpusStats summarises the indexed corpus.
type CorpusStats struct {
	Documents       int              `json:"documents"`
	CategoriesInUse int              `json:"categoriesInUse"`
	Keywords        int              `json:"keywords"`
	StorageBytes    int64            `json:"storageBytes"`
	ByFileType      map[FileType]int `json:"byFileType"`
	Vectors         int              `json:"vectors"`
	LastScan        *ScanSession     `json:"lastScan,omitempty"`
}

// VectorEntry is a document embedding held by the vector store.
type VectorEntry struct {
	ID       string            `json:"id"`
	Vector   []float32         `json:"vector"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// VectorMatch is a semantic search hit.
type VectorMatch struct {
	ID         string            `json:"id"`
	Similarity float64           `json:"similarity"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// VectorStats describes the vector store.
type VectorStats struct {
	TotalVectors int   `json:"totalVectors"`
	Dimension    int   `json:"dimension"`
	StorageBytes int64 `json:"storageBytes"`
}

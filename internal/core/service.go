package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/csvimport/internal/extract"
	"github.com/JonMunkholm/csvimport/internal/logging"
	"github.com/JonMunkholm/csvimport/internal/store"
	"github.com/google/uuid"
)

// DefaultArtifactPath is where the extracted CSV text is copied before loading.
const DefaultArtifactPath = "uploaded.csv"

var errNothingToImport = errors.New("nothing to import")

// ServiceConfig configures a Service.
type ServiceConfig struct {
	// Table is the destination table; empty selects DefaultTable.
	Table string
	// ArtifactPath receives a copy of the extracted CSV text. Empty disables it.
	ArtifactPath string
	// MaxWaitTime bounds how long Import waits for a running import to finish.
	MaxWaitTime time.Duration
}

// Service runs imports end to end: decode, extract, save the artifact, load.
type Service struct {
	loader       *Loader
	limiter      *ImportLimiter
	artifactPath string
}

// NewService creates a new Service writing into db.
func NewService(db *sql.DB, dialect store.Dialect, cfg ServiceConfig) (*Service, error) {
	loader, err := NewLoader(db, dialect, LoaderConfig{Table: cfg.Table})
	if err != nil {
		return nil, err
	}

	return &Service{
		loader:       loader,
		limiter:      NewImportLimiter(cfg.MaxWaitTime),
		artifactPath: cfg.ArtifactPath,
	}, nil
}

// Table returns the destination table name.
func (s *Service) Table() string { return s.loader.Table() }

// Import replaces the destination table with the records in req.
//
// Imports are serialized. If another import holds the slot for longer than
// MaxWaitTime, Import returns ErrImportBusy without touching the table.
// Any other failure is an *ImportError. Bodies with no CSV text, and raw bodies
// cut off before their file content, are rejected before the artifact is
// written or the table is reset.
func (s *Service) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	importID := uuid.New().String()
	logger := logging.WithFields(ctx,
		"import_id", importID,
		"table", s.loader.Table(),
		"source", req.Source,
	)
	if ip := ClientIPFromContext(ctx); ip != "" {
		logger = logger.With("client_ip", ip)
	}
	if ua := UserAgentFromContext(ctx); ua != "" {
		logger = logger.With("user_agent", ua)
	}

	if len(req.Body) == 0 {
		return nil, &ImportError{Kind: KindEmptyBody, Err: errNothingToImport}
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		logger.Warn("import rejected", "error", err)
		return nil, err
	}
	defer s.limiter.Release()

	start := time.Now()
	logger.Info("import started", "bytes", len(req.Body), "raw", req.Raw)

	text, err := extract.Decode(req.Body, req.ContentType)
	if err != nil {
		logger.Warn("import failed", "error", err)
		return nil, &ImportError{Kind: KindDecode, Op: "decode body", Err: err}
	}
	if req.Raw {
		text, err = extract.Extract([]byte(text))
		if err != nil {
			logger.Warn("import failed", "error", err)
			return nil, &ImportError{Kind: KindTruncated, Op: "extract file", Err: err}
		}
	}
	if strings.TrimSpace(text) == "" {
		logger.Warn("import failed", "error", errNothingToImport)
		return nil, &ImportError{Kind: KindEmptyBody, Err: errNothingToImport}
	}

	if err := s.writeArtifact(text); err != nil {
		logger.Error("import failed", "error", err)
		return nil, err
	}

	res, err := s.loader.ResetAndLoad(ctx, text)
	if err != nil {
		logger.Error("import failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	elapsed := time.Since(start)
	logger.Info("import completed",
		"inserted", res.Inserted,
		"skipped", res.Skipped,
		"duration_ms", elapsed.Milliseconds(),
	)

	return &ImportResult{
		ImportID: importID,
		Table:    s.loader.Table(),
		Inserted: res.Inserted,
		Duration: elapsed,
	}, nil
}

func (s *Service) writeArtifact(text string) error {
	if s.artifactPath == "" {
		return nil
	}
	if dir := filepath.Dir(s.artifactPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &ImportError{Kind: KindArtifact, Op: "create artifact directory", Err: err}
		}
	}
	if err := os.WriteFile(s.artifactPath, []byte(text), 0o644); err != nil {
		return &ImportError{Kind: KindArtifact, Op: "write artifact", Err: err}
	}
	return nil
}

// Rows lists the destination table in insertion order.
func (s *Service) Rows(ctx context.Context) ([]ImportedRow, error) {
	rows, err := s.loader.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}
	return rows, nil
}

// Status reports whether an import is running.
func (s *Service) Status() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until the running import, if any, has finished.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"TrendPress/internal/config"
	"TrendPress/internal/domain"
	"TrendPress/internal/metrics"
	"TrendPress/internal/ports"
	"TrendPress/internal/scanner"
)

// ScannerSource implements ports.TopicSource on a registered scanner strategy.
// It fails closed: any scan error or empty result yields the fixture list.
type ScannerSource struct {
	cfg     config.SourceConfig
	scanner scanner.Scanner
	logger  *slog.Logger
}

var _ ports.TopicSource = (*ScannerSource)(nil)

// NewScannerSource binds one configured source to its scanner.
func NewScannerSource(cfg config.SourceConfig, sc scanner.Scanner, log *slog.Logger) *ScannerSource {
	if log == nil {
		log = slog.Default()
	}
	return &ScannerSource{
		cfg:     cfg,
		scanner: sc,
		logger:  log.With("component", "source."+cfg.Name),
	}
}

// DefaultRegistry registers every built-in scanner on a shared client.
func DefaultRegistry(client *http.Client) *scanner.Registry {
	return scanner.NewRegistry(
		NewBaiduScanner(client),
		NewZhihuScanner(client),
		NewRSSScanner(client),
		FixtureScanner{},
	)
}

// BuildSources resolves every configured source against the registry, keeping config order.
func BuildSources(reg *scanner.Registry, sources []config.SourceConfig, log *slog.Logger) ([]ports.TopicSource, error) {
	out := make([]ports.TopicSource, 0, len(sources))
	for _, src := range sources {
		sc, err := reg.Resolve(src.Scanner)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Name, err)
		}
		out = append(out, NewScannerSource(src, sc, log))
	}
	return out, nil
}

// Name returns the configured source name.
func (s *ScannerSource) Name() string {
	return s.cfg.Name
}

// Fetch runs the scanner and falls back to fixtures when it fails or finds nothing.
func (s *ScannerSource) Fetch(ctx context.Context) ([]domain.TopicCandidate, error) {
	req := scanner.Request{
		Source:  s.cfg.Name,
		URL:     s.cfg.URL,
		Limit:   s.cfg.Limit,
		Options: s.cfg.Options,
	}

	candidates, err := s.scanner.Scan(ctx, req)
	if err == nil && len(candidates) > 0 {
		s.logger.Debug("source scanned", "scanner", s.scanner.Name(), "count", len(candidates))
		metrics.RecordSourceFetch(s.cfg.Name, "ok")
		return candidates, nil
	}

	if err != nil {
		srcErr := &domain.SourceError{Source: s.cfg.Name, Err: err}
		s.logger.Warn("source failed, using fixtures", "error", srcErr)
	} else {
		s.logger.Warn("source returned nothing, using fixtures", "scanner", s.scanner.Name())
	}
	metrics.RecordSourceFetch(s.cfg.Name, "fallback")
	return Fixtures(fixtureName(req)), nil
}

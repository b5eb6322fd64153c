package artifacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wonny/themeradar/internal/contracts"
	"github.com/wonny/themeradar/pkg/logger"
	"github.com/wonny/themeradar/pkg/redis"
)

// ErrNoReport is returned by Latest before any run has completed
var ErrNoReport = errors.New("no report available")

const latestFile = "latest.json"

// Pointer locates the newest report on disk
type Pointer struct {
	RunID      string    `json:"run_id"`
	SignalDate string    `json:"signal_date"`
	JSONPath   string    `json:"json_path"`
	TextPath   string    `json:"text_path"`
	SavedAt    time.Time `json:"saved_at"`
}

// FileStore writes report artifacts under a directory and mirrors the latest pointer to redis
// ⭐ SSOT: 리포트 아티팩트 저장은 여기서만
type FileStore struct {
	dir    string
	cache  *redis.Cache
	logger *logger.Logger
}

// NewFileStore creates a store rooted at dir; cache may be nil
func NewFileStore(dir string, cache *redis.Cache, log *logger.Logger) *FileStore {
	return &FileStore{dir: dir, cache: cache, logger: log.Component("artifacts")}
}

// Save writes <signal_date>_<run_id>.json and .txt, then advances the latest pointer
func (s *FileStore) Save(ctx context.Context, report *contracts.Report, text string) (string, error) {
	if report == nil {
		return "", errors.New("nil report")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	base := fmt.Sprintf("%s_%s", report.SignalDate, safeName(report.RunID))
	jsonPath := filepath.Join(s.dir, base+".json")
	textPath := filepath.Join(s.dir, base+".txt")

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	if err := writeAtomic(jsonPath, data); err != nil {
		return "", err
	}
	if err := writeAtomic(textPath, []byte(text)); err != nil {
		return "", err
	}

	ptr := Pointer{
		RunID:      report.RunID,
		SignalDate: report.SignalDate,
		JSONPath:   jsonPath,
		TextPath:   textPath,
		SavedAt:    time.Now().UTC(),
	}
	ptrData, err := json.Marshal(ptr)
	if err != nil {
		return "", fmt.Errorf("marshal pointer: %w", err)
	}
	if err := writeAtomic(filepath.Join(s.dir, latestFile), ptrData); err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, redis.LatestRunKey(), ptr, redis.TTLLatestRun); err != nil {
			s.logger.WithError(err).Warn("Latest pointer mirror to redis failed")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"run_id": report.RunID,
		"path":   jsonPath,
	}).Info("Saved report artifacts")
	return jsonPath, nil
}

// Latest loads the report referenced by the latest pointer (redis first, then disk)
func (s *FileStore) Latest(ctx context.Context) (*contracts.Report, error) {
	ptr, err := s.pointer(ctx)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(ptr.JSONPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoReport
		}
		return nil, fmt.Errorf("read report: %w", err)
	}

	var report contracts.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &report, nil
}

// LatestText returns the flat-text rendering of the latest report
func (s *FileStore) LatestText(ctx context.Context) (string, error) {
	ptr, err := s.pointer(ctx)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(ptr.TextPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoReport
		}
		return "", fmt.Errorf("read report text: %w", err)
	}
	return string(data), nil
}

func (s *FileStore) pointer(ctx context.Context) (Pointer, error) {
	var ptr Pointer
	if s.cache != nil {
		hit, err := s.cache.Get(ctx, redis.LatestRunKey(), &ptr)
		if err != nil {
			s.logger.WithError(err).Warn("Latest pointer read from redis failed")
		} else if hit && ptr.JSONPath != "" {
			return ptr, nil
		}
	}

	data, err := os.ReadFile(filepath.Join(s.dir, latestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ptr, ErrNoReport
		}
		return ptr, fmt.Errorf("read latest pointer: %w", err)
	}
	if err := json.Unmarshal(data, &ptr); err != nil {
		return ptr, fmt.Errorf("decode latest pointer: %w", err)
	}
	return ptr, nil
}

// writeAtomic writes via a temp file + rename so readers never see a partial artifact
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}

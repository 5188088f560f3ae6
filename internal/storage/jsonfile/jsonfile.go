// Package jsonfile stores the detection set as one JSON document of the form
// {"observer": {"target": [ticks...]}}, optionally gzip compressed.
package jsonfile

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/OCAP2/wallscan/internal/config"
	"github.com/OCAP2/wallscan/internal/storage"
	"github.com/OCAP2/wallscan/pkg/core"
	"github.com/rs/zerolog"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Backend writes the whole set to a file on every save.
type Backend struct {
	cfg   config.JSONConfig
	log   zerolog.Logger
	match *core.Match
}

// New creates a new JSON file backend
func New(cfg config.JSONConfig, log zerolog.Logger) *Backend {
	return &Backend{
		cfg: cfg,
		log: log.With().Str("component", "jsonfile").Logger(),
	}
}

// Path returns the output file path
func (b *Backend) Path() string {
	return b.cfg.OutputPath
}

// Init ensures the output directory exists
func (b *Backend) Init() error {
	if b.cfg.OutputPath == "" {
		return fmt.Errorf("json output path not set")
	}
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartMatch creates the output directory. The document itself only holds
// ticks, so the match is kept for logging. Readers never call it.
func (b *Backend) StartMatch(m *core.Match) error {
	if err := os.MkdirAll(filepath.Dir(b.cfg.OutputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	b.match = m
	b.log.Debug().Str("runId", m.RunID).Str("path", b.cfg.OutputPath).Msg("Writing results")
	return nil
}

// Save replaces the output file. The document is written to a temporary file
// in the same directory and renamed over the target, so readers never see a
// partial document.
func (b *Backend) Save(set *core.DetectionSet) error {
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to encode detections: %w", err)
	}

	dir, base := filepath.Split(b.cfg.OutputPath)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, base+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	tmp := f.Name()

	if err := writeDocument(f, data, b.cfg.CompressOutput); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp, b.cfg.OutputPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", b.cfg.OutputPath, err)
	}
	return nil
}

func writeDocument(w io.Writer, data []byte, compress bool) error {
	if !compress {
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		return nil
	}

	gzWriter := gzip.NewWriter(w)
	if _, err := gzWriter.Write(data); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Load reads the output file. Compressed files are detected by their magic
// bytes, whatever CompressOutput says.
func (b *Backend) Load() (*core.DetectionSet, error) {
	return ReadFile(b.cfg.OutputPath)
}

// ReadFile decodes a results document. A missing, empty, null or malformed
// document yields storage.ErrNoData.
func ReadFile(path string) (*core.DetectionSet, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, storage.ErrNoData)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if bytes.HasPrefix(data, gzipMagic) {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", path, storage.ErrNoData, err)
		}
		data, err = io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", path, storage.ErrNoData, err)
		}
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, fmt.Errorf("%s: %w", path, storage.ErrNoData)
	}

	set := core.NewDetectionSet()
	if err := json.Unmarshal(data, set); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, storage.ErrNoData, err)
	}
	return set, nil
}

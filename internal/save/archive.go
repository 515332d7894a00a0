package save

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/pixil98/go-story/internal/chronicle"
)

// Archive keeps the full detail of chronicle entries that compression
// folded into prose, as zstd-compressed JSONL, one file per world.
type Archive struct {
	dir string

	mu      sync.Mutex
	worldID string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

// NewArchive writes archives under dir.
func NewArchive(dir string) *Archive {
	return &Archive{dir: dir}
}

// Write appends the entries to the world's archive file.
func (a *Archive) Write(worldID string, entries []chronicle.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if worldID != a.worldID {
		if err := a.rotateLocked(worldID); err != nil {
			return err
		}
	}

	for _, e := range entries {
		b, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshaling archive entry: %w", err)
		}
		if _, err := a.w.Write(b); err != nil {
			return err
		}
		if err := a.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return a.w.Flush()
}

// Close flushes and closes the current archive file.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closeLocked()
}

func (a *Archive) rotateLocked(worldID string) error {
	if err := a.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(a.dir, fmt.Sprintf("%s.jsonl.zst", worldID))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}

	a.f = f
	a.enc = enc
	a.w = bufio.NewWriter(enc)
	a.worldID = worldID
	return nil
}

func (a *Archive) closeLocked() error {
	var encErr error
	if a.w != nil {
		_ = a.w.Flush()
	}
	if a.enc != nil {
		encErr = a.enc.Close()
		a.enc = nil
	}
	if a.f != nil {
		_ = a.f.Close()
		a.f = nil
	}
	a.w = nil
	a.worldID = ""
	return encErr
}

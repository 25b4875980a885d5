package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/platewatch/platewatch/pkg/types"
)

// ErrSourceDrained signals a source with no more frames to deliver. The
// pipeline treats it as a clean end of session.
var ErrSourceDrained = errors.New("frame source drained")

// Source delivers captured frames. Camera drivers stay outside this
// repository; anything that can hand over image bytes can feed the
// pipeline.
type Source interface {
	Next(ctx context.Context) (types.Frame, error)
}

// DirSource replays image files from a directory in lexical order, pacing
// them at a fixed interval to mimic a live feed.
type DirSource struct {
	paths    []string
	interval time.Duration
	current  int
	number   uint64
}

// NewDirSource lists the supported image files under dir. An empty
// directory is an error: a session with no possible frames is a
// misconfiguration, not a quiet no-op.
func NewDirSource(dir string, interval time.Duration) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frame dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no image files in %s", dir)
	}
	return &DirSource{paths: paths, interval: interval}, nil
}

// Next implements Source.
func (s *DirSource) Next(ctx context.Context) (types.Frame, error) {
	if s.current >= len(s.paths) {
		return types.Frame{}, ErrSourceDrained
	}

	if s.interval > 0 && s.number > 0 {
		timer := time.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return types.Frame{}, ctx.Err()
		case <-timer.C:
		}
	}

	data, err := os.ReadFile(s.paths[s.current])
	if err != nil {
		return types.Frame{}, fmt.Errorf("read frame file: %w", err)
	}
	s.current++
	s.number++

	return types.Frame{
		Data:       data,
		CapturedAt: time.Now(),
		Number:     s.number,
	}, nil
}

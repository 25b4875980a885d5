package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/platewatch/platewatch/pkg/types"
)

// PersistError wraps a failed journal write. The in-memory log stays
// authoritative when persistence fails; the caller decides whether to
// retry or abort.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist session journal %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// Journal writes session documents to a single file under the output
// directory. Every write replaces the whole document via a temp file and
// rename, so the file on disk is always complete, parseable JSON no
// matter when the process dies.
type Journal struct {
	path string
}

// NewJournal creates the output directory if needed and returns a journal
// for the given session id.
func NewJournal(outputDir, sessionID string) (*Journal, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Journal{
		path: filepath.Join(outputDir, fmt.Sprintf("session_%s.json", sessionID)),
	}, nil
}

// Path returns the journal file path.
func (j *Journal) Path() string {
	return j.path
}

// Persist writes the full document, replacing any previous content.
func (j *Journal) Persist(doc types.SessionDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &PersistError{Path: j.path, Err: err}
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(j.path), ".session-*.tmp")
	if err != nil {
		return &PersistError{Path: j.path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &PersistError{Path: j.path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &PersistError{Path: j.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &PersistError{Path: j.path, Err: err}
	}
	if err := os.Rename(tmpName, j.path); err != nil {
		os.Remove(tmpName)
		return &PersistError{Path: j.path, Err: err}
	}
	return nil
}

// Load reads a persisted session document back from disk.
func Load(path string) (types.SessionDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.SessionDocument{}, fmt.Errorf("read session journal: %w", err)
	}
	var doc types.SessionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return types.SessionDocument{}, fmt.Errorf("decode session journal %s: %w", path, err)
	}
	return doc, nil
}

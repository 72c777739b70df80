package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/datamatic/internal/analysis"
	"github.com/KaramelBytes/datamatic/internal/utils"
	"github.com/google/uuid"
)

const sessionFileName = "session.json"

// ErrNotFound is returned when no stored session matches an id.
var ErrNotFound = errors.New("session not found")

// Session is a saved profile together with where it came from.
type Session struct {
	ID        string                   `json:"id"`
	Source    string                   `json:"source"`
	Sheet     string                   `json:"sheet,omitempty"`
	Profile   *analysis.DatasetProfile `json:"profile"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// New wraps a profile in an unsaved session.
func New(source string, prof *analysis.DatasetProfile) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Source:    source,
		Profile:   prof,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Store keeps sessions as <Dir>/<id>/session.json.
type Store struct {
	Dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store { return &Store{Dir: dir} }

// Save writes s using atomic write.
func (st *Store) Save(s *Session) error {
	if s == nil {
		return errors.New("session is nil")
	}
	if s.ID == "" {
		return errors.New("session id not set")
	}
	dir := filepath.Join(st.Dir, s.ID)
	if err := utils.EnsureDir(dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	s.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(s)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(dir, sessionFileName), data)
}

// Load reads the session with the given id. A unique id prefix is accepted.
func (st *Store) Load(id string) (*Session, error) {
	full, err := st.resolve(id)
	if err != nil {
		return nil, err
	}
	return st.read(full)
}

func (st *Store) read(id string) (*Session, error) {
	path := filepath.Join(st.Dir, id, sessionFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", id, err)
	}
	return &s, nil
}

// List returns all readable sessions, most recently updated first.
// Entries that fail to parse are skipped.
func (st *Store) List() ([]*Session, error) {
	entries, err := os.ReadDir(st.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sessions dir: %w", err)
	}
	var out []*Session
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		s, err := st.read(e.Name())
		if err != nil {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Delete removes the session directory.
func (st *Store) Delete(id string) error {
	full, err := st.resolve(id)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(st.Dir, full)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// resolve expands an id prefix to a stored session id.
func (st *Store) resolve(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid session id %q", id)
	}
	if _, err := os.Stat(filepath.Join(st.Dir, id, sessionFileName)); err == nil {
		return id, nil
	}
	entries, err := os.ReadDir(st.Dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("read sessions dir: %w", err)
	}
	var matches []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), id) {
			matches = append(matches, e.Name())
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("session id %q is ambiguous (%d matches)", id, len(matches))
	}
}

package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"mangapages/pkg/chapters"
	"mangapages/pkg/logger"
)

// ErrExists is returned by Save when a cache file for the manga already exists
var ErrExists = errors.New("cache file already exists")

// Store keeps one JSON page count file per manga id
type Store struct {
	dir    string
	logger logger.Logger
}

// NewStore creates a store rooted at dir, creating the directory if needed
func NewStore(dir string, log logger.Logger) (*Store, error) {
	if dir == "" {
		dir = "."
	}
	if log == nil {
		log = logger.GetLogger()
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &Store{dir: dir, logger: log}, nil
}

// Path returns the cache file path for a manga
func (s *Store) Path(mangaID int) string {
	return filepath.Join(s.dir, strconv.Itoa(mangaID)+".json")
}

// Load reads the cached page counts for a manga. It reports false with a
// nil error when no cache file exists.
func (s *Store) Load(mangaID int) (chapters.PageCounts, bool, error) {
	path := s.Path(mangaID)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cache file: %w", err)
	}

	var counts chapters.PageCounts
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, false, fmt.Errorf("failed to decode cache file %s: %w", path, err)
	}

	s.logger.InfoWithFields("Cache loaded", map[string]interface{}{
		"manga_id": mangaID,
		"chapters": len(counts),
		"path":     path,
	})

	return counts, true, nil
}

// Save writes the page counts for a manga. The file is written once: it is
// staged in a temporary file and hard-linked into place, failing with
// ErrExists if a cache file is already present.
func (s *Store) Save(mangaID int, counts chapters.PageCounts) error {
	path := s.Path(mangaID)

	data, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("failed to encode page counts: %w", err)
	}

	file, err := os.CreateTemp(s.dir, strconv.Itoa(mangaID)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary cache file: %w", err)
	}
	tempPath := file.Name()
	defer os.Remove(tempPath)

	if _, err := file.Write(data); err != nil {
		file.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("failed to sync cache file: %w", err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close cache file: %w", err)
	}

	if err := os.Link(tempPath, path); err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s: %w", path, ErrExists)
		}
		return fmt.Errorf("failed to place cache file: %w", err)
	}

	s.logger.DebugWithFields("Cache saved", map[string]interface{}{
		"manga_id": mangaID,
		"chapters": len(counts),
		"path":     path,
	})

	return nil
}

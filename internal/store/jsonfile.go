package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// fileBackend persists the whole collection as one JSON document. Every
// operation reads the full document, mutates in memory and rewrites it;
// there is no incremental write path. Readers never observe a partial
// write because the rewrite goes through a temp file and an atomic rename.
type fileBackend struct {
	mu   sync.RWMutex
	path string
}

func newFileBackend(dataDir string) (*fileBackend, error) {
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	f := &fileBackend{path: filepath.Join(dataDir, "news.json")}
	if _, err := os.Stat(f.path); os.IsNotExist(err) {
		if err := f.write(nil); err != nil {
			return nil, fmt.Errorf("initializing news file: %w", err)
		}
	}
	return f, nil
}

func (f *fileBackend) all() ([]Article, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.read()
}

func (f *fileBackend) save(a Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	articles, err := f.read()
	if err != nil {
		return err
	}

	replaced := false
	for i := range articles {
		if articles[i].URL == a.URL {
			articles[i] = a
			replaced = true
			break
		}
	}
	if !replaced {
		articles = append(articles, a)
	}
	return f.write(articles)
}

func (f *fileBackend) deleteOlderThan(cutoff time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	articles, err := f.read()
	if err != nil {
		return 0, err
	}

	kept := make([]Article, 0, len(articles))
	for _, a := range articles {
		if !isOlderThan(a, cutoff) {
			kept = append(kept, a)
		}
	}

	removed := len(articles) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := f.write(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// read treats a missing or malformed document as an empty collection; the
// next write repairs it.
func (f *fileBackend) read() ([]Article, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}

	var articles []Article
	if err := json.Unmarshal(data, &articles); err != nil {
		log.Printf("News file %s is unreadable, treating as empty: %v", f.path, err)
		return nil, nil
	}
	return articles, nil
}

func (f *fileBackend) write(articles []Article) error {
	if articles == nil {
		articles = []Article{}
	}
	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding news file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), "news-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing news file: %w", err)
	}
	return nil
}

package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/profile-chat/backend/pkg/logger"
)

// Resources holds both artifacts after a successful load. Immutable once
// loaded, so it is shared across requests without synchronization.
type Resources struct {
	Directory *AnchorDirectory
	Index     *EmbeddingIndex

	// AnchorByID resolves a chunk or anchor id to its anchor row.
	AnchorByID map[string]Anchor
}

// Loader memoizes the artifact load. Concurrent first calls collapse to a
// single disk read; a failed load is returned but not cached, so the runtime
// recovers as soon as the files are corrected.
type Loader struct {
	anchorPath string
	indexPath  string

	mu  sync.Mutex
	res *Resources
}

func NewLoader(anchorPath, indexPath string) *Loader {
	return &Loader{anchorPath: anchorPath, indexPath: indexPath}
}

func (l *Loader) Load() (*Resources, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.res != nil {
		return l.res, nil
	}

	res, err := l.load()
	if err != nil {
		return nil, err
	}
	l.res = res
	return res, nil
}

func (l *Loader) load() (*Resources, error) {
	var directory AnchorDirectory
	if err := readArtifact(l.anchorPath, &directory); err != nil {
		return nil, fmt.Errorf("failed to load anchor directory: %w", err)
	}

	var index EmbeddingIndex
	if err := readArtifact(l.indexPath, &index); err != nil {
		return nil, fmt.Errorf("failed to load embedding index: %w", err)
	}

	if len(index.Chunks) == 0 {
		return nil, fmt.Errorf("embedding index %s contains no chunks", l.indexPath)
	}
	for _, chunk := range index.Chunks {
		for locale, payload := range chunk.Locales {
			if len(payload.Tokens) == 0 {
				return nil, fmt.Errorf("chunk %s has no tokens for locale %s", chunk.ID, locale)
			}
		}
	}

	anchorByID := make(map[string]Anchor, len(directory.Anchors))
	for _, anchor := range directory.Anchors {
		anchorByID[anchor.ID] = anchor
	}

	logger.Info("Corpus resources loaded",
		zap.Int("anchors", len(directory.Anchors)),
		zap.Int("chunks", len(index.Chunks)),
		zap.String("hash", index.Hash),
	)

	return &Resources{
		Directory:  &directory,
		Index:      &index,
		AnchorByID: anchorByID,
	}, nil
}

func readArtifact(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

package corpus

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profile-chat/backend/internal/tokenizer"
)

func writeTestArtifacts(t *testing.T, dir string) (string, string) {
	t.Helper()

	directory, index, err := newTestBuilder().Build(testSources())
	require.NoError(t, err)
	require.NoError(t, WriteArtifacts(dir, "anchors.json", "index.json", directory, index))

	return filepath.Join(dir, "anchors.json"), filepath.Join(dir, "index.json")
}

func TestLoaderRoundTrip(t *testing.T) {
	anchorPath, indexPath := writeTestArtifacts(t, t.TempDir())

	res, err := NewLoader(anchorPath, indexPath).Load()
	require.NoError(t, err)

	assert.NotEmpty(t, res.Index.Chunks)
	assert.NotEmpty(t, res.Index.Hash)
	assert.Contains(t, res.AnchorByID, "resume")
	assert.Contains(t, res.AnchorByID, "availability")
}

func TestLoaderMemoizes(t *testing.T) {
	anchorPath, indexPath := writeTestArtifacts(t, t.TempDir())
	loader := NewLoader(anchorPath, indexPath)

	first, err := loader.Load()
	require.NoError(t, err)

	// delete the files; a second load must serve the cached resources
	require.NoError(t, os.Remove(anchorPath))
	require.NoError(t, os.Remove(indexPath))

	second, err := loader.Load()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoaderConcurrentFirstUse(t *testing.T) {
	anchorPath, indexPath := writeTestArtifacts(t, t.TempDir())
	loader := NewLoader(anchorPath, indexPath)

	var wg sync.WaitGroup
	results := make([]*Resources, 8)
	for i := 0; i < len(results); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := loader.Load()
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	for _, res := range results[1:] {
		assert.Same(t, results[0], res)
	}
}

func TestLoaderFailureNotCached(t *testing.T) {
	dir := t.TempDir()
	anchorPath := filepath.Join(dir, "anchors.json")
	indexPath := filepath.Join(dir, "index.json")
	loader := NewLoader(anchorPath, indexPath)

	_, err := loader.Load()
	require.Error(t, err)

	// correcting the files allows recovery without a new loader
	directory, index, err := NewBuilder(tokenizer.New(nil), []string{"en"}).Build(testSources())
	require.NoError(t, err)
	require.NoError(t, WriteArtifacts(dir, "anchors.json", "index.json", directory, index))

	res, err := loader.Load()
	require.NoError(t, err)
	assert.NotEmpty(t, res.Index.Chunks)
}

func TestLoaderRejectsTokenlessChunks(t *testing.T) {
	dir := t.TempDir()
	directory, index, err := newTestBuilder().Build(testSources())
	require.NoError(t, err)

	payload := index.Chunks[0].Locales["en"]
	payload.Tokens = nil
	index.Chunks[0].Locales["en"] = payload
	require.NoError(t, WriteArtifacts(dir, "anchors.json", "index.json", directory, index))

	_, err = NewLoader(filepath.Join(dir, "anchors.json"), filepath.Join(dir, "index.json")).Load()
	assert.Error(t, err)
}

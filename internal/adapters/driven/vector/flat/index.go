// Package flat provides an exact brute-force vector index persisted as two files:
// a binary vector store and a JSON metadata sequence aligned by position.
//
// Both artifacts carry the same build ID. A loader that finds different IDs,
// different counts, or only one of the two files rejects the pair.
package flat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a flat exact k-NN index by squared Euclidean distance.
// Search is safe for concurrent use; Build and Load take an exclusive lock.
type Index struct {
	dir string

	mu     sync.RWMutex
	loaded bool
	info   domain.IndexInfo
	dim    int
	data   []float32 // count*dim, row-major
	chunks []domain.Chunk
}

// New creates an index that persists its artifacts in dir.
func New(dir string) *Index {
	return &Index{dir: dir}
}

// Dir returns the artifact directory.
func (i *Index) Dir() string {
	return i.dir
}

// Build replaces the index with chunks and their vectors and persists both artifacts.
// A build ID is generated when info.BuildID is empty.
func (i *Index) Build(ctx context.Context, chunks []domain.Chunk, vectors [][]float32, info domain.IndexInfo) error {
	if len(chunks) == 0 {
		return domain.ErrEmptyCorpus
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d chunks but %d vectors", domain.ErrInvalidInput, len(chunks), len(vectors))
	}

	dim := len(vectors[0])
	if dim == 0 {
		return fmt.Errorf("%w: zero-length vectors", domain.ErrInvalidInput)
	}
	data := make([]float32, 0, dim*len(vectors))
	for n, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: vector %d has %d dimensions, expected %d", domain.ErrDimensionMismatch, n, len(v), dim)
		}
		data = append(data, v...)
	}

	buildID := uuid.New()
	if info.BuildID != "" {
		parsed, err := uuid.Parse(info.BuildID)
		if err != nil {
			return fmt.Errorf("%w: build id: %w", domain.ErrInvalidInput, err)
		}
		buildID = parsed
	}
	info.BuildID = buildID.String()
	info.Dimension = dim
	info.Count = len(chunks)
	if info.BuiltAt.IsZero() {
		info.BuiltAt = time.Now().UTC()
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	meta, err := json.MarshalIndent(metadataFile{IndexInfo: info, Chunks: chunks}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if err := os.MkdirAll(i.dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	if err := i.persist(encodeVectors(buildID, dim, data), meta); err != nil {
		return err
	}

	i.set(info, dim, data, append([]domain.Chunk(nil), chunks...))
	logger.Debug("flat index: built %d vectors of dimension %d (build %s)", info.Count, dim, info.BuildID)
	return nil
}

// persist writes both artifacts to temp files, syncs them, then renames
// metadata before vectors. Readers only ever see complete files.
func (i *Index) persist(vectors, meta []byte) error {
	metaTmp, err := writeTemp(i.dir, MetadataFile, meta)
	if err != nil {
		return err
	}
	vecTmp, err := writeTemp(i.dir, VectorsFile, vectors)
	if err != nil {
		_ = os.Remove(metaTmp)
		return err
	}

	if err := os.Rename(metaTmp, filepath.Join(i.dir, MetadataFile)); err != nil {
		_ = os.Remove(metaTmp)
		_ = os.Remove(vecTmp)
		return fmt.Errorf("replacing %s: %w", MetadataFile, err)
	}
	if err := os.Rename(vecTmp, filepath.Join(i.dir, VectorsFile)); err != nil {
		_ = os.Remove(vecTmp)
		return fmt.Errorf("replacing %s: %w", VectorsFile, err)
	}

	syncDir(i.dir)
	return nil
}

func writeTemp(dir, name string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, "."+name+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp %s: %w", name, err)
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("syncing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("closing %s: %w", name, err)
	}
	return tmp, nil
}

// syncDir flushes the directory entry; not every platform supports it.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

// Load reads both artifacts and replaces the in-memory index.
func (i *Index) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	vecBytes, err := readArtifact(i.dir, VectorsFile)
	if err != nil {
		return err
	}
	metaBytes, err := readArtifact(i.dir, MetadataFile)
	if err != nil {
		return err
	}

	h, data, err := decodeVectors(vecBytes)
	if err != nil {
		return err
	}

	var meta metadataFile
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrIndexCorrupt, MetadataFile, err)
	}

	if meta.BuildID != h.buildID.String() {
		return fmt.Errorf("%w: build id mismatch (%s has %s, %s has %s)",
			domain.ErrIndexCorrupt, VectorsFile, h.buildID, MetadataFile, meta.BuildID)
	}
	if len(meta.Chunks) != h.count || meta.Count != h.count {
		return fmt.Errorf("%w: %s holds %d vectors but %s describes %d chunks (count %d)",
			domain.ErrIndexCorrupt, VectorsFile, h.count, MetadataFile, len(meta.Chunks), meta.Count)
	}
	if meta.Dimension != h.dim {
		return fmt.Errorf("%w: dimension mismatch (%s %d, %s %d)",
			domain.ErrIndexCorrupt, VectorsFile, h.dim, MetadataFile, meta.Dimension)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.set(meta.IndexInfo, h.dim, data, meta.Chunks)

	logger.Debug("flat index: loaded %d vectors of dimension %d (build %s)", h.count, h.dim, meta.BuildID)
	return nil
}

func readArtifact(dir, name string) ([]byte, error) {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s not found in %s", domain.ErrIndexMissing, name, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return b, nil
}

// set must be called with mu held for writing.
func (i *Index) set(info domain.IndexInfo, dim int, data []float32, chunks []domain.Chunk) {
	i.info = info
	i.dim = dim
	i.data = data
	i.chunks = chunks
	i.loaded = true
}

// Search returns the k nearest chunks to query by ascending squared Euclidean
// distance. Equal distances keep index order. k larger than the index returns everything.
func (i *Index) Search(ctx context.Context, query []float32, k int) ([]domain.Neighbor, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrInvalidInput, k)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	if !i.loaded {
		return nil, domain.ErrIndexMissing
	}
	if len(query) != i.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", domain.ErrDimensionMismatch, len(query), i.dim)
	}

	type scored struct {
		pos  int
		dist float64
	}
	n := len(i.chunks)
	all := make([]scored, n)
	for pos := range n {
		all[pos] = scored{pos: pos, dist: SquaredL2(query, i.data[pos*i.dim:(pos+1)*i.dim])}
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].dist < all[b].dist })

	k = min(k, n)
	out := make([]domain.Neighbor, k)
	for j := range k {
		out[j] = domain.Neighbor{Chunk: i.chunks[all[j].pos], Distance: all[j].dist}
	}
	return out, nil
}

// SquaredL2 returns the squared Euclidean distance between equal-length vectors.
func SquaredL2(a, b []float32) float64 {
	var sum float64
	for j := range a {
		d := float64(a[j]) - float64(b[j])
		sum += d * d
	}
	return sum
}

// Info returns the loaded build's description.
func (i *Index) Info() (domain.IndexInfo, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.info, i.loaded
}

// Close drops the in-memory index.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.loaded = false
	i.info = domain.IndexInfo{}
	i.data = nil
	i.chunks = nil
	i.dim = 0
	return nil
}

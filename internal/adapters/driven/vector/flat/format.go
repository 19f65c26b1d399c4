package flat

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// Artifact file names inside the index directory.
const (
	VectorsFile  = "vectors.bin"
	MetadataFile = "metadata.json"
)

const (
	magic         = "DIVF"
	formatVersion = 1

	// magic + version + build id + dim + count
	headerSize = 4 + 4 + 16 + 4 + 4
)

// metadataFile is the JSON layout of MetadataFile.
// Chunks[i] describes the vector at position i of VectorsFile.
type metadataFile struct {
	domain.IndexInfo
	Chunks []domain.Chunk `json:"chunks"`
}

// header is the fixed prefix of VectorsFile.
type header struct {
	buildID uuid.UUID
	dim     int
	count   int
}

// encodeVectors lays out the header followed by count*dim little-endian float32 values.
func encodeVectors(buildID uuid.UUID, dim int, data []float32) []byte {
	count := len(data) / dim
	out := make([]byte, headerSize+len(data)*4)

	copy(out[0:4], magic)
	binary.LittleEndian.PutUint32(out[4:8], formatVersion)
	copy(out[8:24], buildID[:])
	binary.LittleEndian.PutUint32(out[24:28], uint32(dim))
	binary.LittleEndian.PutUint32(out[28:32], uint32(count))

	for i, v := range data {
		binary.LittleEndian.PutUint32(out[headerSize+i*4:], math.Float32bits(v))
	}
	return out
}

// decodeVectors validates and decodes VectorsFile content.
// Every structural problem is reported as domain.ErrIndexCorrupt.
func decodeVectors(b []byte) (header, []float32, error) {
	var h header
	if len(b) < headerSize {
		return h, nil, fmt.Errorf("%w: %s truncated header (%d bytes)", domain.ErrIndexCorrupt, VectorsFile, len(b))
	}
	if string(b[0:4]) != magic {
		return h, nil, fmt.Errorf("%w: %s bad magic %q", domain.ErrIndexCorrupt, VectorsFile, b[0:4])
	}
	if v := binary.LittleEndian.Uint32(b[4:8]); v != formatVersion {
		return h, nil, fmt.Errorf("%w: %s unsupported version %d", domain.ErrIndexCorrupt, VectorsFile, v)
	}

	copy(h.buildID[:], b[8:24])
	h.dim = int(binary.LittleEndian.Uint32(b[24:28]))
	h.count = int(binary.LittleEndian.Uint32(b[28:32]))
	if h.dim == 0 || h.count == 0 {
		return h, nil, fmt.Errorf("%w: %s empty (dim %d, count %d)", domain.ErrIndexCorrupt, VectorsFile, h.dim, h.count)
	}

	body := b[headerSize:]
	want := h.dim * h.count * 4
	if len(body) != want {
		return h, nil, fmt.Errorf("%w: %s holds %d bytes of vectors, header requires %d",
			domain.ErrIndexCorrupt, VectorsFile, len(body), want)
	}

	data := make([]float32, h.dim*h.count)
	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(body[i*4:]))
	}
	return h, data, nil
}

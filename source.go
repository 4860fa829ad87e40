package vecseg

import (
	"fmt"

	"github.com/hupe1980/vecseg/model"
	"github.com/hupe1980/vecseg/segment"
)

// VectorSource is a caller-owned batch of records offered for admission:
// parallel identifier and vector columns, optionally a payload per record
// for full entities.
//
// A source keeps a cursor over its records. Admission consumes from the
// cursor, so a batch that was only partially admitted (buffer full) can be
// re-offered to a freshly rotated buffer and continues where it left off.
type VectorSource struct {
	ids        []model.DocID
	vectors    [][]float32
	payloads   [][]byte // nil for vector-only sources
	maxPayload int64

	pos int
}

// NewVectorSource creates a source of plain vector records.
// ids and vectors must have equal length.
func NewVectorSource(ids []model.DocID, vectors [][]float32) *VectorSource {
	return &VectorSource{ids: ids, vectors: vectors}
}

// NewEntitySource creates a source of full entity records: vectors plus one
// payload per record (entries may be nil).
func NewEntitySource(ids []model.DocID, vectors [][]float32, payloads [][]byte) *VectorSource {
	s := &VectorSource{ids: ids, vectors: vectors, payloads: payloads}
	for _, p := range payloads {
		if int64(len(p)) > s.maxPayload {
			s.maxPayload = int64(len(p))
		}
	}
	return s
}

// SingleVectorSize returns the memory footprint of one vector record at the
// given dimension.
func (s *VectorSource) SingleVectorSize(dim int) int64 {
	return model.VectorRecordSize(dim)
}

// SingleEntitySize returns the memory footprint of one entity record at the
// given dimension: the vector plus the batch's largest payload (a
// deterministic per-batch upper bound).
func (s *VectorSource) SingleEntitySize(dim int) int64 {
	return model.VectorRecordSize(dim) + s.maxPayload
}

// Remaining returns the number of records not yet admitted.
func (s *VectorSource) Remaining() int64 {
	return int64(len(s.ids) - s.pos)
}

// Admitted returns the number of records consumed so far.
func (s *VectorSource) Admitted() int64 {
	return int64(s.pos)
}

// Add pushes up to limit vector records into the writer and returns the
// number actually admitted (fewer when the batch is smaller than limit).
func (s *VectorSource) Add(w *segment.Writer, dim int, limit int64) (int64, error) {
	return s.push(w, dim, limit, false)
}

// AddEntities pushes up to limit entity records into the writer and returns
// the number actually admitted.
func (s *VectorSource) AddEntities(w *segment.Writer, dim int, limit int64) (int64, error) {
	if s.payloads == nil {
		return 0, fmt.Errorf("vecseg: source has no payload column")
	}
	return s.push(w, dim, limit, true)
}

func (s *VectorSource) push(w *segment.Writer, dim int, limit int64, entities bool) (int64, error) {
	if len(s.ids) != len(s.vectors) {
		return 0, fmt.Errorf("vecseg: source columns misaligned: %d ids, %d vectors", len(s.ids), len(s.vectors))
	}

	n := s.Remaining()
	if limit < n {
		n = limit
	}
	if n <= 0 {
		return 0, nil
	}

	flat := make([]float32, 0, int(n)*dim)
	for _, vec := range s.vectors[s.pos : s.pos+int(n)] {
		if len(vec) != dim {
			return 0, fmt.Errorf("vecseg: vector dimension %d, schema expects %d", len(vec), dim)
		}
		flat = append(flat, vec...)
	}

	ids := s.ids[s.pos : s.pos+int(n)]
	var err error
	if entities {
		err = w.Buffer().AppendEntities(ids, dim, flat, s.payloads[s.pos:s.pos+int(n)])
	} else {
		err = w.Buffer().AppendVectors(ids, dim, flat)
	}
	if err != nil {
		return 0, err
	}

	s.pos += int(n)
	return n, nil
}

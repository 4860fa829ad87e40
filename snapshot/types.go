package snapshot

import (
	"github.com/hupe1980/vecseg/model"
)

const (
	// FieldVector is the name of the distinguished vector field.
	FieldVector = "vector"

	// ElementRaw is the segment-file element holding the raw vector column.
	ElementRaw = "raw"

	// ParamDimension is the field parameter carrying vector dimensionality.
	ParamDimension = "dimension"
)

// Field describes one field of a collection schema.
type Field struct {
	Name   string           `json:"name"`
	Params map[string]int64 `json:"params,omitempty"`
}

// Param returns a field parameter by name.
func (f *Field) Param(name string) (int64, bool) {
	v, ok := f.Params[name]
	return v, ok
}

// Collection describes a collection schema.
type Collection struct {
	ID     model.CollectionID `json:"id"`
	Name   string             `json:"name"`
	Fields []Field            `json:"fields"`
}

// Field returns the field with the given name.
func (c *Collection) Field(name string) (*Field, bool) {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i], true
		}
	}
	return nil, false
}

// Partition describes a partition of a collection.
type Partition struct {
	ID           model.PartitionID  `json:"id"`
	CollectionID model.CollectionID `json:"collection_id"`
	Name         string             `json:"name,omitempty"`
}

// Segment describes an immutable segment's identity.
type Segment struct {
	ID           model.SegmentID    `json:"id"`
	CollectionID model.CollectionID `json:"collection_id"`
	PartitionID  model.PartitionID  `json:"partition_id"`
}

// Key returns the segment's global key.
func (s *Segment) Key() model.SegmentKey {
	return model.SegmentKey{
		CollectionID: s.CollectionID,
		PartitionID:  s.PartitionID,
		SegmentID:    s.ID,
	}
}

// SegmentFile describes one durable file belonging to a segment.
// Size and RowCount are populated from the segment writer's own counters
// after the physical write, never recomputed independently.
type SegmentFile struct {
	ID           model.SegmentFileID `json:"id"`
	CollectionID model.CollectionID  `json:"collection_id"`
	PartitionID  model.PartitionID   `json:"partition_id"`
	SegmentID    model.SegmentID     `json:"segment_id"`
	FieldName    string              `json:"field_name"`
	FieldElement string              `json:"field_element"`
	Size         int64               `json:"size"`
	RowCount     int64               `json:"row_count"`
}

// SetSize records the physical byte size of the file.
func (f *SegmentFile) SetSize(n int64) { f.Size = n }

// SetRowCount records the number of rows the file holds.
func (f *SegmentFile) SetRowCount(n int64) { f.RowCount = n }

// Snapshot is a versioned, point-in-time view of a collection's metadata:
// schema, partitions, segments and segment files.
type Snapshot struct {
	Version           int                 `json:"version"`
	ID                uint64              `json:"id"`
	Collection        Collection          `json:"collection"`
	Partitions        []Partition         `json:"partitions"`
	Segments          []Segment           `json:"segments"`
	SegmentFiles      []SegmentFile       `json:"segment_files"`
	NextSegmentID     model.SegmentID     `json:"next_segment_id"`
	NextSegmentFileID model.SegmentFileID `json:"next_segment_file_id"`
	MaxLSN            uint64              `json:"max_lsn"`
}

// Field returns the schema field with the given name.
func (s *Snapshot) Field(name string) (*Field, bool) {
	return s.Collection.Field(name)
}

// Partition returns the partition with the given id.
func (s *Snapshot) Partition(id model.PartitionID) (*Partition, bool) {
	for i := range s.Partitions {
		if s.Partitions[i].ID == id {
			return &s.Partitions[i], true
		}
	}
	return nil, false
}

// Dimension returns the dimension parameter of the named vector field.
func (s *Snapshot) Dimension(fieldName string) (int64, bool) {
	f, ok := s.Field(fieldName)
	if !ok {
		return 0, false
	}
	return f.Param(ParamDimension)
}

// clone returns a deep copy used to build a successor snapshot.
func (s *Snapshot) clone() *Snapshot {
	next := *s

	next.Collection.Fields = make([]Field, len(s.Collection.Fields))
	copy(next.Collection.Fields, s.Collection.Fields)
	for i := range next.Collection.Fields {
		if p := s.Collection.Fields[i].Params; p != nil {
			cp := make(map[string]int64, len(p))
			for k, v := range p {
				cp[k] = v
			}
			next.Collection.Fields[i].Params = cp
		}
	}

	next.Partitions = make([]Partition, len(s.Partitions))
	copy(next.Partitions, s.Partitions)
	next.Segments = make([]Segment, len(s.Segments))
	copy(next.Segments, s.Segments)
	next.SegmentFiles = make([]SegmentFile, len(s.SegmentFiles))
	copy(next.SegmentFiles, s.SegmentFiles)

	return &next
}

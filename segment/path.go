package segment

import (
	"fmt"
	"path/filepath"

	"github.com/hupe1980/vecseg/model"
)

// PathFor computes the canonical storage directory of a segment, relative
// to the engine's data root.
func PathFor(collectionID model.CollectionID, partitionID model.PartitionID, segmentID model.SegmentID) string {
	return filepath.Join(
		"collections", fmt.Sprintf("%d", collectionID),
		"partitions", fmt.Sprintf("%d", partitionID),
		"segments", fmt.Sprintf("%d", segmentID),
	)
}

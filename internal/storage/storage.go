package storage

import (
	"context"
	"path"
	"sort"

	"github.com/andresuchdata/fba-cockpit/internal/pipeline"
	"github.com/andresuchdata/fba-cockpit/internal/pipeline/fba"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the minimal S3-compatible operations the ingest and
// export paths need.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
	UploadObject(ctx context.Context, key string, data []byte, contentType string) error
}

// ReportKeys returns the keys of objects that look like inventory reports,
// sorted so that repeated ingests see files in the same order.
func ReportKeys(objects []ObjectInfo) []string {
	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		if obj.Size == 0 {
			continue
		}
		if _, err := fba.ReaderFor(path.Base(obj.Key)); err != nil {
			continue
		}
		keys = append(keys, obj.Key)
	}
	sort.Strings(keys)
	return keys
}

// ReportSource serves the reports under a key prefix of an object store.
type ReportSource struct {
	Store ObjectStorage
}

func (s ReportSource) Reports(ctx context.Context, prefix string) ([]string, pipeline.FetchFunc, error) {
	objects, err := s.Store.ListObjects(ctx, prefix)
	if err != nil {
		return nil, nil, err
	}
	return ReportKeys(objects), s.Store.GetObject, nil
}

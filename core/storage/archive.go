package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
)

// reportPrefix is where run reports live inside the bucket.
const reportPrefix = "reports/"

// ReportInfo describes one archived run report.
type ReportInfo struct {
	// Name is the report file name, e.g. "cost_sync_20260115_0930.csv".
	Name string `json:"name"`
	// Size is the object size in bytes.
	Size int64 `json:"size"`
	// LastModified is the upload timestamp.
	LastModified time.Time `json:"last_modified"`
}

// Archive retains executed run reports in object storage.
type Archive struct {
	client Client
	bucket string
}

// NewArchive creates a report archive on top of a storage client.
func NewArchive(client Client, bucket string) *Archive {
	return &Archive{client: client, bucket: bucket}
}

// EnsureBucket verifies the bucket exists, creating it when absent.
func (a *Archive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %q: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %q: %w", a.bucket, err)
	}
	return nil
}

// Save uploads one report under the reports prefix.
func (a *Archive) Save(ctx context.Context, name string, data []byte) error {
	_, err := a.client.PutObject(ctx, a.bucket, reportPrefix+name,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "text/csv"})
	if err != nil {
		return fmt.Errorf("failed to archive report %q: %w", name, err)
	}
	return nil
}

// List returns all archived reports.
func (a *Archive) List(ctx context.Context) ([]ReportInfo, error) {
	objects := a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{
		Prefix:    reportPrefix,
		Recursive: true,
	})

	var reports []ReportInfo
	for obj := range objects {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list reports: %w", obj.Err)
		}
		reports = append(reports, ReportInfo{
			Name:         path.Base(obj.Key),
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return reports, nil
}

// Open retrieves one archived report for download.
func (a *Archive) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	rc, err := a.client.GetObject(ctx, a.bucket, reportPrefix+name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open report %q: %w", name, err)
	}
	return rc, nil
}

// Package storage provides the report archive backed by object storage.
//
// It wraps the MinIO Go client to provide a simplified interface for the
// operations the archive needs: checking bucket existence, uploading report
// files, listing archived reports, and retrieving one for download. This
// abstraction supports both AWS S3 and self-hosted MinIO instances.
//
// The archive is optional. When storage is not configured, executed runs
// still produce a downloadable report; they are just not retained anywhere.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it
// easier to mock storage interactions for unit testing (see
// core/storage/mocks).
package storage

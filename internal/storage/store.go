package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrTransfer       = errors.New("transfer failed")
)

// Store is the object-store collaborator of the pipeline.
type Store interface {
	// Download copies bucket/key byte for byte into localPath.
	Download(ctx context.Context, bucket, key, localPath string) error
	// Upload writes body to bucket/key and returns the service's response
	// metadata for the call.
	Upload(ctx context.Context, body []byte, bucket, key string) (ResponseMetadata, error)
}

// ResponseMetadata mirrors the response metadata block S3 clients expose.
type ResponseMetadata struct {
	HTTPStatusCode int               `json:"HTTPStatusCode"`
	RequestID      string            `json:"RequestId,omitempty"`
	HostID         string            `json:"HostId,omitempty"`
	ETag           string            `json:"ETag,omitempty"`
	VersionID      string            `json:"VersionId,omitempty"`
	HTTPHeaders    map[string]string `json:"HTTPHeaders,omitempty"`
}

type ObjectNotFoundError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *ObjectNotFoundError) Error() string {
	return fmt.Sprintf("%s: s3://%s/%s: %v", ErrObjectNotFound, e.Bucket, e.Key, e.Err)
}

func (e *ObjectNotFoundError) Unwrap() error { return e.Err }

func (e *ObjectNotFoundError) Is(target error) bool { return target == ErrObjectNotFound }

type TransferError struct {
	Op     string // "download" or "upload"
	Bucket string
	Key    string
	Err    error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s: %s s3://%s/%s: %v", ErrTransfer, e.Op, e.Bucket, e.Key, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

func (e *TransferError) Is(target error) bool { return target == ErrTransfer }

func contentType(key string) string {
	switch path.Ext(key) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var errNoSuchBucket = errors.New("NoSuchBucket: the specified bucket does not exist")

// MemoryStore keeps objects in process memory. It behaves like S3 for the
// calls the pipeline makes, including error kinds.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]map[string][]byte
	uploads []string

	// UploadErr, when set, fails every Upload with a TransferError wrapping it.
	UploadErr error
}

func NewMemoryStore(buckets ...string) *MemoryStore {
	m := &MemoryStore{buckets: make(map[string]map[string][]byte)}
	for _, b := range buckets {
		m.CreateBucket(b)
	}
	return m
}

func (m *MemoryStore) CreateBucket(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[name]; !ok {
		m.buckets[name] = make(map[string][]byte)
	}
}

// Put stores an object without recording an upload.
func (m *MemoryStore) Put(bucket, key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	objects, ok := m.buckets[bucket]
	if !ok {
		return errNoSuchBucket
	}
	objects[key] = append([]byte(nil), body...)
	return nil
}

func (m *MemoryStore) Get(bucket, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.buckets[bucket][key]
	return body, ok
}

// Keys lists a bucket's keys in lexical order.
func (m *MemoryStore) Keys(bucket string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.buckets[bucket]))
	for k := range m.buckets[bucket] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Uploads returns "bucket/key" for every successful Upload, in call order.
func (m *MemoryStore) Uploads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.uploads...)
}

func (m *MemoryStore) Download(ctx context.Context, bucket, key, localPath string) error {
	if err := ctx.Err(); err != nil {
		return &TransferError{Op: "download", Bucket: bucket, Key: key, Err: err}
	}
	m.mu.Lock()
	objects, bucketOK := m.buckets[bucket]
	body, ok := objects[key]
	m.mu.Unlock()
	if !bucketOK {
		return &TransferError{Op: "download", Bucket: bucket, Key: key, Err: errNoSuchBucket}
	}
	if !ok {
		return &ObjectNotFoundError{Bucket: bucket, Key: key, Err: fmt.Errorf("NoSuchKey (404): %s", key)}
	}
	if err := os.WriteFile(localPath, body, 0o600); err != nil {
		return fmt.Errorf("failed to write scratch file %s: %w", localPath, err)
	}
	return nil
}

func (m *MemoryStore) Upload(ctx context.Context, body []byte, bucket, key string) (ResponseMetadata, error) {
	if err := ctx.Err(); err != nil {
		return ResponseMetadata{}, &TransferError{Op: "upload", Bucket: bucket, Key: key, Err: err}
	}
	if m.UploadErr != nil {
		return ResponseMetadata{}, &TransferError{Op: "upload", Bucket: bucket, Key: key, Err: m.UploadErr}
	}
	if err := m.Put(bucket, key, body); err != nil {
		return ResponseMetadata{}, &TransferError{Op: "upload", Bucket: bucket, Key: key, Err: err}
	}

	m.mu.Lock()
	m.uploads = append(m.uploads, bucket+"/"+key)
	m.mu.Unlock()

	sum := md5.Sum(body)
	etag := `"` + hex.EncodeToString(sum[:]) + `"`
	requestID := uuid.NewString()
	return ResponseMetadata{
		HTTPStatusCode: http.StatusOK,
		RequestID:      requestID,
		ETag:           etag,
		HTTPHeaders: map[string]string{
			"Etag":             etag,
			"Content-Length":   "0",
			"X-Amz-Request-Id": requestID,
		},
	}, nil
}

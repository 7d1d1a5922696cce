package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/aws/smithy-go/middleware"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/sirupsen/logrus"
)

type S3Config struct {
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SessionToken    string `mapstructure:"session_token"`
	MaxAttempts     int    `mapstructure:"max_attempts"`
}

func (c S3Config) Validate() error {
	if c.Region == "" {
		return errors.New("storage.region is required")
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return errors.New("storage.access_key_id and storage.secret_access_key must be set together")
	}
	if c.MaxAttempts < 0 {
		return errors.New("storage.max_attempts cannot be negative")
	}
	return nil
}

// S3API is the subset of the S3 client the store calls.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Store struct {
	client S3API
	logger *logrus.Logger
}

// NewS3Store builds an S3 client from the default AWS config chain,
// overridden by whatever cfg sets. A custom endpoint targets S3-compatible
// stores such as MinIO or LocalStack.
func NewS3Store(ctx context.Context, cfg S3Config, logger *logrus.Logger) (*S3Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}
	if cfg.MaxAttempts > 0 {
		opts = append(opts, awsconfig.WithRetryMaxAttempts(cfg.MaxAttempts))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		logger.WithError(err).Error("failed to load AWS config")
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewS3StoreWithClient(client, logger), nil
}

func NewS3StoreWithClient(client S3API, logger *logrus.Logger) *S3Store {
	return &S3Store{client: client, logger: logger}
}

func (s *S3Store) Download(ctx context.Context, bucket, key, localPath string) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return &ObjectNotFoundError{Bucket: bucket, Key: key, Err: err}
		}
		return &TransferError{Op: "download", Bucket: bucket, Key: key, Err: err}
	}
	defer out.Body.Close()

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create scratch file %s: %w", localPath, err)
	}
	n, err := io.Copy(f, out.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(localPath)
		return &TransferError{Op: "download", Bucket: bucket, Key: key, Err: err}
	}

	s.logger.WithFields(logrus.Fields{
		"bucket": bucket,
		"key":    key,
		"bytes":  n,
	}).Debug("object downloaded")
	return nil
}

func (s *S3Store) Upload(ctx context.Context, body []byte, bucket, key string) (ResponseMetadata, error) {
	out, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType(key)),
	})
	if err != nil {
		return ResponseMetadata{}, &TransferError{Op: "upload", Bucket: bucket, Key: key, Err: err}
	}

	meta := responseMetadata(out.ResultMetadata)
	meta.ETag = aws.ToString(out.ETag)
	meta.VersionID = aws.ToString(out.VersionId)

	s.logger.WithFields(logrus.Fields{
		"bucket":     bucket,
		"key":        key,
		"bytes":      len(body),
		"status":     meta.HTTPStatusCode,
		"request_id": meta.RequestID,
	}).Debug("object uploaded")
	return meta, nil
}

func responseMetadata(md middleware.Metadata) ResponseMetadata {
	meta := ResponseMetadata{HTTPStatusCode: http.StatusOK}
	if id, ok := awsmiddleware.GetRequestIDMetadata(md); ok {
		meta.RequestID = id
	}
	raw, ok := awsmiddleware.GetRawResponse(md).(*smithyhttp.Response)
	if !ok || raw == nil || raw.Response == nil {
		return meta
	}

	meta.HTTPStatusCode = raw.StatusCode
	meta.HostID = raw.Header.Get("x-amz-id-2")
	meta.HTTPHeaders = make(map[string]string, len(raw.Header))
	for k := range raw.Header {
		meta.HTTPHeaders[http.CanonicalHeaderKey(k)] = raw.Header.Get(k)
	}
	return meta
}

// isNotFound reports a missing key. A missing bucket is a transfer failure,
// not a missing object.
func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "404":
			return true
		case "NoSuchBucket":
			return false
		}
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}

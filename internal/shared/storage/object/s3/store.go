// Package s3 keeps uploaded documents and extracted text in an S3 bucket.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"jobportal-backend/internal/shared/storage/object"
)

// api is the slice of the S3 client the store calls.
type api interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store implements object.ObjectStore on top of S3.
type Store struct {
	api      api
	bucket   string
	prefix   string
	kmsKeyID string
}

// New loads the default AWS config and returns a bucket-backed store.
func New(ctx context.Context, region, bucket, prefix, kmsKeyID string) (object.ObjectStore, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	store, err := newStore(s3.NewFromConfig(cfg), bucket, prefix, kmsKeyID)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func newStore(client api, bucket, prefix, kmsKeyID string) (*Store, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	return &Store{
		api:      client,
		bucket:   bucket,
		prefix:   strings.Trim(strings.TrimSpace(prefix), "/"),
		kmsKeyID: strings.TrimSpace(kmsKeyID),
	}, nil
}

// Save sniffs the content type, then writes the body under a fresh key in
// the owner's namespace.
func (s *Store) Save(ctx context.Context, ownerID, fileName string, r io.Reader) (string, int64, string, error) {
	key, err := object.NewKey(ownerID, fileName)
	if err != nil {
		return "", 0, "", fmt.Errorf("storage key: %w", err)
	}
	mimeType, body, err := object.Sniff(r)
	if err != nil {
		return "", 0, "", fmt.Errorf("read sniff: %w", err)
	}
	n, err := s.SaveWithKey(ctx, key, mimeType, body)
	if err != nil {
		return "", 0, "", err
	}
	return key, n, mimeType, nil
}

// SaveWithKey writes r under storageKey and reports how many bytes were sent.
func (s *Store) SaveWithKey(ctx context.Context, storageKey, contentType string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	key := s.objectKey(storageKey)
	body := &byteCounter{r: r}

	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	s.encrypt(in)

	if _, err := s.api.PutObject(ctx, in); err != nil {
		return 0, fmt.Errorf("s3 put %s/%s: %w", s.bucket, key, err)
	}
	return body.n, nil
}

// Open streams an object back. Missing keys yield object.ErrNotFound.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := s.objectKey(storageKey)
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var missing *s3types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("%s: %w", storageKey, object.ErrNotFound)
		}
		return nil, fmt.Errorf("s3 get %s/%s: %w", s.bucket, key, err)
	}
	return out.Body, nil
}

func (s *Store) objectKey(storageKey string) string {
	key := strings.TrimLeft(storageKey, "/")
	switch {
	case s.prefix == "":
		return key
	case key == "":
		return s.prefix
	default:
		return path.Join(s.prefix, key)
	}
}

// encrypt applies SSE-KMS when a key is configured and SSE-S3 otherwise.
func (s *Store) encrypt(in *s3.PutObjectInput) {
	if s.kmsKeyID == "" {
		in.ServerSideEncryption = s3types.ServerSideEncryptionAes256
		return
	}
	in.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
	in.SSEKMSKeyId = aws.String(s.kmsKeyID)
}

type byteCounter struct {
	r io.Reader
	n int64
}

func (b *byteCounter) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	b.n += int64(n)
	return n, err
}

var _ object.ObjectStore = (*Store)(nil)

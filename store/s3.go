package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/20100g/ActiveDirectoryCSDsc/interfaces"
)

// S3Store implements a registry store on Amazon S3 or compatible object
// storage. Each setting value is one object under the target's prefix, and
// the "active" object under the base prefix names the active target.
type S3Store struct {
	client      *s3.S3
	bucketName  string
	prefix      string
	log         *slog.Logger
	locationURI string
}

// NewS3Store creates an S3-backed registry store. When accessKey and
// secretKey are empty the default credential chain is used.
func NewS3Store(bucketName, prefix, region, endpoint, accessKey, secretKey string, log *slog.Logger) (*S3Store, error) {
	cfg := aws.Config{
		Region: aws.String(region),
	}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	if accessKey != "" && secretKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(accessKey, secretKey, "")
	}

	sess, err := session.NewSession(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	uri := fmt.Sprintf("s3://%s/%s?region=%s", bucketName, prefix, region)
	if endpoint != "" {
		uri += fmt.Sprintf("&endpoint=%s", endpoint)
	}

	return &S3Store{
		client:      s3.New(sess),
		bucketName:  bucketName,
		prefix:      strings.Trim(prefix, "/"),
		log:         log,
		locationURI: uri,
	}, nil
}

// ResolveActiveTarget reads the "active" object. A missing object or empty
// body means no target is active.
func (s *S3Store) ResolveActiveTarget(ctx context.Context) (string, error) {
	body, found, err := s.getObject(ctx, s.objectKey(activeFileName, ""))
	if err != nil {
		return "", fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
	}
	if !found {
		return "", fmt.Errorf("%w: no active target in bucket %s", interfaces.ErrStoreUnavailable, s.bucketName)
	}

	target := strings.TrimSpace(body)
	if target == "" {
		return "", fmt.Errorf("%w: active target object is empty", interfaces.ErrStoreUnavailable)
	}
	return target, nil
}

// SetActiveTarget writes the "active" object naming the active target.
func (s *S3Store) SetActiveTarget(ctx context.Context, target string) error {
	return s.putObject(ctx, s.objectKey(activeFileName, ""), target)
}

// ReadValue reads one setting value object. A missing object reports an
// absent value.
func (s *S3Store) ReadValue(ctx context.Context, target, name string) (interfaces.RawValue, error) {
	key := s.objectKey(target, name)
	body, found, err := s.getObject(ctx, key)
	if err != nil {
		return interfaces.RawValue{}, fmt.Errorf("failed to get object from S3: %w", err)
	}
	if !found {
		return interfaces.AbsentRaw(), nil
	}

	s.log.Debug("Read value from S3",
		slog.String("bucket", s.bucketName),
		slog.String("key", key))

	return interfaces.StringRaw(body), nil
}

// WriteValue stores one encoded setting value object.
func (s *S3Store) WriteValue(ctx context.Context, target, name, encoded string) error {
	key := s.objectKey(target, name)
	if err := s.putObject(ctx, key, encoded); err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrWriteFailed, err)
	}

	s.log.Debug("Wrote value to S3",
		slog.String("bucket", s.bucketName),
		slog.String("key", key))
	return nil
}

// LocationURI returns the URI this store was created from.
func (s *S3Store) LocationURI() string {
	return s.locationURI
}

func (s *S3Store) getObject(ctx context.Context, key string) (string, bool, error) {
	result, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "404") {
			return "", false, nil
		}
		return "", false, err
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return "", false, fmt.Errorf("failed to read object body: %w", err)
	}
	return string(data), true, nil
}

func (s *S3Store) putObject(ctx context.Context, key, body string) error {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
		Body:   bytes.NewReader([]byte(body)),
	})
	return err
}

// objectKey builds the object key for a target's setting, or for a bare
// base-prefix object when name is empty.
func (s *S3Store) objectKey(target, name string) string {
	if name == "" {
		return path.Join(s.prefix, target)
	}
	return path.Join(s.prefix, target, name)
}

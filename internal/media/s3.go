// Package media uploads product imagery to an S3-compatible bucket and
// hands back public URLs for the catalog tables. Like the gateway, a nil
// *Store is the unconfigured mode.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dajiagoods/storefront/internal/ident"
)

var ErrNotConfigured = errors.New("media: bucket not configured")

type Config struct {
	Bucket   string
	Region   string
	Endpoint string // optional, for MinIO-style deployments
	Prefix   string // optional key prefix, e.g. "products/"
}

type Store struct {
	client    *s3.Client
	bucket    string
	prefix    string
	publicURL string
}

// New connects to the bucket. Returns nil (not an error) when no bucket is
// configured so callers can carry the same optional-dependency shape they
// use for the gateway.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("media: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	public := cfg.Endpoint
	if public == "" {
		public = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	} else {
		public = strings.TrimSuffix(public, "/") + "/" + cfg.Bucket
	}
	return &Store{
		client:    client,
		bucket:    cfg.Bucket,
		prefix:    cfg.Prefix,
		publicURL: public,
	}, nil
}

// Upload stores the file under a collision-free key and returns the public
// URL to persist alongside the file name.
func (s *Store) Upload(ctx context.Context, fileName string, data []byte) (string, error) {
	if s == nil {
		return "", ErrNotConfigured
	}
	key := s.prefix + ident.MediaKey(fileName)
	contentType := mime.TypeByExtension(path.Ext(fileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("media: upload %s: %w", fileName, err)
	}
	return s.publicURL + "/" + key, nil
}

// Delete removes a previously uploaded object given its public URL.
func (s *Store) Delete(ctx context.Context, url string) error {
	if s == nil {
		return ErrNotConfigured
	}
	key := strings.TrimPrefix(url, s.publicURL+"/")
	if key == url || key == "" {
		return fmt.Errorf("media: url %q is not in bucket %s", url, s.bucket)
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("media: delete %s: %w", key, err)
	}
	return nil
}

// Package blobstore uploads raw bytes to an S3-compatible bucket under a
// namespaced key and resolves keys to public URLs.
package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"imageflow/internal/domain"
)

// Prefix identifies which side of the pipeline wrote an object.
type Prefix string

const (
	PrefixInputs  Prefix = "inputs"
	PrefixOutputs Prefix = "outputs"
)

// Store uploads objects to one S3-compatible bucket and knows how to
// resolve a key into the bucket's canonical public URL.
type Store struct {
	client    *s3.Client
	bucket    string
	folder    string
	publicURL string
}

// Options configures a Store. Endpoint is the S3-compatible provider's
// base URL (R2, MinIO, DigitalOcean Spaces, ...); PublicURL is the base
// the proxy and clients resolve keys against.
type Options struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Endpoint  string
	PublicURL string
	Folder    string
	Region    string
}

// New builds a Store targeting an S3-compatible endpoint via a custom base
// endpoint resolver, the way non-AWS buckets are addressed with the v2 SDK.
func New(ctx context.Context, opts Options) (*Store, error) {
	region := opts.Region
	if region == "" {
		region = "auto"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: loading aws config: %v", domain.ErrConfiguration, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &Store{
		client:    client,
		bucket:    opts.Bucket,
		folder:    strings.Trim(opts.Folder, "/"),
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
	}, nil
}

// Upload writes bytes under <folder>/<prefix>/<uuid>.<ext> with public-read
// visibility, and returns the resulting Stored Asset. ext defaults to the
// substring after "image/" in mime when not given. No retries — the
// caller decides.
func (s *Store) Upload(ctx context.Context, data []byte, mimeType string, prefix Prefix, ext string) (*domain.StoredAsset, error) {
	if ext == "" {
		ext = extensionFromMIME(mimeType)
	}
	key := fmt.Sprintf("%s/%s/%s.%s", s.folder, prefix, uuid.NewString(), ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimeType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	return &domain.StoredAsset{
		Key:       key,
		PublicURL: s.PublicURL(key),
	}, nil
}

// PublicURL resolves key against the configured public base URL.
func (s *Store) PublicURL(key string) string {
	return s.publicURL + "/" + strings.TrimLeft(key, "/")
}

func extensionFromMIME(mimeType string) string {
	if idx := strings.Index(mimeType, "/"); idx >= 0 {
		ext := mimeType[idx+1:]
		if ext == "jpg" {
			return "jpg"
		}
		return ext
	}
	return "bin"
}

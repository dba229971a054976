package resource

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the part of *s3.Client an S3Source uses.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source serves objects from an S3 bucket.
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	src := resource.NewS3Source(s3.NewFromConfig(cfg), "assets", "public/")
type S3Source struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Source creates a source reading bucket objects under prefix.
func NewS3Source(client S3API, bucket, prefix string) *S3Source {
	return &S3Source{client: client, bucket: bucket, prefix: prefix}
}

// Open implements Source.
func (s *S3Source) Open(ctx context.Context, name string) (io.ReadCloser, Meta, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + name),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, Meta{}, ErrNotFound
		}
		return nil, Meta{}, fmt.Errorf("resource: s3 get %s: %w", name, err)
	}

	meta := Meta{
		ContentType: aws.ToString(out.ContentType),
		Size:        -1,
	}
	if meta.ContentType == "" {
		meta.ContentType = typeByName(name)
	}
	if out.ContentLength != nil {
		meta.Size = *out.ContentLength
	}
	if out.LastModified != nil {
		meta.ModTime = *out.LastModified
	}
	return out.Body, meta, nil
}

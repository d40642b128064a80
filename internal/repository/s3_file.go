package repository

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appConfig "github.com/KUSHAL0100/payals-kitchen/internal/config"
)

// S3FileRepository implements domain.FileRepository against any S3-compatible
// store; menu photos are the only current payload.
type S3FileRepository struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewS3FileRepository creates a new S3 file repository
func NewS3FileRepository(ctx context.Context, cfg appConfig.S3Config) (*S3FileRepository, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config, %v", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true // required for MinIO/SeaweedFS style endpoints
	})

	repo := &S3FileRepository{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: cfg.Endpoint,
	}

	if err := repo.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return repo, nil
}

// Upload saves a file and returns its public URL.
func (r *S3FileRepository) Upload(ctx context.Context, file []byte, filename string, contentType string) (string, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(filename),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", r.publicURL, r.bucket, filename), nil
}

func (r *S3FileRepository) ensureBucket(ctx context.Context) error {
	_, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(r.bucket),
	})
	if err != nil {
		_, err = r.client.CreateBucket(ctx, &s3.CreateBucketInput{
			Bucket: aws.String(r.bucket),
		})
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", r.bucket, err)
		}
	}
	return nil
}

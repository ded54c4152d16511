package storage

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// S3Config holds the settings of an S3-compatible bucket (AWS or MinIO).
type S3Config struct {
	AccessKey    string
	SecretKey    string
	Bucket       string
	Region       string
	BaseEndpoint string
}

// S3Archive copies refund photos to object storage.
type S3Archive struct {
	client *s3.Client
	bucket string
	now    func() time.Time
}

func NewS3Archive(ctx context.Context, c S3Config) (*S3Archive, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.AccessKey,
			c.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Archive{client: client, bucket: c.Bucket, now: time.Now}, nil
}

// StorageKey returns a fresh object key for a user's refund photo.
func StorageKey(userID int64, at time.Time) string {
	return fmt.Sprintf("refunds/%d/%d/%02d/%s.jpg", userID, at.Year(), at.Month(), uuid.New())
}

// Upload stores the file at path and returns its object key.
func (a *S3Archive) Upload(ctx context.Context, userID int64, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()

	key := StorageKey(userID, a.now())
	_, err = putObject(a.client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return key, nil
}

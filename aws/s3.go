// Package aws defines the clients used to interact with AWS services
package aws

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/spf13/viper"
)

// ObjectStore is the narrow surface the handlers need from blob storage
type ObjectStore interface {
	Put(ctx context.Context, key, contentType, fileName, userID string, body io.Reader) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

type S3Client struct {
	C        *s3.Client
	Uploader *manager.Uploader
	Bucket   *string
	Region   string
}

func NewS3() (*S3Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			viper.GetString("aws.access_key_id"),
			viper.GetString("aws.secret_access_key"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	region := viper.GetString("aws.region")
	bucket := aws.String(viper.GetString("aws.bucket"))

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.Region = region
	})

	_, err = client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", *bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3Client{
		C:        client,
		Uploader: manager.NewUploader(client),
		Bucket:   bucket,
		Region:   region,
	}, nil
}

func (s *S3Client) Put(ctx context.Context, key, contentType, fileName, userID string, body io.Reader) error {
	_, err := s.Uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      s.Bucket,
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"file_name": fileName,
			"user_id":   userID,
		},
	})
	return err
}

func (s *S3Client) Delete(ctx context.Context, key string) error {
	_, err := s.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: s.Bucket,
		Key:    aws.String(key),
	})
	return err
}

func (s *S3Client) URL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", *s.Bucket, s.Region, key)
}

// ImageKey derives the object key for a user's profile picture. Upload
// and delete must use the same rule
func ImageKey(userID, imageID string) string {
	return fmt.Sprintf("profile-pics/%s-%s", userID, imageID)
}

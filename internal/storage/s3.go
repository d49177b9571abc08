package storage

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"project-service/internal/config"
	apperrors "project-service/pkg/errors"
	"project-service/pkg/validator"
)

const (
	emptyAWSSessionToken         = ""
	pathSeparator                = '/'
	awsErrCodeNotFound           = "NotFound"
	errFailedCreateAWSSessionFmt = "failed to create AWS session: %w"
	errFailedPutObjectFmt        = "failed to put object %s: %w"
	errFailedDeleteObjectFmt     = "failed to delete object %s: %w"
	errFailedHeadObjectFmt       = "failed to head object %s: %w"
)

// S3Backend keeps project files in a bucket, optionally under a key prefix.
type S3Backend struct {
	svc    s3iface.S3API
	bucket string
	prefix string
}

func NewS3Backend(cfg *config.AWSConfig) (*S3Backend, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			emptyAWSSessionToken,
		),
	})
	if err != nil {
		return nil, fmt.Errorf(errFailedCreateAWSSessionFmt, err)
	}

	return NewS3BackendWithClient(s3.New(sess), cfg.Bucket, cfg.KeyPrefix), nil
}

func NewS3BackendWithClient(svc s3iface.S3API, bucket, prefix string) *S3Backend {
	return &S3Backend{svc: svc, bucket: bucket, prefix: prefix}
}

func (b *S3Backend) Write(ctx context.Context, key string, data []byte, contentType string) error {
	objectKey, err := b.objectKey(key)
	if err != nil {
		return err
	}

	_, err = b.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf(errFailedPutObjectFmt, objectKey, err)
	}

	return nil
}

// Remove checks for the object first because DeleteObject succeeds on
// missing keys.
func (b *S3Backend) Remove(ctx context.Context, key string) error {
	exists, err := b.Exists(ctx, key)
	if err != nil {
		return err
	}

	objectKey, _ := b.objectKey(key)
	if !exists {
		return fmt.Errorf(errFailedDeleteObjectFmt, objectKey, fs.ErrNotExist)
	}

	_, err = b.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf(errFailedDeleteObjectFmt, objectKey, err)
	}

	return nil
}

func (b *S3Backend) Exists(ctx context.Context, key string) (bool, error) {
	objectKey, err := b.objectKey(key)
	if err != nil {
		return false, err
	}

	_, err = b.svc.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == awsErrCodeNotFound {
			return false, nil
		}
		return false, fmt.Errorf(errFailedHeadObjectFmt, objectKey, err)
	}

	return true, nil
}

func (b *S3Backend) objectKey(key string) (string, error) {
	if err := validator.RelativePath(key); err != nil {
		return "", fmt.Errorf(errInvalidKeyFmt, key, err, apperrors.ErrPathTraversal)
	}
	return BuildObjectKey(b.prefix, key), nil
}

func BuildObjectKey(folderPath, filename string) string {
	if folderPath == "" {
		return filename
	}

	if folderPath[len(folderPath)-1] != pathSeparator {
		folderPath += "/"
	}

	return folderPath + filename
}

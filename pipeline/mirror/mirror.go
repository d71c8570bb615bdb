// Package mirror uploads a run's exported files to an S3-compatible bucket.
package mirror

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/1siamBot/asset-exporter/pipeline/config"
	"github.com/1siamBot/asset-exporter/pipeline/metrics"
)

// Uploader copies files under an export root to a bucket, keyed by their
// path relative to the root.
type Uploader struct {
	client *s3.Client
	bucket string
	prefix string
	log    *zap.Logger
}

// New connects to the bucket described by cfg, creating it if it does not
// exist. A custom endpoint is addressed path-style, as MinIO expects.
func New(ctx context.Context, cfg config.Mirror, log *zap.Logger) (*Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := endpointURL(cfg.Endpoint, cfg.UseSSL)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	u := &Uploader{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix, log: log}
	if err := u.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return u, nil
}

func endpointURL(endpoint string, useSSL bool) string {
	if endpoint == "" || strings.Contains(endpoint, "://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

func (u *Uploader) ensureBucket(ctx context.Context) error {
	start := time.Now()
	_, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(u.bucket),
	})
	if err == nil {
		metrics.RecordMirrorOperation("head_bucket", time.Since(start), true)
		return nil
	}
	_, createErr := u.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(u.bucket),
	})
	if createErr != nil {
		metrics.RecordMirrorOperation("create_bucket", time.Since(start), false)
		return fmt.Errorf("bucket %s does not exist and cannot create: %w", u.bucket, createErr)
	}
	metrics.RecordMirrorOperation("create_bucket", time.Since(start), true)
	u.log.Info("created mirror bucket", zap.String("bucket", u.bucket))
	return nil
}

// ObjectKey derives the object key for file under root: the slash-separated
// relative path, behind prefix when one is set.
func ObjectKey(prefix, root, file string) (string, error) {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return "", fmt.Errorf("key for %s: %w", file, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("key for %s: outside export root %s", file, root)
	}
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return rel, nil
	}
	return path.Join(prefix, rel), nil
}

// Upload puts every file in files, which must lie under root. It stops at
// the first failure and reports how many files were uploaded.
func (u *Uploader) Upload(ctx context.Context, root string, files []string) (int, error) {
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		key, err := ObjectKey(u.prefix, root, file)
		if err != nil {
			return i, err
		}
		if err := u.put(ctx, key, file); err != nil {
			return i, err
		}
	}
	return len(files), nil
}

func (u *Uploader) put(ctx context.Context, key, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return err
	}

	start := time.Now()
	input := &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(st.Size()),
	}
	if ct := mime.TypeByExtension(filepath.Ext(file)); ct != "" {
		input.ContentType = aws.String(ct)
	}
	if _, err := u.client.PutObject(ctx, input); err != nil {
		metrics.RecordMirrorOperation("put_object", time.Since(start), false)
		return fmt.Errorf("put object %s: %w", key, err)
	}
	metrics.RecordMirrorOperation("put_object", time.Since(start), true)
	u.log.Debug("mirrored file", zap.String("key", key), zap.Int64("size", st.Size()))
	return nil
}

// Package s3 stores media objects in S3-compatible buckets (AWS S3, MinIO, R2).
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/futamarket/market-backend/pkg/config"
	"github.com/futamarket/market-backend/pkg/logger"
)

type putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Client uploads objects to a single bucket.
type Client struct {
	api     putter
	bucket  string
	baseURL string
}

// New builds a client from static credentials when provided, falling back to
// the default AWS credential chain.
func New(ctx context.Context, cfg config.S3Config, logg *logger.Logger) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsConfig, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// MinIO and most S3 clones only route path-style requests
			o.UsePathStyle = true
		})
	}

	client := newClient(s3.NewFromConfig(awsConfig, clientOpts...), cfg)
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"bucket": cfg.Bucket, "region": cfg.Region}), "s3 client initialized")
	}
	return client, nil
}

func newClient(api putter, cfg config.S3Config) *Client {
	baseURL := strings.TrimRight(cfg.PublicURL, "/")
	switch {
	case baseURL != "":
	case cfg.Endpoint != "":
		baseURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &Client{api: api, bucket: cfg.Bucket, baseURL: baseURL}
}

// Put writes data under key and returns its public URL.
func (c *Client) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", errors.New("s3 object key is required")
	}
	input := &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := c.api.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return c.URL(key), nil
}

// URL returns the public URL for key, escaping each path segment.
func (c *Client) URL(key string) string {
	segments := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return c.baseURL + "/" + strings.Join(segments, "/")
}

// Ping verifies the bucket is reachable with the configured credentials.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)})
	if err != nil {
		return fmt.Errorf("s3 head bucket %s: %w", c.bucket, err)
	}
	return nil
}

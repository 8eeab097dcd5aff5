package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/denis-jdsouza/customer-infrastructure-manager/pkg/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrNotFound reports that no document exists at the requested key.
var ErrNotFound = errors.New("state document not found")

// API is the subset of the S3 client the store uses.
type API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Client reads and writes JSON state documents in a single S3 bucket.
type Client struct {
	api    API
	bucket string
}

// NewClient creates a store client against the given bucket using the
// default AWS credential chain.
func NewClient(ctx context.Context, bucket, region string) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for state store: %w", err)
	}
	return &Client{api: s3.NewFromConfig(awsCfg), bucket: bucket}, nil
}

// NewClientWithAPI creates a store client over an existing S3 API, used by
// tests to substitute a fake.
func NewClientWithAPI(api API, bucket string) *Client {
	return &Client{api: api, bucket: bucket}
}

// GetJSON reads the document at key and unmarshals it into out.
// Returns ErrNotFound when no document exists at the key.
func (c *Client) GetJSON(ctx context.Context, key string, out interface{}) error {
	resp, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return fmt.Errorf("s3://%s/%s: %w", c.bucket, key, ErrNotFound)
		}
		return fmt.Errorf("failed to read s3://%s/%s: %w", c.bucket, key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read body of s3://%s/%s: %w", c.bucket, key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode s3://%s/%s: %w", c.bucket, key, err)
	}
	logging.Debug("StateStore", "Loaded s3://%s/%s (%d bytes)", c.bucket, key, len(data))
	return nil
}

// PutJSON marshals v and writes it to key, overwriting any existing document.
func (c *Client) PutJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document for s3://%s/%s: %w", c.bucket, key, err)
	}

	_, err = c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to write s3://%s/%s: %w", c.bucket, key, err)
	}
	logging.Debug("StateStore", "Wrote s3://%s/%s (%d bytes)", c.bucket, key, len(data))
	return nil
}

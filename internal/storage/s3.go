// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage resolves page images to the public URLs of an
// S3-compatible bucket. It wraps the AWS SDK v2 with path-style
// addressing, which CEPH/Hetzner and MinIO require.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config locates the image bucket.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	// PublicURL is an optional CDN or direct URL the objects are served from.
	PublicURL string
}

// Enabled reports whether enough is configured to reach a bucket.
func (c Config) Enabled() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Client serves public URLs for objects of the image bucket.
type Client struct {
	s3        *s3.Client
	bucket    string
	endpoint  string
	publicURL string
}

// New creates a storage client. It returns (nil, nil) when cfg is not
// enabled, so the site can run without images.
func New(cfg Config) (*Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket name is required")
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	})

	return &Client{
		s3:        client,
		bucket:    cfg.Bucket,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// Ping verifies that the bucket exists and the credentials can reach it.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)})
	if err != nil {
		return fmt.Errorf("s3 head bucket %s: %w", c.bucket, err)
	}
	return nil
}

// FileURL returns the public URL of the object stored under key. Each
// path segment is escaped, so keys may contain spaces.
func (c *Client) FileURL(key string) string {
	segments := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	escaped := strings.Join(segments, "/")

	if c.publicURL != "" {
		return c.publicURL + "/" + escaped
	}
	return c.endpoint + "/" + c.bucket + "/" + escaped
}

// Bucket returns the name of the image bucket.
func (c *Client) Bucket() string {
	return c.bucket
}

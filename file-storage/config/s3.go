package config

import "fmt"

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region       string // AWS region (e.g., "ap-southeast-1")
	Bucket       string // S3 bucket name
	BaseURL      string // Base URL for object links (e.g., "https://bucket.s3.amazonaws.com")
	Endpoint     string // Custom endpoint (MinIO, LocalStack); empty for AWS
	AccessKey    string // AWS access key ID
	SecretKey    string // AWS secret access key
	PathPrefix   string // Key prefix (e.g., "fixtures")
	UsePathStyle bool   // Path-style addressing, needed by most S3 compatibles
}

// Driver returns the driver name
func (sc *S3Config) Driver() string {
	return "s3"
}

// Validate validates S3 configuration
func (sc *S3Config) Validate() error {
	if sc.Region == "" {
		return fmt.Errorf("s3 driver: region is required")
	}
	if sc.Bucket == "" {
		return fmt.Errorf("s3 driver: bucket is required")
	}
	if sc.AccessKey == "" {
		return fmt.Errorf("s3 driver: access_key is required")
	}
	if sc.SecretKey == "" {
		return fmt.Errorf("s3 driver: secret_key is required")
	}
	return nil
}

// WithS3Driver adds an S3 driver configuration
func (c *Config) WithS3Driver(sc *S3Config) *Config {
	if sc.BaseURL == "" && sc.Bucket != "" {
		sc.BaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", sc.Bucket, sc.Region)
	}
	if sc.PathPrefix == "" {
		sc.PathPrefix = DefaultPathPrefix
	}
	c.Drivers["s3"] = sc
	return c
}

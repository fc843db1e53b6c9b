// Package r2 archives uploaded documents in a Cloudflare R2 bucket.
package r2

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime"
	"net/url"
	"path"
	"path/filepath"

	appconfig "pdfquiz/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// objectPutter is the part of the S3 API the archive uses.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Client holds the configuration for writing to Cloudflare R2.
type Client struct {
	s3Client   objectPutter
	bucketName string
	publicURL  string // base public URL of the bucket, e.g. https://pub-xxxxxxxx.r2.dev
}

// NewClient builds an R2 client from cfg. It returns (nil, nil) when R2 is not
// fully configured so the server runs with archiving disabled.
func NewClient(ctx context.Context, cfg appconfig.R2Config) (*Client, error) {
	if !cfg.Enabled() {
		log.Println("WARN: Cloudflare R2 environment variables not fully configured (CLOUDFLARE_ACCOUNT_ID, R2_BUCKET_NAME, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_PUBLIC_URL). Upload archiving will be skipped.")
		return nil, nil
	}
	if _, err := url.Parse(cfg.PublicURL); err != nil {
		return nil, fmt.Errorf("invalid R2 public URL %q: %w", cfg.PublicURL, err)
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		config.WithRegion("auto"), // R2 ignores regions
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for R2: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	log.Printf("INFO: R2 Client initialized for bucket '%s'", cfg.Bucket)
	return newClient(s3Client, cfg.Bucket, cfg.PublicURL), nil
}

func newClient(api objectPutter, bucket, publicURL string) *Client {
	return &Client{s3Client: api, bucketName: bucket, publicURL: publicURL}
}

// ObjectKey returns the key an upload is stored under:
// "uploads/<sessionID>/<uploadID>/<filename>".
func ObjectKey(sessionID, uploadID uuid.UUID, filename string) string {
	name := path.Base(filepath.ToSlash(filename))
	if name == "." || name == "/" || name == "" {
		name = "document.pdf"
	}
	return fmt.Sprintf("uploads/%s/%s/%s", sessionID, uploadID, name)
}

// UploadFile stores content in the bucket and returns its public URL.
func (c *Client) UploadFile(ctx context.Context, sessionID, uploadID uuid.UUID, filename string, content io.Reader) (string, error) {
	if c == nil || c.s3Client == nil {
		return "", fmt.Errorf("R2 client not initialized, skipping upload")
	}

	objectKey := ObjectKey(sessionID, uploadID, filename)

	contentType := mime.TypeByExtension(filepath.Ext(objectKey))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(objectKey),
		Body:        content,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to R2 (key: %s): %w", objectKey, err)
	}

	baseURL, err := url.Parse(c.publicURL)
	if err != nil {
		return "", fmt.Errorf("invalid R2 public base URL configured: %w", err)
	}
	baseURL.Path = path.Join(baseURL.Path, objectKey)

	publicFileURL := baseURL.String()
	log.Printf("INFO: Successfully uploaded file to R2: %s", publicFileURL)
	return publicFileURL, nil
}

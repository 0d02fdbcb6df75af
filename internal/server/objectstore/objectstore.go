// Package objectstore hands out presigned upload URLs for user media
// stored in an S3 compatible bucket.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/iudanet/vidtube/internal/models"
)

// DefaultUploadTTL is used when Config.UploadTTL is not set.
const DefaultUploadTTL = 15 * time.Minute

// Presigner is implemented by *s3.PresignClient.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Config описывает подключение к S3 совместимому хранилищу (MinIO, AWS)
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	// PublicURL is the base under which stored objects are served.
	// Defaults to Endpoint/Bucket.
	PublicURL string
	UploadTTL time.Duration
}

// Upload is a presigned request the client uses to put one object.
type Upload struct {
	ExpiresAt time.Time   `json:"expires_at"`
	Headers   http.Header `json:"headers,omitempty"`
	URL       string      `json:"url"`
	Method    string      `json:"method"`
	Key       string      `json:"key"`
}

// Store выдает presigned URL для загрузки медиа пользователей
type Store struct {
	presigner Presigner
	now       func() time.Time
	bucket    string
	publicURL string
	ttl       time.Duration
}

// New builds a Store backed by an S3 client using static credentials.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("object store bucket is required")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// MinIO требует path-style адресацию
			o.UsePathStyle = true
		}
	})

	return NewWithPresigner(s3.NewPresignClient(client), cfg), nil
}

// NewWithPresigner builds a Store on top of an existing presigner.
func NewWithPresigner(p Presigner, cfg Config) *Store {
	ttl := cfg.UploadTTL
	if ttl <= 0 {
		ttl = DefaultUploadTTL
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}

	return &Store{
		presigner: p,
		now:       time.Now,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		ttl:       ttl,
	}
}

// KeyPrefix returns the prefix under which media of the given kind is stored.
func KeyPrefix(userID string, kind models.MediaKind) string {
	return "users/" + userID + "/" + string(kind) + "/"
}

// UploadURL presigns a PUT for a fresh object key owned by userID.
func (s *Store) UploadURL(ctx context.Context, userID string, kind models.MediaKind) (*Upload, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown media kind %q", kind)
	}

	key := KeyPrefix(userID, kind) + uuid.NewString()

	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &Upload{
		URL:       req.URL,
		Method:    req.Method,
		Headers:   req.SignedHeader,
		Key:       key,
		ExpiresAt: s.now().Add(s.ttl),
	}, nil
}

// OwnsKey reports whether key was issued to userID for kind.
func (s *Store) OwnsKey(userID string, kind models.MediaKind, key string) bool {
	prefix := KeyPrefix(userID, kind)
	rest, ok := strings.CutPrefix(key, prefix)
	if !ok || rest == "" {
		return false
	}
	return !strings.ContainsAny(rest, "/\\") && !strings.Contains(rest, "..")
}

// ObjectURL returns the public URL of a stored object.
func (s *Store) ObjectURL(key string) string {
	return s.publicURL + "/" + key
}

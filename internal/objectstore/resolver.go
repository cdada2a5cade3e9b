// Package objectstore resolves stored audio object keys into URLs that the
// transcription provider can fetch.
package objectstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// Config holds object storage and CDN settings.
type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool

	// CDNBaseURL, when set, is preferred over presigned URLs: the resolved
	// URL is simply {base}/{key}.
	CDNBaseURL string

	// PresignExpiry bounds the lifetime of generated presigned URLs.
	PresignExpiry time.Duration
}

// Resolver turns object keys into retrievable URLs, either by prefixing a
// CDN base or by generating a presigned GET URL against the bucket.
type Resolver struct {
	client        *minio.Client
	bucket        string
	cdnBaseURL    string
	presignExpiry time.Duration
	log           zerolog.Logger
}

// NewResolver builds a Resolver from config. The storage client is only
// constructed when presigned URLs can be needed, i.e. no CDN is configured.
func NewResolver(cfg Config, log zerolog.Logger) (*Resolver, error) {
	r := &Resolver{
		bucket:        cfg.Bucket,
		cdnBaseURL:    cfg.CDNBaseURL,
		presignExpiry: cfg.PresignExpiry,
		log:           log.With().Str("component", "objectstore").Logger(),
	}

	if cfg.CDNBaseURL == "" {
		if cfg.Endpoint == "" || cfg.Bucket == "" {
			return nil, fmt.Errorf("objectstore: endpoint and bucket are required when no CDN base URL is configured")
		}
		client, err := minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
			Secure: cfg.UseSSL,
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("objectstore: initialize storage client: %w", err)
		}
		r.client = client
	}

	return r, nil
}

// ResolveURL returns the URL the transcription provider should fetch for the
// given object key. CDN concatenation wins over presigning when configured.
func (r *Resolver) ResolveURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("objectstore: object key is required")
	}

	if r.cdnBaseURL != "" {
		// Normalize to avoid double or missing slashes between base and key.
		base := strings.TrimRight(r.cdnBaseURL, "/")
		path := strings.TrimLeft(key, "/")
		return base + "/" + path, nil
	}

	u, err := r.client.PresignedGetObject(ctx, r.bucket, key, r.presignExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("objectstore: presign GET for %q: %w", key, err)
	}

	r.log.Debug().Str("key", key).Dur("expiry", r.presignExpiry).Msg("generated presigned URL")
	return u.String(), nil
}

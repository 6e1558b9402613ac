package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/andrelucena/celebra-backend/pkg/config"
	"github.com/andrelucena/celebra-backend/pkg/logger"
	"github.com/google/uuid"
)

const pingTimeout = 5 * time.Second

// Client talks to the bucket-style blob service over HTTP. Objects are
// addressed by opaque refs; callers never see bucket paths directly.
type Client struct {
	httpClient    *http.Client
	endpoint      string
	bucket        string
	publicBaseURL string
	signingSecret []byte
	uploadTTL     time.Duration
	downloadTTL   time.Duration
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// UploadTarget is the presigned destination handed to clients for a direct upload.
type UploadTarget struct {
	Ref         string    `json:"ref"`
	UploadURL   string    `json:"upload_url"`
	ContentType string    `json:"content_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// NewClient builds a blob client from configuration.
func NewClient(cfg config.BlobConfig, logg *logger.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("blob endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("blob bucket is required")
	}
	if cfg.SigningSecret == "" {
		return nil, errors.New("blob signing secret is required")
	}

	return &Client{
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		endpoint:      strings.TrimRight(cfg.Endpoint, "/"),
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		signingSecret: []byte(cfg.SigningSecret),
		uploadTTL:     cfg.UploadURLExpiry,
		downloadTTL:   cfg.DownloadURLExpiry,
	}, nil
}

// PresignUpload allocates a fresh ref and returns a signed PUT URL for it.
func (c *Client) PresignUpload(ctx context.Context, contentType, fileName string) (*UploadTarget, error) {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return nil, errors.New("content type is required")
	}

	ref := buildRef(fileName)
	expiresAt := time.Now().Add(c.uploadTTL)
	signed := c.signedURL(http.MethodPut, ref, expiresAt)

	return &UploadTarget{
		Ref:         ref,
		UploadURL:   signed,
		ContentType: contentType,
		ExpiresAt:   expiresAt,
	}, nil
}

// ResolveURL maps a stored ref to a URL a browser can fetch. Returns false
// when the ref is empty.
func (c *Client) ResolveURL(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	if c.publicBaseURL != "" {
		return c.publicBaseURL + "/" + ref, true
	}
	return c.signedURL(http.MethodGet, ref, time.Now().Add(c.downloadTTL)), true
}

// Release deletes the object behind ref. A missing object is not an error;
// release is called on best-effort cleanup paths.
func (c *Client) Release(ctx context.Context, ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}

	target := c.signedURL(http.MethodDelete, ref, time.Now().Add(time.Minute))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return fmt.Errorf("building delete request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deleting blob %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("deleting blob %s: unexpected status %d", ref, resp.StatusCode)
	}
	return nil
}

// Ping verifies the bucket endpoint responds.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.endpoint+"/"+c.bucket, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("blob endpoint unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) signedURL(method, ref string, expiresAt time.Time) string {
	expires := strconv.FormatInt(expiresAt.Unix(), 10)

	mac := hmac.New(sha256.New, c.signingSecret)
	fmt.Fprintf(mac, "%s\n%s/%s\n%s", method, c.bucket, ref, expires)
	signature := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	query := url.Values{}
	query.Set("expires", expires)
	query.Set("signature", signature)

	return fmt.Sprintf("%s/%s/%s?%s", c.endpoint, c.bucket, ref, query.Encode())
}

func buildRef(fileName string) string {
	id := uuid.New()
	cleanName := sanitizeFileName(fileName)
	if cleanName == "" {
		cleanName = id.String()
	}
	return fmt.Sprintf("blobs/%s/%s", id.String(), cleanName)
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.TrimSpace(name))
	if clean == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}

// Package assets stores product images and delivery proof photos on the local
// filesystem and hands out expiring signed links to them.
//
// Images are re-encoded as JPEG and scaled down to fit MaxImageDimension before they
// are written, so a phone camera upload never reaches clients at full size. Links are
// signed with an HS256 token bound to the asset reference; the HTTP adapter serves
// them after calling Verify.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"marketdelivery/internal/pkg/errs"

	"github.com/disintegration/imaging"
	"github.com/golang-jwt/jwt/v5"
)

const (
	MaxImageDimension = 1600
	jpegQuality       = 80
	tokenIssuer       = "marketdelivery-assets"
)

var ErrInvalidAssetToken = errors.New("invalid asset token")

// LocalStorage implements ports.AssetStorage on a directory.
type LocalStorage struct {
	root    string
	baseURL string
	secret  []byte
	now     func() time.Time
	logger  *slog.Logger
}

// NewLocalStorage creates the root directory if needed. baseURL is the public origin
// that serves GET /assets/{ref}.
func NewLocalStorage(root, baseURL string, secret []byte, logger *slog.Logger) (*LocalStorage, error) {
	if root == "" {
		return nil, errs.NewValueIsRequiredError("asset root")
	}
	if len(secret) == 0 {
		return nil, errs.NewValueIsRequiredError("asset signing secret")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create asset directory: %w", err)
	}

	return &LocalStorage{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		now:     time.Now,
		logger:  logger.With("component", "LocalStorage"),
	}, nil
}

// UploadFile stores content under key and returns the reference to persist.
// JPEG and PNG content is normalized to a bounded JPEG.
func (s *LocalStorage) UploadFile(ctx context.Context, key string, content io.Reader, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target, err := s.Path(key)
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	if isImage(contentType) {
		if data, err = optimize(data); err != nil {
			return "", errs.NewValueIsInvalidErrorWithCause("image", err)
		}
	}

	if err = os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create asset directory: %w", err)
	}
	if err = os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write asset: %w", err)
	}

	s.logger.InfoContext(ctx, "asset stored", "ref", key, "bytes", len(data))
	return key, nil
}

// GetSignedURL returns a link to ref valid for ttl.
func (s *LocalStorage) GetSignedURL(_ context.Context, ref string, ttl time.Duration) (string, error) {
	if _, err := s.Path(ref); err != nil {
		return "", err
	}
	if ttl <= 0 {
		return "", errs.NewValueIsOutOfRangeError("ttl", ttl, "1ns", "unbounded")
	}

	now := s.now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   ref,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}).SignedString(s.secret)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/assets/%s?token=%s", s.baseURL, ref, url.QueryEscape(token)), nil
}

// Verify checks that token was issued for ref and has not expired.
func (s *LocalStorage) Verify(ref, token string) error {
	_, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, s.key,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithSubject(ref),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAssetToken, err)
	}
	return nil
}

func (s *LocalStorage) key(*jwt.Token) (any, error) {
	return s.secret, nil
}

// Path resolves ref inside the storage root. References escaping the root are rejected.
func (s *LocalStorage) Path(ref string) (string, error) {
	cleaned := path.Clean("/" + ref)
	if ref == "" || cleaned == "/" || cleaned != "/"+ref {
		return "", errs.NewValueIsInvalidErrorWithCause("asset ref", fmt.Errorf("%q is not a canonical relative path", ref))
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

func isImage(contentType string) bool {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg", "image/png":
		return true
	default:
		return false
	}
}

func optimize(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if bounds.Dx() > MaxImageDimension || bounds.Dy() > MaxImageDimension {
		img = imaging.Fit(img, MaxImageDimension, MaxImageDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

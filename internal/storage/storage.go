// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage uploads images to object storage and hands back public
// URLs. S3-compatible services (aws-sdk-go-v2) and MinIO are supported
// behind the Uploader interface.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"devfolio/internal/imaging"
	"devfolio/internal/metrics"
	"devfolio/internal/models"
)

const (
	// MaxImageSize is the largest accepted upload (5 MiB).
	MaxImageSize = 5 << 20

	// Key prefixes by image purpose.
	PrefixBlog   = "blog_images"
	PrefixSkills = "skills"
	PrefixAvatar = "avatars"

	// thumbWidth bounds avatars and skill icons, which are only shown small.
	thumbWidth = 512
)

var (
	ErrNotConfigured   = errors.New("image storage is not configured")
	ErrTooLarge        = errors.New("image exceeds 5 MiB")
	ErrUnsupportedType = errors.New("file is not a supported image")
)

// allowedTypes maps accepted MIME types to the stored file extension.
var allowedTypes = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// Uploader stores an object under key and returns the URL it is served from.
type Uploader interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// Images validates image uploads and passes them to an Uploader.
type Images struct {
	up  Uploader
	now func() time.Time
}

// NewImages wraps up. A nil Uploader yields an Images whose uploads all fail
// with ErrNotConfigured.
func NewImages(up Uploader) *Images {
	return &Images{up: up, now: time.Now}
}

// Configured reports whether a storage backend is present.
func (i *Images) Configured() bool {
	return i != nil && i.up != nil
}

// Upload checks the file's type and size, shrinks avatars and skill icons,
// and stores it under "<prefix>/<unix ms>_<6 random>.<ext>". An empty prefix
// means PrefixBlog.
func (i *Images) Upload(ctx context.Context, file io.Reader, header *multipart.FileHeader, prefix string) (string, error) {
	if !i.Configured() {
		metrics.Uploads.WithLabelValues("unconfigured").Inc()
		return "", ErrNotConfigured
	}
	if header != nil && header.Size > MaxImageSize {
		metrics.Uploads.WithLabelValues("rejected").Inc()
		return "", ErrTooLarge
	}

	// Read one byte past the limit to detect oversize bodies without trusting the header.
	data, err := io.ReadAll(io.LimitReader(file, MaxImageSize+1))
	if err != nil {
		metrics.Uploads.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxImageSize {
		metrics.Uploads.WithLabelValues("rejected").Inc()
		return "", ErrTooLarge
	}

	filename := ""
	if header != nil {
		filename = header.Filename
	}
	contentType := DetectType(data, filename)
	if _, ok := allowedTypes[contentType]; !ok {
		metrics.Uploads.WithLabelValues("rejected").Inc()
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	if prefix == "" {
		prefix = PrefixBlog
	}
	if (prefix == PrefixAvatar || prefix == PrefixSkills) && imaging.Scalable(contentType) {
		small, ct, err := imaging.Fit(data, contentType, thumbWidth)
		if err != nil {
			slog.Warn("image resize failed, storing original", "error", err, "filename", filename)
		} else {
			data, contentType = small, ct
		}
	}

	key := prefix + "/" + strconv.FormatInt(i.now().UnixMilli(), 10) + "_" + models.RandomBase36(6) + allowedTypes[contentType]
	url, err := i.up.Put(ctx, key, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		metrics.Uploads.WithLabelValues("failed").Inc()
		return "", err
	}

	metrics.Uploads.WithLabelValues("ok").Inc()
	slog.Info("image uploaded", "key", key, "size", len(data))
	return url, nil
}

// DetectType sniffs the content type of data. SVG is recognised by file
// extension since DetectContentType reports it as XML or plain text.
func DetectType(data []byte, filename string) string {
	contentType := http.DetectContentType(data)
	if strings.HasSuffix(strings.ToLower(filename), ".svg") &&
		(strings.Contains(contentType, "xml") || strings.Contains(contentType, "text/plain")) {
		return "image/svg+xml"
	}
	return contentType
}

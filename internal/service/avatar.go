package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dtroode/credential-server/internal/logger"
	"github.com/dtroode/credential-server/internal/model"
)

// maxAvatarBytes caps the size of a mirrored profile picture.
const maxAvatarBytes = 2 << 20

// AvatarMirror copies remote profile pictures into object storage.
type AvatarMirror struct {
	storage model.Storage
	client  *http.Client
	logger  *logger.Logger
}

func NewAvatarMirror(storage model.Storage, client *http.Client, logger *logger.Logger) *AvatarMirror {
	return &AvatarMirror{
		storage: storage,
		client:  client,
		logger:  logger,
	}
}

// Mirror stores the picture at sourceURL under a key derived from owner and
// returns the public URL of the copy.
func (m *AvatarMirror) Mirror(ctx context.Context, owner, sourceURL string) (string, error) {
	key := avatarKey(owner, sourceURL)

	exists, err := m.storage.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to check avatar: %w", err)
	}
	if exists {
		return m.storage.URL(key), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build avatar request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download avatar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("avatar download returned status %d", resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("avatar has unexpected content type %q", contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAvatarBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read avatar: %w", err)
	}
	if len(data) > maxAvatarBytes {
		return "", fmt.Errorf("avatar exceeds %d bytes", maxAvatarBytes)
	}

	if err := m.storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	m.logger.Debug("Avatar mirror: stored profile picture",
		"key", key)

	return m.storage.URL(key), nil
}

// avatarKey changes whenever the source picture changes.
func avatarKey(owner, sourceURL string) string {
	sum := sha256.Sum256([]byte(sourceURL))
	return "avatars/" + owner + "/" + hex.EncodeToString(sum[:8])
}

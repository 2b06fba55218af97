package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"video-server/project-api/internal/config"
	domain "video-server/project-api/internal/domain/project"
)

// Client extracts media metadata by posting raw bytes to the video editor
// service, which runs ffprobe against them.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	return &Client{
		baseURL: cfg.VideoEditorURL,
		http:    &http.Client{Timeout: cfg.VideoEditorTimeout},
		log:     log.With().Str("component", "probe-client").Logger(),
	}
}

func (c *Client) Probe(ctx context.Context, data []byte) (*domain.VideoMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/probe", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build probe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("probe request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("probe returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var meta domain.VideoMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode probe response: %w", err)
	}
	if meta.Size == 0 {
		meta.Size = int64(len(data))
	}
	return &meta, nil
}

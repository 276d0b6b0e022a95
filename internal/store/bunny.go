package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sweetyshop/internal/config"
	"sweetyshop/internal/menu"
)

// BunnyStore keeps the document as one JSON object in a Bunny edge storage
// zone. The storage API has no conditional PUT, so concurrent writers are
// last-writer-wins; the revision is only used to report what was read.
type BunnyStore struct {
	endpoint   string
	zone       string
	accessKey  string
	objectPath string
	client     *http.Client
}

func NewBunnyStore(cfg config.BunnyConfig, documentKey string) *BunnyStore {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BunnyStore{
		endpoint:   strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"),
		zone:       strings.TrimSpace(cfg.StorageZone),
		accessKey:  strings.TrimSpace(cfg.StorageKey),
		objectPath: strings.TrimLeft(documentKey, "/") + ".json",
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *BunnyStore) Name() string { return "bunny" }

func (s *BunnyStore) Close() error { return nil }

func (s *BunnyStore) objectURL() string {
	return s.endpoint + "/" + url.PathEscape(s.zone) + "/" + bunnyEscapePath(s.objectPath)
}

func (s *BunnyStore) Load(ctx context.Context) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.objectURL(), nil)
	if err != nil {
		return Snapshot{}, err
	}
	req.Header.Set("AccessKey", s.accessKey)
	req.Header.Set("Accept", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("bunny download failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return emptySnapshot(), nil
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return Snapshot{}, bunnyStatusError("download", res)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return Snapshot{}, fmt.Errorf("bunny download failed: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return emptySnapshot(), nil
	}

	var doc menu.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Snapshot{}, fmt.Errorf("decode bunny object %s: %w", s.objectPath, err)
	}
	return Snapshot{Document: doc, Revision: contentRevision(data), Found: true}, nil
}

func (s *BunnyStore) Save(ctx context.Context, doc menu.Document, _ Revision) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode menu document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.objectURL(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("AccessKey", s.accessKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("bunny upload failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}
	return bunnyStatusError("upload", res)
}

func bunnyStatusError(op string, res *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(res.Body, 8<<10))
	msg := strings.TrimSpace(string(b))
	if msg == "" {
		msg = res.Status
	}
	return fmt.Errorf("bunny %s failed (%d): %s", op, res.StatusCode, msg)
}

func bunnyEscapePath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return ""
	}
	parts := strings.Split(p, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, url.PathEscape(part))
	}
	return strings.Join(out, "/")
}

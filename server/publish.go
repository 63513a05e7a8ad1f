package server

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jafari-mohammad-reza/canvacast/pkg"
)

// Publisher mirrors remote design assets into the public directory and owns
// the single-slot "latest published asset" cell that /url pollers read.
// The slot is last-write-wins: a second publish overwrites the first.
type Publisher struct {
	baseDir     string
	client      *http.Client
	strictTypes bool

	mu     sync.Mutex
	latest *pkg.PublishedAsset
}

func NewPublisher(baseDir string, strictTypes bool) *Publisher {
	return &Publisher{
		baseDir:     baseDir,
		client:      http.DefaultClient,
		strictTypes: strictTypes,
	}
}

// Publish processes every asset before returning, so a SUCCESS entry means
// the bytes are on disk. Failures are per asset, never fatal for the batch.
func (p *Publisher) Publish(ctx context.Context, assets []pkg.Asset, parent, origin string) []pkg.AssetResult {
	results := make([]pkg.AssetResult, 0, len(assets))
	// the container id comes from the request body, it must stay inside the
	// serving root just like asset names
	dir, err := pkg.SafeChild(p.baseDir, parent)
	if err != nil {
		slog.Warn("rejecting publish into escaping container", "parent", parent)
		for _, asset := range assets {
			results = append(results, pkg.AssetResult{Name: asset.Name, Type: pkg.ResponseError, ErrorCode: pkg.ErrCodeNotFound})
		}
		return results
	}
	if err := pkg.EnsureDir(dir); err != nil {
		slog.Error("failed to create publish directory", "dir", dir, "err", err.Error())
		for _, asset := range assets {
			results = append(results, pkg.AssetResult{Name: asset.Name, Type: pkg.ResponseError, ErrorCode: pkg.ErrCodeFailedToFetch})
		}
		return results
	}
	for _, asset := range assets {
		dest, err := pkg.SafeChild(dir, asset.Name)
		if err != nil {
			results = append(results, pkg.AssetResult{Name: asset.Name, Type: pkg.ResponseError, ErrorCode: pkg.ErrCodeNotFound})
			continue
		}
		result := p.publishOne(ctx, asset, dest)
		if result == nil {
			// unsupported type in permissive mode, nothing written
			continue
		}
		if result.Type == pkg.ResponseSuccess {
			result.Url = publicUrl(origin, parent, asset.Name)
			size, _ := pkg.GetSize(dest)
			p.setLatest(asset, result.Url, size)
		}
		results = append(results, *result)
	}
	return results
}

func (p *Publisher) publishOne(ctx context.Context, asset pkg.Asset, dest string) *pkg.AssetResult {
	var err error
	switch asset.Type {
	case pkg.AssetJpg, pkg.AssetPng:
		err = p.reencodeImage(ctx, asset, dest)
	case pkg.AssetPdf, pkg.AssetPptx:
		err = pkg.DownloadToFile(ctx, p.client, asset.Url, dest)
	default:
		if !p.strictTypes {
			slog.Warn("skipping asset with unsupported type", "name", asset.Name, "type", asset.Type)
			return nil
		}
		return &pkg.AssetResult{Name: asset.Name, Type: pkg.ResponseError, ErrorCode: pkg.ErrCodeUnsupportedType}
	}
	if err != nil {
		slog.Error("failed to publish asset", "name", asset.Name, "url", asset.Url, "err", err.Error())
		return &pkg.AssetResult{Name: asset.Name, Type: pkg.ResponseError, ErrorCode: pkg.ErrCodeFailedToFetch}
	}
	return &pkg.AssetResult{Name: asset.Name, Type: pkg.ResponseSuccess}
}

// reencodeImage decodes the source image fully and writes it back out. The
// re-encode is a normalization pass, not a byte copy.
func (p *Publisher) reencodeImage(ctx context.Context, asset pkg.Asset, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.Url, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", asset.Url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("failed to fetch %s: status %d", asset.Url, resp.StatusCode)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to decode image %s: %w", asset.Name, err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()
	if asset.Type == pkg.AssetJpg {
		err = jpeg.Encode(out, img, nil)
	} else {
		err = png.Encode(out, img)
	}
	if err != nil {
		os.Remove(dest)
		return fmt.Errorf("failed to encode image %s: %w", asset.Name, err)
	}
	return nil
}

func (p *Publisher) setLatest(asset pkg.Asset, publishedUrl string, size int64) {
	id := asset.Id
	if id == "" {
		id = uuid.NewString()
	}
	snapshot := &pkg.PublishedAsset{
		Id:          id,
		Name:        asset.Name,
		Url:         publishedUrl,
		Type:        asset.Type,
		Size:        size,
		PublishedAt: time.Now(),
	}
	p.mu.Lock()
	p.latest = snapshot
	p.mu.Unlock()
}

// Latest returns a copy of the most recently published asset, nil when
// nothing has been published yet.
func (p *Publisher) Latest() *pkg.PublishedAsset {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.latest == nil {
		return nil
	}
	snapshot := *p.latest
	return &snapshot
}

func publicUrl(origin, parent, name string) string {
	return fmt.Sprintf("%s/%s", origin, path.Join(parent, name))
}

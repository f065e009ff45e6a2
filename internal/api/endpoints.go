package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/jmagar/anydl/internal/model"
)

// Endpoint labels used in the API log.
const (
	LabelInfo     = "info"
	LabelDownload = "download"
	LabelHealth   = "health"
)

func (c *Client) endpoint(path string, q url.Values) string {
	u := c.BaseURL + c.APIPrefix + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// InfoURL returns the metadata endpoint for mediaURL.
func (c *Client) InfoURL(mediaURL string) string {
	return c.endpoint("/info", url.Values{"url": {mediaURL}})
}

// DownloadURL returns the download endpoint for mediaURL in formatID.
func (c *Client) DownloadURL(mediaURL, formatID string) string {
	return c.endpoint("/download", url.Values{"url": {mediaURL}, "format_id": {formatID}})
}

// GetInfo fetches metadata for mediaURL. Concurrent lookups of the same URL
// share one request, which is detached from any single caller's cancellation;
// each caller stops waiting when its own ctx is done.
func (c *Client) GetInfo(ctx context.Context, mediaURL string) (*model.InfoResponse, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.info.DoChan(mediaURL, func() (any, error) {
		return c.fetchInfo(shared, mediaURL)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.InfoResponse), nil
	}
}

func (c *Client) fetchInfo(ctx context.Context, mediaURL string) (*model.InfoResponse, error) {
	resp, err := c.Request(ctx, c.InfoURL(mediaURL), RequestOptions{Label: LabelInfo}, 0)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var info model.InfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		if isCancellation(ctx, err) {
			return nil, ctx.Err()
		}
		return nil, &RequestError{Kind: KindParse, StatusCode: resp.StatusCode, Err: err}
	}
	return &info, nil
}

// GetVideo fetches metadata and requires a single media item.
func (c *Client) GetVideo(ctx context.Context, mediaURL string) (*model.VideoMetadata, error) {
	info, err := c.GetInfo(ctx, mediaURL)
	if err != nil {
		return nil, err
	}
	if info.IsPlaylist() {
		return nil, model.ErrNotAVideo
	}
	return info.Video, nil
}

// OpenDownload starts the binary stream for mediaURL in formatID. The caller
// must close the response body.
func (c *Client) OpenDownload(ctx context.Context, mediaURL, formatID string) (*http.Response, error) {
	return c.Request(ctx, c.DownloadURL(mediaURL, formatID), RequestOptions{Label: LabelDownload}, 0)
}

// Ping probes the backend root with a single short attempt.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.Request(ctx, c.BaseURL+"/", RequestOptions{
		Label:   LabelHealth,
		Timeout: model.DefaultHealthTimeout,
	}, 1)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrRenderTimeout indicates the rendering request exceeded the configured timeout.
	ErrRenderTimeout = errors.New("export pdf: timeout")
	// ErrRenderInvalidResponse indicates Gotenberg returned a non-success status code.
	ErrRenderInvalidResponse = errors.New("export pdf: invalid response")
	// ErrRenderTooSmall indicates the generated PDF was below the minimum expected size.
	ErrRenderTooSmall = errors.New("export pdf: pdf below minimum size")
)

const (
	pdfMinSizeBytes   = 1024
	pdfMaxRetry       = 2
	pdfRequestTimeout = 10 * time.Second
)

// Gotenberg converts HTML to PDF through a Gotenberg Chromium endpoint.
type Gotenberg struct {
	endpoint   string
	httpClient *http.Client
	retries    int
	timeout    time.Duration
	minSize    int
}

// NewGotenberg constructs the client for endpoint.
func NewGotenberg(endpoint string) (*Gotenberg, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, fmt.Errorf("gotenberg endpoint required")
	}
	return &Gotenberg{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: pdfRequestTimeout},
		retries:    pdfMaxRetry,
		timeout:    pdfRequestTimeout,
		minSize:    pdfMinSizeBytes,
	}, nil
}

// Ping checks if the remote Gotenberg service is available.
func (g *Gotenberg) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: health status %d", ErrRenderInvalidResponse, resp.StatusCode)
	}
	return nil
}

// RenderHTML posts html as index.html and returns the PDF bytes. 5xx answers,
// transport errors and undersized documents are retried; 4xx answers are not.
func (g *Gotenberg) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(part, html); err != nil {
		return nil, err
	}
	if err := writer.WriteField("printBackground", "true"); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	payload := body.Bytes()
	contentType := writer.FormDataContentType()

	attempts := g.retries + 1
	var lastErr error
	for i := 0; i < attempts; i++ {
		data, retry, err := g.attempt(ctx, payload, contentType)
		if err == nil {
			return data, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("render pdf failed after %d attempts: %w", attempts, lastErr)
}

func (g *Gotenberg) attempt(ctx context.Context, payload []byte, contentType string) ([]byte, bool, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"/forms/chromium/convert/html", bytes.NewReader(payload))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, true, classifyNetError(err)
	}
	data, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, true, fmt.Errorf("%w: status %d", ErrRenderInvalidResponse, resp.StatusCode)
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return nil, false, fmt.Errorf("%w: status %d", ErrRenderInvalidResponse, resp.StatusCode)
	case readErr != nil:
		return nil, true, classifyNetError(readErr)
	case len(data) < g.minSize:
		return nil, true, ErrRenderTooSmall
	}
	return data, false, nil
}

func classifyNetError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrRenderTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrRenderTimeout, err)
	}
	return err
}

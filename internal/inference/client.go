package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient talks to the inference sidecar over HTTP. It implements both
// Engine and DeviceProvider.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		// Una generación de 121 frames puede tardar varios minutos
		client: &http.Client{Timeout: 30 * time.Minute},
	}
}

type generateResponse struct {
	Artifacts []string `json:"artifacts"`
}

type deviceResponse struct {
	Device string `json:"device"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *HTTPClient) Generate(ctx context.Context, greq GenerateRequest) ([]string, error) {
	body, err := json.Marshal(greq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, decodeError(res)
	}

	var out generateResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid engine response: %w", err)
	}
	return out.Artifacts, nil
}

func (c *HTTPClient) Device(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/device", nil)
	if err != nil {
		return "", err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", decodeError(res)
	}

	var out deviceResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("invalid device response: %w", err)
	}
	if out.Device == "" {
		return "", fmt.Errorf("engine reported no device")
	}
	return out.Device, nil
}

// decodeError surfaces the engine's own error message when it sent one,
// so the job result carries the real cause instead of a bare status code.
func decodeError(res *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 4096))

	var e errorResponse
	if json.Unmarshal(raw, &e) == nil && e.Error != "" {
		return fmt.Errorf("%s", e.Error)
	}
	return fmt.Errorf("engine http %d", res.StatusCode)
}

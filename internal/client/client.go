package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tokencount-backend/internal/analysis"
)

const DefaultBaseURL = "http://localhost:4001"

// Client calls the analysis HTTP API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a Client for baseURL. An empty baseURL selects DefaultBaseURL.
func New(baseURL string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// AnalyzeFile uploads the file at path with the declared mediaType.
func (c *Client) AnalyzeFile(ctx context.Context, path, mediaType, userID string) (*analysis.AnalyzeResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return c.Analyze(ctx, filepath.Base(path), mediaType, f, userID)
}

// Analyze uploads r as a multipart file part named fileName.
func (c *Client) Analyze(ctx context.Context, fileName, mediaType string, r io.Reader, userID string) (*analysis.AnalyzeResponse, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if userID != "" {
		if err := w.WriteField("userId", userID); err != nil {
			return nil, err
		}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	h.Set("Content-Type", mediaType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/documents/analyze", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}

	var out analysis.AnalyzeResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DocumentStatus fetches the stored analysis of documentID owned by userID.
func (c *Client) DocumentStatus(ctx context.Context, documentID int64, userID string) (*analysis.StatusEnvelope, error) {
	q := url.Values{}
	q.Set("documentId", strconv.FormatInt(documentID, 10))
	q.Set("userId", userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/documents/status?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var out analysis.StatusEnvelope
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health calls the liveness route.
func (c *Client) Health(ctx context.Context) (*analysis.HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/", nil)
	if err != nil {
		return nil, err
	}
	var out analysis.HealthResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(req *http.Request, out any) error {
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: "Something went wrong"}
		var body struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(data, &body) == nil && body.Error.Message != "" {
			apiErr.Code = body.Error.Code
			apiErr.Message = body.Error.Message
		}
		return apiErr
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/claimdesk/internal/model"
)

// FileField is the multipart field name the processing service reads.
const FileField = "file"

const defaultContentType = "application/octet-stream"

// Processor sends a document to the processing service.
type Processor interface {
	Process(ctx context.Context, doc model.Document) (*model.Result, error)
}

// Client talks to the document processing service over HTTP.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

// NewClient returns a Client posting to endpoint. A zero timeout leaves
// requests bounded only by their context.
func NewClient(endpoint string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Endpoint returns the address documents are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Process uploads doc as multipart form data and decodes the service's reply.
//
// Transport failures are returned unwrapped so their text reaches the user
// as-is. Non-2xx replies become a *ServerError.
func (c *Client) Process(ctx context.Context, doc model.Document) (*model.Result, error) {
	body, contentType, err := encodeDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("encode upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.serverError(resp.StatusCode, data)
	}

	return decodeResult(data)
}

func (c *Client) serverError(status int, body []byte) *ServerError {
	var payload struct {
		Error model.Value `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Warn("processor: undecodable error body", "status", status, "err", err, "bytes", len(body))
		return newServerError(status, "")
	}
	if payload.Error.Falsy() {
		return newServerError(status, "")
	}
	return newServerError(status, payload.Error.Display())
}

func decodeResult(data []byte) (*model.Result, error) {
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	result := &model.Result{}
	if _, ok := probe.(map[string]any); !ok {
		// Valid JSON that is not an object carries no fields.
		return result, nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeDocument(doc model.Document) (*bytes.Buffer, string, error) {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	contentType := doc.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		FileField, quoteEscaper.Replace(doc.Name)))
	h.Set("Content-Type", contentType)

	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(doc.Data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/openpulse/pulse-scanner/internal/config"
	"github.com/openpulse/pulse-scanner/internal/model"
)

const uploadPath = "/open-pulse/project/upload-all"

// APIError is a non-2xx answer from the ingest API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api responded %d: %s", e.StatusCode, e.Body)
}

// Result is a successful upload response. JSON holds the decoded body when
// the API answered with a JSON object, Raw always holds the body text.
type Result struct {
	StatusCode int
	JSON       map[string]any
	Raw        string
}

// Client posts combined scan results to the OpenPulse ingest API.
type Client struct {
	cfg    config.Config
	http   *http.Client
	logger zerolog.Logger
}

func New(cfg config.Config, logger zerolog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.UploadTimeout},
		logger: logger,
	}
}

// URL is the resolved upload endpoint, project-scoped when a project id is
// configured.
func (c *Client) URL() string {
	u := strings.TrimRight(c.cfg.Endpoint, "/") + uploadPath
	if c.cfg.ProjectID != "" {
		u += "/" + url.PathEscape(c.cfg.ProjectID)
	}
	return u
}

// Send uploads the combined request plus the SBOM file in one multipart POST.
// A missing SBOM file just drops the sbomFile part. With UploadAttempts > 1
// failed posts are retried with backoff; the default is a single attempt.
func (c *Client) Send(ctx context.Context, combined *model.CombinedScanRequest, sbomPath string, extra map[string]string) (*Result, error) {
	if c.cfg.UploadAttempts <= 1 {
		return c.post(ctx, combined, sbomPath, extra)
	}
	var res *Result
	err := retry(ctx, c.cfg.UploadAttempts, time.Second, func() error {
		var postErr error
		res, postErr = c.post(ctx, combined, sbomPath, extra)
		if postErr != nil {
			c.logger.Warn().Err(postErr).Msg("upload attempt failed")
		}
		return postErr
	})
	return res, err
}

func (c *Client) post(ctx context.Context, combined *model.CombinedScanRequest, sbomPath string, extra map[string]string) (*Result, error) {
	body, contentType, err := c.buildBody(combined, sbomPath)
	if err != nil {
		return nil, err
	}

	u := c.URL()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if c.cfg.APIKey != "" {
		req.Header.Set("x-api-key", c.cfg.APIKey)
	}
	if c.cfg.SecretKey != "" {
		req.Header.Set("x-secret-key", c.cfg.SecretKey)
	}
	for k, v := range extra {
		req.Header.Set(k, v)
	}

	c.logger.Info().Str("url", u).Msg("uploading scan results")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upload response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	res := &Result{StatusCode: resp.StatusCode, Raw: string(data)}
	var parsed map[string]any
	if json.Unmarshal(data, &parsed) == nil {
		res.JSON = parsed
	}
	c.logger.Info().Int("status", resp.StatusCode).Msg("upload accepted")
	return res, nil
}

// buildBody assembles the multipart payload. Field order is fixed so request
// bodies stay reproducible.
func (c *Client) buildBody(combined *model.CombinedScanRequest, sbomPath string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	payload, err := json.Marshal(combined)
	if err != nil {
		return nil, "", fmt.Errorf("marshal combined request: %w", err)
	}
	if err := w.WriteField("combinedScanRequest", string(payload)); err != nil {
		return nil, "", fmt.Errorf("write combinedScanRequest: %w", err)
	}

	if sbomPath != "" {
		data, err := os.ReadFile(sbomPath)
		switch {
		case err == nil:
			part, err := w.CreateFormFile("sbomFile", filepath.Base(sbomPath))
			if err != nil {
				return nil, "", fmt.Errorf("create sbomFile part: %w", err)
			}
			if _, err := part.Write(data); err != nil {
				return nil, "", fmt.Errorf("write sbomFile part: %w", err)
			}
		case os.IsNotExist(err):
			c.logger.Debug().Str("path", sbomPath).Msg("no SBOM file, omitting part")
		default:
			return nil, "", fmt.Errorf("read sbom: %w", err)
		}
	}

	if err := w.WriteField("displayName", "sbom"); err != nil {
		return nil, "", fmt.Errorf("write displayName: %w", err)
	}
	if err := w.WriteField("source", "jenkins"); err != nil {
		return nil, "", fmt.Errorf("write source: %w", err)
	}
	for _, f := range []struct{ name, value string }{
		{"organizationId", c.cfg.OrganizationID},
		{"jobId", c.cfg.JobID},
		{"repoName", c.cfg.RepoName},
		{"branchName", c.cfg.BranchName},
	} {
		if f.value == "" {
			continue
		}
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("write %s: %w", f.name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

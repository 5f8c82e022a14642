package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/openpulse/pulse-scanner/internal/config"
	"github.com/openpulse/pulse-scanner/internal/report"
)

// Client copies the raw report artifacts of a run to S3-compatible storage so
// they outlive the CI workspace.
type Client struct {
	mc     *minio.Client
	bucket string
	logger zerolog.Logger
}

func New(cfg config.Config, logger zerolog.Logger) (*Client, error) {
	mc, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &Client{mc: mc, bucket: cfg.ArchiveBucket, logger: logger}, nil
}

// StoreReports uploads every artifact present in dir under runs/{runID}/.
// Absent artifacts are skipped; the corresponding scan did not run.
func (c *Client) StoreReports(ctx context.Context, runID, dir string) error {
	names := []string{report.SBOMFile, report.ConfigReportFile, report.VulnReportFile, report.SecretReportFile}
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		key := fmt.Sprintf("runs/%s/%s", runID, name)
		_, err := c.mc.FPutObject(ctx, c.bucket, key, path, minio.PutObjectOptions{
			ContentType: "application/json",
		})
		if err != nil {
			return fmt.Errorf("archive %s: %w", name, err)
		}
		c.logger.Debug().Str("bucket", c.bucket).Str("key", key).Msg("report archived")
	}
	return nil
}

package cmd

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aideck/cli/cmd/utils"
)

// ResumeDownloader downloads large artifacts (model weights) to disk,
// resuming interrupted transfers with the Range header when the server
// advertises Accept-Ranges support.
type ResumeDownloader struct {
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
}

// NewResumeDownloader creates a downloader with sensible timeouts for
// multi-gigabyte transfers.
func NewResumeDownloader() *ResumeDownloader {
	return &ResumeDownloader{
		client:     &http.Client{Timeout: 30 * time.Minute},
		maxRetries: 5,
		retryDelay: 2 * time.Second,
	}
}

// Download fetches url into dest. A pre-existing dest.partial file is
// resumed from its current length. When checksum is non-empty the final
// file's sha256 must match or the download fails (the partial file is kept
// so a retry can resume).
func (d *ResumeDownloader) Download(ctx context.Context, url, dest, checksum string) error {
	partial := dest + ".partial"

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < d.maxRetries; attempt++ {
		if attempt > 0 {
			logDebug(fmt.Sprintf("retrying download (attempt %d/%d): %v", attempt+1, d.maxRetries, lastErr))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d.retryDelay):
			}
		}

		lastErr = d.downloadOnce(ctx, url, partial)
		if lastErr == nil {
			break
		}
	}
	if lastErr != nil {
		return fmt.Errorf("download failed after %d attempts: %w", d.maxRetries, lastErr)
	}

	if checksum != "" {
		if err := verifySHA256(partial, checksum); err != nil {
			return err
		}
	}

	if err := os.Rename(partial, dest); err != nil {
		return fmt.Errorf("failed to finalize download: %w", err)
	}
	return nil
}

// downloadOnce performs a single transfer pass, resuming from the partial
// file's length when possible.
func (d *ResumeDownloader) downloadOnce(ctx context.Context, url, partial string) error {
	var offset int64
	if info, err := os.Stat(partial); err == nil {
		offset = info.Size()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	flags := os.O_CREATE | os.O_WRONLY
	switch resp.StatusCode {
	case http.StatusPartialContent:
		flags |= os.O_APPEND
	case http.StatusOK:
		// Server ignored the Range header; start over.
		flags |= os.O_TRUNC
	case http.StatusRequestedRangeNotSatisfiable:
		// Already have the full file.
		return nil
	default:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	// A 200 response without Accept-Ranges means future resumes are
	// pointless, but the transfer itself still works.
	if resp.StatusCode == http.StatusOK && offset > 0 {
		logDebug(fmt.Sprintf("server at %s does not support ranges; restarting from zero", url))
	}

	f, err := os.OpenFile(partial, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open partial file: %w", err)
	}
	defer f.Close()

	_, err = io.Copy(f, resp.Body)
	if err != nil {
		return fmt.Errorf("transfer interrupted: %w", err)
	}
	return f.Close()
}

// verifySHA256 checks a file's sha256 against the expected hex digest.
func verifySHA256(path, expected string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return err
	}
	actual := hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(actual, strings.TrimSpace(expected)) {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expected, actual)
	}
	return nil
}

// servicesPullModelCmd downloads a service's model weights.
var servicesPullModelCmd = &cobra.Command{
	Use:   "pull-model <service-id>",
	Short: "Download a service's model weights",
	Long: `Download the model weight archive for a service to the Aideck data
directory. Interrupted downloads resume from where they left off.`,
	Args: cobra.ExactArgs(1),
	Run:  runServicesPullModel,
}

func init() {
	servicesCmd.AddCommand(servicesPullModelCmd)
}

func runServicesPullModel(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	svc := mustGetService(ctx, args[0])
	if svc.ModelInfo.WeightsURL == "" {
		OutputError("Service %s has no model weights to download\n", svc.ID)
		os.Exit(1)
	}

	dataDir, err := getDataDir()
	if err != nil {
		OutputError("%v\n", err)
		os.Exit(1)
	}

	dest := filepath.Join(dataDir, "models", svc.ID, filepath.Base(svc.ModelInfo.WeightsURL))
	OutputInfo("Downloading model weights for %s...\n", svc.ID)

	started := time.Now()
	dl := NewResumeDownloader()
	if err := dl.Download(ctx, svc.ModelInfo.WeightsURL, dest, svc.ModelInfo.WeightsChecksum); err != nil {
		OutputError("%v\n", err)
		os.Exit(1)
	}

	size := "unknown size"
	if info, err := os.Stat(dest); err == nil {
		size = utils.FormatBytes(info.Size())
	}
	OutputSuccess("Model weights saved to %s (%s in %s)\n",
		dest, size, utils.FormatDuration(time.Since(started).Seconds()))
}

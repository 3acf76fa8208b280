package cmd

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

// rangeServer serves a fixed payload with Range support so resume
// behavior can be exercised end to end.
func rangeServer(t *testing.T, payload []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Accept-Ranges", "bytes")
		rangeHeader := r.Header.Get("Range")
		if rangeHeader == "" {
			w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
			w.WriteHeader(http.StatusOK)
			w.Write(payload)
			return
		}

		offsetStr := strings.TrimSuffix(strings.TrimPrefix(rangeHeader, "bytes="), "-")
		offset, err := strconv.ParseInt(offsetStr, 10, 64)
		if err != nil || offset > int64(len(payload)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if offset == int64(len(payload)) {
			w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
			return
		}
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", offset, len(payload)-1, len(payload)))
		w.WriteHeader(http.StatusPartialContent)
		w.Write(payload[offset:])
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testDownloader() *ResumeDownloader {
	return &ResumeDownloader{
		client:     &http.Client{Timeout: 10 * time.Second},
		maxRetries: 3,
		retryDelay: 10 * time.Millisecond,
	}
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func TestDownloadFresh(t *testing.T) {
	payload := []byte("model weights payload for testing")
	srv := rangeServer(t, payload)
	dest := filepath.Join(t.TempDir(), "weights.bin")

	d := testDownloader()
	if err := d.Download(context.Background(), srv.URL, dest, sha256Hex(payload)); err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("downloaded content mismatch: got %d bytes, want %d", len(got), len(payload))
	}
	if _, err := os.Stat(dest + ".partial"); !os.IsNotExist(err) {
		t.Error("partial file left behind after successful download")
	}
}

func TestDownloadResumesPartial(t *testing.T) {
	payload := []byte("0123456789abcdefghijklmnopqrstuvwxyz")
	srv := rangeServer(t, payload)
	dest := filepath.Join(t.TempDir(), "weights.bin")

	// Seed a truncated partial file, as if an earlier transfer died.
	if err := os.WriteFile(dest+".partial", payload[:10], 0644); err != nil {
		t.Fatal(err)
	}

	d := testDownloader()
	if err := d.Download(context.Background(), srv.URL, dest, sha256Hex(payload)); err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(payload) {
		t.Errorf("resumed content mismatch: got %q", got)
	}
}

func TestDownloadAlreadyComplete(t *testing.T) {
	payload := []byte("complete payload")
	srv := rangeServer(t, payload)
	dest := filepath.Join(t.TempDir(), "weights.bin")

	// Partial file already holds everything; server answers 416.
	if err := os.WriteFile(dest+".partial", payload, 0644); err != nil {
		t.Fatal(err)
	}

	d := testDownloader()
	if err := d.Download(context.Background(), srv.URL, dest, sha256Hex(payload)); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("final file missing: %v", err)
	}
}

func TestDownloadChecksumMismatchKeepsPartial(t *testing.T) {
	payload := []byte("payload the server actually has")
	srv := rangeServer(t, payload)
	dest := filepath.Join(t.TempDir(), "weights.bin")

	d := testDownloader()
	err := d.Download(context.Background(), srv.URL, dest, sha256Hex([]byte("expected something else")))
	if err == nil {
		t.Fatal("Download() error = nil, want checksum mismatch")
	}
	if !strings.Contains(err.Error(), "checksum mismatch") {
		t.Errorf("error = %v, want checksum mismatch", err)
	}
	if _, err := os.Stat(dest + ".partial"); err != nil {
		t.Error("partial file was removed; a retry cannot resume")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("final file exists despite checksum failure")
	}
}

func TestDownloadServerIgnoresRange(t *testing.T) {
	payload := []byte("full payload from a range-less server")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Always 200, ignoring any Range header
		w.WriteHeader(http.StatusOK)
		w.Write(payload)
	}))
	t.Cleanup(srv.Close)

	dest := filepath.Join(t.TempDir(), "weights.bin")
	if err := os.WriteFile(dest+".partial", []byte("stale bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	d := testDownloader()
	if err := d.Download(context.Background(), srv.URL, dest, sha256Hex(payload)); err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(payload) {
		t.Errorf("content = %q, want full restart payload", got)
	}
}

func TestDownloadRetriesThenFails(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	d := testDownloader()
	dest := filepath.Join(t.TempDir(), "weights.bin")
	err := d.Download(context.Background(), srv.URL, dest, "")
	if err == nil {
		t.Fatal("Download() error = nil, want failure after retries")
	}
	if hits != d.maxRetries {
		t.Errorf("server hit %d times, want %d", hits, d.maxRetries)
	}
}

func TestVerifySHA256(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.bin")
	data := []byte("content")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	if err := verifySHA256(path, sha256Hex(data)); err != nil {
		t.Errorf("verifySHA256() error = %v for matching digest", err)
	}
	if err := verifySHA256(path, strings.ToUpper(sha256Hex(data))); err != nil {
		t.Errorf("verifySHA256() error = %v for uppercase digest", err)
	}
	if err := verifySHA256(path, sha256Hex([]byte("other"))); err == nil {
		t.Error("verifySHA256() error = nil for wrong digest")
	}
}

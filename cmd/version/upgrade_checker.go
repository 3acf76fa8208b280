package version

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	semver "github.com/Masterminds/semver/v3"

	"github.com/aideck/cli/cmd/utils"
)

const (
	upgradeStateEnvVar     = "AIDECK_UPGRADE_STATE_PATH"
	upgradeStateFileName   = "upgrade_state.json"
	upgradeCheckInterval   = 6 * time.Hour
	githubLatestReleaseURL = "https://api.github.com/repos/aideck/cli/releases/latest"
)

var (
	// timeNow is overridden in tests.
	timeNow = time.Now
)

type upgradeState struct {
	LastChecked   time.Time `json:"last_checked"`
	LatestVersion string    `json:"latest_version"`
}

type releaseInfo struct {
	TagName     string
	HTMLURL     string
	PublishedAt time.Time
	Body        string
}

// UpgradeInfo contains details about the currently running version and the latest release.
type UpgradeInfo struct {
	CurrentVersion           string
	CurrentVersionNormalized string
	LatestVersion            string
	LatestVersionNormalized  string
	ReleaseURL               string
	PublishedAt              time.Time
	ReleaseNotes             string
	UpdateAvailable          bool
	CurrentVersionIsSemver   bool
}

// MaybeCheckForUpgrade polls GitHub for a newer release, at most once per
// check interval unless forced.
func MaybeCheckForUpgrade(force bool) (*UpgradeInfo, error) {
	now := timeNow()

	state, statePath, stateErr := readUpgradeState()
	if stateErr != nil && force {
		// The state file is advisory; a read failure only matters for throttling.
		state = upgradeState{}
	}

	if !force && !shouldCheckForUpgrade(now, state) {
		return nil, nil
	}

	release, err := fetchLatestRelease()
	if err != nil {
		if force {
			return nil, err
		}
		return nil, nil
	}

	_ = persistUpgradeState(statePath, upgradeState{LastChecked: now, LatestVersion: release.TagName})

	return buildUpgradeInfo(release), nil
}

func buildUpgradeInfo(release *releaseInfo) *UpgradeInfo {
	currentRaw := strings.TrimSpace(CurrentVersion)
	latestRaw := strings.TrimSpace(release.TagName)

	currentNormalized, currentSemver := normalizeForSemver(currentRaw)
	latestNormalized, latestSemver := normalizeForSemver(latestRaw)

	updateAvailable := false
	if currentSemver != nil && latestSemver != nil {
		updateAvailable = latestSemver.GreaterThan(currentSemver)
	}

	// Development builds (non-semver) never report an available update.
	return &UpgradeInfo{
		CurrentVersion:           FormatVersionForDisplay(currentRaw),
		CurrentVersionNormalized: currentNormalized,
		LatestVersion:            FormatVersionForDisplay(latestRaw),
		LatestVersionNormalized:  latestNormalized,
		ReleaseURL:               release.HTMLURL,
		PublishedAt:              release.PublishedAt,
		ReleaseNotes:             strings.TrimSpace(release.Body),
		UpdateAvailable:          updateAvailable,
		CurrentVersionIsSemver:   currentSemver != nil,
	}
}

// ServiceUpdateAvailable reports whether a registry version is newer than
// an installed one. Non-semver versions never report an update.
func ServiceUpdateAvailable(installed, latest string) bool {
	_, installedVer := normalizeForSemver(installed)
	_, latestVer := normalizeForSemver(latest)
	if installedVer == nil || latestVer == nil {
		return false
	}
	return latestVer.GreaterThan(installedVer)
}

func normalizeForSemver(raw string) (string, *semver.Version) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return trimmed, nil
	}
	normalized := strings.TrimPrefix(strings.TrimPrefix(trimmed, "v"), "V")
	parsed, err := semver.NewVersion(normalized)
	if err != nil {
		return normalized, nil
	}
	return normalized, parsed
}

func shouldCheckForUpgrade(now time.Time, state upgradeState) bool {
	if state.LastChecked.IsZero() {
		return true
	}
	return now.Sub(state.LastChecked) >= upgradeCheckInterval
}

func fetchLatestRelease() (*releaseInfo, error) {
	req, err := http.NewRequest(http.MethodGet, githubLatestReleaseURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	ua := fmt.Sprintf("AideckCLI/%s", strings.TrimSpace(CurrentVersion))
	req.Header.Set("User-Agent", ua)

	if token := strings.TrimSpace(os.Getenv("AIDECK_GITHUB_TOKEN")); token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := utils.GetHTTPClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf(
			"github releases responded with %d %s: %s",
			resp.StatusCode,
			http.StatusText(resp.StatusCode),
			strings.TrimSpace(string(body)),
		)
	}

	var payload struct {
		TagName     string `json:"tag_name"`
		HTMLURL     string `json:"html_url"`
		PublishedAt string `json:"published_at"`
		Draft       bool   `json:"draft"`
		Prerelease  bool   `json:"prerelease"`
		Body        string `json:"body"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode GitHub release payload: %w", err)
	}

	if payload.TagName == "" {
		return nil, errors.New("missing or invalid tag_name in release info")
	}
	if payload.Draft || payload.Prerelease {
		return nil, errors.New("latest release is marked as draft or prerelease")
	}

	publishedAt, err := time.Parse(time.RFC3339, payload.PublishedAt)
	if err != nil {
		// Non-fatal; keep zero time.
		publishedAt = time.Time{}
	}

	return &releaseInfo{
		TagName:     payload.TagName,
		HTMLURL:     payload.HTMLURL,
		PublishedAt: publishedAt,
		Body:        payload.Body,
	}, nil
}

func getUpgradeStatePath() (string, error) {
	if override := strings.TrimSpace(os.Getenv(upgradeStateEnvVar)); override != "" {
		return override, nil
	}
	dataDir := os.Getenv("AIDECK_DATA_DIR")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(homeDir, ".aideck")
	}
	return filepath.Join(dataDir, upgradeStateFileName), nil
}

func readUpgradeState() (upgradeState, string, error) {
	path, err := getUpgradeStatePath()
	if err != nil {
		return upgradeState{}, "", err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return upgradeState{}, path, nil
	}
	if err != nil {
		return upgradeState{}, path, err
	}

	var state upgradeState
	if err := json.Unmarshal(data, &state); err != nil {
		return upgradeState{}, path, err
	}
	return state, path, nil
}

func persistUpgradeState(path string, state upgradeState) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

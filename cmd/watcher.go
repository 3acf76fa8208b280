package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aideck/cli/cmd/config"
)

type configPaths struct {
	CwdDir         string
	CwdConfigPath  string
	HomeConfigDir  string
	HomeConfigPath string
}

// StartConfigWatcher starts a background file watcher that synchronizes
// aideck config files (yaml/toml/json) between the current directory and
// the aideck data directory.
func StartConfigWatcher() error {
	paths, err := resolveConfigPaths()
	if err != nil {
		return fmt.Errorf("failed to resolve config paths: %w", err)
	}

	cwd := paths.CwdDir
	cwdConfigPath := paths.CwdConfigPath
	homeConfigDir := paths.HomeConfigDir
	homeConfigPath := paths.HomeConfigPath

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Add(homeConfigDir); err != nil {
		return fmt.Errorf("failed to watch data directory: %w", err)
	}
	if err := watcher.Add(cwd); err != nil {
		return fmt.Errorf("failed to watch current directory: %w", err)
	}

	logDebug(fmt.Sprintf("cwdConfigPath: %s, homeConfigPath: %s", cwdConfigPath, homeConfigPath))
	_, ciErr := os.Stat(cwdConfigPath)
	_, hiErr := os.Stat(homeConfigPath)

	// Initial sync: prefer configs that parse cleanly so a valid config
	// never gets overwritten by a broken one.
	if ciErr == nil && hiErr == nil {
		_, cwdErr := config.LoadConfigFile(cwdConfigPath)
		_, homeErr := config.LoadConfigFile(homeConfigPath)

		if cwdErr == nil && homeErr != nil {
			if err := syncConfigFiles(cwdConfigPath, homeConfigPath); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to sync config files: %v\n", err)
			}
		} else if homeErr == nil && cwdErr != nil {
			if err := syncConfigFiles(homeConfigPath, cwdConfigPath); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to sync config files: %v\n", err)
			}
		} else if cwdErr == nil && homeErr == nil {
			// Both parse - prefer the working directory copy
			if err := syncConfigFiles(cwdConfigPath, homeConfigPath); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to sync config files: %v\n", err)
			}
		}
	} else if ciErr == nil && hiErr != nil {
		if err := syncConfigFiles(cwdConfigPath, homeConfigPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to sync config files: %v\n", err)
		}
	} else if hiErr == nil && ciErr != nil {
		if err := syncConfigFiles(homeConfigPath, cwdConfigPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to sync config files: %v\n", err)
		}
	}

	if cwdConfigPath != "" {
		if err := watcher.Add(cwdConfigPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to watch cwd config file %s: %v\n", cwdConfigPath, err)
		}
	}
	if homeConfigPath != "" {
		if err := watcher.Add(homeConfigPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to watch home config file %s: %v\n", homeConfigPath, err)
		}
	}

	go func() {
		defer watcher.Close()

		// Track last modification times to avoid ping-pong between the two
		// copies and debounce rapid successive writes.
		lastModTimes := make(map[string]time.Time)
		const debounceDuration = 100 * time.Millisecond

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if !event.Has(fsnotify.Write) {
					continue
				}
				sourcePath := event.Name

				// Directory events cover config file creation
				if info, err := os.Stat(sourcePath); err == nil && info.IsDir() {
					if configFile, err := config.FindConfigFile(sourcePath); err == nil {
						if err := watcher.Add(configFile); err != nil {
							fmt.Fprintf(os.Stderr, "Failed to watch new config file %s: %v\n", configFile, err)
						}
						sourcePath = configFile
					} else {
						continue
					}
				}

				if lastMod, exists := lastModTimes[sourcePath]; exists {
					if time.Since(lastMod) < debounceDuration {
						continue
					}
				}

				if !config.IsConfigFile(sourcePath) {
					continue
				}

				var targetPath string
				if filepath.Dir(sourcePath) == cwd {
					targetPath = filepath.Join(homeConfigDir, filepath.Base(sourcePath))
				} else if strings.HasPrefix(sourcePath, homeConfigDir) {
					targetPath = filepath.Join(cwd, filepath.Base(sourcePath))
				} else {
					continue
				}

				if lastMod, exists := lastModTimes[targetPath]; exists {
					if time.Since(lastMod) < debounceDuration {
						continue
					}
				}

				// Let the write settle before copying
				time.Sleep(20 * time.Millisecond)

				if err := syncConfigFiles(sourcePath, targetPath); err != nil {
					fmt.Fprintf(os.Stderr, "Failed to sync config files: %v\n", err)
					continue
				}

				now := time.Now()
				lastModTimes[sourcePath] = now
				lastModTimes[targetPath] = now

				logDebug(fmt.Sprintf("Synced %s -> %s", sourcePath, targetPath))

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
			}
		}
	}()

	logDebug(fmt.Sprintf("Watching target directory: %s", cwdConfigPath))
	logDebug(fmt.Sprintf("Watching data directory: %s", homeConfigDir))

	return nil
}

// StartConfigWatcherForCommand starts the config watcher for commands that
// keep running, like the dashboard. Missing config is not an error.
func StartConfigWatcherForCommand() {
	cwd := getEffectiveCWD()
	if _, err := config.FindConfigFile(cwd); err != nil {
		return
	}
	if err := StartConfigWatcher(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to start config watcher: %v\n", err)
	}
}

func resolveConfigPaths() (*configPaths, error) {
	cwd := getEffectiveCWD()

	cwdConfigPath, err := config.FindConfigFile(cwd)
	if err != nil {
		logDebug(fmt.Sprintf("no aideck config file in %s: %v", cwd, err))
	}

	homeConfigDir, err := getDataDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(homeConfigDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	homeConfigPath, _ := config.FindConfigFile(homeConfigDir)

	var configFileName string
	if cwdConfigPath != "" {
		configFileName = filepath.Base(cwdConfigPath)
	} else if homeConfigPath != "" {
		configFileName = filepath.Base(homeConfigPath)
	} else {
		configFileName = "aideck.yaml"
	}

	if homeConfigPath == "" {
		homeConfigPath = filepath.Join(homeConfigDir, configFileName)
	}
	if cwdConfigPath == "" {
		cwdConfigPath = filepath.Join(cwd, configFileName)
	}

	return &configPaths{
		CwdDir:         cwd,
		CwdConfigPath:  cwdConfigPath,
		HomeConfigDir:  homeConfigDir,
		HomeConfigPath: homeConfigPath,
	}, nil
}

// syncConfigFiles copies the source config file to the target location
// using an atomic temp-file-and-rename write.
func syncConfigFiles(sourcePath, targetPath string) error {
	targetDir := filepath.Dir(targetPath)
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return fmt.Errorf("failed to create target directory %s: %w", targetDir, err)
	}

	sourceData, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to read source file %s: %w", sourcePath, err)
	}

	sourceInfo, err := os.Stat(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to stat source file %s: %w", sourcePath, err)
	}

	tmpFile, err := os.CreateTemp(targetDir, ".aideck-sync-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", targetDir, err)
	}
	tmpPath := tmpFile.Name()

	var renamed bool
	defer func() {
		if tmpFile != nil {
			tmpFile.Close()
		}
		if !renamed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(sourceData); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	tmpFile = nil

	if err := os.Chmod(tmpPath, sourceInfo.Mode()); err != nil {
		return fmt.Errorf("failed to set permissions on temp file: %w", err)
	}

	if err := os.Rename(tmpPath, targetPath); err != nil {
		return fmt.Errorf("failed to rename temp file to target: %w", err)
	}
	renamed = true

	return nil
}

package config

import (
	"context"
	"os"
	"time"
)

// Watch reloads the config file on change and calls onUpdate with the latest
// valid config. Invalid edits are skipped and the previous config stays in use.
func Watch(ctx context.Context, path string, interval time.Duration, onUpdate func(*Config), onError func(error)) error {
	if path == "" {
		path = DefaultPath
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	lastMod := info.ModTime()

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				info, err := os.Stat(path)
				if err != nil {
					continue // transient errors
				}
				if !info.ModTime().After(lastMod) {
					continue
				}
				lastMod = info.ModTime()

				data, err := os.ReadFile(path)
				if err == nil {
					var cfg *Config
					if cfg, err = Parse(data); err == nil {
						if onUpdate != nil {
							onUpdate(cfg)
						}
						continue
					}
				}
				if onError != nil {
					onError(err)
				}
			}
		}
	}()

	return nil
}

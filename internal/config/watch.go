package config

import (
	"context"
	"os"
	"time"
)

// WatchBusinessDay reloads the config file on change and calls onUpdate with
// the new business day. It performs an initial load before entering the
// watch loop. Invalid edits are skipped and the previous value stays active.
func WatchBusinessDay(ctx context.Context, path string, interval time.Duration, onUpdate func(BusinessDayConfig)) error {
	if path == "" {
		path = DefaultPath
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	cfg, err := Load(path)
	if err != nil {
		return err
	}
	if onUpdate != nil {
		onUpdate(cfg.BusinessDay)
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	lastMod := info.ModTime()
	last := cfg.BusinessDay

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
					continue
				}
				if !info.ModTime().After(lastMod) {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					continue
				}
				lastMod = info.ModTime()
				if cfg.BusinessDay == last {
					continue
				}
				last = cfg.BusinessDay
				if onUpdate != nil {
					onUpdate(cfg.BusinessDay)
				}
			}
		}
	}()

	return nil
}

package engine

import (
	"fmt"
	"sort"

	"github.com/celerix-dev/celerix-records/pkg/kv"
)

// Migrate copies every persona, app and key from src into dst and reports how
// many keys were written. Keys already in dst are overwritten; keys only in
// dst are left alone. It moves a data set between the JSON and SQLite engines.
func Migrate(src, dst kv.Backend) (int, error) {
	personas, err := src.GetPersonas()
	if err != nil {
		return 0, fmt.Errorf("migrate: list personas: %w", err)
	}

	total := 0
	for _, persona := range personas {
		apps, err := src.GetApps(persona)
		if err != nil {
			return total, fmt.Errorf("migrate: list apps of %s: %w", persona, err)
		}
		for _, app := range apps {
			n, err := copyApp(src, dst, persona, app)
			total += n
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

func copyApp(src, dst kv.Backend, persona, app string) (int, error) {
	data, err := src.GetAppStore(persona, app)
	if err != nil {
		return 0, fmt.Errorf("migrate: read %s/%s: %w", persona, app, err)
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, k := range keys {
		if err := dst.Set(persona, app, k, data[k]); err != nil {
			return i, fmt.Errorf("migrate: write %s/%s/%s: %w", persona, app, k, err)
		}
	}
	return len(keys), nil
}

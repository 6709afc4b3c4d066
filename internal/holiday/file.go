package holiday

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File holds personal days off read from a YAML map of "YYYY-MM-DD": label.
//
//	2026-07-13: Vacation
//	2026-07-14: Vacation
type File map[string]string

// LoadFile reads a holiday file. A missing file yields an empty lookup.
func LoadFile(path string) (File, error) {
	if path == "" {
		return File{}, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return File{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading holiday file %s: %w", path, err)
	}

	raw := map[string]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing holiday file %s: %w", path, err)
	}
	f := make(File, len(raw))
	for key, label := range raw {
		day, err := time.Parse("2006-01-02", key)
		if err != nil {
			return nil, fmt.Errorf("holiday file %s: bad date %q: %w", path, key, err)
		}
		f[dateKey(day)] = label
	}
	return f, nil
}

func (f File) Holiday(day time.Time) (string, bool) {
	label, ok := f[dateKey(day)]
	return label, ok
}

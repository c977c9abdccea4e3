// Package driverurl picks a chromedriver download out of a
// Chrome-for-Testing build manifest.
package driverurl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Platform is the only download platform the container image uses.
const Platform = "linux64"

var (
	// ErrMajorUnset is returned when no major version is given.
	ErrMajorUnset = errors.New("MAJOR environment variable not set")

	// ErrNoMatch is returned when no build for the major version has a
	// chromedriver download for Platform.
	ErrNoMatch = errors.New("no linux64 chromedriver URL found")
)

// Manifest is the subset of the Chrome-for-Testing JSON this package reads.
type Manifest struct {
	Builds map[string]Build `json:"builds"`
}

// Build is one entry under "builds".
type Build struct {
	Downloads map[string][]Download `json:"downloads"`
}

// Download is one platform-specific artifact.
type Download struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// Resolve decodes the manifest and returns the linux64 chromedriver URL of
// the newest build whose first dotted component equals major.
func Resolve(manifest io.Reader, major string) (string, error) {
	major = strings.TrimSpace(major)
	if major == "" {
		return "", ErrMajorUnset
	}

	var m Manifest
	if err := json.NewDecoder(manifest).Decode(&m); err != nil {
		return "", fmt.Errorf("decode manifest: %w", err)
	}

	return m.Lookup(major)
}

// Lookup is Resolve on an already decoded manifest.
func (m Manifest) Lookup(major string) (string, error) {
	if major == "" {
		return "", ErrMajorUnset
	}

	for _, version := range sortedBuilds(m.Builds) {
		if strings.SplitN(version, ".", 2)[0] != major {
			continue
		}
		for _, d := range m.Builds[version].Downloads["chromedriver"] {
			if d.Platform == Platform && d.URL != "" {
				return d.URL, nil
			}
		}
	}

	return "", fmt.Errorf("%w for major version %s", ErrNoMatch, major)
}

// sortedBuilds returns the build keys newest first, comparing dotted
// components numerically. Non-numeric components sort after numeric ones.
func sortedBuilds(builds map[string]Build) []string {
	keys := make([]string, 0, len(builds))
	for k := range builds {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return compareVersions(keys[i], keys[j]) > 0
	})
	return keys
}

func compareVersions(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		ai, aerr := strconv.Atoi(as[i])
		bi, berr := strconv.Atoi(bs[i])
		switch {
		case aerr == nil && berr == nil:
			if ai != bi {
				if ai > bi {
					return 1
				}
				return -1
			}
		case aerr != nil && berr != nil:
			if c := strings.Compare(as[i], bs[i]); c != 0 {
				return c
			}
		case aerr == nil:
			return 1
		default:
			return -1
		}
	}
	switch {
	case len(as) > len(bs):
		return 1
	case len(as) < len(bs):
		return -1
	}
	return 0
}

package driverurl

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifest = `{
  "timestamp": "2024-06-01T00:00:00.000Z",
  "builds": {
    "125.0.6422.60": {
      "version": "125.0.6422.60",
      "downloads": {
        "chrome": [{"platform": "linux64", "url": "https://cdn.test/125.0.6422.60/chrome-linux64.zip"}],
        "chromedriver": [
          {"platform": "mac-arm64", "url": "https://cdn.test/125.0.6422.60/chromedriver-mac-arm64.zip"},
          {"platform": "linux64", "url": "https://cdn.test/125.0.6422.60/chromedriver-linux64.zip"}
        ]
      }
    },
    "125.0.6422.141": {
      "version": "125.0.6422.141",
      "downloads": {
        "chromedriver": [
          {"platform": "linux64", "url": "https://cdn.test/125.0.6422.141/chromedriver-linux64.zip"}
        ]
      }
    },
    "114.0.5735.90": {
      "version": "114.0.5735.90",
      "downloads": {
        "chrome": [{"platform": "linux64", "url": "https://cdn.test/114/chrome-linux64.zip"}]
      }
    },
    "12.0.1.0": {
      "downloads": {
        "chromedriver": [{"platform": "linux64", "url": "https://cdn.test/12/chromedriver-linux64.zip"}]
      }
    }
  }
}`

func TestResolve_PicksNewestMatchingBuild(t *testing.T) {
	url, err := Resolve(strings.NewReader(manifest), "125")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/125.0.6422.141/chromedriver-linux64.zip", url)
}

func TestResolve_MatchesWholeMajorComponent(t *testing.T) {
	url, err := Resolve(strings.NewReader(manifest), "12")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/12/chromedriver-linux64.zip", url)
}

func TestResolve_Deterministic(t *testing.T) {
	first, err := Resolve(strings.NewReader(manifest), "125")
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		got, err := Resolve(strings.NewReader(manifest), "125")
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestResolve_MajorUnset(t *testing.T) {
	_, err := Resolve(strings.NewReader(manifest), "  ")
	assert.ErrorIs(t, err, ErrMajorUnset)
}

func TestResolve_NoChromedriverForMajor(t *testing.T) {
	_, err := Resolve(strings.NewReader(manifest), "114")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoMatch))
	assert.Contains(t, err.Error(), "114")
}

func TestResolve_UnknownMajor(t *testing.T) {
	_, err := Resolve(strings.NewReader(manifest), "99")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestResolve_BadJSON(t *testing.T) {
	_, err := Resolve(strings.NewReader(`{"builds":`), "125")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoMatch))
}

func TestCompareVersions(t *testing.T) {
	assert.Equal(t, 1, compareVersions("125.0.6422.141", "125.0.6422.60"))
	assert.Equal(t, -1, compareVersions("9.0", "10.0"))
	assert.Equal(t, 0, compareVersions("1.2.3", "1.2.3"))
	assert.Equal(t, 1, compareVersions("1.2.3", "1.2"))
}

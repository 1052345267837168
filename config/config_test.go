package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mshafiee/astroeph"
	"github.com/mshafiee/astroeph/astrometry"
)

const sampleYAML = `
ephemeris:
  dir: /usr/share/astroeph
  model: analytic
observer:
  enabled: true
  longitude: 13.4
  latitude: 52.5
  altitude: 40
sidereal:
  mode: lahiri
  projection: ecliptic_t0
astro:
  precession: iau1976
log:
  level: debug
  format: json
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "astroeph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "cheb", cfg.Ephemeris.Model)
	assert.Equal(t, "fagan_bradley", cfg.Sidereal.Mode)
	assert.Equal(t, "iau2006", cfg.Astro.Precession)
}

func TestLoad_File(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "/usr/share/astroeph", cfg.Ephemeris.Dir)
	assert.Equal(t, "analytic", cfg.Ephemeris.Model)
	assert.True(t, cfg.Observer.Enabled)
	assert.InDelta(t, 52.5, cfg.Observer.Latitude, 0)
	assert.Equal(t, "lahiri", cfg.Sidereal.Mode)
	assert.Equal(t, "debug", cfg.Log.Level)
	// unset keys keep their defaults
	assert.InDelta(t, astrometry.DefaultTidalAcc, cfg.Astro.TidalAcc, 0)
	assert.Equal(t, ":9464", cfg.Metrics.Addr)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("ASTROEPH_EPHEMERIS_DIR", "/srv/ephe")
	t.Setenv("ASTROEPH_SIDEREAL_MODE", "raman")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "/srv/ephe", cfg.Ephemeris.Dir)
	assert.Equal(t, "raman", cfg.Sidereal.Mode)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	_, err := Load(writeConfig(t, "ephemeris:\n  model: vsop\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestSave_RoundTrip(t *testing.T) {
	want, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sub", "astroeph.yaml")
	require.NoError(t, Save(path, want))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"unknown model", func(c *Config) { c.Ephemeris.Model = "vsop" }, false},
		{"unknown precession", func(c *Config) { c.Astro.Precession = "iau2000" }, false},
		{"unknown sidereal mode", func(c *Config) { c.Sidereal.Mode = "galactic" }, false},
		{"unknown projection", func(c *Config) { c.Sidereal.Projection = "galactic_plane" }, false},
		{"user mode without t0", func(c *Config) { c.Sidereal.Mode = "user" }, false},
		{"user mode", func(c *Config) { c.Sidereal.Mode, c.Sidereal.T0, c.Sidereal.AyanT0 = "user", astrometry.J2000, 23 }, true},
		{"latitude", func(c *Config) { c.Observer.Latitude = 91 }, false},
		{"longitude", func(c *Config) { c.Observer.Longitude = -181 }, false},
		{"log level", func(c *Config) { c.Log.Level = "verbose" }, false},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, false},
		{"metrics without address", func(c *Config) { c.Metrics.Enabled, c.Metrics.Addr = true, "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if tt.ok {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestEngineOptions(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	opts, err := cfg.EngineOptions(nil, nil)
	require.NoError(t, err)
	e, err := astroeph.New(opts...)
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, astroeph.ModelAnalytic, e.DefaultModel())
	assert.Equal(t, astroeph.SidLahiri, e.Sidereal().Mode)
	assert.Equal(t, astroeph.ProjEclipticT0, e.Sidereal().Projection)
	topo, ok := e.Topo()
	require.True(t, ok)
	assert.Equal(t, astroeph.GeoPosition{Lon: 13.4, Lat: 52.5, Alt: 40}, topo)

	res, err := e.Calc(astrometry.J2000, astroeph.Moon, astroeph.FlagTopoCtr)
	require.NoError(t, err)
	assert.Equal(t, astroeph.ModelAnalytic, res.Model)
}

func TestParsePrecession(t *testing.T) {
	m, err := ParsePrecession(" IAU1976 ")
	require.NoError(t, err)
	assert.Equal(t, astrometry.IAU1976{}, m)

	_, err = ParsePrecession("iau2000")
	assert.Error(t, err)
}

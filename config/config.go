/*
Package config loads the settings of the astroeph command line tool and maps
them to engine options.

Settings come from a YAML file, from ASTROEPH_* environment variables
(ASTROEPH_EPHEMERIS_DIR overrides ephemeris.dir) and from command line flags
bound to the same viper instance.

This program is free software; you can redistribute it and/or
modify it under the terms of the GNU General Public License
as published by the Free Software Foundation; either version 2
of the License, or (at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program; if not, write to the Free Software
Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston, MA
02110-1301, USA.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mshafiee/astroeph"
	"github.com/mshafiee/astroeph/astrometry"
	"github.com/mshafiee/astroeph/internal/logging"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "ASTROEPH"

// FileName is the base name of the configuration file searched for when
// Load is given no path.
const FileName = "astroeph"

// Config represents the tool configuration.
type Config struct {
	Ephemeris EphemerisConfig `yaml:"ephemeris" mapstructure:"ephemeris"`
	Observer  ObserverConfig  `yaml:"observer" mapstructure:"observer"`
	Sidereal  SiderealConfig  `yaml:"sidereal" mapstructure:"sidereal"`
	Astro     AstroConfig     `yaml:"astro" mapstructure:"astro"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Metrics   MetricsConfig   `yaml:"metrics" mapstructure:"metrics"`
}

// EphemerisConfig selects the ephemeris sources.
type EphemerisConfig struct {
	JPLFile string `yaml:"jpl_file" mapstructure:"jpl_file"`
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Model   string `yaml:"model" mapstructure:"model"` // jpl, cheb or analytic
}

// ObserverConfig is the geodetic position used for topocentric positions.
type ObserverConfig struct {
	Enabled   bool    `yaml:"enabled" mapstructure:"enabled"`
	Longitude float64 `yaml:"longitude" mapstructure:"longitude"` // degrees, east positive
	Latitude  float64 `yaml:"latitude" mapstructure:"latitude"`   // degrees
	Altitude  float64 `yaml:"altitude" mapstructure:"altitude"`   // metres
}

// SiderealConfig selects the sidereal zodiac.
type SiderealConfig struct {
	Mode       string  `yaml:"mode" mapstructure:"mode"`
	T0         float64 `yaml:"t0" mapstructure:"t0"`           // user mode only
	AyanT0     float64 `yaml:"ayan_t0" mapstructure:"ayan_t0"` // user mode only
	Projection string  `yaml:"projection" mapstructure:"projection"`
}

// AstroConfig holds the reduction models.
type AstroConfig struct {
	Precession string  `yaml:"precession" mapstructure:"precession"`
	TidalAcc   float64 `yaml:"tidal_acc" mapstructure:"tidal_acc"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// MetricsConfig controls the Prometheus endpoint of the command line tool.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Addr    string `yaml:"addr" mapstructure:"addr"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Ephemeris: EphemerisConfig{
			Model: astroeph.DefaultModel.String(),
		},
		Sidereal: SiderealConfig{
			Mode:       astroeph.DefaultSidereal.Mode.String(),
			Projection: astroeph.ProjTraditional.String(),
		},
		Astro: AstroConfig{
			Precession: astrometry.IAU2006{}.Name(),
			TidalAcc:   astrometry.DefaultTidalAcc,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Addr: ":9464",
		},
	}
}

// NewViper returns a viper instance with every key defaulted and
// environment lookups enabled.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("ephemeris.jpl_file", d.Ephemeris.JPLFile)
	v.SetDefault("ephemeris.dir", d.Ephemeris.Dir)
	v.SetDefault("ephemeris.model", d.Ephemeris.Model)
	v.SetDefault("observer.enabled", d.Observer.Enabled)
	v.SetDefault("observer.longitude", d.Observer.Longitude)
	v.SetDefault("observer.latitude", d.Observer.Latitude)
	v.SetDefault("observer.altitude", d.Observer.Altitude)
	v.SetDefault("sidereal.mode", d.Sidereal.Mode)
	v.SetDefault("sidereal.t0", d.Sidereal.T0)
	v.SetDefault("sidereal.ayan_t0", d.Sidereal.AyanT0)
	v.SetDefault("sidereal.projection", d.Sidereal.Projection)
	v.SetDefault("astro.precession", d.Astro.Precession)
	v.SetDefault("astro.tidal_acc", d.Astro.TidalAcc)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
	return v
}

// Load reads the configuration file at path, or searches the working
// directory and ~/.astroeph for astroeph.yaml when path is empty. A missing
// file is not an error when searching.
func Load(path string) (*Config, error) {
	return LoadWith(NewViper(), path)
}

// LoadWith is Load on a caller supplied viper instance, typically one with
// command line flags bound to it.
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".astroeph"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Marshal encodes cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Save writes cfg to path as YAML, creating the directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

var precessionModels = map[string]astrometry.PrecessionModel{
	astrometry.IAU1976{}.Name(): astrometry.IAU1976{},
	astrometry.IAU2006{}.Name(): astrometry.IAU2006{},
}

// ParsePrecession returns the precession model named s.
func ParsePrecession(s string) (astrometry.PrecessionModel, error) {
	m, ok := precessionModels[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return nil, fmt.Errorf("unknown precession model %q", s)
	}
	return m, nil
}

// Validate checks every field that maps to an engine setting.
func (c *Config) Validate() error {
	var errs []error
	if _, err := astroeph.ParseModel(c.Ephemeris.Model); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParsePrecession(c.Astro.Precession); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.SiderealConfig(); err != nil {
		errs = append(errs, err)
	}
	if c.Observer.Latitude < -90 || c.Observer.Latitude > 90 {
		errs = append(errs, fmt.Errorf("observer latitude %g outside [-90, 90]", c.Observer.Latitude))
	}
	if c.Observer.Longitude < -180 || c.Observer.Longitude > 360 {
		errs = append(errs, fmt.Errorf("observer longitude %g outside [-180, 360]", c.Observer.Longitude))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		errs = append(errs, errors.New("metrics enabled without an address"))
	}
	return errors.Join(errs...)
}

// SiderealConfig returns the sidereal settings in engine form.
func (c *Config) SiderealConfig() (astroeph.SiderealConfig, error) {
	mode, err := astroeph.ParseSidMode(c.Sidereal.Mode)
	if err != nil {
		return astroeph.SiderealConfig{}, err
	}
	proj, err := astroeph.ParseProjection(c.Sidereal.Projection)
	if err != nil {
		return astroeph.SiderealConfig{}, err
	}
	if mode == astroeph.SidUser && c.Sidereal.T0 == 0 {
		return astroeph.SiderealConfig{}, errors.New("user sidereal mode needs t0")
	}
	return astroeph.SiderealConfig{Mode: mode, T0: c.Sidereal.T0, AyanT0: c.Sidereal.AyanT0, Projection: proj}, nil
}

// Logger builds the logger described by the log section.
func (c *Config) Logger() logging.Logger {
	return logging.New(logging.Config{Level: c.Log.Level, Format: c.Log.Format})
}

// EngineOptions maps the configuration to engine options. log and rec may
// be nil.
func (c *Config) EngineOptions(log logging.Logger, rec astroeph.Recorder) ([]astroeph.Option, error) {
	model, err := astroeph.ParseModel(c.Ephemeris.Model)
	if err != nil {
		return nil, err
	}
	prec, err := ParsePrecession(c.Astro.Precession)
	if err != nil {
		return nil, err
	}
	sid, err := c.SiderealConfig()
	if err != nil {
		return nil, err
	}

	opts := []astroeph.Option{
		astroeph.WithJPLFile(c.Ephemeris.JPLFile),
		astroeph.WithEphemerisDir(c.Ephemeris.Dir),
		astroeph.WithDefaultModel(model),
		astroeph.WithPrecession(prec),
		astroeph.WithTidalAcc(c.Astro.TidalAcc),
		astroeph.WithSidereal(sid),
		astroeph.WithLogger(log),
	}
	if rec != nil {
		opts = append(opts, astroeph.WithMetrics(rec))
	}
	if c.Observer.Enabled {
		opts = append(opts, astroeph.WithTopo(c.Observer.Longitude, c.Observer.Latitude, c.Observer.Altitude))
	}
	return opts, nil
}

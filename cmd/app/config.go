package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/Agrid-Dev/hvacrux/internal/building"
	"github.com/Agrid-Dev/hvacrux/internal/estimator"
)

// EnvPrefix is stripped from environment variables before they are mapped
// onto config keys.
const EnvPrefix = "HVACRUX_"

type Config struct {
	SiteID      string            `koanf:"site_id" yaml:"site_id"`
	LogLevel    string            `koanf:"log_level" yaml:"log_level"`
	Controllers ControllersConfig `koanf:"controllers" yaml:"controllers"`
	Conditions  ConditionsConfig  `koanf:"conditions" yaml:"conditions"`
	Envelope    EnvelopeConfig    `koanf:"envelope" yaml:"envelope"`
	Location    LocationConfig    `koanf:"location" yaml:"location"`
	// Floors falls back to the sample layout when empty.
	Floors []FloorConfig `koanf:"floors,omitempty" yaml:"floors,omitempty"`
}

type ControllersConfig struct {
	HTTP   HTTPConfig   `koanf:"http" yaml:"http"`
	MQTT   MQTTConfig   `koanf:"mqtt" yaml:"mqtt"`
	MODBUS ModbusConfig `koanf:"modbus" yaml:"modbus"`
}

type HTTPConfig struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled"`
	Addr    string `koanf:"addr" yaml:"addr"`
}

type MQTTConfig struct {
	Enabled         bool          `koanf:"enabled" yaml:"enabled"`
	BrokerURL       string        `koanf:"broker_url" yaml:"broker_url"`
	ClientID        string        `koanf:"client_id" yaml:"client_id"`
	BaseTopic       string        `koanf:"base_topic" yaml:"base_topic"`
	QoS             byte          `koanf:"qos" yaml:"qos"`
	RetainSnapshot  bool          `koanf:"retain_snapshot" yaml:"retain_snapshot"`
	PublishInterval time.Duration `koanf:"publish_interval" yaml:"publish_interval"`
	Username        string        `koanf:"username" yaml:"username"`
	Password        string        `koanf:"password" yaml:"-"`
}

type ModbusConfig struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled"`
	Addr    string `koanf:"addr" yaml:"addr"`
	UnitID  byte   `koanf:"unit_id" yaml:"unit_id"`
}

type ConditionsConfig struct {
	OutdoorTemperature float64 `koanf:"outdoor_temperature" yaml:"outdoor_temperature"`
	IndoorTemperature  float64 `koanf:"indoor_temperature" yaml:"indoor_temperature"`
}

// EnvelopeConfig selects U-values either explicitly or by material name.
// An explicit U-value wins over the material.
type EnvelopeConfig struct {
	WallArea       float64  `koanf:"wall_area" yaml:"wall_area"`
	WallMaterial   string   `koanf:"wall_material" yaml:"wall_material,omitempty"`
	WallUValue     *float64 `koanf:"wall_u_value,omitempty" yaml:"wall_u_value,omitempty"`
	RoofArea       float64  `koanf:"roof_area" yaml:"roof_area"`
	RoofMaterial   string   `koanf:"roof_material" yaml:"roof_material,omitempty"`
	RoofUValue     *float64 `koanf:"roof_u_value,omitempty" yaml:"roof_u_value,omitempty"`
	WindowMaterial string   `koanf:"window_material" yaml:"window_material,omitempty"`
	WindowUValue   *float64 `koanf:"window_u_value,omitempty" yaml:"window_u_value,omitempty"`
}

type LocationConfig struct {
	Latitude  float64 `koanf:"latitude" yaml:"latitude"`
	Longitude float64 `koanf:"longitude" yaml:"longitude"`
	Elevation float64 `koanf:"elevation" yaml:"elevation"`
}

type FloorConfig struct {
	Rooms []RoomConfig `koanf:"rooms" yaml:"rooms"`
}

type RoomConfig struct {
	Length        float64 `koanf:"length" yaml:"length"`
	Width         float64 `koanf:"width" yaml:"width"`
	Height        float64 `koanf:"height" yaml:"height"`
	WindowArea    float64 `koanf:"window_area" yaml:"window_area"`
	NumPeople     uint32  `koanf:"num_people" yaml:"num_people"`
	LightingLoad  float64 `koanf:"lighting_load" yaml:"lighting_load"`
	ApplianceLoad float64 `koanf:"appliance_load" yaml:"appliance_load"`
}

func defaultConfig() Config {
	return Config{
		SiteID:   "default",
		LogLevel: "info",
		Controllers: ControllersConfig{
			HTTP: HTTPConfig{Enabled: true, Addr: ":8080"},
			MQTT: MQTTConfig{
				BrokerURL:       "tcp://localhost:1883",
				PublishInterval: 1 * time.Second,
			},
			MODBUS: ModbusConfig{Addr: "127.0.0.1:1502", UnitID: 1},
		},
		Conditions: ConditionsConfig{OutdoorTemperature: -10, IndoorTemperature: 21},
		Envelope: EnvelopeConfig{
			WallArea:       120,
			WallMaterial:   building.WoodFrameInsulated16Inch.String(),
			RoofArea:       60,
			RoofMaterial:   building.AsphaltShingles.String(),
			WindowMaterial: building.DoublePaneGlassAirFilled.String(),
		},
	}
}

// LoadConfig layers built-in defaults, the optional config file and
// HVACRUX_* environment variables, in that order.
func LoadConfig(path string) (Config, error) {
	return loadConfig(path, os.Environ)
}

func loadConfig(path string, environ func() []string) (Config, error) {
	var cfg Config
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return cfg, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		var parser koanf.Parser
		ext := strings.ToLower(filepath.Ext(path))
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return cfg, fmt.Errorf("unsupported config extension %q", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			// Config file missing → use defaults
			if !errors.Is(err, os.ErrNotExist) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
		}
	}

	envProvider := env.Provider(".", env.Opt{
		Prefix:      EnvPrefix,
		EnvironFunc: environ,
		TransformFunc: func(k, v string) (string, any) {
			return envKeyTransform(strings.TrimPrefix(k, EnvPrefix)), v
		},
	})
	if err := k.Load(envProvider, nil); err != nil {
		return cfg, fmt.Errorf("load env: %w", err)
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// nestedSections have a second level keyed by controller name.
var nestedSections = []string{"controllers"}

var sections = []string{"conditions", "envelope", "location"}

// envKeyTransform maps SECTION_FIELD_NAME onto koanf keys:
// CONTROLLERS_HTTP_ADDR → controllers.http.addr,
// ENVELOPE_WALL_U_VALUE → envelope.wall_u_value, SITE_ID → site_id.
func envKeyTransform(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, sec := range nestedSections {
		if !strings.HasPrefix(s, sec+"_") {
			continue
		}
		parts := strings.SplitN(s, "_", 3)
		if len(parts) < 3 {
			return s
		}
		return strings.Join(parts, ".")
	}
	for _, sec := range sections {
		if rest, ok := strings.CutPrefix(s, sec+"_"); ok && rest != "" {
			return sec + "." + rest
		}
	}
	return s
}

func applyDefaults(cfg *Config) {
	if cfg.SiteID == "" {
		cfg.SiteID = "default"
	}
	if cfg.Controllers.HTTP.Addr == "" {
		cfg.Controllers.HTTP.Addr = ":8080"
	}
	c := &cfg.Controllers
	if !c.HTTP.Enabled && !c.MQTT.Enabled && !c.MODBUS.Enabled {
		c.HTTP.Enabled = true
	}
	if c.MQTT.PublishInterval == 0 {
		c.MQTT.PublishInterval = 1 * time.Second
	}
	if c.MODBUS.UnitID == 0 {
		c.MODBUS.UnitID = 1
	}
}

// ApplyEnvOverrides supports PORT (common in containers) unless the HTTP
// address was set explicitly.
func ApplyEnvOverrides(cfg *Config) {
	if os.Getenv(EnvPrefix+"CONTROLLERS_HTTP_ADDR") != "" {
		return
	}
	if v := os.Getenv("PORT"); v != "" {
		// listen on all interfaces on that port
		cfg.Controllers.HTTP.Addr = ":" + v
	}
}

// DesignConditions validates the conditions section.
func (c Config) DesignConditions() (building.DesignConditions, error) {
	dc := building.DesignConditions{
		OutdoorTemp: c.Conditions.OutdoorTemperature,
		IndoorTemp:  c.Conditions.IndoorTemperature,
	}
	if err := dc.Validate(); err != nil {
		return building.DesignConditions{}, fmt.Errorf("conditions: %w", err)
	}
	return dc, nil
}

// Building resolves materials and returns a validated building.
func (c Config) Building() (building.Building, error) {
	env, err := c.Envelope.resolve()
	if err != nil {
		return building.Building{}, fmt.Errorf("envelope: %w", err)
	}
	b := building.Building{
		Envelope: env,
		Location: building.Location{
			Latitude:  c.Location.Latitude,
			Longitude: c.Location.Longitude,
			Elevation: c.Location.Elevation,
		},
	}
	if len(c.Floors) == 0 {
		b.Floors = estimator.DefaultFloors()
	} else {
		b.Floors = make([]building.Floor, len(c.Floors))
		for i, f := range c.Floors {
			rooms := make([]building.Room, len(f.Rooms))
			for j, r := range f.Rooms {
				rooms[j] = building.Room{
					Length:        r.Length,
					Width:         r.Width,
					Height:        r.Height,
					WindowArea:    r.WindowArea,
					NumPeople:     r.NumPeople,
					LightingLoad:  r.LightingLoad,
					ApplianceLoad: r.ApplianceLoad,
				}
			}
			b.Floors[i].Rooms = rooms
		}
	}
	if err := b.Validate(); err != nil {
		return building.Building{}, err
	}
	return b, nil
}

func (e EnvelopeConfig) resolve() (building.Envelope, error) {
	out := building.Envelope{WallArea: e.WallArea, RoofArea: e.RoofArea}

	switch {
	case e.WallUValue != nil:
		out.WallUValue = *e.WallUValue
	default:
		m, err := building.ParseWallMaterial(e.WallMaterial)
		if err != nil {
			return out, err
		}
		out.WallUValue = m.UValue()
	}

	switch {
	case e.RoofUValue != nil:
		out.RoofUValue = *e.RoofUValue
	default:
		m, err := building.ParseRoofMaterial(e.RoofMaterial)
		if err != nil {
			return out, err
		}
		out.RoofUValue = m.UValue()
	}

	switch {
	case e.WindowUValue != nil:
		out.WindowUValue = *e.WindowUValue
	default:
		m, err := building.ParseWindowMaterial(e.WindowMaterial)
		if err != nil {
			return out, err
		}
		out.WindowUValue = m.UValue()
	}
	return out, nil
}

// DumpYAML renders the effective configuration. Secrets are omitted.
func DumpYAML(cfg Config) ([]byte, error) {
	return yamlv3.Marshal(cfg)
}

// WriteYAML writes the DumpYAML rendering of cfg to w.
func WriteYAML(w io.Writer, cfg Config) error {
	out, err := DumpYAML(cfg)
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

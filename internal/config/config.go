package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the full service configuration.
type Config struct {
	// Persona selects which character the agent plays.
	Persona string `json:"persona" mapstructure:"persona"`

	// Model is the Gemini model used for conversation turns.
	Model string `json:"model" mapstructure:"model"`

	// ImageModel is the hosted model used by the generate_image tool.
	ImageModel string `json:"image_model" mapstructure:"image_model"`

	// ImageDir is where generated image artifacts are written.
	ImageDir string `json:"image_dir" mapstructure:"image_dir"`

	HTTP    HTTPConfig    `json:"http" mapstructure:"http"`
	Backend BackendConfig `json:"backend" mapstructure:"backend"`
	Mongo   MongoConfig   `json:"mongo" mapstructure:"mongo"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// HTTPConfig holds the listener configuration.
type HTTPConfig struct {
	Host string `json:"host" mapstructure:"host"`
	Port int    `json:"port" mapstructure:"port"`
}

// BackendConfig selects the genai backend. When Vertex is true, Project and
// Location must identify the cloud project hosting the models.
type BackendConfig struct {
	Vertex   bool   `json:"vertex" mapstructure:"vertex"`
	Project  string `json:"project" mapstructure:"project"`
	Location string `json:"location" mapstructure:"location"`
}

// MongoConfig configures the optional exchange archive. The archive is
// disabled when URI is empty; live sessions are in-memory regardless.
type MongoConfig struct {
	URI        string `json:"uri" mapstructure:"uri"`
	Database   string `json:"database" mapstructure:"database"`
	Collection string `json:"collection" mapstructure:"collection"`
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Pretty bool   `json:"pretty" mapstructure:"pretty"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Persona:    "brad",
		Model:      "gemini-2.5-flash",
		ImageModel: "gemini-2.5-flash-image",
		ImageDir:   "generated",
		HTTP: HTTPConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Backend: BackendConfig{
			Location: "us-central1",
		},
		Mongo: MongoConfig{
			Database:   "persona_agent",
			Collection: "exchanges",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the optional file at path, overlaid with
// PERSONA_-prefixed environment variables (e.g. PERSONA_MODEL,
// PERSONA_HTTP_PORT). A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("PERSONA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: stat %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults registers every key with viper so AutomaticEnv can resolve
// PERSONA_* overrides even when no config file is present.
func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("persona", def.Persona)
	v.SetDefault("model", def.Model)
	v.SetDefault("image_model", def.ImageModel)
	v.SetDefault("image_dir", def.ImageDir)
	v.SetDefault("http.host", def.HTTP.Host)
	v.SetDefault("http.port", def.HTTP.Port)
	v.SetDefault("backend.vertex", def.Backend.Vertex)
	v.SetDefault("backend.project", def.Backend.Project)
	v.SetDefault("backend.location", def.Backend.Location)
	v.SetDefault("mongo.uri", def.Mongo.URI)
	v.SetDefault("mongo.database", def.Mongo.Database)
	v.SetDefault("mongo.collection", def.Mongo.Collection)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.pretty", def.Logging.Pretty)
}

// Validate checks the invariants the rest of the service relies on.
func (c *Config) Validate() error {
	if c.Persona == "" {
		return fmt.Errorf("config: persona is required")
	}
	if c.Model == "" {
		return fmt.Errorf("config: model is required")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("config: invalid http port %d", c.HTTP.Port)
	}
	if c.Backend.Vertex && c.Backend.Project == "" {
		return fmt.Errorf("config: backend.project is required when backend.vertex is set")
	}
	return nil
}

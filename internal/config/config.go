package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// FileName is the configuration file looked up in the config directory.
const FileName = "dolly_control.cfg.json"

// OSCConfig holds the renderer endpoints.
type OSCConfig struct {
	Host                  string `json:"host" mapstructure:"host"`
	SendPort              int    `json:"sendPort" mapstructure:"sendPort"`
	ReceivePort           int    `json:"receivePort" mapstructure:"receivePort"`
	InboxSize             int    `json:"inboxSize" mapstructure:"inboxSize"`
	SuppressInitialImport bool   `json:"suppressInitialImport" mapstructure:"suppressInitialImport"`
}

// SendAddr is the host:port the renderer listens on.
func (c OSCConfig) SendAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.SendPort))
}

// ReceiveAddr is the host:port this controller listens on.
func (c OSCConfig) ReceiveAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.ReceivePort))
}

// PathsConfig holds the renderer's camera path folders.
type PathsConfig struct {
	ExportDir        string `json:"exportDir" mapstructure:"exportDir"`
	UsedLocationsDir string `json:"usedLocationsDir" mapstructure:"usedLocationsDir"`
	BookmarksDir     string `json:"bookmarksDir" mapstructure:"bookmarksDir"`
}

// UsedLocations returns the absolute folder for exported waypoint files.
func (c PathsConfig) UsedLocations() string {
	return c.resolve(c.UsedLocationsDir)
}

// Bookmarks returns the absolute folder for pin files.
func (c PathsConfig) Bookmarks() string {
	return c.resolve(c.BookmarksDir)
}

func (c PathsConfig) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.ExportDir, dir)
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// DBConfig holds Postgres connection settings
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// DSN returns the Postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		c.Host, c.Port, c.Username, c.Password, c.Database)
}

// StorageConfig selects the pin and export record backend.
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
	DB     DBConfig     `json:"db" mapstructure:"db"`
}

// InfluxConfig holds telemetry settings
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
}

// URL returns the server address.
func (c InfluxConfig) URL() string {
	return fmt.Sprintf("%s://%s:%s", c.Protocol, c.Host, c.Port)
}

// StreamConfig holds live path stream settings
type StreamConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	URL     string `json:"url" mapstructure:"url"`
	Secret  string `json:"secret" mapstructure:"secret"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// DollyConfig holds controller behaviour settings
type DollyConfig struct {
	PauseDuration  float64       `json:"pauseDuration" mapstructure:"pauseDuration"`
	PausePair      bool          `json:"pausePair" mapstructure:"pausePair"`
	PlayCountdown  time.Duration `json:"playCountdown" mapstructure:"playCountdown"`
	ArcFaceTangent bool          `json:"arcFaceTangent" mapstructure:"arcFaceTangent"`
	ArcClockwise   bool          `json:"arcClockwise" mapstructure:"arcClockwise"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// SetDefaults registers every default value.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./dollylogs")

	viper.SetDefault("osc.host", "127.0.0.1")
	viper.SetDefault("osc.sendPort", 9000)
	viper.SetDefault("osc.receivePort", 9001)
	viper.SetDefault("osc.inboxSize", 256)
	viper.SetDefault("osc.suppressInitialImport", true)

	exportDir := defaultExportDir()
	viper.SetDefault("paths.exportDir", exportDir)
	viper.SetDefault("paths.usedLocationsDir", "Used_Locations")
	viper.SetDefault("paths.bookmarksDir", "Bookmarks")

	viper.SetDefault("storage.type", "json")
	viper.SetDefault("storage.sqlite.path", filepath.Join(exportDir, "bookmarks.db"))

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "dolly")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "dolly-metrics")
	viper.SetDefault("influx.bucket", "dolly")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("stream.enabled", false)
	viper.SetDefault("stream.url", "ws://localhost:5000/api/dolly")
	viper.SetDefault("stream.secret", "")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "dollyctl")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("dolly.pauseDuration", 60.0)
	viper.SetDefault("dolly.pausePair", false)
	viper.SetDefault("dolly.playCountdown", "7s")
	viper.SetDefault("dolly.arc.faceTangent", false)
	viper.SetDefault("dolly.arc.clockwise", false)
}

func defaultExportDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "CameraPaths")
	}
	return filepath.Join(home, "Documents", "VRChat", "CameraPaths")
}

// GetOSCConfig returns the OSC endpoints.
func GetOSCConfig() OSCConfig {
	return OSCConfig{
		Host:                  viper.GetString("osc.host"),
		SendPort:              viper.GetInt("osc.sendPort"),
		ReceivePort:           viper.GetInt("osc.receivePort"),
		InboxSize:             viper.GetInt("osc.inboxSize"),
		SuppressInitialImport: viper.GetBool("osc.suppressInitialImport"),
	}
}

// GetPathsConfig returns the file locations.
func GetPathsConfig() PathsConfig {
	return PathsConfig{
		ExportDir:        viper.GetString("paths.exportDir"),
		UsedLocationsDir: viper.GetString("paths.usedLocationsDir"),
		BookmarksDir:     viper.GetString("paths.bookmarksDir"),
	}
}

// GetStorageConfig returns the storage backend selection.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
		DB: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
		},
	}
}

// GetInfluxConfig returns the telemetry settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}

// GetStreamConfig returns the live stream settings.
func GetStreamConfig() StreamConfig {
	return StreamConfig{
		Enabled: viper.GetBool("stream.enabled"),
		URL:     viper.GetString("stream.url"),
		Secret:  viper.GetString("stream.secret"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetDollyConfig returns the controller behaviour settings.
func GetDollyConfig() DollyConfig {
	return DollyConfig{
		PauseDuration:  viper.GetFloat64("dolly.pauseDuration"),
		PausePair:      viper.GetBool("dolly.pausePair"),
		PlayCountdown:  viper.GetDuration("dolly.playCountdown"),
		ArcFaceTangent: viper.GetBool("dolly.arc.faceTangent"),
		ArcClockwise:   viper.GetBool("dolly.arc.clockwise"),
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

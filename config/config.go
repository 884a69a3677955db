// Package config loads the weekcal settings file. Endpoints and sync
// behavior live in YAML; credentials come from the environment (or a
// .env file during development) and never touch the settings file.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProtocolCalDAV = "caldav"
	ProtocolEWS    = "ews"
)

// Settings is the top-level configuration.
type Settings struct {
	Listen        string          `yaml:"listen"`
	HorizonMonths int             `yaml:"horizonMonths"`
	AutoSync      bool            `yaml:"autoSync"`
	SyncInterval  int             `yaml:"syncIntervalMinutes"`
	Protocol      string          `yaml:"protocol"`
	Storage       StorageSettings `yaml:"storage"`
	CalDAV        *CalDAVSettings `yaml:"caldav,omitempty"`
	EWS           *EWSSettings    `yaml:"ews,omitempty"`
}

type StorageSettings struct {
	Driver   string `yaml:"driver"` // "memory" or "postgres"
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	Password string `yaml:"-"` // WEEKCAL_DB_PASSWORD
}

type CalDAVSettings struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"-"` // WEEKCAL_CALDAV_PASSWORD
}

type EWSSettings struct {
	ServerURL string `yaml:"serverUrl"`
	Email     string `yaml:"email"`
	Password  string `yaml:"-"` // WEEKCAL_EWS_PASSWORD
}

// Load reads the YAML settings file, overlays credentials from the
// environment, and validates the result.
func Load(path string) (*Settings, error) {
	// A missing .env file is fine; explicit env vars still apply.
	_ = godotenv.Load()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse settings file: %w", err)
	}

	cfg.Storage.Password = os.Getenv("WEEKCAL_DB_PASSWORD")
	if cfg.CalDAV != nil {
		cfg.CalDAV.Password = os.Getenv("WEEKCAL_CALDAV_PASSWORD")
	}
	if cfg.EWS != nil {
		cfg.EWS.Password = os.Getenv("WEEKCAL_EWS_PASSWORD")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Settings {
	return &Settings{
		Listen:        ":8080",
		HorizonMonths: 3,
		SyncInterval:  30,
		Storage:       StorageSettings{Driver: "memory"},
	}
}

// Validate checks required fields for the selected protocol and driver.
func (s *Settings) Validate() error {
	switch s.Storage.Driver {
	case "memory":
	case "postgres":
		if s.Storage.Host == "" || s.Storage.Name == "" || s.Storage.User == "" {
			return fmt.Errorf("postgres storage requires host, name and user")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", s.Storage.Driver)
	}

	switch strings.ToLower(s.Protocol) {
	case "":
		if s.AutoSync {
			return fmt.Errorf("autoSync requires a protocol")
		}
	case ProtocolCalDAV:
		if s.CalDAV == nil || s.CalDAV.URL == "" {
			return fmt.Errorf("caldav protocol requires a caldav url")
		}
	case ProtocolEWS:
		if s.EWS == nil || s.EWS.ServerURL == "" || s.EWS.Email == "" {
			return fmt.Errorf("ews protocol requires serverUrl and email")
		}
	default:
		return fmt.Errorf("unknown protocol %q", s.Protocol)
	}

	if s.AutoSync && s.SyncInterval <= 0 {
		return fmt.Errorf("autoSync requires a positive syncIntervalMinutes")
	}
	if s.HorizonMonths <= 0 {
		return fmt.Errorf("horizonMonths must be positive")
	}
	return nil
}

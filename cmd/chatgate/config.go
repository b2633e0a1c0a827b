package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	chatgate "github.com/chatgate-io/chatgate"
)

// fileConfig is the YAML shape of the server configuration. Everything is
// optional; absent values fall back to chatgate defaults.
type fileConfig struct {
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		DisableCORS     bool          `yaml:"disable_cors"`
	} `yaml:"server"`

	Sidecar struct {
		URL              string        `yaml:"url"`
		HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	} `yaml:"sidecar"`

	QR struct {
		Mode          string `yaml:"mode"`
		HostedBaseURL string `yaml:"hosted_base_url"`
		Size          int    `yaml:"size"`
	} `yaml:"qr"`

	Messaging struct {
		AddressSuffix string `yaml:"address_suffix"`
	} `yaml:"messaging"`

	Session struct {
		PendingTTL    time.Duration `yaml:"pending_ttl"`
		SweepInterval time.Duration `yaml:"sweep_interval"`
	} `yaml:"session"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	RateLimit struct {
		Enabled            bool          `yaml:"enabled"`
		MaxCreatePerWindow int           `yaml:"max_create_per_window"`
		CreateWindow       time.Duration `yaml:"create_window"`
		MaxSendPerWindow   int           `yaml:"max_send_per_window"`
		SendWindow         time.Duration `yaml:"send_window"`
	} `yaml:"rate_limit"`

	Guard struct {
		Enabled bool   `yaml:"enabled"`
		Secret  string `yaml:"secret"`
	} `yaml:"guard"`
}

// loadConfig merges defaults, the optional YAML file, and the PORT
// environment variable, in that order.
func loadConfig(path string) (chatgate.Config, fileConfig, error) {
	cfg := chatgate.DefaultConfig()

	var fc fileConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fc, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return cfg, fc, fmt.Errorf("parse config: %w", err)
		}
	}

	if fc.Server.Port != 0 {
		cfg.Server.Port = fc.Server.Port
	}
	if fc.Server.ReadTimeout != 0 {
		cfg.Server.ReadTimeout = fc.Server.ReadTimeout
	}
	if fc.Server.WriteTimeout != 0 {
		cfg.Server.WriteTimeout = fc.Server.WriteTimeout
	}
	if fc.Server.ShutdownTimeout != 0 {
		cfg.Server.ShutdownTimeout = fc.Server.ShutdownTimeout
	}
	cfg.Server.EnableCORS = !fc.Server.DisableCORS

	if fc.QR.Mode != "" {
		cfg.QR.Mode = fc.QR.Mode
	}
	if fc.QR.HostedBaseURL != "" {
		cfg.QR.HostedBaseURL = fc.QR.HostedBaseURL
	}
	if fc.QR.Size != 0 {
		cfg.QR.Size = fc.QR.Size
	}

	if fc.Messaging.AddressSuffix != "" {
		cfg.Messaging.AddressSuffix = fc.Messaging.AddressSuffix
	}

	cfg.Session.PendingTTL = fc.Session.PendingTTL
	cfg.Session.SweepInterval = fc.Session.SweepInterval

	cfg.RateLimit.Enabled = fc.RateLimit.Enabled
	if fc.RateLimit.MaxCreatePerWindow != 0 {
		cfg.RateLimit.MaxCreatePerWindow = fc.RateLimit.MaxCreatePerWindow
	}
	if fc.RateLimit.CreateWindow != 0 {
		cfg.RateLimit.CreateWindow = fc.RateLimit.CreateWindow
	}
	if fc.RateLimit.MaxSendPerWindow != 0 {
		cfg.RateLimit.MaxSendPerWindow = fc.RateLimit.MaxSendPerWindow
	}
	if fc.RateLimit.SendWindow != 0 {
		cfg.RateLimit.SendWindow = fc.RateLimit.SendWindow
	}

	cfg.Guard.Enabled = fc.Guard.Enabled
	cfg.Guard.Secret = fc.Guard.Secret

	// PORT wins over everything, matching the upstream gateway contract.
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return cfg, fc, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		cfg.Server.Port = p
	}

	return cfg, fc, nil
}

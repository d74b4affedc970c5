// Package config loads the connector's static configuration document: a
// JSON file read once at startup (env var CONFIGURATION_PATH, default
// config/config.json) describing the integrations, their pipelines, and
// the processors/sinks each pipeline runs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	defaultConfigPath  = "config/config.json"
	defaultServerPort  = 8080
	defaultWebhookPath = "/jira/webhook"
	defaultHeaderName  = "X-Hub-Signature"
	defaultLogLevel    = "info"
	defaultLogFormat   = "console"
)

// AppConfig is the root configuration record, loaded once at startup.
type AppConfig struct {
	Server       ServerConfig  `json:"server"`
	Logging      LoggingConfig `json:"logging"`
	Integrations []Integration `json:"integrations"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port int `json:"port"`
}

// PortOrDefault returns the configured port, defaulting to 8080.
func (s ServerConfig) PortOrDefault() int {
	if s.Port == 0 {
		return defaultServerPort
	}
	return s.Port
}

// LoggingConfig holds the ambient logging settings. Neither field is part
// of the distilled event-processing core; both have safe defaults so a
// config file that omits them still produces a runnable service.
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// LevelOrDefault returns the configured log level, defaulting to "info".
func (l LoggingConfig) LevelOrDefault() string {
	if l.Level == "" {
		return defaultLogLevel
	}
	return l.Level
}

// FormatOrDefault returns the configured log format, defaulting to "console".
func (l LoggingConfig) FormatOrDefault() string {
	if l.Format == "" {
		return defaultLogFormat
	}
	return l.Format
}

// Integration pairs a source adapter with the pipelines that consume its
// events.
type Integration struct {
	Source    SourceConfig `json:"source"`
	Pipelines []Pipeline   `json:"pipelines"`
}

// Pipeline is an ordered processor list plus an unordered sink list.
type Pipeline struct {
	Processors []ProcessorConfig `json:"processors"`
	Sinks      []SinkConfig      `json:"sinks"`
}

// SourceConfig is a tagged union over supported webhook sources. Only
// "jira" exists today; CreateModule-style dispatch on Type is how a
// second provider would be added without touching the tagged-union shape.
type SourceConfig struct {
	Type string
	Jira JiraSourceConfig
}

// UnmarshalJSON decodes the internally-tagged {"type": "jira", ...} shape.
func (s *SourceConfig) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("config: source: %w", err)
	}

	switch probe.Type {
	case "jira", "":
		var jira JiraSourceConfig
		if err := json.Unmarshal(data, &jira); err != nil {
			return fmt.Errorf("config: source(jira): %w", err)
		}
		s.Type = "jira"
		s.Jira = jira
		return nil
	default:
		return fmt.Errorf("config: unknown source type %q", probe.Type)
	}
}

// JiraSourceConfig holds Jira-specific webhook settings.
type JiraSourceConfig struct {
	WebhookPath    string             `json:"webhookPath"`
	Authentication JiraAuthentication `json:"authentication"`
}

// WebhookPathOrDefault returns the configured webhook path, defaulting to
// "/jira/webhook".
func (j JiraSourceConfig) WebhookPathOrDefault() string {
	if j.WebhookPath == "" {
		return defaultWebhookPath
	}
	return j.WebhookPath
}

// JiraAuthentication holds the shared-secret HMAC settings for a Jira
// integration.
type JiraAuthentication struct {
	Secret     Secret `json:"secret"`
	HeaderName string `json:"headerName"`
}

// HeaderNameOrDefault returns the configured signature header name,
// defaulting to "X-Hub-Signature".
func (a JiraAuthentication) HeaderNameOrDefault() string {
	if a.HeaderName == "" {
		return defaultHeaderName
	}
	return a.HeaderName
}

// ProcessorConfig is a tagged union over the two processor stages.
type ProcessorConfig struct {
	Type          string
	CELExpression string
	OutputEvent   interface{}
}

// UnmarshalJSON decodes {"type": "filter", "celExpression": "..."} or
// {"type": "mapper", "outputEvent": {...}}.
func (p *ProcessorConfig) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("config: processor: %w", err)
	}

	switch probe.Type {
	case "filter":
		var f struct {
			CELExpression string `json:"celExpression"`
		}
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("config: processor(filter): %w", err)
		}
		p.Type = "filter"
		p.CELExpression = f.CELExpression
	case "mapper":
		var m struct {
			OutputEvent interface{} `json:"outputEvent"`
		}
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("config: processor(mapper): %w", err)
		}
		p.Type = "mapper"
		p.OutputEvent = m.OutputEvent
	default:
		return fmt.Errorf("config: unknown processor type %q", probe.Type)
	}
	return nil
}

// SinkConfig is a tagged union over supported sinks. Only "mongo" exists
// today.
type SinkConfig struct {
	Type  string
	Mongo MongoSinkConfig
}

// UnmarshalJSON decodes {"type": "mongo", "url": ..., "collection": ..., "insertOnly": ...}.
func (s *SinkConfig) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("config: sink: %w", err)
	}

	switch probe.Type {
	case "mongo":
		var mongo MongoSinkConfig
		if err := json.Unmarshal(data, &mongo); err != nil {
			return fmt.Errorf("config: sink(mongo): %w", err)
		}
		s.Type = "mongo"
		s.Mongo = mongo
		return nil
	default:
		return fmt.Errorf("config: unknown sink type %q", probe.Type)
	}
}

// MongoSinkConfig holds the settings for a MongoDB sink.
type MongoSinkConfig struct {
	URL        Secret `json:"url"`
	Collection string `json:"collection"`
	InsertOnly bool   `json:"insertOnly"`
}

// FromFile reads and parses the JSON configuration document at path.
func FromFile(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// FromEnv loads the configuration document referenced by CONFIGURATION_PATH,
// defaulting to config/config.json when unset.
func FromEnv() (*AppConfig, error) {
	path := os.Getenv("CONFIGURATION_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	return FromFile(path)
}

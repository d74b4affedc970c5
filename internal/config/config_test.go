package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `{
	"server": {"port": 9090},
	"logging": {"level": "debug", "format": "json"},
	"integrations": [
		{
			"source": {
				"type": "jira",
				"webhookPath": "/jira/webhook",
				"authentication": {
					"secret": {"fromEnv": "JIRA_SECRET"},
					"headerName": "X-Hub-Signature"
				}
			},
			"pipelines": [
				{
					"processors": [
						{"type": "filter", "celExpression": "eventType == 'jira:issue_created'"},
						{"type": "mapper", "outputEvent": {"id": "{{ id }}"}}
					],
					"sinks": [
						{"type": "mongo", "url": "mongodb://localhost:27017", "collection": "issues", "insertOnly": false}
					]
				}
			]
		}
	]
}`

func TestFromFile_ParsesFullDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}

	if got := cfg.Server.PortOrDefault(); got != 9090 {
		t.Errorf("port = %d, want 9090", got)
	}
	if got := cfg.Logging.LevelOrDefault(); got != "debug" {
		t.Errorf("level = %q, want debug", got)
	}
	if len(cfg.Integrations) != 1 {
		t.Fatalf("integrations = %d, want 1", len(cfg.Integrations))
	}

	src := cfg.Integrations[0].Source
	if src.Type != "jira" {
		t.Errorf("source type = %q, want jira", src.Type)
	}
	if got := src.Jira.WebhookPathOrDefault(); got != "/jira/webhook" {
		t.Errorf("webhook path = %q", got)
	}

	pipeline := cfg.Integrations[0].Pipelines[0]
	if len(pipeline.Processors) != 2 {
		t.Fatalf("processors = %d, want 2", len(pipeline.Processors))
	}
	if pipeline.Processors[0].Type != "filter" {
		t.Errorf("processor[0].Type = %q, want filter", pipeline.Processors[0].Type)
	}
	if pipeline.Processors[1].Type != "mapper" {
		t.Errorf("processor[1].Type = %q, want mapper", pipeline.Processors[1].Type)
	}
	if len(pipeline.Sinks) != 1 || pipeline.Sinks[0].Type != "mongo" {
		t.Fatalf("sinks = %+v", pipeline.Sinks)
	}
	if pipeline.Sinks[0].Mongo.Collection != "issues" {
		t.Errorf("collection = %q, want issues", pipeline.Sinks[0].Mongo.Collection)
	}
}

func TestFromFile_MissingFile(t *testing.T) {
	if _, err := FromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestFromEnv_DefaultsToConfigPath(t *testing.T) {
	t.Setenv("CONFIGURATION_PATH", "")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected an error since config/config.json does not exist in the test working directory")
	}
}

func TestFromEnv_UsesConfigurationPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.json")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	t.Setenv("CONFIGURATION_PATH", path)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Server.PortOrDefault() != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.PortOrDefault())
	}
}

func TestServerConfig_PortDefault(t *testing.T) {
	var s ServerConfig
	if got := s.PortOrDefault(); got != defaultServerPort {
		t.Errorf("PortOrDefault() = %d, want %d", got, defaultServerPort)
	}
}

func TestJiraAuthentication_HeaderNameDefault(t *testing.T) {
	var a JiraAuthentication
	if got := a.HeaderNameOrDefault(); got != defaultHeaderName {
		t.Errorf("HeaderNameOrDefault() = %q, want %q", got, defaultHeaderName)
	}
}

func TestSourceConfig_UnknownType(t *testing.T) {
	var s SourceConfig
	err := json.Unmarshal([]byte(`{"type": "bitbucket"}`), &s)
	if err == nil {
		t.Fatal("expected an error for an unknown source type")
	}
}

func TestProcessorConfig_UnknownType(t *testing.T) {
	var p ProcessorConfig
	err := json.Unmarshal([]byte(`{"type": "aggregate"}`), &p)
	if err == nil {
		t.Fatal("expected an error for an unknown processor type")
	}
}

func TestSinkConfig_UnknownType(t *testing.T) {
	var s SinkConfig
	err := json.Unmarshal([]byte(`{"type": "postgres"}`), &s)
	if err == nil {
		t.Fatal("expected an error for an unknown sink type")
	}
}

func TestSecret_PlainString(t *testing.T) {
	var s Secret
	if err := json.Unmarshal([]byte(`"hunter2"`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	v, err := s.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if v != "hunter2" {
		t.Errorf("resolve = %q, want hunter2", v)
	}
}

func TestSecret_FromEnv(t *testing.T) {
	t.Setenv("CONNECTOR_TEST_SECRET", "sekrit")
	var s Secret
	if err := json.Unmarshal([]byte(`{"fromEnv": "CONNECTOR_TEST_SECRET"}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	v, err := s.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if v != "sekrit" {
		t.Errorf("resolve = %q, want sekrit", v)
	}
}

func TestSecret_FromEnv_Missing(t *testing.T) {
	var s Secret
	if err := json.Unmarshal([]byte(`{"fromEnv": "CONNECTOR_TEST_SECRET_UNSET"}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, err := s.Resolve(); err == nil {
		t.Fatal("expected an error for an unset environment variable")
	}
}

func TestSecret_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "secret.txt")
	if err := os.WriteFile(path, []byte("sekrit\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	var s Secret
	if err := json.Unmarshal([]byte(`{"fromFile": "`+path+`"}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	v, err := s.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if v != "sekrit" {
		t.Errorf("resolve = %q, want sekrit (trimmed)", v)
	}
}

func TestSecret_InvalidShape(t *testing.T) {
	var s Secret
	if err := json.Unmarshal([]byte(`42`), &s); err == nil {
		t.Fatal("expected an error for a bare number")
	}
}

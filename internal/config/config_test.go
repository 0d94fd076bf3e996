package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/danhigham/autotele/internal/config"
)

func writeSecrets(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secrets.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSecrets_JSON(t *testing.T) {
	path := writeSecrets(t, `{
  "api_id": 12345,
  "api_hash": "abcdef0123456789",
  "phone_number": "+6591234567",
  "legion_channel": -1001234567890,
  "angelus_channel": -1009876543210
}`)

	s, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if s.APIID != 12345 {
		t.Errorf("APIID = %d, want 12345", s.APIID)
	}
	if s.APIHash != "abcdef0123456789" {
		t.Errorf("APIHash = %q, want %q", s.APIHash, "abcdef0123456789")
	}
	if s.PhoneNumber != "+6591234567" {
		t.Errorf("PhoneNumber = %q", s.PhoneNumber)
	}
	if s.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want default %q", s.LogLevel, "info")
	}

	id, err := s.Channel("legion")
	if err != nil {
		t.Fatalf("Channel(legion) error: %v", err)
	}
	if id != -1001234567890 {
		t.Errorf("legion channel = %d", id)
	}
	if got := s.ChannelNames(); len(got) != 2 || got[0] != "angelus" || got[1] != "legion" {
		t.Errorf("ChannelNames() = %v", got)
	}
}

func TestLoadSecrets_YAML(t *testing.T) {
	path := writeSecrets(t, `api_id: 1
api_hash: "h"
phone_number: "+1"
angelus_channel: -10042
timezone: Asia/Singapore
log_level: debug
backend: mtproto
`)

	s, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s.Timezone != "Asia/Singapore" || s.LogLevel != "debug" || s.Backend != "mtproto" {
		t.Errorf("optional fields = %q %q %q", s.Timezone, s.LogLevel, s.Backend)
	}
}

func TestLoadSecrets_UnknownChannel(t *testing.T) {
	path := writeSecrets(t, `{"api_id":1,"api_hash":"h","phone_number":"+1","legion_channel":-1}`)
	s, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if _, err := s.Channel("angelus"); !errors.Is(err, config.ErrUnknownChannel) {
		t.Errorf("Channel(angelus) error = %v, want ErrUnknownChannel", err)
	}
}

func TestLoadSecrets_MissingKeys(t *testing.T) {
	path := writeSecrets(t, `{"api_id":1}`)
	if _, err := config.Load(path); err == nil {
		t.Error("expected error for missing keys")
	}
}

func TestLoadSecrets_BadChannelID(t *testing.T) {
	path := writeSecrets(t, `{"api_id":1,"api_hash":"h","phone_number":"+1","legion_channel":"abc"}`)
	if _, err := config.Load(path); err == nil {
		t.Error("expected error for non-integer channel id")
	}
}

func TestLoadSecrets_Malformed(t *testing.T) {
	path := writeSecrets(t, `{"api_id": `)
	if _, err := config.Load(path); err == nil {
		t.Error("expected error for malformed file")
	}
}

func TestLoadSecrets_FileNotFound(t *testing.T) {
	_, err := config.Load("/nonexistent/secrets.json")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const channelSuffix = "_channel"

// Secrets is the contents of the secrets file. It accepts YAML or JSON.
type Secrets struct {
	APIID       int    `yaml:"api_id"`
	APIHash     string `yaml:"api_hash"`
	PhoneNumber string `yaml:"phone_number"`
	Timezone    string `yaml:"timezone"`
	LogLevel    string `yaml:"log_level"`
	Backend     string `yaml:"backend"`

	// Destination chats, one <name>_channel key each.
	Channels map[string]int64 `yaml:"-"`
}

// ErrUnknownChannel is returned by Channel for a name with no <name>_channel key.
var ErrUnknownChannel = errors.New("unknown channel")

// Load reads and validates the secrets file at path.
func Load(path string) (*Secrets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read secrets: %w", err)
	}

	var s Secrets
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse secrets: %w", err)
	}

	var all map[string]interface{}
	if err := yaml.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("parse secrets: %w", err)
	}
	s.Channels = make(map[string]int64)
	for key, v := range all {
		name, ok := strings.CutSuffix(key, channelSuffix)
		if !ok || name == "" {
			continue
		}
		switch id := v.(type) {
		case int:
			s.Channels[name] = int64(id)
		case int64:
			s.Channels[name] = id
		default:
			return nil, fmt.Errorf("parse secrets: %s must be an integer chat id", key)
		}
	}

	if err := s.validate(); err != nil {
		return nil, err
	}

	if s.LogLevel == "" {
		s.LogLevel = "info"
	}

	return &s, nil
}

func (s *Secrets) validate() error {
	var missing []string
	if s.APIID == 0 {
		missing = append(missing, "api_id")
	}
	if s.APIHash == "" {
		missing = append(missing, "api_hash")
	}
	if s.PhoneNumber == "" {
		missing = append(missing, "phone_number")
	}
	if len(s.Channels) == 0 {
		missing = append(missing, "<name>"+channelSuffix)
	}
	if len(missing) > 0 {
		return fmt.Errorf("secrets: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Channel returns the chat id stored under <name>_channel.
func (s *Secrets) Channel(name string) (int64, error) {
	id, ok := s.Channels[name]
	if !ok {
		return 0, fmt.Errorf("%w %q (have %s)", ErrUnknownChannel, name, strings.Join(s.ChannelNames(), ", "))
	}
	return id, nil
}

// ChannelNames lists the configured channel names in sorted order.
func (s *Secrets) ChannelNames() []string {
	names := make([]string, 0, len(s.Channels))
	for n := range s.Channels {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Package alert fans structured alerts out to configured channels.
package alert

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/finwell-io/wellness-service/internal/models"
)

// Notifier delivers one alert to one channel.
type Notifier interface {
	Send(ctx context.Context, a models.Alert) error
}

// ChannelConfig is the per-channel section of the alerts YAML file.
type ChannelConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Severities []string `yaml:"severities"` // empty = all severities
	Recipients []string `yaml:"recipients"` // email only
}

// FileConfig is the alerts YAML document.
type FileConfig struct {
	Channels map[string]ChannelConfig `yaml:"channels"`
	Routing  struct {
		// Default channels used when Dispatch is called with no channel list.
		Default []string `yaml:"default"`
	} `yaml:"routing"`
}

// LoadFileConfig reads the alerts YAML file. A missing file yields a config
// with console-only defaults rather than an error.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := &FileConfig{Channels: map[string]ChannelConfig{
				"console": {Enabled: true},
			}}
			cfg.Routing.Default = []string{"console"}
			return cfg, nil
		}
		return nil, fmt.Errorf("read alert config: %w", err)
	}
	cfg := &FileConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse alert config: %w", err)
	}
	return cfg, nil
}

// Dispatcher routes alerts to registered channels.
type Dispatcher struct {
	channels map[string]Notifier
	config   *FileConfig
	log      *logrus.Logger
}

func NewDispatcher(config *FileConfig, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		channels: make(map[string]Notifier),
		config:   config,
		log:      log,
	}
}

// RegisterChannel makes a notifier available under a channel name.
func (d *Dispatcher) RegisterChannel(name string, n Notifier) {
	d.channels[name] = n
}

// Dispatch delivers the alert to the named channels, or to the configured
// defaults when channels is empty. Every channel is attempted; failures are
// collected rather than short-circuiting the fan-out.
func (d *Dispatcher) Dispatch(ctx context.Context, a models.Alert, channels []string) error {
	if len(channels) == 0 {
		channels = d.config.Routing.Default
	}

	var errs []error
	for _, name := range channels {
		cc, configured := d.config.Channels[name]
		if configured && !cc.Enabled {
			continue
		}
		if configured && !severityAllowed(cc.Severities, a.Severity) {
			continue
		}
		n, ok := d.channels[name]
		if !ok {
			errs = append(errs, fmt.Errorf("unknown alert channel %q", name))
			continue
		}
		if err := n.Send(ctx, a); err != nil {
			d.log.WithError(err).WithField("channel", name).Error("alert delivery failed")
			errs = append(errs, fmt.Errorf("channel %s: %w", name, err))
			continue
		}
		d.log.WithFields(logrus.Fields{
			"channel":  name,
			"alert_id": a.ID,
			"severity": a.Severity,
		}).Info("alert delivered")
	}
	return errors.Join(errs...)
}

func severityAllowed(allowed []string, severity string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, s := range allowed {
		if s == severity {
			return true
		}
	}
	return false
}

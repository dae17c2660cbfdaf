package alert

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/finwell-io/wellness-service/internal/models"
)

type recordingNotifier struct {
	sent []models.Alert
	err  error
}

func (r *recordingNotifier) Send(ctx context.Context, a models.Alert) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, a)
	return nil
}

func testAlert(severity string) models.Alert {
	return models.Alert{
		ID:        uuid.NewString(),
		Severity:  severity,
		Source:    "test",
		Title:     "Something happened",
		Message:   "details",
		CreatedAt: time.Now().UTC(),
	}
}

func testDispatcher(cfg *FileConfig) *Dispatcher {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewDispatcher(cfg, log)
}

func TestDispatchFanOut(t *testing.T) {
	cfg := &FileConfig{Channels: map[string]ChannelConfig{
		"console": {Enabled: true},
		"slack":   {Enabled: true},
	}}
	d := testDispatcher(cfg)
	console := &recordingNotifier{}
	slack := &recordingNotifier{}
	d.RegisterChannel("console", console)
	d.RegisterChannel("slack", slack)

	err := d.Dispatch(context.Background(), testAlert(models.SeverityWarning), []string{"console", "slack"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(console.sent) != 1 || len(slack.sent) != 1 {
		t.Errorf("expected delivery to both channels: console=%d slack=%d", len(console.sent), len(slack.sent))
	}
}

func TestDispatchContinuesPastFailure(t *testing.T) {
	cfg := &FileConfig{Channels: map[string]ChannelConfig{}}
	d := testDispatcher(cfg)
	broken := &recordingNotifier{err: errors.New("smtp down")}
	working := &recordingNotifier{}
	d.RegisterChannel("email", broken)
	d.RegisterChannel("console", working)

	err := d.Dispatch(context.Background(), testAlert(models.SeverityCritical), []string{"email", "console"})
	if err == nil {
		t.Fatal("expected aggregated error from failing channel")
	}
	if len(working.sent) != 1 {
		t.Error("a failing channel must not block the others")
	}
}

func TestDispatchSeverityFilter(t *testing.T) {
	cfg := &FileConfig{Channels: map[string]ChannelConfig{
		"pager": {Enabled: true, Severities: []string{models.SeverityCritical}},
	}}
	d := testDispatcher(cfg)
	pager := &recordingNotifier{}
	d.RegisterChannel("pager", pager)

	if err := d.Dispatch(context.Background(), testAlert(models.SeverityInfo), []string{"pager"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(pager.sent) != 0 {
		t.Error("info alert must not reach a critical-only channel")
	}

	if err := d.Dispatch(context.Background(), testAlert(models.SeverityCritical), []string{"pager"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(pager.sent) != 1 {
		t.Error("critical alert must reach the pager channel")
	}
}

func TestDispatchUnknownChannel(t *testing.T) {
	d := testDispatcher(&FileConfig{Channels: map[string]ChannelConfig{}})
	if err := d.Dispatch(context.Background(), testAlert(models.SeverityInfo), []string{"carrier-pigeon"}); err == nil {
		t.Fatal("unknown channel must be reported")
	}
}

func TestDispatchDisabledChannelSkipped(t *testing.T) {
	cfg := &FileConfig{Channels: map[string]ChannelConfig{
		"slack": {Enabled: false},
	}}
	d := testDispatcher(cfg)
	slack := &recordingNotifier{}
	d.RegisterChannel("slack", slack)

	if err := d.Dispatch(context.Background(), testAlert(models.SeverityInfo), []string{"slack"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(slack.sent) != 0 {
		t.Error("disabled channel must be skipped")
	}
}

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alerts.yaml")
	doc := `
channels:
  console:
    enabled: true
  email:
    enabled: true
    severities: [critical]
    recipients: [oncall@example.com]
routing:
  default: [console, email]
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Channels["email"].Enabled || cfg.Channels["email"].Recipients[0] != "oncall@example.com" {
		t.Errorf("unexpected email channel config: %+v", cfg.Channels["email"])
	}
	if len(cfg.Routing.Default) != 2 {
		t.Errorf("unexpected default routing: %v", cfg.Routing.Default)
	}
}

func TestLoadFileConfigMissingFile(t *testing.T) {
	cfg, err := LoadFileConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file must fall back to defaults: %v", err)
	}
	if !cfg.Channels["console"].Enabled {
		t.Error("default config must enable the console channel")
	}
}

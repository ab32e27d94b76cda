package config

import "testing"

func TestFromYAML(t *testing.T) {
	cfg, err := FromYAML([]byte(`
station:
  id: station-7
classifier:
  model: claude-sonnet-4-5-20250929
  max_tokens: 64
mail:
  host: smtp.example.org
  port: 465
  username: alerts
  from: alerts@example.org
  notify_to: gardien@example.org
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Station.ID != "station-7" {
		t.Fatalf("unexpected station id %q", cfg.Station.ID)
	}
	if cfg.Mail.NotifyTo != "gardien@example.org" {
		t.Fatalf("unexpected notify_to %q", cfg.Mail.NotifyTo)
	}
}

func TestFromYAMLRejectsMissingStation(t *testing.T) {
	if _, err := FromYAML([]byte("classifier:\n  model: m\n")); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestFromYAMLRejectsMailWithoutFrom(t *testing.T) {
	_, err := FromYAML([]byte(`
station:
  id: station-1
classifier:
  model: m
mail:
  host: smtp.example.org
  port: 465
`))
	if err == nil {
		t.Fatalf("expected mail.from error")
	}
}

func TestDefaultValidates(t *testing.T) {
	cfg := Default("station-1")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

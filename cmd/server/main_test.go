package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"volunteerconnect/internal/config"
)

func TestCalendarCmd(t *testing.T) {
	catalog, err := seedCatalog(time.UTC)
	if err != nil {
		t.Fatalf("seedCatalog: %v", err)
	}
	now := time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		cmd     CalendarCmd
		want    []string
		notWant []string
	}{
		{
			name: "current month",
			cmd:  CalendarCmd{},
			want: []string{"October 2026", "Sun", "8W", "17C", "25F", "Park Restoration Day", "Fall Fun Run"},
		},
		{
			name:    "hidden type",
			cmd:     CalendarCmd{Month: "2026-10", Hide: []string{"Cleanup"}},
			want:    []string{"October 2026", "Resume Writing Workshop"},
			notWant: []string{"Park Restoration Day", "17C"},
		},
		{
			name: "other month",
			cmd:  CalendarCmd{Month: "2026-11"},
			want: []string{"November 2026", "Winter Coat Drive"},
		},
		{
			name: "empty month",
			cmd:  CalendarCmd{Month: "2027-06"},
			want: []string{"June 2027", "No opportunities."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.cmd.run(&buf, catalog, now); err != nil {
				t.Fatalf("run: %v", err)
			}
			out := buf.String()
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(out, s) {
					t.Errorf("output should not contain %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestCalendarCmd_BadMonth(t *testing.T) {
	cmd := CalendarCmd{Month: "October"}
	if err := cmd.run(&bytes.Buffer{}, nil, time.Now()); err == nil {
		t.Fatal("expected error for malformed month")
	}
}

func TestSeedCatalog(t *testing.T) {
	catalog, err := seedCatalog(time.UTC)
	if err != nil {
		t.Fatalf("seedCatalog: %v", err)
	}
	if catalog.Len() == 0 {
		t.Fatal("embedded catalog is empty")
	}
}

func TestServe_StartupErrorsAreReturned(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"unreachable database", func(c *config.Config) {
			c.DBPath = filepath.Join(t.TempDir(), "missing", "dir", "site.db")
		}, "open database"},
		{"malformed csrf key", func(c *config.Config) { c.HTTP.CSRFKey = "not-hex" }, "csrf key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load("")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			cfg.DBPath = filepath.Join(t.TempDir(), "site.db")
			tt.mutate(cfg)

			err = serve(context.Background(), cfg)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("serve = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

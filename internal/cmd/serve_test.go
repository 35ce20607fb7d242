package cmd

import (
	"testing"

	"github.com/dexls/dexls/internal/config"
)

func TestEffectiveLogFile(t *testing.T) {
	cases := []struct {
		name string
		flag string
		cfg  *config.Config
		want string
	}{
		{"flag wins over config", "/tmp/flag.log", &config.Config{LogFile: "/tmp/cfg.log"}, "/tmp/flag.log"},
		{"config used without flag", "", &config.Config{LogFile: "/tmp/cfg.log"}, "/tmp/cfg.log"},
		{"nil config", "", nil, ""},
		{"nothing configured", "", &config.Config{}, ""},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := effectiveLogFile(tt.flag, tt.cfg); got != tt.want {
				t.Errorf("effectiveLogFile(%q) = %q, want %q", tt.flag, got, tt.want)
			}
		})
	}
}

package logging

import "testing"

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{"nil config defaults", nil, false},
		{"terminal", &Config{Style: StyleTerminal, Level: "debug"}, false},
		{"json", &Config{Style: StyleJson, Level: "warn"}, false},
		{"noop", &Config{Style: StyleNoop}, false},
		{"bad level falls back", &Config{Style: StyleTerminal, Level: "loud"}, false},
		{"bad style", &Config{Style: "syslog"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Error("expected a logger")
			}
		})
	}
}

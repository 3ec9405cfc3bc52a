package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-d", "file.db", "-x", "other"},
			allowed: []string{"-d"},
			want:    []string{"-d", "file.db"},
		},
		{
			name:    "equals form",
			args:    []string{"--dsn=file.db", "--other=1"},
			allowed: []string{"--dsn"},
			want:    []string{"--dsn=file.db"},
		},
		{
			name:    "flag followed by another flag keeps no value",
			args:    []string{"-v", "-d", "file.db"},
			allowed: []string{"-v", "-d"},
			want:    []string{"-v", "-d", "file.db"},
		},
		{
			name:    "nothing allowed",
			args:    []string{"-a", "b"},
			allowed: []string{},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestStripArgs(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		flags []string
		want  []string
	}{
		{
			name:  "removes flag and value",
			args:  []string{"stats", "a@b.com", "-d", "file.db"},
			flags: []string{"-d"},
			want:  []string{"stats", "a@b.com"},
		},
		{
			name:  "removes equals form",
			args:  []string{"--config=cfg.json", "list"},
			flags: []string{"--config"},
			want:  []string{"list"},
		},
		{
			name:  "keeps unrelated flags",
			args:  []string{"-v", "delete", "a@b.com"},
			flags: []string{"-d"},
			want:  []string{"-v", "delete", "a@b.com"},
		},
		{
			name:  "nothing to strip",
			args:  []string{"register"},
			flags: []string{"-d", "-a"},
			want:  []string{"register"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripArgs(tt.args, tt.flags))
		})
	}
}

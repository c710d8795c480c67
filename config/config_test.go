package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	type args struct {
		path string
	}
	tests := []struct {
		name    string
		args    args
		want    *Config
		wantErr bool
	}{
		{
			name: "simple parse",
			args: args{
				path: "fixtures/example.yml",
			},
			want: &Config{
				Scheduling: "topological",
				Output:     "table",
				Logging: LoggingConfig{
					Level: "debug",
					File:  true,
				},
			},
		},
		{
			name: "missing file",
			args: args{
				path: "fixtures/missing.yml",
			},
			want: Default(),
		},
		{
			name: "invalid yaml",
			args: args{
				path: "fixtures/invalid.yml",
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadConfig(tt.args.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

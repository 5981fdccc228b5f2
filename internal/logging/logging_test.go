// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/wikicite/pkg/types"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.LoggingConfig
		enabled zapcore.Level
		off     zapcore.Level
		wantErr bool
	}{
		{name: "default info", cfg: types.LoggingConfig{}, enabled: zapcore.InfoLevel, off: zapcore.DebugLevel},
		{name: "debug", cfg: types.LoggingConfig{Level: "debug"}, enabled: zapcore.DebugLevel, off: zapcore.DebugLevel - 1},
		{name: "warn development", cfg: types.LoggingConfig{Level: "warn", Development: true}, enabled: zapcore.WarnLevel, off: zapcore.InfoLevel},
		{name: "bad level", cfg: types.LoggingConfig{Level: "loud"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.enabled))
			assert.False(t, logger.Core().Enabled(tt.off))
		})
	}
}

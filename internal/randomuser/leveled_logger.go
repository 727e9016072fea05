package randomuser

import (
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// zerologLeveled adapts zerolog to retryablehttp.LeveledLogger.
type zerologLeveled struct {
	l zerolog.Logger
}

var _ retryablehttp.LeveledLogger = zerologLeveled{}

func (z zerologLeveled) Error(msg string, kv ...interface{}) { z.l.Error().Fields(kv).Msg(msg) }
func (z zerologLeveled) Info(msg string, kv ...interface{})  { z.l.Debug().Fields(kv).Msg(msg) }
func (z zerologLeveled) Debug(msg string, kv ...interface{}) { z.l.Trace().Fields(kv).Msg(msg) }
func (z zerologLeveled) Warn(msg string, kv ...interface{})  { z.l.Warn().Fields(kv).Msg(msg) }

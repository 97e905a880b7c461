package logging

import (
	"maps"
	"slices"

	"go.uber.org/zap/zapcore"
)

// newSampledCore wraps core with one sampler per configured level.
// Error and above, and levels without a rate, are never sampled.
func newSampledCore(core zapcore.Core, cfg SamplingConfig) zapcore.Core {
	if !cfg.Enabled || len(cfg.Levels) == 0 {
		return core
	}

	sampled := func(lvl zapcore.Level) bool {
		if lvl >= zapcore.ErrorLevel {
			return false
		}
		_, ok := cfg.Levels[lvl]
		return ok
	}

	cores := []zapcore.Core{&levelFilterCore{
		Core:  core,
		allow: func(lvl zapcore.Level) bool { return !sampled(lvl) },
	}}

	for _, lvl := range slices.Sorted(maps.Keys(cfg.Levels)) {
		if !sampled(lvl) {
			continue
		}
		rate := cfg.Levels[lvl]
		only := lvl
		filtered := &levelFilterCore{
			Core:  core,
			allow: func(l zapcore.Level) bool { return l == only },
		}
		cores = append(cores, zapcore.NewSamplerWithOptions(filtered, cfg.Tick, rate.Initial, rate.Thereafter))
	}

	return zapcore.NewTee(cores...)
}

// levelFilterCore passes only the levels allow accepts.
type levelFilterCore struct {
	zapcore.Core
	allow func(zapcore.Level) bool
}

func (c *levelFilterCore) Enabled(lvl zapcore.Level) bool {
	return c.allow(lvl) && c.Core.Enabled(lvl)
}

func (c *levelFilterCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(e.Level) {
		return ce
	}
	return c.Core.Check(e, ce)
}

// With creates a child core that preserves level filtering.
func (c *levelFilterCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilterCore{
		Core:  c.Core.With(fields),
		allow: c.allow,
	}
}

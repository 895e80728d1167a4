package vm

import (
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/gconf"
)

// Configuration keys.
const (
	ConfInstructionLimit = "macro.instruction-limit"
	ConfStackSize        = "macro.stack-size"
	ConfGCInterval       = "macro.gc-interval"
	ConfProgramSize      = "macro.program-size"
)

// Defaults for configuration values which are not set.
const (
	DefaultInstructionLimit = 100
	DefaultStackSize        = 1024
	DefaultProgramSize      = 4096
)

// Config holds the parameters of a virtual machine.
type Config struct {
	InstructionLimit int // instructions per time slice, before MacroTimeLimit
	StackSize        int // capacity of the operand stack, in values
	GCInterval       int // instructions between automatic string collections; 0 = never
	ProgramSize      int // maximum number of instructions in a program
}

// ConfigFrom reads the machine parameters from a configuration.
// Keys which are not set, or set to a non-positive value, get their default.
func ConfigFrom(conf schuko.Configuration) Config {
	c := Config{
		InstructionLimit: DefaultInstructionLimit,
		StackSize:        DefaultStackSize,
		ProgramSize:      DefaultProgramSize,
	}
	if conf == nil {
		return c
	}
	positive := func(key string, dflt int) int {
		if !conf.IsSet(key) {
			return dflt
		}
		if n := conf.GetInt(key); n > 0 {
			return n
		}
		tracer().Errorf("ignoring configuration %s = %q", key, conf.GetString(key))
		return dflt
	}
	c.InstructionLimit = positive(ConfInstructionLimit, c.InstructionLimit)
	c.StackSize = positive(ConfStackSize, c.StackSize)
	c.ProgramSize = positive(ConfProgramSize, c.ProgramSize)
	if conf.IsSet(ConfGCInterval) && conf.GetInt(ConfGCInterval) > 0 {
		c.GCInterval = conf.GetInt(ConfGCInterval)
	}
	return c
}

// DefaultConfig reads the machine parameters from the global application
// configuration.
func DefaultConfig() Config {
	return ConfigFrom(globalConf{})
}

// globalConf routes the configuration interface to the gconf facade.
type globalConf struct{}

func (globalConf) InitDefaults()               {}
func (globalConf) IsSet(key string) bool       { return gconf.IsSet(key) }
func (globalConf) GetString(key string) string { return gconf.GetString(key) }
func (globalConf) GetInt(key string) int       { return gconf.GetInt(key) }
func (globalConf) GetBool(key string) bool     { return gconf.GetBool(key) }
func (globalConf) IsInteractive() bool         { return gconf.IsInteractive() }

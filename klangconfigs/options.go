package klangconfigs

import (
	"log/slog"

	"github.com/reusee/klang/cmds"
	"github.com/reusee/klang/configs"
	"github.com/reusee/klang/vars"
)

type Trace bool

var traceFlag = cmds.Switch("-trace", "log every instruction before it executes")

func (Module) Trace(
	loader configs.Loader,
) Trace {
	return Trace(*traceFlag || configs.First[bool](loader, "trace"))
}

type Disassemble bool

var disasmFlag = cmds.Switch("-disasm", "print compiled chunks before running")

func (Module) Disassemble(
	loader configs.Loader,
) Disassemble {
	return Disassemble(*disasmFlag || configs.First[bool](loader, "disassemble"))
}

type Sandbox bool

var sandboxFlag = cmds.Switch("-sandbox", "remove file and stdin natives")

func (Module) Sandbox(
	loader configs.Loader,
) Sandbox {
	return Sandbox(*sandboxFlag || configs.First[bool](loader, "sandbox"))
}

type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

var colorFlag = cmds.Var[string]("-color", "auto, always or never")

func (Module) ColorMode(
	loader configs.Loader,
) ColorMode {
	return ColorMode(vars.FirstNonZero(
		*colorFlag,
		configs.First[string](loader, "color"),
		string(ColorAuto),
	))
}

// Preload lists scripts run on the same VM before the program.
type Preload []string

var preloadFlag = cmds.Collect[string]("-preload", "run script before the program")

func (Module) Preload(
	loader configs.Loader,
) Preload {
	ret := append([]string(nil), *preloadFlag...)
	// every config file contributes, local files first
	for paths := range configs.All[[]string](loader, "preload") {
		ret = append(ret, paths...)
	}
	return ret
}

type LogLevel slog.Level

func (Module) LogLevel(
	loader configs.Loader,
) LogLevel {
	var level slog.Level
	switch configs.First[string](loader, "log_level") {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}
	return LogLevel(level)
}

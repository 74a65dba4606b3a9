package klangconfigs

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/reusee/klang/cmds"
	"github.com/reusee/klang/configs"
	"github.com/reusee/klang/logs"
	"github.com/reusee/klang/modes"
)

//go:embed schema.cue
var schema string

var configFlag = cmds.Collect[string]("-config", "load config file, before discovered ones")

var filenames = []string{
	"klang.cue",
	".klang.cue",
}

func (Module) ConfigsLoader(
	logger logs.Logger,
	mode modes.Mode,
) configs.Loader {

	paths := append([]string(nil), *configFlag...)
	defer func() {
		if len(paths) > 0 {
			logger.Info("config file",
				"paths", paths,
			)
		}
	}()

	// keep tests hermetic
	if mode == modes.ModeDevelopment {
		return configs.NewLoader(paths, schema)
	}

	var dirs []string
	// working directory
	if dir, err := os.Getwd(); err == nil {
		dirs = append(dirs, dir)
	}
	// user config dir
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, dir)
	}
	// system wide dir
	dirs = append(dirs, "/etc")

	for _, dir := range dirs {
		for _, filename := range filenames {
			path := filepath.Join(dir, filename)
			if _, err := os.Stat(path); err == nil {
				paths = append(paths, path)
			}
		}
	}

	return configs.NewLoader(paths, schema)
}

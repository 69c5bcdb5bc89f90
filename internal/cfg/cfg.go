package cfg

import (
	"github.com/caarlos0/env/v11"
)

// Config carries environment-provided defaults. Command line flags
// override every field.
type Config struct {
	SmapsPath    string `env:"PAGECHECK_SMAPS"`
	TraceLogPath string `env:"PAGECHECK_LOG"`
	Pid          int    `env:"PAGECHECK_PID"`
	Debug        bool   `env:"PAGECHECK_DEBUG"    envDefault:"false"`
	WorkDir      string `env:"PAGECHECK_WORK_DIR" envDefault:"."`
}

func Parse() (Config, error) {
	return env.ParseAs[Config]()
}

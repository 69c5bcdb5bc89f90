package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jackh2000/pagecheck/internal/cfg"
	"github.com/jackh2000/pagecheck/internal/check"
	"github.com/jackh2000/pagecheck/internal/smaps"
	"github.com/jackh2000/pagecheck/internal/tracelog"
	"github.com/jackh2000/pagecheck/pkg/logger"
)

func main() {
	config, err := cfg.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse environment: %v\n", err)

		os.Exit(2)
	}

	smapsPath := flag.String("smaps", config.SmapsPath, "smaps snapshot to verify against (default: copy /proc/<pid>/smaps)")
	logPath := flag.String("log", config.TraceLogPath, "page size trace log (default: ps-<pid>.log)")
	pid := flag.Int("pid", config.Pid, "pid of the traced process")
	debug := flag.Bool("debug", config.Debug, "log every comparison")
	flag.Parse()

	l, err := logger.New(context.Background(), logger.Config{
		ServiceName: "pagecheck",
		IsDebug:     *debug,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)

		os.Exit(2)
	}
	defer l.Sync()

	if err := run(l, *smapsPath, *logPath, *pid, config.WorkDir); err != nil {
		l.Fatal("page size check failed", zap.Error(err))
	}

	l.Info("page size check passed")
}

func run(l *zap.Logger, smapsPath, logPath string, pid int, workDir string) error {
	if smapsPath == "" {
		if pid == 0 {
			return fmt.Errorf("either -smaps or -pid is required")
		}

		copied, err := smaps.Snapshot(workDir, int32(pid))
		if err != nil {
			return fmt.Errorf("acquiring smaps snapshot: %w", err)
		}

		l.Info("copied smaps", zap.String("path", copied))
		smapsPath = copied
	}

	if logPath == "" {
		if pid == 0 {
			return fmt.Errorf("either -log or -pid is required")
		}

		logPath = fmt.Sprintf("ps-%d.log", pid)
	}

	ranges, err := smaps.ParseFile(smapsPath)
	if err != nil {
		return err
	}

	l.Debug("parsed smaps snapshot", zap.String("path", smapsPath), zap.Int("ranges", len(ranges)))

	f, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("opening trace log: %w", err)
	}

	defer f.Close()

	return check.New(smaps.NewIndex(ranges), l).Run(tracelog.NewScanner(f))
}

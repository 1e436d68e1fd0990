package main

import (
	"fmt"
	"runtime/debug"

	"github.com/gomesmr/remod/internal/config"
	"github.com/gomesmr/remod/internal/domain"
	"github.com/gomesmr/remod/internal/terminal"
)

// exitCodeError is a wrapper type for returning exit codes via error interface.
type exitCodeError struct {
	code domain.ExitCode
}

func (e exitCodeError) Error() string {
	switch e.code {
	case domain.ExitPartial:
		return "some units failed"
	case domain.ExitError:
		return "modernization failed with error"
	case domain.ExitInterrupted:
		return "modernization was interrupted"
	default:
		return fmt.Sprintf("exit code %d", e.code)
	}
}

func exitCode(code domain.ExitCode) error {
	if code == domain.ExitOK {
		return nil
	}
	return exitCodeError{code: code}
}

// buildVersionString derives the version from build metadata.
func buildVersionString() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

// loadResolvedConfig loads .remod.yaml from dir (unless skipped), merges env
// and flag state, and logs any config warnings.
func loadResolvedConfig(dir string, skipConfig bool, logger *terminal.Logger, flagState config.FlagState, flagValues config.ResolvedConfig) (config.ResolvedConfig, error) {
	cfg := &config.Config{}
	if !skipConfig {
		result, err := config.LoadFromDir(dir)
		if err != nil {
			return config.ResolvedConfig{}, err
		}
		for _, warning := range result.Warnings {
			logger.Log(warning, terminal.StyleWarning)
		}
		cfg = result.Config
	}

	return config.Resolve(cfg, config.LoadEnvState(), flagState, flagValues), nil
}

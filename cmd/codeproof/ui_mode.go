package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// triMode is the value of an auto|on|off flag.
type triMode string

const (
	modeAuto triMode = "auto"
	modeOn   triMode = "on"
	modeOff  triMode = "off"
)

func readTriMode(flag, value string) (triMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return modeAuto, nil
	case "on", "always":
		return modeOn, nil
	case "off", "never":
		return modeOff, nil
	default:
		return "", fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
	}
}

func colorModeFlag(cmd *cobra.Command) (triMode, error) {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return "", fmt.Errorf("failed to get color flag: %w", err)
	}
	return readTriMode("color", value)
}

// useColor resolves mode for output written to f. Auto also honours
// NO_COLOR.
func useColor(mode triMode, f *os.File) bool {
	switch mode {
	case modeOn:
		return true
	case modeOff:
		return false
	default:
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false
		}
		return isTerminal(f)
	}
}

func shouldUseTUI(mode triMode) bool {
	switch mode {
	case modeOn:
		return true
	case modeOff:
		return false
	default:
		return isTerminal(os.Stdout) && isTerminal(os.Stderr)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

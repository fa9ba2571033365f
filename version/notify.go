package version

import (
	"fmt"

	"github.com/Hoodgail/watchlist/color"
	"github.com/Hoodgail/watchlist/constant"
	"github.com/Hoodgail/watchlist/key"
	"github.com/Hoodgail/watchlist/style"
	"github.com/spf13/viper"
)

// Notify displays a terminal alert if a more recent stable application version is available.
func Notify() {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	version, err := Latest()
	if err != nil {
		return
	}

	comp, err := Compare(version, constant.Version)
	if err == nil && comp <= 0 {
		return
	}

	fmt.Printf(`
%s New version is available %s %s
%s

`,
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(version),
		style.Faint(fmt.Sprintf("(You're on %s)", constant.Version)),
		style.Faint("https://github.com/Hoodgail/watchlist/releases/tag/v"+version),
	)
}

// Package main is the entry point for the watchlist application.
package main

import (
	"github.com/Hoodgail/watchlist/cmd"
	"github.com/Hoodgail/watchlist/config"
	"github.com/Hoodgail/watchlist/internal/cache"
	"github.com/Hoodgail/watchlist/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cache.CollectGarbage()

	cmd.Execute()
}

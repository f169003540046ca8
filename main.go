// Package main is the entry point for zapper.
package main

import (
	"github.com/samber/lo"
	"github.com/zapper-tv/zapper/cmd"
	"github.com/zapper-tv/zapper/config"
	"github.com/zapper-tv/zapper/internal/cache"
	"github.com/zapper-tv/zapper/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// Expired playlist copies are removed in the background.
	go cache.CollectGarbage()

	cmd.Execute()
}

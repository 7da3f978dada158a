// Package main is the entry point for petflix.
package main

import (
	"github.com/petflix/petflix/cmd"
	"github.com/petflix/petflix/config"
	"github.com/petflix/petflix/key"
	"github.com/petflix/petflix/log"
	"github.com/petflix/petflix/network"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	network.SetRateLimit(viper.GetInt(key.CatalogRateLimit))

	cmd.Execute()
}

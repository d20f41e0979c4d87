//go:build tinygo

package main

import (
	"github.com/gmsotavio/librertos/app"
	"github.com/gmsotavio/librertos/hal"
)

func main() {
	app.Run(hal.New())
}

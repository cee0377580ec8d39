package main

import (
	"github.com/appareldesk/storefront/internal/app"
	"github.com/appareldesk/storefront/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}

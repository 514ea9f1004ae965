package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/autopeer-io/seatrack/cmd/seatrack-agent/app"
)

func main() {
	app.NewApp().Run()
}

package main

import (
	"os"

	"github.com/acctmgr/acctmgr/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}

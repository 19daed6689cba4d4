package main

import (
	"github.com/Skotchmaster/restaurant_backoffice/cmd/backoffice/cli"
)

func main() {
	cli.InitAndExecute()
}

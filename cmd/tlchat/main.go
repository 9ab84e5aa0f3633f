package main

import (
	"github.com/touchline/touchline-chat/internal/cli"
)

func main() {
	cli.Execute()
}

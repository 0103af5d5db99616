package main

import (
	"github.com/mchmarny/cardiorisk/pkg/cli"
)

func main() {
	cli.Execute()
}

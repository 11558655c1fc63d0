package main

import (
	"github.com/0xPolygon/bssc-evm/command/root"
)

func main() {
	root.NewRootCommand().Execute()
}

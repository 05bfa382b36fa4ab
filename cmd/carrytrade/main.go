package main

import "carry-trade-analyzer/internal/cli"

func main() {
	cli.Execute()
}

package main

import "cxxforge/internal/cli"

func main() {
	cli.Execute()
}

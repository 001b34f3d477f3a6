package main

import "lazyddb/internal/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/evently/evently/cmd/evently-cli/cmd"

func main() {
	cmd.Execute()
}

package main

import "beacon-core/cmd/beacon-cli/cmd"

func main() {
	cmd.Execute()
}

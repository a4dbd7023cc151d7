package main

import "medledger/cli/cmd"

func main() {
	cmd.Execute()
}

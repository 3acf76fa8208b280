package main

import "github.com/aideck/cli/cmd"

func main() {
	cmd.Execute()
}

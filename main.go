package main

import "github.com/agentic-research/assetwalk/cmd"

func main() {
	cmd.Execute()
}

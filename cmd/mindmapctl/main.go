package main

import "mindmapx/cmd/mindmapctl/commands"

func main() {
	commands.Execute()
}

package main

import "scriptline/cmd"

func main() {
	cmd.Execute()
}

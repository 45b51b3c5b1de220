package main

import "github.com/taskwell/taskwell/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/pipeboot/pipeboot/cmd"

func main() {
	cmd.Execute()
}

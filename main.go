package main

import (
	"launchdb/cmd"
)

func main() {
	cmd.Execute()
}

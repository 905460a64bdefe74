package main

import "github.com/relloyd/sqlsteps/cmd"

func main() {
	cmd.Execute()
}

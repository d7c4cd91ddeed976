// Package main is the entry point for the host monitor.
package main

import (
	"hostmon/cmd/hostmon/cmd"
)

func main() {
	cmd.Execute()
}

package main

import (
	cmd "github.com/kerbaras/herogen/cmd/herogen"
)

func main() {
	cmd.Execute()
}

package main

import "github.com/rogerio-castellano/inventory-app/cmd"

// @title Inventory API
// @version 1.0
// @description REST API for managing inventory products over a pluggable store.
// @BasePath /
func main() {
	cmd.Execute()
}

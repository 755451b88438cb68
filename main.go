package main

import (
	"modpack-merger/cmd"
	"modpack-merger/logger"

	_ "go.uber.org/automaxprocs/maxprocs"
)

func main() {
	logger.InitLogger() // Initialize the logger first
	defer logger.Sync()   // Ensure logs are flushed on exit
	cmd.Execute()
}

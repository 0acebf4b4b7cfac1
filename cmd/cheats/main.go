package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/opsdeck/cheatsheets/utils"
)

func main() {
	// Load .env before any config or flag parsing
	_ = godotenv.Load()

	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		utils.Error("%v", err)
		os.Exit(1)
	}
}

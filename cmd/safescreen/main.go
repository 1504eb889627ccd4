package main

import (
	"github.com/joho/godotenv"

	"github.com/ormund/safescreen/internal/cli"
)

func main() {
	// Best-effort: SAFESCREEN_* overrides may live in a .env file.
	_ = godotenv.Load()

	cli.Execute()
}

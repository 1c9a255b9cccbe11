package main

import (
	"github.com/joho/godotenv"

	"github.com/arcwell-db/arcql/cmd"
)

func main() {
	// Load a .env file if present (silently ignored otherwise), mirroring
	// the teacher's main.go.
	_ = godotenv.Load()

	cmd.Execute()
}

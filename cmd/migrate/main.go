package main

import (
	"spanner/internal/config" // Configuration
	"spanner/internal/db"     // Schema migration
)

// Main entry point for migration
func main() {
	db.Migrate(config.LoadConfig())
}

package main

import (
	"fmt"
	"os"

	"github.com/blockedby/safebot/internal/locale"
)

// Checks locale files: valid YAML, string values, every required key set.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("No files to check.")
		os.Exit(0)
	}

	failed := false
	for _, path := range os.Args[1:] {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("❌ Failed to read %s: %v\n", path, err)
			failed = true
			continue
		}

		messages, err := locale.Parse(data)
		if err != nil {
			fmt.Printf("❌ Invalid locale in %s: %v\n", path, err)
			failed = true
			continue
		}
		fmt.Printf("✅ %s is valid (%d keys)\n", path, len(messages))
	}

	if failed {
		os.Exit(1)
	}
}

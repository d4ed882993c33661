// Validates question bank files without touching the database.
//
//	go run ./cmd/questions-lint ./questions
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"quizrush/questionfile"
)

func main() {
	dir := "./questions"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		fmt.Printf("error: cannot read %s: %v\n", dir, err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("no .json question files found in %s\n", dir)
		return
	}

	exitCode := 0
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			fmt.Printf("%s: read error: %v\n", f, err)
			exitCode = 1
			continue
		}

		records, err := questionfile.Parse(data)
		if err != nil {
			fmt.Printf("%s: %v\n", f, err)
			exitCode = 1
			continue
		}

		bad := 0
		for i, r := range records {
			if err := r.Validate(); err != nil {
				fmt.Printf("%s: record %d: %v\n", f, i, err)
				bad++
			}
		}
		if bad == 0 {
			fmt.Printf("%s: OK (%d questions)\n", f, len(records))
		} else {
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

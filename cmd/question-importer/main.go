// Bulk-loads question bank files into the database.
//
//	go run ./cmd/question-importer questions/*.json
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"quizrush/database"
	"quizrush/models"
	"quizrush/questionfile"
)

const batchSize = 500

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: question-importer <file.json> [more files...]")
		os.Exit(2)
	}

	_ = godotenv.Load()
	database.InitDB()
	db := database.GetDB()
	if db == nil {
		log.Fatal("Failed to connect to database")
	}

	var questions []models.QuizQuestion
	for _, path := range os.Args[1:] {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("%s: %v", path, err)
		}
		records, err := questionfile.Parse(data)
		if err != nil {
			log.Fatalf("%s: %v", path, err)
		}

		for i, r := range records {
			q, err := r.Question()
			if err != nil {
				log.Fatalf("%s: record %d: %v", path, i, err)
			}
			questions = append(questions, q)
		}
		fmt.Printf("Parsed %s: %d questions\n", path, len(records))
	}

	fmt.Printf("\nTotal questions to import: %d\n\n", len(questions))

	for i := 0; i < len(questions); i += batchSize {
		end := i + batchSize
		if end > len(questions) {
			end = len(questions)
		}

		batch := questions[i:end]
		if err := db.Create(&batch).Error; err != nil {
			log.Printf("Error inserting batch %d-%d: %v\n", i, end, err)
		} else {
			fmt.Printf("Inserted questions %d-%d\n", i+1, end)
		}
	}

	var count int64
	db.Model(&models.QuizQuestion{}).Count(&count)
	fmt.Printf("\n✓ Import complete. Total questions in database: %d\n", count)
}

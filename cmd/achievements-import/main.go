// Imports an achievement catalog from a JSON file into the database.
//
// Usage:
//
//	achievements-import [catalog.json]
//
// The file is an array of {name, description, pointsRequired} objects.
// Existing achievements (matched by name) are updated in place so
// thresholds can be tuned without duplicating rows.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"kudos/database"
	"kudos/models"

	"github.com/joho/godotenv"
)

type catalogEntry struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	PointsRequired int    `json:"pointsRequired"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	path := "./achievements.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal("Failed to read catalog file:", err)
	}

	var entries []catalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Fatal("Failed to parse catalog JSON:", err)
	}

	fmt.Printf("Found %d catalog entries\n\n", len(entries))

	database.InitDB()
	defer database.CloseDB()
	db := database.GetDB()

	created, updated := 0, 0
	for _, entry := range entries {
		if entry.Name == "" || entry.PointsRequired < 0 {
			log.Printf("Skipping invalid entry: %+v\n", entry)
			continue
		}

		var existing models.Achievement
		err := db.Where("name = ?", entry.Name).First(&existing).Error
		if err == nil {
			existing.Description = entry.Description
			existing.PointsRequired = entry.PointsRequired
			if err := db.Save(&existing).Error; err != nil {
				log.Printf("Error updating %q: %v\n", entry.Name, err)
				continue
			}
			updated++
			continue
		}

		achievement := models.Achievement{
			Name:           entry.Name,
			Description:    entry.Description,
			PointsRequired: entry.PointsRequired,
		}
		if err := db.Create(&achievement).Error; err != nil {
			log.Printf("Error inserting %q: %v\n", entry.Name, err)
			continue
		}
		created++
	}

	fmt.Printf("\n✓ Import completed: %d created, %d updated\n", created, updated)

	var count int64
	db.Model(&models.Achievement{}).Count(&count)
	fmt.Printf("✓ Total achievements in database: %d\n", count)
}

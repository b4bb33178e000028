// database/seed.go - Default achievement catalog
package database

import (
	"log"

	"kudos/models"
)

var defaultAchievements = []models.Achievement{
	{Name: "First Steps", Description: "Earn your first 50 points", PointsRequired: 50},
	{Name: "Rising Star", Description: "Reach 100 points", PointsRequired: 100},
	{Name: "Team Player", Description: "Reach 250 points", PointsRequired: 250},
	{Name: "Overachiever", Description: "Reach 500 points", PointsRequired: 500},
	{Name: "IT Legend", Description: "Reach 1000 points", PointsRequired: 1000},
}

// SeedAchievements inserts the default achievement catalog. Existing
// entries (matched by name) are left untouched so operators can reseed
// safely after editing thresholds.
func SeedAchievements() {
	db := GetDB()

	seeded := 0
	for _, achievement := range defaultAchievements {
		var count int64
		db.Model(&models.Achievement{}).Where("name = ?", achievement.Name).Count(&count)
		if count > 0 {
			continue
		}
		if err := db.Create(&achievement).Error; err != nil {
			log.Printf("⚠️ Failed to seed achievement %q: %v", achievement.Name, err)
			continue
		}
		seeded++
	}

	if seeded > 0 {
		log.Printf("✅ Seeded %d achievements", seeded)
	}
}

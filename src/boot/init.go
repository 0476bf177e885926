package boot

import (
	"gawlo/src/db"
	"gawlo/src/lib"
	"gawlo/src/models"
	"log"
	"time"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Event{},
		&models.TicketTier{},
		&models.Refund{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitScheduler starts the background scheduler with the hourly sweep that
// keeps the refresh-token set from growing without bound.
func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	id, err := lib.CreateCronJob(PruneExpiredRefreshTokens, time.Hour)
	if err != nil {
		log.Printf("Error scheduling refresh-token pruning: %s\n", err.Error())
		return
	}
	log.Printf("Scheduled refresh-token pruning job: %s\n", *id)
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
	}
}

// PruneExpiredRefreshTokens deletes session rows whose own signed expiry has
// passed. A revoked-but-unexpired token stays until logout removes it.
func PruneExpiredRefreshTokens() {
	db := db.GetDb()
	res := db.
		Where("expires_at < ?", time.Now()).
		Delete(&models.RefreshToken{})
	if res.Error != nil {
		log.Printf("Error pruning expired refresh tokens: %s\n", res.Error.Error())
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("Pruned %d expired refresh tokens\n", res.RowsAffected)
	}
}

package main

import (
	"time"

	"github.com/gracechapel/churchweb/config"
	"github.com/gracechapel/churchweb/controllers"
	"github.com/gracechapel/churchweb/models"
	"github.com/gracechapel/churchweb/routes"
	"github.com/gracechapel/churchweb/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Sermon{},
		&models.Event{},
		&models.GalleryImage{},
		&models.Organization{},
		&models.AboutSection{},
		&models.CoreBelief{},
		&models.LeadershipMember{},
		&models.SiteSetting{},
		&models.UploadedFile{},
		&models.GivingTransaction{},
	)

	if err := controllers.SeedAdminUser(db); err != nil {
		utils.Sugar.Fatalf("admin seed failed: %v", err)
	}

	r := routes.SetupRouter(db)

	// Reap pending uploads that were never confirmed
	utils.StartUploadReaper(10 * time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

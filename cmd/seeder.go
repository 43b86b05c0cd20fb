package cmd

import (
	"fmt"
	"log"

	datasetDatamodel "github.com/rsecloud/research-management/internal/core/datamodel/dataset"
	projectDatamodel "github.com/rsecloud/research-management/internal/core/datamodel/project"
	userDatamodel "github.com/rsecloud/research-management/internal/core/datamodel/user"
	"github.com/rsecloud/research-management/internal/roles"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm connection: %v", err)
		}

		if clearData {
			for _, table := range []string{"project_datasets", "participants", "datasets", "projects", "users"} {
				if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		admin := seedUser(db, userDatamodel.User{
			Username:     "admin",
			Email:        "admin@example.org",
			PasswordHash: string(hash),
			Role:         string(roles.UserRoleSuperuser),
			IsSuperuser:  true,
			IsActive:     true,
		})

		controller := seedUser(db, userDatamodel.User{
			Username:     "controller",
			Email:        "controller@example.org",
			PasswordHash: string(hash),
			Role:         string(roles.UserRoleSystemController),
			IsActive:     true,
			CreatedByID:  &admin.ID,
		})

		coordinator := seedUser(db, userDatamodel.User{
			Username:     "coordinator",
			Email:        "coordinator@example.org",
			PasswordHash: string(hash),
			Role:         string(roles.UserRoleResearchCoord),
			IsActive:     true,
			CreatedByID:  &controller.ID,
		})

		seedUser(db, userDatamodel.User{
			Username:     "provider",
			Email:        "provider@example.org",
			PasswordHash: string(hash),
			Role:         string(roles.UserRoleDataProviderRep),
			IsActive:     true,
			CreatedByID:  &controller.ID,
		})

		var proj projectDatamodel.Project
		err = db.Where("name = ?", "demo-study").First(&proj).Error
		if err == gorm.ErrRecordNotFound {
			proj = projectDatamodel.Project{
				Name:        "demo-study",
				Description: "Demonstration research study",
				CreatorID:   coordinator.ID,
			}
			if err := db.Create(&proj).Error; err != nil {
				log.Fatalf("failed to seed project: %v", err)
			}
			fmt.Println("Seeded project:", proj.Name)
		} else if err != nil {
			log.Fatalf("failed to look up project: %v", err)
		}

		researcher := seedUser(db, userDatamodel.User{
			Username:     "researcher1",
			Email:        "researcher1@example.org",
			PasswordHash: string(hash),
			Role:         string(roles.UserRoleNone),
			IsActive:     true,
			CreatedByID:  &coordinator.ID,
		})

		var participantCount int64
		db.Model(&projectDatamodel.Participant{}).
			Where("project_id = ? AND user_id = ?", proj.ID, researcher.ID).
			Count(&participantCount)
		if participantCount == 0 {
			participant := projectDatamodel.Participant{
				UserID:      researcher.ID,
				ProjectID:   proj.ID,
				Role:        string(roles.ProjectRoleResearcher),
				CreatedByID: &coordinator.ID,
			}
			if err := db.Create(&participant).Error; err != nil {
				log.Fatalf("failed to seed participant: %v", err)
			}
			fmt.Println("Seeded participant:", researcher.Username)
		}

		datasets := []datasetDatamodel.Dataset{
			{Name: "public-census-extract", Description: "Open census aggregates", Tier: 0},
			{Name: "survey-responses", Description: "Pseudonymised survey responses", Tier: 2},
			{Name: "clinical-records", Description: "Linked clinical records", Tier: 3},
		}
		for i := range datasets {
			var count int64
			db.Model(&datasetDatamodel.Dataset{}).Where("name = ?", datasets[i].Name).Count(&count)
			if count == 0 {
				if err := db.Create(&datasets[i]).Error; err != nil {
					log.Fatalf("failed to seed dataset %s: %v", datasets[i].Name, err)
				}
				fmt.Printf("Seeded dataset: %s (tier %d)\n", datasets[i].Name, datasets[i].Tier)
			}
		}

		fmt.Println("Seeding complete")
	},
}

func seedUser(db *gorm.DB, u userDatamodel.User) userDatamodel.User {
	var existing userDatamodel.User
	err := db.Where("username = ?", u.Username).First(&existing).Error
	if err == nil {
		return existing
	}
	if err != gorm.ErrRecordNotFound {
		log.Fatalf("failed to look up user %s: %v", u.Username, err)
	}
	if err := db.Create(&u).Error; err != nil {
		log.Fatalf("failed to seed user %s: %v", u.Username, err)
	}
	fmt.Println("Seeded user:", u.Username)
	return u
}

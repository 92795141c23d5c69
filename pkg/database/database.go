package database

import (
	"fmt"
	"log"

	"vunderkids_backend/internal/config"
	"vunderkids_backend/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dbCfg := &cfg.Database
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		dbCfg.User,
		dbCfg.Password,
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.DBName,
		dbCfg.Charset,
		dbCfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Unique violations must surface as gorm.ErrDuplicatedKey so the
		// submit path can turn them into the already-answered outcome.
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	// Release mode skips migration unless forced from the command line.
	if cfg.Server.Mode == "release" && !cfg.ForceMigrate {
		return db, nil
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.School{},
		&model.SchoolClass{},
		&model.Student{},
		&model.Parent{},
		&model.Child{},
		&model.LevelRequirement{},
		&model.Course{},
		&model.Section{},
		&model.Chapter{},
		&model.Content{},
		&model.Question{},
		&model.QuestionImage{},
		&model.Answer{},
		&model.TaskCompletion{},
		&model.Plan{},
		&model.Subscription{},
		&model.Payment{},
		&model.Olympiad{},
		&model.OlympiadQuestion{},
		&model.OlympiadAnswer{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	if err := seedDefaults(db, cfg); err != nil {
		return nil, err
	}

	return db, nil
}

// seedDefaults inserts the level ladder, the four plans and the bootstrap
// admin account when the corresponding tables are empty.
func seedDefaults(db *gorm.DB, cfg *config.Config) error {
	var lrCount int64
	db.Model(&model.LevelRequirement{}).Count(&lrCount)
	if lrCount == 0 {
		ladder := []model.LevelRequirement{
			{Level: 1, CupsRequired: 0},
			{Level: 2, CupsRequired: 10},
			{Level: 3, CupsRequired: 25},
			{Level: 4, CupsRequired: 50},
			{Level: 5, CupsRequired: 100},
			{Level: 6, CupsRequired: 200},
			{Level: 7, CupsRequired: 350},
			{Level: 8, CupsRequired: 550},
			{Level: 9, CupsRequired: 800},
			{Level: 10, CupsRequired: 1100},
		}
		for _, req := range ladder {
			if err := db.Create(&req).Error; err != nil {
				return err
			}
		}
	}

	var planCount int64
	db.Model(&model.Plan{}).Count(&planCount)
	if planCount == 0 {
		plans := []model.Plan{
			{Duration: model.PlanFreeTrial, Price: 0, IsEnabled: true},
			{Duration: model.PlanMonthly, Price: 1000, IsEnabled: true},
			{Duration: model.PlanSixMonth, Price: 5000, IsEnabled: true},
			{Duration: model.PlanAnnual, Price: 10000, IsEnabled: true},
		}
		for _, p := range plans {
			if err := db.Create(&p).Error; err != nil {
				return err
			}
		}
	}

	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		var userCount int64
		db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&userCount)
		if userCount == 0 {
			hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			admin := &model.User{
				Email:    cfg.Admin.Email,
				Password: string(hash),
				Role:     model.RoleAdmin,
				IsActive: true,
				IsStaff:  true,
			}
			if err := db.Create(admin).Error; err != nil {
				return err
			}
			log.Printf("Bootstrap admin account created: %s", cfg.Admin.Email)
		}
	}

	return nil
}

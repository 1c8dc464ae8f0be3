package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/customeros/outreachstack/config"
	"github.com/customeros/outreachstack/internal/models"
)

type Repositories struct {
	SendingIdentityRepository    SendingIdentityRepository
	SuppressionRepository        SuppressionRepository
	ChannelTouchRepository       ChannelTouchRepository
	ChannelPerformanceRepository ChannelPerformanceRepository
	ReputationSnapshotRepository ReputationSnapshotRepository
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		SendingIdentityRepository:    NewSendingIdentityRepository(db),
		SuppressionRepository:        NewSuppressionRepository(db),
		ChannelTouchRepository:       NewChannelTouchRepository(db),
		ChannelPerformanceRepository: NewChannelPerformanceRepository(db),
		ReputationSnapshotRepository: NewReputationSnapshotRepository(db),
	}
}

func MigrateDB(dbConfig *config.DatabaseConfig, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxOpenConns(5)

	err = db.AutoMigrate(
		&models.SendingIdentity{},
		&models.Suppression{},
		&models.ChannelTouch{},
		&models.ChannelPerformance{},
		&models.ReputationSnapshot{},
	)

	sqlDB.Close()

	sqlDB, _ = db.DB()
	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConn)
	sqlDB.SetMaxOpenConns(dbConfig.MaxConn)
	sqlDB.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Minute)

	return err
}

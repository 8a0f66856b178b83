package queries

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gitlab.com/vendalink-commerce/affiliate_api/config"
)

// Repo structure
//
// Writer and reader connections to the database cluster. Reads that tolerate
// replica staleness (listings, exports, the network edge fast path) go through
// ConnReader; every transactional write goes through Conn.
type Repo struct {
	Conn       *gorm.DB
	ConnReader *gorm.DB
}

var repo *Repo

// NewRepo opens the writer and reader connections based onto the cluster config
func NewRepo(cfg config.DatabaseClusterConfig) *Repo {
	repo = &Repo{
		Conn:       open(cfg.Writer),
		ConnReader: open(cfg.Reader),
	}
	return repo
}

func open(cfg config.DatabaseConfig) *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s application_name=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Name, cfg.SSLmode, cfg.ApplicationName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatal().Err(err).Str("section", "queries").Str("db", cfg.Name).Msg("Unable to connect to database")
	}
	return db
}

// Close the database connections on program exit
func Close() {
	if repo == nil {
		return
	}
	for _, conn := range []*gorm.DB{repo.Conn, repo.ConnReader} {
		if conn == nil {
			continue
		}
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// internal/service/promotion/infrastructure/mysql.go
package infrastructure

import (
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewMysqlDB 建立 MySQL 连接并迁移表结构。
func NewMysqlDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to mysql")
	}

	if err := db.AutoMigrate(&PromotionModel{}, &ParticipationModel{}); err != nil {
		return nil, errors.Wrap(err, "failed to auto-migrate schema")
	}
	return db, nil
}

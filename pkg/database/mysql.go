// Package database 负责初始化 MySQL 与 Redis 连接。
package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shop-insight-go/internal/config"
	"shop-insight-go/pkg/log"
)

var DB *gorm.DB

// InitMySQL 初始化 warehouse 后端使用的只读 MySQL 连接。
func InitMySQL(cfg config.MySQLConfig) error {
	if cfg.DSN == "" {
		return errors.New("database.mysql.dsn is required for the warehouse backend")
	}

	var err error
	DB, err = gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Warn),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	// 配置连接池
	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)           // 设置空闲连接池中连接的最大数量
	sqlDB.SetMaxOpenConns(100)          // 设置打开数据库连接的最大数量
	sqlDB.SetConnMaxLifetime(time.Hour) // 设置了连接可复用的最大时间

	log.Info("MySQL database connected successfully")
	return nil
}

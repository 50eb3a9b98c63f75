package db

import (
	"fmt"
	"log"

	"llm-tracker/internal/config"
	"llm-tracker/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDB 按配置打开数据库并自动迁移。
// 返回连接句柄由调用方持有并显式传递，不再挂在包级全局变量上。
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		path := cfg.Database.Path
		if path == "" {
			path = "data/tracker.db"
		}
		dialector = sqlite.Open(path)
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.DBName,
			cfg.Database.Charset,
		)
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Database.Driver)
	}

	// TranslateError: 唯一键冲突需要统一翻译成 gorm.ErrDuplicatedKey，
	// 幂等缓存的"第一个提交者胜出"依赖这个判断
	gormDB, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	if err := Migrate(gormDB); err != nil {
		return nil, err
	}

	log.Println("数据库初始化成功")
	return gormDB, nil
}

// Migrate 自动迁移全部表结构
func Migrate(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(
		&model.Task{},
		&model.TaskNote{},
		&model.ChatMessage{},
		&model.CachedResponse{},
	); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	return nil
}

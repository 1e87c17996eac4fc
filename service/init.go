/*
 * @module service/init
 * @description 服务初始化模块，负责数据库连接、迁移和全局服务装配
 * @architecture 分层架构 - 服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 应用启动时执行初始化流程
 * @rules 确保数据库迁移完成后才装配业务服务；调度执行器按配置决定是否启动
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres, gorm.io/driver/sqlite
 * @refs main.go, api/routes.go
 */

package service

import (
	"log"
	"os"
	"strconv"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"dqguard-service/service/alert"
	"dqguard-service/service/loader"
	"dqguard-service/service/models"
	"dqguard-service/service/scheduler"
	"dqguard-service/service/store"
	"dqguard-service/service/validation"
)

var (
	DB *gorm.DB

	GlobalLoader            *loader.Loader
	GlobalResultStore       *store.ResultStore
	GlobalValidationService *validation.Service
	GlobalScheduleRegistry  *scheduler.Registry
	GlobalAlertDispatcher   *alert.Dispatcher
	GlobalRunner            *scheduler.Runner
)

func init() {
	initDatabase()
	runMigrations()
	initServices()
}

// initDatabase 初始化数据库连接，默认 SQLite，配置后切换 PostgreSQL
func initDatabase() {
	var dialector gorm.Dialector

	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		dialector = postgres.Open(databaseURL)
	} else if getEnvWithDefault("DB_DRIVER", "sqlite") == "postgres" {
		host := getEnvWithDefault("DB_HOST", "localhost")
		port := getEnvWithDefault("DB_PORT", "5432")
		user := getEnvWithDefault("DB_USER", "postgres")
		password := getEnvWithDefault("DB_PASSWORD", "postgres")
		dbname := getEnvWithDefault("DB_NAME", "dqguard")
		sslmode := getEnvWithDefault("DB_SSLMODE", "disable")

		dsn := "host=" + host + " port=" + port + " user=" + user +
			" password=" + password + " dbname=" + dbname + " sslmode=" + sslmode
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(getEnvWithDefault("DB_PATH", "dqguard.db"))
	}

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	log.Println("数据库连接成功")
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// runMigrations 运行数据库迁移
func runMigrations() {
	log.Println("开始运行数据库迁移...")

	err := DB.AutoMigrate(
		&models.ValidationResult{},
		&models.QualityMetric{},
		&models.ScheduledJob{},
	)
	if err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	log.Println("数据库表结构迁移完成")
}

// initServices 装配全局服务并按配置启动调度执行器
func initServices() {
	GlobalLoader = loader.NewLoader(DB)
	GlobalResultStore = store.NewResultStore(DB)
	GlobalValidationService = validation.NewService(GlobalResultStore)
	GlobalScheduleRegistry = scheduler.NewRegistry(DB)
	GlobalAlertDispatcher = alert.NewDispatcher()
	GlobalRunner = scheduler.NewRunner(DB, GlobalLoader, GlobalValidationService, GlobalAlertDispatcher)

	if tickSeconds, err := strconv.Atoi(os.Getenv("SCHEDULER_TICK_SECONDS")); err == nil && tickSeconds > 0 {
		GlobalRunner.SetTickInterval(time.Duration(tickSeconds) * time.Second)
	}

	if getEnvWithDefault("SCHEDULER_ENABLED", "true") != "false" {
		GlobalRunner.Start()
	}

	log.Println("服务初始化完成")
}

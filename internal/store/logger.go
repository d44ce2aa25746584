package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

const slowQueryThreshold = 200 * time.Millisecond

// gormLogger sends gorm's logging through the zap global logger. SQL text is
// never logged: gorm inlines bound values, and those include usernames,
// code hashes and token hashes. Misses and unique violations are translated
// into ErrNotFound and ErrConflict for the caller and are not logged at all.
type gormLogger struct {
	level gormlogger.LogLevel
}

var _ gormlogger.Interface = (*gormLogger)(nil)

func newGormLogger() *gormLogger {
	return &gormLogger{level: gormlogger.Warn}
}

func (l *gormLogger) logger() *zap.Logger {
	return zap.L().Named("gorm")
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogger) Info(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.logger().Info(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.logger().Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.logger().Error(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !expectedQueryError(err):
		if l.level >= gormlogger.Error {
			_, rows := fc()
			l.logger().Error("query failed",
				zap.Error(err),
				zap.Duration("elapsed", elapsed),
				zap.Int64("rows", rows),
				zap.String("caller", utils.FileWithLineNum()),
			)
		}
	case elapsed > slowQueryThreshold:
		if l.level >= gormlogger.Warn {
			_, rows := fc()
			l.logger().Warn("slow query",
				zap.Duration("elapsed", elapsed),
				zap.Int64("rows", rows),
				zap.String("caller", utils.FileWithLineNum()),
			)
		}
	case l.level >= gormlogger.Info:
		_, rows := fc()
		l.logger().Debug("query",
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows", rows),
		)
	}
}

func expectedQueryError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, gorm.ErrDuplicatedKey)
}

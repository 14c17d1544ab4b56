package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"
	"time"
)

// LogLevel определяет уровень логирования
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[LogLevel]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

// ParseLevel разбирает уровень из строки конфигурации (debug, info, warn, error)
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger представляет структурированный логгер
type Logger struct {
	level  LogLevel
	logger *log.Logger
}

// New создает новый логгер, пишущий в stdout
func New(level LogLevel) *Logger {
	return NewWithWriter(level, os.Stdout)
}

// NewWithWriter создает логгер с произвольным приемником
func NewWithWriter(level LogLevel, w io.Writer) *Logger {
	return &Logger{
		level:  level,
		logger: log.New(w, "", 0),
	}
}

// Debug записывает debug сообщение
func (l *Logger) Debug(msg string, fields ...Field) {
	l.log(LevelDebug, msg, fields...)
}

// Info записывает info сообщение
func (l *Logger) Info(msg string, fields ...Field) {
	l.log(LevelInfo, msg, fields...)
}

// Warn записывает warning сообщение
func (l *Logger) Warn(msg string, fields ...Field) {
	l.log(LevelWarn, msg, fields...)
}

// Error записывает error сообщение
func (l *Logger) Error(msg string, fields ...Field) {
	l.log(LevelError, msg, fields...)
}

// Fatal записывает fatal сообщение и завершает программу
func (l *Logger) Fatal(msg string, fields ...Field) {
	l.log(LevelFatal, msg, fields...)
	os.Exit(1)
}

// WithContext возвращает логгер с контекстом
func (l *Logger) WithContext(ctx context.Context) *ContextLogger {
	return &ContextLogger{
		logger: l,
		ctx:    ctx,
	}
}

// WithFields возвращает логгер с предустановленными полями
func (l *Logger) WithFields(fields ...Field) *FieldLogger {
	return &FieldLogger{
		logger: l,
		fields: fields,
	}
}

// log выполняет фактическое логирование
func (l *Logger) log(level LogLevel, msg string, fields ...Field) {
	if level < l.level {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	levelName := levelNames[level]

	// Получить информацию о вызывающем коде
	_, file, line, ok := runtime.Caller(2)
	caller := "unknown"
	if ok {
		caller = fmt.Sprintf("%s:%d", getShortFileName(file), line)
	}

	// Формировать строку с полями
	fieldsStr := ""
	if len(fields) > 0 {
		parts := make([]string, 0, len(fields))
		for _, field := range fields {
			parts = append(parts, field.String())
		}
		fieldsStr = " " + strings.Join(parts, " ")
	}

	logLine := fmt.Sprintf("[%s] %s %s %s%s",
		timestamp, levelName, caller, msg, fieldsStr)

	l.logger.Println(logLine)
}

// getShortFileName возвращает короткое имя файла
func getShortFileName(file string) string {
	parts := strings.Split(file, "/")
	if len(parts) >= 2 {
		return strings.Join(parts[len(parts)-2:], "/")
	}
	return file
}

// ContextLogger оборачивает логгер с контекстом
type ContextLogger struct {
	logger *Logger
	ctx    context.Context
}

// Debug записывает debug сообщение с контекстом
func (cl *ContextLogger) Debug(msg string, fields ...Field) {
	cl.logger.Debug(msg, cl.withRequestID(fields)...)
}

// Info записывает info сообщение с контекстом
func (cl *ContextLogger) Info(msg string, fields ...Field) {
	cl.logger.Info(msg, cl.withRequestID(fields)...)
}

// Warn записывает warning сообщение с контекстом
func (cl *ContextLogger) Warn(msg string, fields ...Field) {
	cl.logger.Warn(msg, cl.withRequestID(fields)...)
}

// Error записывает error сообщение с контекстом
func (cl *ContextLogger) Error(msg string, fields ...Field) {
	cl.logger.Error(msg, cl.withRequestID(fields)...)
}

func (cl *ContextLogger) withRequestID(fields []Field) []Field {
	if id := RequestID(cl.ctx); id != "" {
		return append([]Field{String("request_id", id)}, fields...)
	}
	return fields
}

type requestIDKey struct{}

// ContextWithRequestID сохраняет идентификатор запроса в контексте
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID возвращает идентификатор запроса из контекста
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FieldLogger оборачивает логгер с предустановленными полями
type FieldLogger struct {
	logger *Logger
	fields []Field
}

func (fl *FieldLogger) merge(fields []Field) []Field {
	all := make([]Field, 0, len(fl.fields)+len(fields))
	all = append(all, fl.fields...)
	return append(all, fields...)
}

// Debug записывает debug сообщение с предустановленными полями
func (fl *FieldLogger) Debug(msg string, fields ...Field) {
	fl.logger.Debug(msg, fl.merge(fields)...)
}

// Info записывает info сообщение с предустановленными полями
func (fl *FieldLogger) Info(msg string, fields ...Field) {
	fl.logger.Info(msg, fl.merge(fields)...)
}

// Warn записывает warning сообщение с предустановленными полями
func (fl *FieldLogger) Warn(msg string, fields ...Field) {
	fl.logger.Warn(msg, fl.merge(fields)...)
}

// Error записывает error сообщение с предустановленными полями
func (fl *FieldLogger) Error(msg string, fields ...Field) {
	fl.logger.Error(msg, fl.merge(fields)...)
}

// Field представляет поле логирования
type Field struct {
	Key   string
	Value interface{}
}

// String возвращает строковое представление поля
func (f Field) String() string {
	return fmt.Sprintf("%s=%v", f.Key, f.Value)
}

// Вспомогательные функции для создания полей
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Strings(key string, values []string) Field {
	return Field{Key: key, Value: strings.Join(values, ",")}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Error(err error) Field {
	return Field{Key: "error", Value: err}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Nop возвращает логгер, который ничего не пишет
func Nop() *Logger {
	return NewWithWriter(LevelFatal+1, io.Discard)
}

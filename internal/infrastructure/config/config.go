package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构
// 设计说明：使用Viper管理配置，支持YAML文件、环境变量覆盖
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	RabbitMQ     RabbitMQConfig     `mapstructure:"rabbitmq"`
	Lending      LendingConfig      `mapstructure:"lending"`
	Notification NotificationConfig `mapstructure:"notification"`
	Tracing      TracingConfig      `mapstructure:"tracing"`
	Log          LogConfig          `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"` // debug | release | test
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// 支持的数据库驱动
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const defaultSQLiteBusyTimeout = 5 * time.Second

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // mysql | postgres | sqlite
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	Charset         string        `mapstructure:"charset"`
	ParseTime       bool          `mapstructure:"parse_time"`
	Loc             string        `mapstructure:"loc"`
	SSLMode         string        `mapstructure:"sslmode"`
	Path            string        `mapstructure:"path"`         // sqlite文件路径，:memory:表示内存库
	BusyTimeout     time.Duration `mapstructure:"busy_timeout"` // sqlite等待写锁的上限
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN 按驱动生成连接字符串
// mysql格式：user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=UTC
// 注意：loc参数需要URL编码（Asia/Shanghai → Asia%2FShanghai）
// clientFoundRows=true：UPDATE返回匹配行数而非实际变更行数（续借0天也算匹配）
//
// sqlite格式：./lending.db?_txlock=immediate&_busy_timeout=5000
// SQLite不支持SELECT ... FOR UPDATE，_txlock=immediate让BEGIN直接拿写锁，
// 同一时刻只有一个事务在写，其余事务在BEGIN处最多等待_busy_timeout毫秒
func (d DatabaseConfig) DSN() string {
	switch d.Driver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
	case DriverSQLite:
		busy := d.BusyTimeout
		if busy <= 0 {
			busy = defaultSQLiteBusyTimeout
		}
		sep := "?"
		if strings.Contains(d.Path, "?") {
			sep = "&"
		}
		return fmt.Sprintf("%s%s_txlock=immediate&_busy_timeout=%d", d.Path, sep, busy.Milliseconds())
	default:
		loc := url.QueryEscape(d.Loc)
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s&clientFoundRows=true",
			d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset, d.ParseTime, loc)
	}
}

type RedisConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Password        string        `mapstructure:"password"`
	DB              int           `mapstructure:"db"`
	PoolSize        int           `mapstructure:"pool_size"`
	MinIdleConns    int           `mapstructure:"min_idle_conns"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	AvailabilityTTL time.Duration `mapstructure:"availability_ttl"` // 可借数量缓存有效期
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`   // 超过该耗时的命令记警告日志
	Enabled         bool          `mapstructure:"enabled"`
}

// Addr 返回Redis地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type RabbitMQConfig struct {
	URL          string `mapstructure:"url"`
	Exchange     string `mapstructure:"exchange"`
	ExchangeType string `mapstructure:"exchange_type"`
	Queue        string `mapstructure:"queue"`
	Enabled      bool   `mapstructure:"enabled"` // 关闭时借阅通知只写日志
}

// LendingConfig 借阅规则
type LendingConfig struct {
	LoanPeriodDays  int           `mapstructure:"loan_period_days"`  // 默认借期（天）
	LockWaitTimeout time.Duration `mapstructure:"lock_wait_timeout"` // 行锁最长等待时间
	TopActiveLimit  int           `mapstructure:"top_active_limit"`  // 活跃会员榜单长度
}

// NotificationConfig 借阅通知投递
type NotificationConfig struct {
	Workers         int           `mapstructure:"workers"`
	QueueSize       int           `mapstructure:"queue_size"`
	RatePerSecond   float64       `mapstructure:"rate_per_second"`
	Burst           int           `mapstructure:"burst"`
	PublishTimeout  time.Duration `mapstructure:"publish_timeout"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"` // 连续失败多少次后熔断
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`  // 熔断持续时间
	DrainTimeout    time.Duration `mapstructure:"drain_timeout"`    // 关闭时等待队列排空的上限
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	Endpoint    string `mapstructure:"endpoint"` // OTLP gRPC host:port
}

type LogConfig struct {
	Level        string `mapstructure:"level"`  // debug | info | warn | error
	Format       string `mapstructure:"format"` // console | json
	Output       string `mapstructure:"output"` // stdout | stderr | /path/to/file
	EnableCaller bool   `mapstructure:"enable_caller"`
}

// Load 加载配置文件
// 支持：
// 1. 默认加载config/config.yaml
// 2. 通过环境变量LENDING_ENV指定环境（如config.prod.yaml）
// 3. 环境变量覆盖（如LENDING_DATABASE_PASSWORD）
func Load() (*Config, error) {
	return LoadFrom("./config", ".")
}

// LoadFrom 从指定目录加载配置（测试使用临时目录）
func LoadFrom(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// 环境变量绑定（LENDING_DATABASE_PASSWORD → database.password）
	v.SetEnvPrefix("LENDING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 环境特定配置（如config.prod.yaml）
	if env := v.GetString("env"); env != "" {
		v.SetConfigName("config." + env)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults 未在配置文件中出现的项使用默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", DriverMySQL)
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parse_time", true)
	v.SetDefault("database.loc", "UTC")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.busy_timeout", defaultSQLiteBusyTimeout)
	v.SetDefault("redis.availability_ttl", 5*time.Minute)
	v.SetDefault("redis.slow_threshold", 100*time.Millisecond)
	v.SetDefault("rabbitmq.exchange", "lending.events")
	v.SetDefault("rabbitmq.exchange_type", "topic")
	v.SetDefault("rabbitmq.queue", "loan.notification")
	v.SetDefault("lending.loan_period_days", 14)
	v.SetDefault("lending.lock_wait_timeout", 5*time.Second)
	v.SetDefault("lending.top_active_limit", 5)
	v.SetDefault("notification.workers", 2)
	v.SetDefault("notification.queue_size", 1024)
	v.SetDefault("notification.rate_per_second", 100)
	v.SetDefault("notification.burst", 20)
	v.SetDefault("notification.publish_timeout", 3*time.Second)
	v.SetDefault("notification.breaker_failures", 5)
	v.SetDefault("notification.breaker_timeout", 30*time.Second)
	v.SetDefault("notification.drain_timeout", 5*time.Second)
	v.SetDefault("tracing.service_name", "lending-api")
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
}

// validate 配置校验
func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", cfg.Server.Port)
	}

	switch cfg.Database.Driver {
	case DriverMySQL, DriverPostgres:
	case DriverSQLite:
		if cfg.Database.Path == "" {
			return fmt.Errorf("sqlite驱动必须配置database.path")
		}
	default:
		return fmt.Errorf("不支持的数据库驱动: %s", cfg.Database.Driver)
	}

	if cfg.Lending.LoanPeriodDays <= 0 {
		return fmt.Errorf("借期必须大于0天: %d", cfg.Lending.LoanPeriodDays)
	}

	if cfg.Notification.Workers <= 0 || cfg.Notification.QueueSize <= 0 {
		return fmt.Errorf("通知worker数和队列长度必须大于0")
	}

	return nil
}

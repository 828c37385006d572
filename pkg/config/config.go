package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"beacon-core/pkg/errno"
)

type Config struct {
	App         AppConfig     `mapstructure:"app"`
	Nodes       []NodeConfig  `mapstructure:"nodes" validate:"required,min=1,dive"`
	Subscribers []string      `mapstructure:"subscribers" validate:"dive,email"`
	Interval    time.Duration `mapstructure:"interval" validate:"required,gt=0"`
	Concurrency int           `mapstructure:"concurrency" validate:"gte=1"`
	Alert       AlertConfig   `mapstructure:"alert"`
	Notify      NotifyConfig  `mapstructure:"notify"`
	SMTP        SMTPConfig    `mapstructure:"smtp"`
	Redis       RedisConfig   `mapstructure:"redis"`
	Worker      WorkerConfig  `mapstructure:"worker"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	Name     string `mapstructure:"name" validate:"required"`
	HttpPort string `mapstructure:"http_port"`
}

// NodeConfig 一个被监控的节点
// Kind 为 bitcoin 时走 getblockchaininfo，为 eth 时走 eth_getBlockByNumber
type NodeConfig struct {
	Name    string        `mapstructure:"name" validate:"required"`
	Kind    string        `mapstructure:"kind" validate:"omitempty,oneof=bitcoin eth"`
	URL     string        `mapstructure:"url" validate:"required_without=Host,omitempty,url"`
	Host    string        `mapstructure:"host"`
	Port    int           `mapstructure:"port" validate:"omitempty,gt=0,lte=65535"`
	HTTPS   bool          `mapstructure:"https"`
	User    string        `mapstructure:"user"`
	Pass    string        `mapstructure:"pass"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Endpoint 返回节点的 RPC 地址，URL 优先，否则由 host/port/https 拼出
func (n NodeConfig) Endpoint() string {
	if n.URL != "" {
		return n.URL
	}
	scheme := "http"
	if n.HTTPS {
		scheme = "https"
	}
	if n.Port == 0 {
		return fmt.Sprintf("%s://%s/", scheme, n.Host)
	}
	return fmt.Sprintf("%s://%s:%d/", scheme, n.Host, n.Port)
}

type AlertConfig struct {
	Hash string `mapstructure:"hash" validate:"omitempty,oneof=sha256 keccak256 blake3"`
}

type NotifyConfig struct {
	Mode string `mapstructure:"mode" validate:"oneof=smtp queue log"`
}

type SMTPConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	Secure bool   `mapstructure:"secure"`
	User   string `mapstructure:"user"`
	Pass   string `mapstructure:"pass"`
	From   string `mapstructure:"from"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

type WorkerConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	Concurrency int  `mapstructure:"concurrency"`
}

var Global Config

// Init 加载配置到 Global，失败直接退出 (服务进程使用)
func Init() {
	cfg, err := Load("")
	if err != nil {
		log.Fatalf("Fatal error config: %s \n", err)
	}
	Global = *cfg
	log.Printf("Configuration loaded successfully. Env: %s, nodes: %d", Global.App.Env, len(Global.Nodes))
}

// Load 读取配置文件 + 环境变量并校验
// path 为空时按默认路径查找 config.{yaml,json}
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.beacon")
	}

	// 环境变量: BEACON_SMTP_HOST -> smtp.host
	v.SetEnvPrefix("BEACON")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
		log.Printf("Warning: Config file not found, using defaults and environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	cfg.applyNodeDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.name", "beacon")
	v.SetDefault("app.http_port", "8080")

	v.SetDefault("interval", "1m")
	v.SetDefault("concurrency", 4)
	v.SetDefault("alert.hash", "sha256")
	v.SetDefault("notify.mode", "smtp")

	v.SetDefault("smtp.port", 587)

	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl", "2m")

	v.SetDefault("worker.concurrency", 2)
}

func (c *Config) applyNodeDefaults() {
	for i := range c.Nodes {
		if c.Nodes[i].Kind == "" {
			c.Nodes[i].Kind = "bitcoin"
		}
		if c.Nodes[i].Timeout == 0 {
			c.Nodes[i].Timeout = 10 * time.Second
		}
	}
}

var validate = validator.New()

// Validate 校验结构体 tag 以及跨字段约束 (节点名唯一等)
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", errno.ErrConfigInvalid, describe(err))
	}

	seen := make(map[string]struct{}, len(c.Nodes))
	for _, n := range c.Nodes {
		if _, ok := seen[n.Name]; ok {
			return fmt.Errorf("%w: duplicate node name %q", errno.ErrConfigInvalid, n.Name)
		}
		seen[n.Name] = struct{}{}
	}

	if c.Notify.Mode != "log" && len(c.Subscribers) > 0 {
		if c.SMTP.Host == "" || c.SMTP.From == "" {
			return fmt.Errorf("%w: smtp.host and smtp.from are required for notify mode %q", errno.ErrConfigInvalid, c.Notify.Mode)
		}
	}
	if c.Notify.Mode == "queue" && c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis.addr is required for notify mode queue", errno.ErrConfigInvalid)
	}
	return nil
}

// describe 把校验错误翻译成一行可读信息
func describe(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	var msgs []string
	for _, e := range validationErrors {
		field := e.Namespace()
		switch e.Tag() {
		case "required", "required_without":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s is not a valid email", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", field, e.Param()))
		case "min", "gt", "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed on %s", field, e.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

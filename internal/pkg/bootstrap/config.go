// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration 让 yaml 可以用 "1s"、"5m" 这种写法配置时长。
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config 是服务的全量配置，从 yaml 文件加载，个别字段允许环境变量覆盖。
type Config struct {
	Http struct {
		Port int `yaml:"port"`
	} `yaml:"http"`

	App struct {
		QueueSizeMultiplier int      `yaml:"queueSizeMultiplier"` // 队列上限 = totalStock * multiplier
		WorkerInterval      Duration `yaml:"workerInterval"`
		WorkerBatchSize     int      `yaml:"workerBatchSize"`
		CacheTTL            Duration `yaml:"cacheTTL"`
		RateLimitPerSecond  float64  `yaml:"rateLimitPerSecond"`
		RateLimitBurst      int      `yaml:"rateLimitBurst"`
	} `yaml:"app"`

	Infra struct {
		Mysql struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers     []string `yaml:"brokers"`
			WinnerTopic string   `yaml:"winnerTopic"`
		} `yaml:"kafka"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Zookeeper struct {
			// 为空时禁用跨实例的 worker 选主，只用进程内互斥
			Addrs []string `yaml:"addrs"`
		} `yaml:"zookeeper"`
	} `yaml:"infra"`
}

var currentConfig Config

// Init 加载配置文件。路径来自 CONFIG_PATH，默认 configs/config.yaml。
func Init() error {
	path := getEnv("CONFIG_PATH", "configs/config.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}
	applyEnvOverrides(&cfg)
	currentConfig = cfg
	return nil
}

// GetCurrentConfig 返回当前配置的副本。
func GetCurrentConfig() Config {
	return currentConfig
}

func defaultConfig() Config {
	var cfg Config
	cfg.Http.Port = 8080
	cfg.App.QueueSizeMultiplier = 5
	cfg.App.WorkerInterval = Duration(time.Second)
	cfg.App.WorkerBatchSize = 100
	cfg.App.CacheTTL = Duration(5 * time.Minute)
	cfg.App.RateLimitPerSecond = 10
	cfg.App.RateLimitBurst = 20
	cfg.Infra.Redis.Addr = "localhost:6379"
	cfg.Infra.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Infra.Kafka.WinnerTopic = "promotion.winner"
	return cfg
}

// applyEnvOverrides 允许部署环境用环境变量覆盖连接地址类配置。
func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("HTTP_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Http.Port = port
		}
	}
	if v, ok := os.LookupEnv("MYSQL_DSN"); ok {
		cfg.Infra.Mysql.DSN = v
	}
	if v, ok := os.LookupEnv("REDIS_ADDR"); ok {
		cfg.Infra.Redis.Addr = v
	}
	if v, ok := os.LookupEnv("JAEGER_ENDPOINT"); ok {
		cfg.Infra.Jaeger.Endpoint = v
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

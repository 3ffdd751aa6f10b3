// Package config определяет структуры для конфигурации всего приложения
// и предоставляет функцию для их загрузки из YAML-файла и переменных окружения.
// Использование библиотеки cleanenv позволяет гибко управлять конфигурацией,
// совмещая чтение из файла с переопределением через environment variables,
// что удобно для запуска как локально, так и в Docker-контейнерах.
//
// Ключи доступа к commerce-бэкенду читаются ТОЛЬКО из переменных окружения
// (WOO_CONSUMER_KEY / WOO_CONSUMER_SECRET) и никогда не хранятся в коде
// или в конфигурационном файле.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config - это корневая структура, объединяющая все конфигурационные
// параметры приложения. Она загружается при старте сервиса.
type Config struct {
	Env        string     `yaml:"env" env:"ENV" env-required:"true"`
	Woo        Woo        `yaml:"woo" env-required:"true"`
	Points     Points     `yaml:"points"`
	Postgres   Postgres   `yaml:"postgres" env-required:"true"`
	Redis      Redis      `yaml:"redis" env-required:"true"`
	Kafka      Kafka      `yaml:"kafka" env-required:"true"`
	HTTPServer HTTPServer `yaml:"http_server" env-required:"true"`
}

// Woo содержит параметры доступа к REST API commerce-бэкенда (WooCommerce).
// ConsumerKey и ConsumerSecret не имеют yaml-тегов намеренно: секреты
// задаются только через окружение.
type Woo struct {
	BaseURL        string        `yaml:"base_url" env:"WOO_BASE_URL" env-required:"true"`
	ConsumerKey    string        `env:"WOO_CONSUMER_KEY" env-required:"true"`
	ConsumerSecret string        `env:"WOO_CONSUMER_SECRET" env-required:"true"`
	Timeout        time.Duration `yaml:"timeout" env:"WOO_TIMEOUT" env-default:"10s"`
}

// Points содержит настройки логики начисления баллов.
type Points struct {
	DefaultRatio  string        `yaml:"default_ratio" env:"POINTS_DEFAULT_RATIO" env-default:"1:1"`
	RatioCacheTTL time.Duration `yaml:"ratio_cache_ttl" env-default:"5m"`
	LockTTL       time.Duration `yaml:"lock_ttl" env-default:"30s"`
}

// Postgres содержит параметры для подключения к базе данных PostgreSQL.
type Postgres struct {
	Username string `yaml:"username" env:"POSTGRES_USER" env-required:"true"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD" env-required:"true"`
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-required:"true"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-required:"true"`
	Database string `yaml:"database" env:"POSTGRES_DB" env-required:"true"`
}

// Redis содержит параметры для подключения к серверу Redis.
type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-required:"true"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-required:"true"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
}

// Kafka содержит параметры для взаимодействия с Apache Kafka,
// включая настройки для продюсера и консьюмера.
type Kafka struct {
	BootstrapServers []string `yaml:"bootstrap.servers" env:"KAFKA_BOOTSTRAP_SERVERS" env-required:"true"`
	PaidTopic        string   `yaml:"paid_topic" env-required:"true"`
	AwardedTopic     string   `yaml:"awarded_topic" env-required:"true"`
	Producer         Producer `yaml:"producer" env-required:"true"`
	Consumer         Consumer `yaml:"consumer" env-required:"true"`
}

// Producer определяет настройки для Kafka-продюсера.
type Producer struct {
	Acks              int    `yaml:"acks" env-required:"true"`
	EnableIdempotence bool   `yaml:"enable.idempotence"`
	Retries           int    `yaml:"retries"`
	TransactionalId   string `yaml:"transactional.id"`
}

// Consumer определяет настройки для Kafka-консьюмера.
type Consumer struct {
	GroupId          string `yaml:"group.id" env-required:"true"`
	AutoOffsetReset  string `yaml:"auto.offset.reset" env-required:"true"`
	EnableAutoCommit bool   `yaml:"enable.auto.commit"`
	SecurityProtocol string `yaml:"security.protocol"`
	IsolationLevel   int8   `yaml:"isolation.level"`
}

// HTTPServer содержит параметры для запуска встроенного HTTP-сервера.
type HTTPServer struct {
	Address     string        `yaml:"address" env-required:"true"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// MustLoad читает конфигурацию из файла, путь к которому указан в переменной
// окружения CONFIG_PATH, и переменных окружения.
//
// Функция имеет префикс "Must", так как она вызывает log.Fatalf (паникует)
// при любой ошибке во время загрузки или парсинга конфигурации. Такой подход
// используется при старте приложения, поскольку его дальнейшая работа без
// валидной конфигурации невозможна.
//
// Возвращает указатель на заполненную структуру Config.
func MustLoad() *Config {
	// Получаем путь к файлу конфигурации из переменной окружения.
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	// Проверяем, существует ли файл по указанному пути.
	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	var cfg Config

	// Читаем YAML-файл и переменные окружения в структуру Config.
	// cleanenv автоматически сопоставляет поля структуры с данными из источников.
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return &cfg
}

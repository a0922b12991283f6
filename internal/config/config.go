package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env        string           `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer HTTPServer       `yaml:"http_server"`
	WSServer   WSServer         `yaml:"ws_server"`
	Storage    Storage          `yaml:"storage"`
	Events     Events           `yaml:"events"`
	Roulette   RouletteSettings `yaml:"roulette"`
	Users      Users            `yaml:"users"`
	Workers    Workers          `yaml:"workers"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8082"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type WSServer struct {
	Address     string        `yaml:"address" env:"WS_ADDRESS" env-default:"localhost:8081"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`
	DSN    string `yaml:"dsn" env:"STORAGE_DSN" env-default:"./storage/game_empire.db"`
}

type Events struct {
	Driver string `yaml:"driver" env:"EVENTS_DRIVER" env-default:"none"`
	WSURL  string `yaml:"ws_url" env:"EVENTS_WS_URL" env-default:"ws://localhost:8081/ws?channel=api"`
	Pusher Pusher `yaml:"pusher"`
}

type Pusher struct {
	AppID   string `yaml:"app_id" env:"PUSHER_APP_ID"`
	Key     string `yaml:"key" env:"PUSHER_KEY"`
	Secret  string `yaml:"secret" env:"PUSHER_SECRET"`
	Cluster string `yaml:"cluster" env:"PUSHER_CLUSTER" env-default:"eu"`
}

type RouletteSettings struct {
	MinBet            float64       `yaml:"min_bet" env-default:"1"`
	MaxBet            float64       `yaml:"max_bet" env-default:"10000"`
	BetTime           int           `yaml:"bet_time" env-default:"30"`
	MaxBetsPerRound   int           `yaml:"max_bets_per_round" env-default:"10"`
	SessionTTL        time.Duration `yaml:"session_ttl" env-default:"30m"`
	AllowForcedResult bool          `yaml:"allow_forced_result" env:"ROULETTE_ALLOW_FORCED_RESULT" env-default:"false"`
}

type Users struct {
	SignupBalance float64 `yaml:"signup_balance" env-default:"10000"`
	Header        string  `yaml:"header" env-default:"X-User-UUID"`
}

type Workers struct {
	Size      int `yaml:"size" env-default:"4"`
	QueueSize int `yaml:"queue_size" env-default:"100"`
}

// MustLoad reads the config file named by the -config flag or CONFIG_PATH.
// A .env file in the working directory is loaded first when present.
func MustLoad() *Config {
	_ = godotenv.Load()

	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	if flag.Lookup("config") == nil {
		flag.StringVar(&res, "config", "", "path to config file")
	}
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}

package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/soltrackdao/pump_relay/utils/logger"
)

type ServerConfig struct {
	ListenAddr string `mapstructure:"ListenAddr"`
	AuthToken  string `mapstructure:"AuthToken"`
	// "last" decodes the last top-level instruction, "scan" matches any
	// instruction by program id.
	InstructionSelect string `mapstructure:"InstructionSelect"`
	VisitLogFile      string `mapstructure:"VisitLogFile"`
}

type RedisConfig struct {
	Host         string `mapstructure:"Host"`
	DB           int64  `mapstructure:"DB"`
	Password     string `mapstructure:"Password"`
	MinIdleConns int64  `mapstructure:"MinIdleConns"`
}

type WatchConfig struct {
	ProgramID       string `mapstructure:"ProgramID"`
	BaseDecimals    int    `mapstructure:"BaseDecimals"`
	TokenDecimals   int    `mapstructure:"TokenDecimals"`
	DedupTTLSeconds int64  `mapstructure:"DedupTTLSeconds"`
	IDLPath         string `mapstructure:"IDLPath"`
}

type DiscordConfig struct {
	WebhookURL     string `mapstructure:"WebhookURL"`
	Username       string `mapstructure:"Username"`
	TimeoutSeconds int64  `mapstructure:"TimeoutSeconds"`
}

type KafkaConfig struct {
	Host     string `mapstructure:"Host"`
	Topic    string `mapstructure:"Topic"`
	Protocol string `mapstructure:"Protocol"`
	Username string `mapstructure:"Username"`
	Password string `mapstructure:"Password"`
	CAPath   string `mapstructure:"CAPath"`
}

// struct decode must has tag
type Config struct {
	ServerConf  ServerConfig  `mapstructure:"ServerConfig"`
	RedisConf   RedisConfig   `mapstructure:"RedisConfig"`
	WatchConf   WatchConfig   `mapstructure:"WatchConfig"`
	DiscordConf DiscordConfig `mapstructure:"DiscordConfig"`
	KafkaConf   KafkaConfig   `mapstructure:"KafkaConfig"`
}

var (
	configMutex = sync.RWMutex{}
	config      Config

	configViper *viper.Viper
)

func watchConfig(c *viper.Viper) error {
	c.WatchConfig()
	cfn := func(e fsnotify.Event) {
		logger.Logrus.WithFields(logrus.Fields{"change": e.String()}).Info("config change and reload it")
		reloadConfig(c)
	}

	c.OnConfigChange(cfn)
	return nil
}

func LoadConf(configFilePath string) error {
	config = Config{}
	configMutex.Lock()
	defer configMutex.Unlock()

	configViper = viper.New()
	configViper.SetConfigName("config")
	configViper.AddConfigPath(configFilePath) //endwith "/"
	configViper.SetConfigType("yaml")

	if err := configViper.ReadInConfig(); err != nil {
		return err
	}
	if err := configViper.Unmarshal(&config); err != nil {
		return err
	}

	logger.Logrus.WithFields(logrus.Fields{"Config": config}).Info("Load config success")

	if err := watchConfig(configViper); err != nil {
		return err
	}
	return nil
}

func reloadConfig(c *viper.Viper) {
	configMutex.Lock()
	defer configMutex.Unlock()

	if err := c.ReadInConfig(); err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err.Error()}).Error("config ReLoad failed")
	}

	if err := configViper.Unmarshal(&config); err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err.Error()}).Error("unmarshal config failed")
	}

	logger.Logrus.WithFields(logrus.Fields{"config": config}).Info("Config ReLoad Success")
}

func GetServerConfig() ServerConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.ServerConf
}

func GetRedisConfig() RedisConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.RedisConf
}

func GetWatchConfig() WatchConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.WatchConf
}

func GetDiscordConfig() DiscordConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.DiscordConf
}

func GetKafkaConfig() KafkaConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.KafkaConf
}

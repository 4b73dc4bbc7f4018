package main

import (
	"flag"
	"log"
	"time"

	"github.com/soltrackdao/pump_relay/config"
	"github.com/soltrackdao/pump_relay/core/codec"
	"github.com/soltrackdao/pump_relay/core/discord"
	"github.com/soltrackdao/pump_relay/core/redis"
	"github.com/soltrackdao/pump_relay/core/stream"
	"github.com/soltrackdao/pump_relay/core/web"
	"github.com/soltrackdao/pump_relay/core/web/handler"
	"github.com/soltrackdao/pump_relay/utils/logger"
)

func main() {
	configPath := flag.String("config_path", "./", "config file")
	logicLogFile := flag.String("logic_log_file", "./log/pump_relay.log", "logic log file")
	flag.Parse()

	//init logic logger
	logger.Init(*logicLogFile)

	//set log level
	logger.SetLogLevel("debug")

	err := config.LoadConf(*configPath)
	if err != nil {
		log.Fatal("load config failed:", err)
	}

	watchCfg := config.GetWatchConfig()
	registry, err := codec.LoadIDLFile(watchCfg.IDLPath)
	if err != nil {
		log.Fatal("load event idl failed:", err)
	}

	redis.InitRedis()

	var tradeStream handler.TradeStream
	if stream.Enabled() {
		stream.InitKafka()
		tradeStream = stream.NewTradePublisher()
	}

	discordCfg := config.GetDiscordConfig()
	timeout := time.Duration(discordCfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	notifier := discord.NewClient(discordCfg.WebhookURL, discordCfg.Username, timeout)

	params := handler.WebhookParams{
		ProgramID:     watchCfg.ProgramID,
		BaseDecimals:  watchCfg.BaseDecimals,
		TokenDecimals: watchCfg.TokenDecimals,
		DedupTTL:      time.Duration(watchCfg.DedupTTLSeconds) * time.Second,
		Selector:      handler.SelectorFromName(config.GetServerConfig().InstructionSelect),
	}

	h := handler.NewWebhookHandler(params, registry, redis.NewSignatureDeduper(), notifier, tradeStream)

	web.Run(h)
}

package main

import (
	"applepay/config"
	"applepay/internal"
	"applepay/services"
	"flag"
)

func main() {

	logger := internal.NewLogger("main", false, nil)

	configPath := flag.String("conf", "config.yml", "path to config file")
	flag.Parse()

	logger.Info("using config file: " + *configPath)
	conf, err := config.GetConfig(*configPath)
	if err != nil {
		logger.Error("boot", err)
		return
	}

	var mongo services.Database
	if conf.Mongo.Enabled {
		mongo, err = internal.NewMongoClient(conf)
		if err != nil {
			logger.Error("mongo client", err)
			return
		}
		logger.Info("mongo client initialized")
	}

	forwarder := internal.NewForwarder(conf)
	forwarder.SetLogger(internal.NewLogger("forwarder", conf.IsDebug, mongo))

	relay := internal.NewRelay(conf)
	relay.SetLogger(internal.NewLogger("relay", conf.IsDebug, mongo))
	relay.SetDatabase(mongo)
	relay.SetForwarder(forwarder)

	server := internal.NewServer(conf)
	server.SetLogger(internal.NewLogger("server", conf.IsDebug, mongo))
	server.SetRelayService(relay)

	err = server.Start()
	if err != nil {
		logger.Error("server start", err)
		return
	}

}

package main

import (
	"flag"

	"github.com/golang/glog"
	"github.com/joho/godotenv"

	"github.com/joshi-prasad/options/server"
)

func main() {
	flag.Set("alsologtostderr", "true")
	listenAddr := flag.String("listen_addr", "",
		"listen address, defaults to OPTIONS_LISTEN_ADDR or :5000")
	flag.Parse()
	defer glog.Flush()

	if err := godotenv.Load(); err != nil {
		glog.Info("No .env file found, using the process environment.")
	}

	addr := *listenAddr
	if addr == "" {
		addr = server.ListenAddrFromEnv()
	}
	if err := server.NewServer().Run(addr); err != nil {
		glog.Error("Pricing service stopped. ", err)
	}
}

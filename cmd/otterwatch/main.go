package main

import (
	"os"

	"github.com/andrelcunha/otterwatch/cmd/otterwatch/cmd"
)

var (
	VERSION = ""
)

// @title otterwatch API
// @version 1.0
// @description Queue depth monitoring, peek and purge for RabbitMQ and Azure Service Bus queues
// @host localhost:3001
// @BasePath /api/
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cmd.SetVersion(VERSION)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

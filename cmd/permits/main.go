package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/kaupunki/parking-permits/internal/clock"
	"github.com/kaupunki/parking-permits/internal/config"
	"github.com/kaupunki/parking-permits/internal/migration"
	"github.com/kaupunki/parking-permits/internal/observability"
	"github.com/kaupunki/parking-permits/internal/scheduler"
	"github.com/kaupunki/parking-permits/internal/server"
	"github.com/kaupunki/parking-permits/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

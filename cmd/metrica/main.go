package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/metrica/internal/migration"
	"github.com/smallbiznis/metrica/internal/observability"
	"github.com/smallbiznis/metrica/internal/server"
	"github.com/smallbiznis/metrica/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
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

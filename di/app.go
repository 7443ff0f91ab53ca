package di

import (
	"fleet/config"
	"fleet/infras/kafka"
	"fleet/infras/otel"
	"fleet/infras/postgres"
	"fleet/internal/events"
	"fleet/internal/reclaimer"
	"fleet/transport/http"

	goRedis "github.com/redis/go-redis/v9"
)

// App holds the long-running parts started by cmd/app and the pools closed on the way out.
type App struct {
	Config    *config.Config
	HTTP      *http.HTTP
	Reclaimer reclaimer.Reclaimer
	Consumer  *events.Consumer
	DB        *postgres.Connection
	Redis     *goRedis.Client
	Otel      otel.Otel
	Kafka     kafka.Client
}

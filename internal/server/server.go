package server

import (
	"github.com/go-redis/redis/v9"

	"consumerwise/internal/auth"
	"consumerwise/internal/client"
	"consumerwise/internal/database"
	"consumerwise/internal/feed"
)

type Server struct {
	DB       database.Database
	RDB      *redis.Client
	Client   client.Client
	Logger   logger
	Verifier auth.Verifier
	Resolver auth.Resolver
	Issuer   auth.Issuer
	Feed     feed.Publisher
}

type logger interface {
	Debug(v ...any)
	Info(v ...any)
	Error(v ...any)
	Tracef(format string, v ...any)
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}

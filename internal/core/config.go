package core

import "time"

type SurfaceConfig interface {
	GetScrollDelay() time.Duration
	GetTimestampLayout() string
}

type ExchangeConfig interface {
	GetEndpointURL() string
	GetExchangeTimeout() time.Duration
}

type TelegramConfig interface {
	GetTelegramToken() string
	GetTelegramOwnerID() int64
}

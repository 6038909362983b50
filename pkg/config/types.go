package config

import "time"

type cacheCfg struct {
	Capacity        int           `toml:"capacity"`
	TTL             time.Duration `toml:"ttl"`
	CleanupInterval time.Duration `toml:"cleanupInterval"`
}

type proxyCfg struct {
	MaxObjectSize int           `toml:"maxObjectSize"`
	DialTimeout   time.Duration `toml:"dialTimeout"`
	KeepAlive     time.Duration `toml:"keepAlive"`
	LocalAddr     string        `toml:"localAddr"`
}

type logCfg struct {
	Level string `toml:"level"`
}

type adminCfg struct {
	ListenAddr string `toml:"listenAddr"`
}

type accessLogCfg struct {
	DSN   string `toml:"dsn"`
	Limit int    `toml:"limit"`
}

type SystemCfg struct {
	Cache     cacheCfg     `toml:"cache"`
	Proxy     proxyCfg     `toml:"proxy"`
	Log       logCfg       `toml:"log"`
	Admin     adminCfg     `toml:"admin"`
	AccessLog accessLogCfg `toml:"accessLog"`
}

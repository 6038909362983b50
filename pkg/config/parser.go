package config

import (
	"net"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	// MaxCacheSize is the total payload budget of the response cache.
	MaxCacheSize = 1049000
	// MaxObjectSize is the largest response the proxy caches (exclusive).
	MaxObjectSize = 102400
)

func defaultSystemCfg() *SystemCfg {
	return &SystemCfg{
		Cache: cacheCfg{
			Capacity:        MaxCacheSize,
			CleanupInterval: time.Minute,
		},
		Proxy: proxyCfg{
			MaxObjectSize: MaxObjectSize,
			KeepAlive:     15 * time.Second,
		},
		AccessLog: accessLogCfg{
			Limit: 1000,
		},
	}
}

// Load returns the compiled-in defaults overlaid with the TOML file at path.
// An empty path means defaults only.
func Load(path string) (*SystemCfg, error) {
	config := defaultSystemCfg()
	if path == "" {
		return config, nil
	}

	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return config, nil
}

// Validate checks the bounds the proxy relies on. Keeping maxObjectSize
// within capacity means no single insert can outgrow the cache.
func (c *SystemCfg) Validate() error {
	switch {
	case c.Cache.Capacity <= 0:
		return errors.New("cache.capacity must be > 0")
	case c.Proxy.MaxObjectSize <= 0:
		return errors.New("proxy.maxObjectSize must be > 0")
	case c.Proxy.MaxObjectSize > c.Cache.Capacity:
		return errors.Errorf("proxy.maxObjectSize %d exceeds cache.capacity %d", c.Proxy.MaxObjectSize, c.Cache.Capacity)
	case c.Cache.TTL < 0:
		return errors.New("cache.ttl must be >= 0")
	case c.Cache.CleanupInterval <= 0:
		return errors.New("cache.cleanupInterval must be > 0")
	case c.Proxy.DialTimeout < 0:
		return errors.New("proxy.dialTimeout must be >= 0")
	case c.AccessLog.Limit <= 0:
		return errors.New("accessLog.limit must be > 0")
	}
	if c.Proxy.LocalAddr != "" {
		if _, err := c.Proxy.ResolveLocalAddr(); err != nil {
			return err
		}
	}
	if c.Log.Level != "" {
		if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
			return errors.Wrap(err, "log.level")
		}
	}
	return nil
}

// ResolveLocalAddr returns the source address for upstream connections, or
// nil when none is configured. A bare host gets an ephemeral port.
func (p proxyCfg) ResolveLocalAddr() (*net.TCPAddr, error) {
	if p.LocalAddr == "" {
		return nil, nil
	}
	addr := p.LocalAddr
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, "0")
	}
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "proxy.localAddr")
	}
	return tcpAddr, nil
}

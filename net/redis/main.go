package redis

import (
	"fmt"

	"github.com/mediocregopher/radix/v3"
	"github.com/pkg/errors"
)

// Config structure
type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Connect opens a connection pool to the configured redis server
func Connect(cfg Config) (*radix.Pool, error) {
	size := cfg.PoolSize
	if size == 0 {
		size = 10
	}
	opts := []radix.PoolOpt{}
	if cfg.Password != "" {
		opts = append(opts, radix.PoolConnFunc(func(network, addr string) (radix.Conn, error) {
			return radix.Dial(network, addr, radix.DialAuthPass(cfg.Password))
		}))
	}
	pool, err := radix.NewPool("tcp", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), size, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to redis")
	}
	return pool, nil
}

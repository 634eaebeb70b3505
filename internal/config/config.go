package config

import "time"

type Config struct {
	Service     *ServiceConfig
	Mongo       *MongoConfig
	Redis       *RedisConfig
	Tracer      *TracerConfig
	Logger      *LoggerConfig
	SecretToken string
}

type ServiceConfig struct {
	Name string
	Env  string
	Addr string
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
}

type RedisConfig struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
	PingTimeout  time.Duration
}

type TracerConfig struct {
	Address string
	Enabled bool
}

type LoggerConfig struct {
	Level  string
	Format string
}

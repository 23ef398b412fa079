package config

import (
	"time"
)

type DB struct {
	Url string `envconfig:"URL"`
}

// Store selects the persistence backend.
type Store struct {
	Driver string `envconfig:"DRIVER" default:"memory"`
}

type Jwt struct {
	Secret string        `envconfig:"SECRET"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"24h"`
}

type Auth struct {
	Jwt *Jwt `envconfig:"JWT"`
}

// Admin is the account registered at start-up when Username and Password are
// both set.
type Admin struct {
	Username      string `envconfig:"USERNAME"`
	Password      string `envconfig:"PASSWORD"`
	Email         string `envconfig:"EMAIL" default:"admin@finsova.local"`
	FullName      string `envconfig:"FULL_NAME" default:"Finsova Administrator"`
	Country       string `envconfig:"COUNTRY" default:"India"`
	ContactNumber string `envconfig:"CONTACT_NUMBER" default:"-"`
}

// Enabled reports whether bootstrap credentials were supplied.
func (a *Admin) Enabled() bool {
	return a != nil && a.Username != "" && a.Password != ""
}

type EventBus struct {
	Driver string `envconfig:"DRIVER" default:"memory"`
	Stream string `envconfig:"STREAM" default:"finsova:events"`
	Group  string `envconfig:"GROUP" default:"finsova-audit"`
}

type Redis struct {
	URL          string        `envconfig:"URL" default:"redis://localhost:6379/0"`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[finsova]"`
}

type Server struct {
	Scheme          string        `envconfig:"SCHEME" default:"http"`
	Host            string        `envconfig:"HOST" default:"localhost"`
	Port            int           `envconfig:"PORT" default:"3000"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	Log       *Log       `envconfig:"LOG"`
	DB        *DB        `envconfig:"DATABASE"`
	Store     *Store     `envconfig:"STORE"`
	Auth      *Auth      `envconfig:"AUTH"`
	Admin     *Admin     `envconfig:"ADMIN"`
	EventBus  *EventBus  `envconfig:"EVENTBUS"`
	Redis     *Redis     `envconfig:"REDIS"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
}

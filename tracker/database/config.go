package database

import (
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
)

// Config holds the credentials and target table of the shared server list database.
type Config struct {
	Host      string
	Port      int
	Name      string
	User      string
	Password  string
	TableName string
}

// Identity is the part of the row that identifies this server to the server list.
type Identity struct {
	ID   int
	Name string
	IP   string
}

// DSN returns the MySQL connection string for the config.
func (c Config) DSN() string {
	m := mysql.NewConfig()
	m.Net = "tcp"
	m.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	m.DBName = c.Name
	m.User = c.User
	m.Passwd = c.Password
	m.TLSConfig = "preferred"
	m.ParseTime = true
	return m.FormatDSN()
}

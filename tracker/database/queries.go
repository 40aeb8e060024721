package database

import (
	"fmt"
	"strings"
)

const createTable = "CREATE TABLE IF NOT EXISTS %s (" +
	"`id` INT PRIMARY KEY, " +
	"`ip` VARCHAR(64) DEFAULT NULL, " +
	"`name` VARCHAR(64) DEFAULT NULL, " +
	"`map_name` VARCHAR(64) DEFAULT NULL, " +
	"`active_players` INT DEFAULT 0, " +
	"`max_players` INT DEFAULT 0, " +
	"`max_players_offset` INT DEFAULT 0, " +
	"`status` TINYINT DEFAULT 1, " +
	"`last_update` TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP" +
	")"

const updateServer = "INSERT INTO %s " +
	"(`id`, `ip`, `name`, `active_players`, `max_players`, `map_name`, `status`) " +
	"VALUES (?, ?, ?, ?, ?, ?, 1) " +
	"ON DUPLICATE KEY UPDATE " +
	"`ip` = VALUES(`ip`), " +
	"`name` = VALUES(`name`), " +
	"`active_players` = VALUES(`active_players`), " +
	"`max_players` = VALUES(`max_players`), " +
	"`map_name` = VALUES(`map_name`), " +
	"`status` = 1, " +
	"`last_update` = CURRENT_TIMESTAMP"

const setStatus = "INSERT INTO %s (`id`, `status`, `active_players`) " +
	"VALUES (?, ?, 0) " +
	"ON DUPLICATE KEY UPDATE " +
	"`status` = VALUES(`status`), " +
	"`last_update` = CURRENT_TIMESTAMP"

// resetPlayers is appended to setStatus when the player count must be zeroed.
const resetPlayers = ", `active_players` = 0"

// quoteIdentifier quotes a MySQL identifier, doubling any embedded backticks.
func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// queries holds the statements of one table, formatted once.
type queries struct {
	createTable  string
	updateServer string
	setStatus    string
	setOffline   string
}

// newQueries ...
func newQueries(table string) queries {
	t := quoteIdentifier(table)
	return queries{
		createTable:  fmt.Sprintf(createTable, t),
		updateServer: fmt.Sprintf(updateServer, t),
		setStatus:    fmt.Sprintf(setStatus, t),
		setOffline:   fmt.Sprintf(setStatus, t) + resetPlayers,
	}
}

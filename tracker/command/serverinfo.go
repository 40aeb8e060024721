package command

import (
	"time"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/sandertv/gophertunnel/minecraft/text"
	"github.com/smell-of-curry/servers-info-track/tracker/status"
)

// Reporter provides the state last written to the server list.
type Reporter interface {
	Report() status.Report
}

// ServerInfo represents a command that displays what the server list currently shows for this server.
type ServerInfo struct {
	reporter Reporter
}

// NewServerInfo creates a new serverinfo command backed by the reporter.
func NewServerInfo(r Reporter) cmd.Command {
	return cmd.New("serverinfo", "Shows the state reported to the server list", []string{"si"}, ServerInfo{reporter: r})
}

// Run executes the serverinfo command.
func (s ServerInfo) Run(_ cmd.Source, o *cmd.Output, _ *world.Tx) {
	for _, line := range reportLines(s.reporter.Report()) {
		o.Print(line)
	}
}

// reportLines formats a report for chat.
func reportLines(r status.Report) []string {
	state := text.Colourf("<red>offline</red>")
	if r.Online {
		state = text.Colourf("<green>online</green>")
	}
	updated := "never"
	if !r.Updated.IsZero() {
		updated = r.Updated.Format(time.DateTime)
	}
	return []string{
		text.Colourf("<yellow>%s</yellow> (#%d, %s) is %s", r.Name, r.ServerID, r.IP, state),
		text.Colourf("Map: <aqua>%s</aqua>, players: <aqua>%d/%d</aqua>", r.MapName, r.ActivePlayers, r.MaxPlayers),
		text.Colourf("Last update: %s", updated),
	}
}

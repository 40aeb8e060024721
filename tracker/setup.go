package tracker

import (
	"fmt"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
)

// setupAnswers ...
type setupAnswers struct {
	Host     string `survey:"host"`
	Port     string `survey:"port"`
	Name     string `survey:"name"`
	User     string `survey:"user"`
	Password string `survey:"password"`
	Table    string `survey:"table"`

	ServerID   string `survey:"id"`
	ServerName string `survey:"server_name"`
	ServerIP   string `survey:"server_ip"`
}

// promptConfig asks the operator for the database settings and the identity of this server.
func promptConfig(c *Config) error {
	qs := []*survey.Question{
		{Name: "host", Prompt: &survey.Input{Message: "Database host:", Default: c.Database.Host}, Validate: survey.Required},
		{Name: "port", Prompt: &survey.Input{Message: "Database port:", Default: strconv.Itoa(c.Database.Port)}, Validate: validateInt},
		{Name: "name", Prompt: &survey.Input{Message: "Database name:", Default: c.Database.Name}, Validate: survey.Required},
		{Name: "user", Prompt: &survey.Input{Message: "Database user:", Default: c.Database.User}, Validate: survey.Required},
		{Name: "password", Prompt: &survey.Password{Message: "Database password:"}},
		{Name: "table", Prompt: &survey.Input{Message: "Table name:", Default: c.Database.TableName}},
		{Name: "id", Prompt: &survey.Input{Message: "Server id:", Default: strconv.Itoa(c.ServerID)}, Validate: validateInt},
		{Name: "server_name", Prompt: &survey.Input{Message: "Server name:", Default: c.ServerName}},
		{Name: "server_ip", Prompt: &survey.Input{Message: "Server ip:", Default: c.ServerIP}},
	}

	var a setupAnswers
	if err := survey.Ask(qs, &a); err != nil {
		return err
	}
	return a.apply(c)
}

// apply copies the answers into c.
func (a setupAnswers) apply(c *Config) error {
	port, err := strconv.Atoi(a.Port)
	if err != nil {
		return fmt.Errorf("port: %w", err)
	}
	id, err := strconv.Atoi(a.ServerID)
	if err != nil {
		return fmt.Errorf("server id: %w", err)
	}

	c.Database.Host = a.Host
	c.Database.Port = port
	c.Database.Name = a.Name
	c.Database.User = a.User
	c.Database.Password = a.Password
	if a.Table != "" {
		c.Database.TableName = a.Table
	}
	c.ServerID = id
	c.ServerName = a.ServerName
	c.ServerIP = a.ServerIP
	return nil
}

// validateInt ...
func validateInt(ans any) error {
	s, ok := ans.(string)
	if !ok {
		return fmt.Errorf("expected text, got %T", ans)
	}
	if _, err := strconv.Atoi(s); err != nil {
		return fmt.Errorf("%q is not a number", s)
	}
	return nil
}

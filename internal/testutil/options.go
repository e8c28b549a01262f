package testutil

import "time"

// commandData holds all data for a command row to be inserted.
type commandData struct {
	id         string
	sessionKey string
	name       string
	state      string
	err        string
	startedAt  time.Time
	endedAt    *time.Time
}

// defaultCommand returns a completed command that ran for one second.
func defaultCommand(id string) commandData {
	start := time.Now().Add(-time.Minute)
	end := start.Add(time.Second)
	return commandData{
		id:         id,
		sessionKey: "1",
		name:       "lock",
		state:      "completed",
		startedAt:  start,
		endedAt:    &end,
	}
}

// CommandOption configures a command during builder setup.
type CommandOption func(*commandData)

// Session sets the chat the command ran for.
func Session(key string) CommandOption {
	return func(c *commandData) { c.sessionKey = key }
}

// Name sets the command name.
func Name(name string) CommandOption {
	return func(c *commandData) { c.name = name }
}

// State sets the command state.
func State(state string) CommandOption {
	return func(c *commandData) { c.state = state }
}

// Failed marks the command failed with msg.
func Failed(msg string) CommandOption {
	return func(c *commandData) {
		c.state = "failed"
		c.err = msg
	}
}

// Running clears the end time and marks the command running.
func Running() CommandOption {
	return func(c *commandData) {
		c.state = "running"
		c.endedAt = nil
	}
}

// StartedAt sets the start time and keeps the duration.
func StartedAt(t time.Time) CommandOption {
	return func(c *commandData) {
		if c.endedAt != nil {
			end := t.Add(c.endedAt.Sub(c.startedAt))
			c.endedAt = &end
		}
		c.startedAt = t
	}
}

// Took sets the end time relative to the start.
func Took(d time.Duration) CommandOption {
	return func(c *commandData) {
		end := c.startedAt.Add(d)
		c.endedAt = &end
	}
}

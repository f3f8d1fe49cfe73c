package protocol

import "strings"

// Kind identifies which of the six supported slash commands a line
// names, or CmdUnknown for anything else (spec.md §4.6).
type Kind int

const (
	CmdUnknown Kind = iota
	CmdExit
	CmdWhisper
	CmdJoin
	CmdLeave
	CmdBroadcast
	CmdSendfile
)

// Command is one parsed client input line. Fields beyond Kind are
// populated only for the commands that use them; ParseCommand does
// no validation beyond splitting tokens — argument-count and
// content checks happen in the multiplexer, matching the original's
// one-error-message-per-usage-mistake behavior.
type Command struct {
	Kind Kind

	// Whisper
	Target  string
	Message string

	// Join
	Room  string
	Extra string // non-empty means too many arguments were given

	// Broadcast
	Text string

	// Sendfile
	Filename string
	SizeStr  string
}

// ParseCommand tokenizes one line of client input the way the
// original's strtok-based dispatch does: the first whitespace-
// delimited token selects the command, and the remaining tokens are
// split according to that command's own argument grammar.
func ParseCommand(line string) Command {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.SplitN(line, " ", 2)
	cmd := fields[0]
	rest := ""
	if len(fields) == 2 {
		rest = fields[1]
	}

	switch cmd {
	case "/exit":
		return Command{Kind: CmdExit}

	case "/whisper":
		parts := strings.SplitN(rest, " ", 2)
		c := Command{Kind: CmdWhisper}
		if len(parts) >= 1 {
			c.Target = parts[0]
		}
		if len(parts) == 2 {
			c.Message = parts[1]
		}
		return c

	case "/join":
		parts := strings.Fields(rest)
		c := Command{Kind: CmdJoin}
		if len(parts) >= 1 {
			c.Room = parts[0]
		}
		if len(parts) >= 2 {
			c.Extra = parts[1]
		}
		return c

	case "/leave":
		return Command{Kind: CmdLeave}

	case "/broadcast":
		return Command{Kind: CmdBroadcast, Text: rest}

	case "/sendfile":
		parts := strings.Fields(rest)
		c := Command{Kind: CmdSendfile}
		if len(parts) >= 1 {
			c.Filename = parts[0]
		}
		if len(parts) >= 2 {
			c.Target = parts[1]
		}
		if len(parts) >= 3 {
			c.SizeStr = parts[2]
		}
		return c

	default:
		return Command{Kind: CmdUnknown}
	}
}

// Package protocol implements the line-oriented text wire format
// spoken over the raw TCP connection: registration, the six slash
// commands, and the exact client-visible strings the server ever
// sends. Keeping these as package-level constants (rather than
// building them ad hoc at each call site) is what lets the
// multiplexer and its tests agree on one source of truth.
package protocol

import "fmt"

// MaxFileSize bounds a single /sendfile payload (spec.md §4.7):
// between 1 byte and 3 MiB.
const MaxFileSize = 3 * 1024 * 1024

const (
	MsgUsernameInvalid = "[ERROR] Username must be 1-16 alphanumeric characters.\n"
	MsgUsernameTaken   = "[ERROR] Username already taken. Choose another.\n"
	MsgServerFull      = "[ERROR] Server is full. Try again later.\n"
	MsgUsernameOK      = "[OK] Username accepted.\n"

	MsgExitGoodbye = "[INFO] Server is shutting down your connection.\n"

	MsgWhisperUsage    = "[ERROR] Usage: /whisper <user> <message>\n"
	MsgWhisperSelf     = "[ERROR] Cannot whisper to yourself.\n"
	MsgWhisperOffline  = "[ERROR] User '%s' not online.\n"

	MsgJoinUsage        = "[ERROR] Usage: /join <room>\n"
	MsgJoinInvalidName  = "[ERROR] Room name must be 1-32 alphanumeric characters.\n"
	MsgJoinRegistryFull = "[WARN] Room slots are full. Room is not created. Try again later.\n"
	MsgJoinRoomFull     = "[WARN] Room is full\n"
	MsgJoinOK           = "[OK] User \"%s\" joined the room: %s\n"

	MsgLeaveOK       = "[INFO] User \"%s\" left the room: %s\n"
	MsgLeaveNotInAny = "[INFO] User \"%s\" is not in any room\n"

	MsgBroadcastUsage   = "[ERROR] Usage: /broadcast <msg>\n"
	MsgBroadcastNoRoom  = "[ERROR] Join a room first\n"

	MsgSendfileUsage     = "[ERROR] Usage: /sendfile <filename> <user> <size>\n"
	MsgSendfileBadSize   = "[ERROR] File size must be between 1 byte and 3MB.\n"
	MsgSendfileShortRead = "[ERROR] Failed to receive full file data.\n"
	MsgSendfileQueued    = "[INFO] Upload queue is full. Your file '%s' will be queued.\n"
	MsgSendfileOK        = "[OK] File '%s' queued for sending to %s. Size: %d bytes.\n"

	MsgUnknownCommand = "[ERROR] Unknown command.\n"

	MsgServerShutdown = "[SERVER] shutting down. Goodbye.\n"
)

// FileHeader formats the notify-channel frame that precedes a file's
// raw payload bytes (spec.md §4.7): "[FILE <filename> <size>
// <sender>]\n".
func FileHeader(filename string, size uint64, sender string) []byte {
	return []byte(fmt.Sprintf("[FILE %s %d %s]\n", filename, size, sender))
}

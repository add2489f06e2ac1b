package box

import "fmt"

// CommandID is the first decoded byte of a request.
type CommandID uint8

// Built-in commands.
const (
	CommandNoop                  CommandID = 0
	CommandReadObject            CommandID = 1
	CommandWriteObject           CommandID = 2
	CommandCreateObject          CommandID = 3
	CommandDeleteObject          CommandID = 4
	CommandListActiveObjects     CommandID = 5
	CommandReadStoredObject      CommandID = 6
	CommandListStoredObjects     CommandID = 7
	CommandClearObjects          CommandID = 8
	CommandReboot                CommandID = 9
	CommandFactoryReset          CommandID = 10
	CommandListCompatibleObjects CommandID = 11
	CommandDiscoverNewObjects    CommandID = 12
)

// FirstApplicationCommand is the lowest ID accepted by RegisterCommand.
const FirstApplicationCommand CommandID = 100

var commandNames = map[CommandID]string{
	CommandNoop:                  "noop",
	CommandReadObject:            "read_object",
	CommandWriteObject:           "write_object",
	CommandCreateObject:          "create_object",
	CommandDeleteObject:          "delete_object",
	CommandListActiveObjects:     "list_active_objects",
	CommandReadStoredObject:      "read_stored_object",
	CommandListStoredObjects:     "list_stored_objects",
	CommandClearObjects:          "clear_objects",
	CommandReboot:                "reboot",
	CommandFactoryReset:          "factory_reset",
	CommandListCompatibleObjects: "list_compatible_objects",
	CommandDiscoverNewObjects:    "discover_new_objects",
}

// String returns the command name, used as a metrics label.
func (c CommandID) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	if c >= FirstApplicationCommand {
		return fmt.Sprintf("app_%d", uint8(c))
	}
	return "invalid"
}

// CommandFunc handles an application command. req holds the decoded request
// bytes after the command byte, without the CRC. The returned bytes are
// written after the status when err is nil; err is mapped with cbox.StatusOf.
type CommandFunc func(req []byte) (resp []byte, err error)

package cbox

import (
	"errors"
	"fmt"
)

// Status is the single result byte written in every command response.
//
// Status implements error so that handlers, objects and storage backends can
// return it (or wrap it) like any other error. StatusOf recovers it.
type Status uint8

// Status codes. Values are part of the wire protocol.
const (
	StatusOK                            Status = 0
	StatusUnknownError                  Status = 1
	StatusStreamErrorUnspecified        Status = 8
	StatusOutputStreamWriteError        Status = 9
	StatusInputStreamReadError          Status = 10
	StatusInputStreamDecodingError      Status = 11
	StatusOutputStreamEncodingError     Status = 12
	StatusInsufficientPersistentStorage Status = 16
	StatusPersistedObjectNotFound       Status = 17
	StatusPersistedStorageWriteError    Status = 21
	StatusObjectNotWritable             Status = 32
	StatusObjectNotReadable             Status = 33
	StatusObjectNotCreatable            Status = 34
	StatusObjectNotDeletable            Status = 35
	StatusContainerFull                 Status = 37
	StatusInvalidParameter              Status = 64
	StatusInvalidObjectID               Status = 65
	StatusInvalidType                   Status = 66
	StatusInvalidProfile                Status = 68
	StatusCRCErrorInCommand             Status = 71
	StatusObjectDataNotAccepted         Status = 72
	StatusInvalidCommand                Status = 73
)

var statusNames = map[Status]string{
	StatusOK:                            "ok",
	StatusUnknownError:                  "unknown_error",
	StatusStreamErrorUnspecified:        "stream_error_unspecified",
	StatusOutputStreamWriteError:        "output_stream_write_error",
	StatusInputStreamReadError:          "input_stream_read_error",
	StatusInputStreamDecodingError:      "input_stream_decoding_error",
	StatusOutputStreamEncodingError:     "output_stream_encoding_error",
	StatusInsufficientPersistentStorage: "insufficient_persistent_storage",
	StatusPersistedObjectNotFound:       "persisted_object_not_found",
	StatusPersistedStorageWriteError:    "persisted_storage_write_error",
	StatusObjectNotWritable:             "object_not_writable",
	StatusObjectNotReadable:             "object_not_readable",
	StatusObjectNotCreatable:            "object_not_creatable",
	StatusObjectNotDeletable:            "object_not_deletable",
	StatusContainerFull:                 "container_full",
	StatusInvalidParameter:              "invalid_parameter",
	StatusInvalidObjectID:               "invalid_object_id",
	StatusInvalidType:                   "invalid_type",
	StatusInvalidProfile:                "invalid_profile",
	StatusCRCErrorInCommand:             "crc_error_in_command",
	StatusObjectDataNotAccepted:         "object_data_not_accepted",
	StatusInvalidCommand:                "invalid_command",
}

// String returns the snake_case name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status_%d", uint8(s))
}

// Error implements error.
func (s Status) Error() string {
	return "cbox: " + s.String()
}

// StatusOf maps an error to the status written on the wire.
// nil maps to StatusOK; errors without a Status in their chain map to
// StatusUnknownError.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	var s Status
	if errors.As(err, &s) {
		return s
	}
	return StatusUnknownError
}

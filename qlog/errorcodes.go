package qlog

import "fmt"

// ErrorSpace distinguishes transport-level from application-level error
// codes in connection_close frames.
type ErrorSpace string

// Error spaces.
const (
	TransportErrorSpace   ErrorSpace = "transport_error"
	ApplicationErrorSpace ErrorSpace = "application_error"
)

// TransportError is a QUIC transport error code (RFC 9000, section 20.1).
type TransportError uint64

// Transport error codes.
const (
	NoError                 TransportError = 0x00
	InternalError           TransportError = 0x01
	ConnectionRefused       TransportError = 0x02
	FlowControlError        TransportError = 0x03
	StreamLimitError        TransportError = 0x04
	StreamStateError        TransportError = 0x05
	FinalSizeError          TransportError = 0x06
	FrameEncodingError      TransportError = 0x07
	TransportParameterError TransportError = 0x08
	ConnectionIDLimitError  TransportError = 0x09
	ProtocolViolation       TransportError = 0x0a
	InvalidToken            TransportError = 0x0b
	ApplicationErrorCode    TransportError = 0x0c
	CryptoBufferExceeded    TransportError = 0x0d
	KeyUpdateError          TransportError = 0x0e
	AEADLimitReached        TransportError = 0x0f
	NoViablePath            TransportError = 0x10

	// cryptoErrorBase starts the range reserved for carrying TLS alerts.
	cryptoErrorBase TransportError = 0x0100
	cryptoErrorMax  TransportError = 0x01ff
)

// CryptoError builds the transport error code carrying a TLS alert.
func CryptoError(alert uint8) TransportError {
	return cryptoErrorBase + TransportError(alert)
}

// IsCryptoError reports whether the code falls in the TLS alert range.
func (e TransportError) IsCryptoError() bool {
	return e >= cryptoErrorBase && e <= cryptoErrorMax
}

var transportErrorNames = map[TransportError]string{
	NoError:                 "no_error",
	InternalError:           "internal_error",
	ConnectionRefused:       "connection_refused",
	FlowControlError:        "flow_control_error",
	StreamLimitError:        "stream_limit_error",
	StreamStateError:        "stream_state_error",
	FinalSizeError:          "final_size_error",
	FrameEncodingError:      "frame_encoding_error",
	TransportParameterError: "transport_parameter_error",
	ConnectionIDLimitError:  "connection_id_limit_error",
	ProtocolViolation:       "protocol_violation",
	InvalidToken:            "invalid_token",
	ApplicationErrorCode:    "application_error",
	CryptoBufferExceeded:    "crypto_buffer_exceeded",
	KeyUpdateError:          "key_update_error",
	AEADLimitReached:        "aead_limit_reached",
	NoViablePath:            "no_viable_path",
}

func (e TransportError) String() string {
	if name, ok := transportErrorNames[e]; ok {
		return name
	}
	if e.IsCryptoError() {
		return fmt.Sprintf("crypto_error_0x%x", uint64(e))
	}
	return fmt.Sprintf("transport_error_0x%x", uint64(e))
}

// MarshalJSON emits the symbolic name when one exists, otherwise the
// hex-tagged fallback.
func (e TransportError) MarshalJSON() ([]byte, error) {
	return []byte(`"` + e.String() + `"`), nil
}

// UnmarshalJSON accepts either a symbolic name or a numeric code.
func (e *TransportError) UnmarshalJSON(b []byte) error {
	v, err := unmarshalErrorCode(b, transportErrorNames)
	if err != nil {
		return err
	}
	*e = TransportError(v)
	return nil
}

// ApplicationError is an HTTP/3 or QPACK application error code
// (RFC 9114 section 8.1, RFC 9204 section 6).
type ApplicationError uint64

// HTTP/3 and QPACK error codes.
const (
	H3DatagramError          ApplicationError = 0x33
	H3NoError                ApplicationError = 0x100
	H3GeneralProtocolError   ApplicationError = 0x101
	H3InternalError          ApplicationError = 0x102
	H3StreamCreationError    ApplicationError = 0x103
	H3ClosedCriticalStream   ApplicationError = 0x104
	H3FrameUnexpected        ApplicationError = 0x105
	H3FrameError             ApplicationError = 0x106
	H3ExcessiveLoad          ApplicationError = 0x107
	H3IDError                ApplicationError = 0x108
	H3SettingsError          ApplicationError = 0x109
	H3MissingSettings        ApplicationError = 0x10a
	H3RequestRejected        ApplicationError = 0x10b
	H3RequestCancelled       ApplicationError = 0x10c
	H3RequestIncomplete      ApplicationError = 0x10d
	H3MessageError           ApplicationError = 0x10e
	H3ConnectError           ApplicationError = 0x10f
	H3VersionFallback        ApplicationError = 0x110
	QpackDecompressionFailed ApplicationError = 0x200
	QpackEncoderStreamError  ApplicationError = 0x201
	QpackDecoderStreamError  ApplicationError = 0x202
)

var applicationErrorNames = map[ApplicationError]string{
	H3DatagramError:          "h3_datagram_error",
	H3NoError:                "h3_no_error",
	H3GeneralProtocolError:   "h3_general_protocol_error",
	H3InternalError:          "h3_internal_error",
	H3StreamCreationError:    "h3_stream_creation_error",
	H3ClosedCriticalStream:   "h3_closed_critical_stream",
	H3FrameUnexpected:        "h3_frame_unexpected",
	H3FrameError:             "h3_frame_error",
	H3ExcessiveLoad:          "h3_excessive_load",
	H3IDError:                "h3_id_error",
	H3SettingsError:          "h3_settings_error",
	H3MissingSettings:        "h3_missing_settings",
	H3RequestRejected:        "h3_request_rejected",
	H3RequestCancelled:       "h3_request_cancelled",
	H3RequestIncomplete:      "h3_request_incomplete",
	H3MessageError:           "h3_message_error",
	H3ConnectError:           "h3_connect_error",
	H3VersionFallback:        "h3_version_fallback",
	QpackDecompressionFailed: "qpack_decompression_failed",
	QpackEncoderStreamError:  "qpack_encoder_stream_error",
	QpackDecoderStreamError:  "qpack_decoder_stream_error",
}

func (e ApplicationError) String() string {
	if name, ok := applicationErrorNames[e]; ok {
		return name
	}
	return fmt.Sprintf("application_error_0x%x", uint64(e))
}

// MarshalJSON emits the symbolic name when one exists, otherwise the
// hex-tagged fallback.
func (e ApplicationError) MarshalJSON() ([]byte, error) {
	return []byte(`"` + e.String() + `"`), nil
}

// UnmarshalJSON accepts either a symbolic name or a numeric code.
func (e *ApplicationError) UnmarshalJSON(b []byte) error {
	v, err := unmarshalErrorCode(b, applicationErrorNames)
	if err != nil {
		return err
	}
	*e = ApplicationError(v)
	return nil
}

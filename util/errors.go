package util

type Error struct {
	Message string
}

func (err *Error) Error() string {
	return err.Message
}

var (
	ErrUnsupportedURL  = &Error{Message: "no extractor matches this url"}
	ErrUnavailable     = &Error{Message: "this content is unavailable"}
	ErrTimeout         = &Error{Message: "timed out while resolving. try again"}
	ErrSourceNotFound  = &Error{Message: "player source not found in page"}
	ErrDecodeFailed    = &Error{Message: "failed to decode player payload"}
	ErrKeysUnavailable = &Error{Message: "decryption keys are unavailable"}
	ErrNoStreamsFound  = &Error{Message: "no playable streams found"}
	ErrPaidContent     = &Error{Message: "this content is paid"}
	ErrTooManyRequests = &Error{Message: "rate limited by the host. try again later"}
)

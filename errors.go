package zkfs

import "errors"

// Sentinel errors returned by the record codecs, envelope framing, and
// compression pipeline. Wrapped with additional context via fmt.Errorf's
// %w where the call site has something useful to add; compare with
// errors.Is at call sites.
var (
	ErrTruncated           = errors.New("zkfs: truncated input")
	ErrTooLarge            = errors.New("zkfs: value too large")
	ErrBadMagic            = errors.New("zkfs: bad magic")
	ErrBadVersion          = errors.New("zkfs: unsupported version")
	ErrBadCrc              = errors.New("zkfs: crc mismatch")
	ErrBadTag              = errors.New("zkfs: unexpected record tag")
	ErrMalformed           = errors.New("zkfs: malformed record")
	ErrUncodedSymbol       = errors.New("zkfs: symbol has no assigned code")
	ErrBadCode             = errors.New("zkfs: undecodable bit pattern")
	ErrLengthMismatch      = errors.New("zkfs: decoded length mismatch")
	ErrBadMethod           = errors.New("zkfs: unknown compression method")
	ErrMissingCollaborator = errors.New("zkfs: required collaborator not provided")
)

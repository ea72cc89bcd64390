package zkfs

import "github.com/maco144/zkfs-go/internal/wire"

// HasMagic reports whether b starts with the envelope's magic bytes.
func HasMagic(b []byte) bool { return wire.HasMagic(b) }

// decodeEnvelope decodes b as an envelope and checks its tag matches want,
// translating the wire package's framing errors into this package's
// sentinel errors and failing with ErrBadTag on a tag mismatch.
func decodeEnvelope(b []byte, want wire.Tag) (wire.Envelope, error) {
	env, err := wire.Decode(b)
	if err != nil {
		return env, translateWireErr(err)
	}
	if env.Tag != want {
		return env, ErrBadTag
	}
	return env, nil
}

func translateWireErr(err error) error {
	switch err {
	case wire.ErrTooShort:
		return ErrTruncated
	case wire.ErrBadMagic:
		return ErrBadMagic
	case wire.ErrBadVersion:
		return ErrBadVersion
	case wire.ErrBadCrc:
		return ErrBadCrc
	default:
		return err
	}
}

package compress

import zkfs "github.com/maco144/zkfs-go"

// Options configures compress_blob's optional collaborators: a trained
// Dictionary and the two halves of an injected external compressor.
// FallbackDecompress receives 0 as originalSize for method
// dictionary+external; it must determine its own output length (for
// instance from a framed format of its own).
type Options struct {
	Dictionary         *Dictionary
	FallbackCompress   func(data []byte) ([]byte, error)
	FallbackDecompress func(data []byte, originalSize int) ([]byte, error)
}

// ClassifyContentType sniffs plaintext for compression-relevant shape:
// JSON if it opens with '{' or '[' and the first 64 bytes contain no zero
// byte, text if up to 512 bytes are zero-free and over 90% printable
// ASCII, whitespace, or non-ASCII bytes, binary otherwise.
func ClassifyContentType(data []byte) ContentType {
	if len(data) == 0 {
		return ContentBinary
	}
	if data[0] == '{' || data[0] == '[' {
		probe := data
		if len(probe) > 64 {
			probe = probe[:64]
		}
		if !containsZero(probe) {
			return ContentJSON
		}
	}
	probe := data
	if len(probe) > 512 {
		probe = probe[:512]
	}
	if containsZero(probe) {
		return ContentBinary
	}
	printable := 0
	for _, b := range probe {
		if isTextByte(b) {
			printable++
		}
	}
	if printable*10 > len(probe)*9 {
		return ContentText
	}
	return ContentBinary
}

func containsZero(b []byte) bool {
	for _, x := range b {
		if x == 0 {
			return true
		}
	}
	return false
}

func isTextByte(b byte) bool {
	switch {
	case b >= 0x20 && b <= 0x7E:
		return true
	case b == '\t' || b == '\n' || b == '\r':
		return true
	case b >= 0x80:
		return true
	default:
		return false
	}
}

// CompressBlob negotiates the smallest of {none, dictionary, external,
// dictionary+external} for data and returns the winner framed as a
// CompressedBlob envelope. A collaborator failure during negotiation is
// swallowed; the trial is simply dropped.
func CompressBlob(data []byte, opts Options) ([]byte, error) {
	ct := ClassifyContentType(data)
	best := data
	method := MethodNone

	var dictOut []byte
	if opts.Dictionary != nil && (ct == ContentJSON || ct == ContentText) {
		if out, err := opts.Dictionary.Compress(data); err == nil {
			dictOut = out
			if len(out) < len(best) {
				best, method = out, MethodDictionary
			}
		}
	}
	if opts.FallbackCompress != nil {
		if out, err := opts.FallbackCompress(data); err == nil && len(out) < len(best) {
			best, method = out, MethodExternal
		}
		if dictOut != nil {
			if out, err := opts.FallbackCompress(dictOut); err == nil && len(out) < len(best) {
				best, method = out, MethodDictionaryExternal
			}
		}
	}
	if len(best) >= len(data) {
		best, method = data, MethodNone
	}

	return EncodeCompressedBlob(CompressedBlob{
		Method:        method,
		ContentType:   ct,
		OriginalSize:  uint64(len(data)),
		CompressedLen: uint64(len(best)),
		Data:          best,
	}), nil
}

// DecompressBlob reverses CompressBlob: it decodes the envelope, dispatches
// on the recorded method, and verifies the result matches the recorded
// original size.
func DecompressBlob(b []byte, opts Options) ([]byte, error) {
	cb, err := DecodeCompressedBlob(b)
	if err != nil {
		return nil, err
	}

	var out []byte
	switch cb.Method {
	case MethodNone:
		out = append([]byte(nil), cb.Data...)
	case MethodExternal:
		if opts.FallbackDecompress == nil {
			return nil, zkfs.ErrMissingCollaborator
		}
		if out, err = opts.FallbackDecompress(cb.Data, int(cb.OriginalSize)); err != nil {
			return nil, err
		}
	case MethodDictionary:
		if opts.Dictionary == nil {
			return nil, zkfs.ErrMissingCollaborator
		}
		if out, err = opts.Dictionary.Decompress(cb.Data, int(cb.OriginalSize)); err != nil {
			return nil, err
		}
	case MethodDictionaryExternal:
		if opts.FallbackDecompress == nil || opts.Dictionary == nil {
			return nil, zkfs.ErrMissingCollaborator
		}
		intermediate, err := opts.FallbackDecompress(cb.Data, 0)
		if err != nil {
			return nil, err
		}
		if out, err = opts.Dictionary.Decompress(intermediate, int(cb.OriginalSize)); err != nil {
			return nil, err
		}
	default:
		return nil, zkfs.ErrBadMethod
	}

	if uint64(len(out)) != cb.OriginalSize {
		return nil, zkfs.ErrLengthMismatch
	}
	return out, nil
}

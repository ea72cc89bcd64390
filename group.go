package zkfs

import "github.com/maco144/zkfs-go/internal/wire"

// EncodeGroup serializes a Group into an envelope tagged TagGroup.
//
// Payload: id(32) | member_count(varint) | members, where each member is
// pubkey(32) | dek_len(varint) | encrypted_dek(dek_len) | role(1).
func EncodeGroup(g Group) []byte {
	hint := 32 + 10
	for _, m := range g.Members {
		hint += 32 + 10 + len(m.EncryptedDEK) + 1
	}
	w := newWriter(hint)
	w.hash(g.ID)
	w.varint(uint64(len(g.Members)))
	for _, m := range g.Members {
		w.hash(m.PubKey)
		w.varint(uint64(len(m.EncryptedDEK)))
		w.raw(m.EncryptedDEK)
		w.byte(byte(m.Role))
	}
	return wire.Encode(wire.TagGroup, w.bytes())
}

// DecodeGroup parses an envelope, verifying its tag is TagGroup, and decodes
// the payload into a Group. Member order is preserved.
func DecodeGroup(b []byte) (Group, error) {
	var g Group
	env, err := decodeEnvelope(b, wire.TagGroup)
	if err != nil {
		return g, err
	}
	r := newReader(env.Payload)

	if g.ID, err = r.hash(); err != nil {
		return g, err
	}
	count, err := r.varint()
	if err != nil {
		return g, err
	}
	g.Members = make([]GroupMember, 0, count)
	for i := uint64(0); i < count; i++ {
		var m GroupMember
		if m.PubKey, err = r.hash(); err != nil {
			return g, err
		}
		dekLen, err := r.varint()
		if err != nil {
			return g, err
		}
		dek, err := r.fixed(int(dekLen))
		if err != nil {
			return g, err
		}
		m.EncryptedDEK = append([]byte(nil), dek...)
		roleByte, err := r.byte()
		if err != nil {
			return g, err
		}
		switch Role(roleByte) {
		case RoleRead, RoleWrite, RoleAdmin:
			m.Role = Role(roleByte)
		default:
			return g, ErrMalformed
		}
		g.Members = append(g.Members, m)
	}
	if !r.atEnd() {
		return g, ErrTruncated
	}
	return g, nil
}

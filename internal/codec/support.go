package codec

import (
	"encoding/binary"
	"fmt"

	"duel-crowd-bets/internal/domain"
)

// SupportRecordLen is the encoded support record length.
const SupportRecordLen = SelectorLen +
	32 + // duel
	32 + // backer
	1 + // side
	8 + // net amount
	1 + // claimed
	1 // bump

// EncodeSupport serializes a support position.
func EncodeSupport(p *domain.SupportPosition) []byte {
	buf := make([]byte, 0, SupportRecordLen)

	disc := SupportDiscriminator()
	buf = append(buf, disc[:]...)
	buf = append(buf, p.Duel[:]...)
	buf = append(buf, p.Backer[:]...)
	buf = append(buf, byte(p.Side))
	buf = binary.LittleEndian.AppendUint64(buf, p.NetAmount)
	buf = append(buf, encodeBool(p.Claimed))
	buf = append(buf, p.Bump)

	return buf
}

// DecodeSupport deserializes a support position.
func DecodeSupport(data []byte) (*domain.SupportPosition, error) {
	if len(data) != SupportRecordLen {
		return nil, fmt.Errorf("%w: support record is %d bytes", ErrTruncated, len(data))
	}
	disc := SupportDiscriminator()
	r := reader{data: data}
	if !r.expect(disc[:]) {
		return nil, ErrBadDiscriminator
	}

	p := &domain.SupportPosition{}
	r.identity(&p.Duel)
	r.identity(&p.Backer)

	side := domain.Side(r.u8())
	if !side.IsValid() {
		return nil, fmt.Errorf("invalid side byte %d", side)
	}
	p.Side = side

	p.NetAmount = r.u64()
	p.Claimed = r.boolean()
	p.Bump = r.u8()

	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}

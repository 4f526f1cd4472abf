package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"duel-crowd-bets/internal/domain"
)

// Codec errors.
var (
	ErrBadDiscriminator = errors.New("bad record discriminator")
	ErrTruncated        = errors.New("truncated record")
)

// Duel record layout, after the 8-byte discriminator. Integers are
// little-endian; enums are single bytes; the winner is a 2-byte
// (tag, side) pair with tag 0 = unset.
const (
	duelBaseLen = SelectorLen +
		32 + 32 + 32 + // challengerA, challengerB, arbiter
		8 + // stake
		1 + 1 + // deposit flags
		8 + 8 + 8 + // deadlines
		8 + 8 + // crowd pools
		8 + 8 + 8 + // spread sub-pools
		2 + 2 + 2 + 2 + // fee bps
		1 + // status
		1 + 1 + // winner (tag, side)
		32 + // treasury
		1 // bump

	// Extension fields appended after the original layout; records written
	// before the extension decode with zero values for them.
	duelExtLen = 1 + 8 // principalWithdrawn, escrowLamports

	// DuelRecordLen is the full encoded duel record length.
	DuelRecordLen = duelBaseLen + duelExtLen
)

// EncodeDuel serializes a duel record. Address and storage bookkeeping
// (version, created-at) are not part of the wire form.
func EncodeDuel(d *domain.Duel) []byte {
	buf := make([]byte, 0, DuelRecordLen)

	disc := DuelDiscriminator()
	buf = append(buf, disc[:]...)
	buf = append(buf, d.ChallengerA[:]...)
	buf = append(buf, d.ChallengerB[:]...)
	buf = append(buf, d.Arbiter[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, d.StakeLamports)
	buf = append(buf, encodeBool(d.DepositedA), encodeBool(d.DepositedB))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(d.DeadlineDeposit))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(d.DeadlineCrowd))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(d.ResolveNotBefore))
	buf = binary.LittleEndian.AppendUint64(buf, d.CrowdPoolA)
	buf = binary.LittleEndian.AppendUint64(buf, d.CrowdPoolB)
	buf = binary.LittleEndian.AppendUint64(buf, d.SpreadPoolCreators)
	buf = binary.LittleEndian.AppendUint64(buf, d.SpreadPoolArbiter)
	buf = binary.LittleEndian.AppendUint64(buf, d.SpreadPoolProtocol)
	buf = binary.LittleEndian.AppendUint16(buf, d.SpreadBps)
	buf = binary.LittleEndian.AppendUint16(buf, d.CreatorShareBps)
	buf = binary.LittleEndian.AppendUint16(buf, d.ArbiterShareBps)
	buf = binary.LittleEndian.AppendUint16(buf, d.ProtocolShareBps)
	buf = append(buf, byte(d.Status))
	if d.WinnerSide != nil {
		buf = append(buf, 1, byte(*d.WinnerSide))
	} else {
		buf = append(buf, 0, 0)
	}
	buf = append(buf, d.Treasury[:]...)
	buf = append(buf, d.Bump)

	buf = append(buf, encodeBool(d.PrincipalWithdrawn))
	buf = binary.LittleEndian.AppendUint64(buf, d.EscrowLamports)

	return buf
}

// DecodeDuel deserializes a duel record. The extension fields are optional
// so records written by the original program still decode.
func DecodeDuel(data []byte) (*domain.Duel, error) {
	if len(data) != duelBaseLen && len(data) != DuelRecordLen {
		return nil, fmt.Errorf("%w: duel record is %d bytes", ErrTruncated, len(data))
	}
	disc := DuelDiscriminator()
	r := reader{data: data}
	if !r.expect(disc[:]) {
		return nil, ErrBadDiscriminator
	}

	d := &domain.Duel{}
	r.identity(&d.ChallengerA)
	r.identity(&d.ChallengerB)
	r.identity(&d.Arbiter)
	d.StakeLamports = r.u64()
	d.DepositedA = r.boolean()
	d.DepositedB = r.boolean()
	d.DeadlineDeposit = int64(r.u64())
	d.DeadlineCrowd = int64(r.u64())
	d.ResolveNotBefore = int64(r.u64())
	d.CrowdPoolA = r.u64()
	d.CrowdPoolB = r.u64()
	d.SpreadPoolCreators = r.u64()
	d.SpreadPoolArbiter = r.u64()
	d.SpreadPoolProtocol = r.u64()
	d.SpreadBps = r.u16()
	d.CreatorShareBps = r.u16()
	d.ArbiterShareBps = r.u16()
	d.ProtocolShareBps = r.u16()

	status := domain.DuelStatus(r.u8())
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid duel status byte %d", status)
	}
	d.Status = status

	winnerTag := r.u8()
	winnerVal := r.u8()
	if winnerTag != 0 {
		side := domain.Side(winnerVal)
		if !side.IsValid() {
			return nil, fmt.Errorf("invalid winner side byte %d", winnerVal)
		}
		d.WinnerSide = &side
	}

	r.identity(&d.Treasury)
	d.Bump = r.u8()

	if len(data) == DuelRecordLen {
		d.PrincipalWithdrawn = r.boolean()
		d.EscrowLamports = r.u64()
	}

	if r.err != nil {
		return nil, r.err
	}
	return d, nil
}

func encodeBool(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// reader is a cursor over an encoded record.
type reader struct {
	data []byte
	pos  int
	err  error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.data) {
		r.err = ErrTruncated
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) expect(prefix []byte) bool {
	b := r.take(len(prefix))
	if b == nil {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}

func (r *reader) identity(dst *domain.Identity) {
	b := r.take(domain.IdentityLen)
	if b != nil {
		copy(dst[:], b)
	}
}

func (r *reader) u64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *reader) u16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *reader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) boolean() bool {
	return r.u8() != 0
}

package tlv

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// HeaderLen is key length (u16) + type (u8) + value length (u32).
const HeaderLen = 7

var (
	ErrShortFieldHeader = errors.New("tlv: short field header")
	ErrShortFieldKey    = errors.New("tlv: short field key")
	ErrShortFieldValue  = errors.New("tlv: short field value")
	ErrKeyTooLong       = errors.New("tlv: key too long")
)

const (
	TypeI64    uint8 = 1
	TypeBool   uint8 = 2
	TypeString uint8 = 3
	TypeBytes  uint8 = 4
)

// Field is one keyed TLV field.
type Field struct {
	Key   string
	Type  uint8
	Value []byte
}

func EncodeField(f Field) ([]byte, error) {
	if len(f.Key) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d bytes", ErrKeyTooLong, len(f.Key))
	}
	buf := make([]byte, HeaderLen+len(f.Key)+len(f.Value))
	binary.BigEndian.PutUint16(buf[0:2], uint16(len(f.Key)))
	buf[2] = f.Type
	binary.BigEndian.PutUint32(buf[3:7], uint32(len(f.Value)))
	n := copy(buf[HeaderLen:], f.Key)
	copy(buf[HeaderLen+n:], f.Value)
	return buf, nil
}

func EncodeFields(fields []Field) ([]byte, error) {
	out := make([]byte, 0)
	for _, f := range fields {
		b, err := EncodeField(f)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

func DecodeFields(payload []byte) ([]Field, error) {
	fields := make([]Field, 0)
	i := 0
	for i < len(payload) {
		if len(payload)-i < HeaderLen {
			return nil, ErrShortFieldHeader
		}
		kl := int(binary.BigEndian.Uint16(payload[i : i+2]))
		typeID := payload[i+2]
		vl := binary.BigEndian.Uint32(payload[i+3 : i+7])
		i += HeaderLen
		if len(payload)-i < kl {
			return nil, ErrShortFieldKey
		}
		key := string(payload[i : i+kl])
		i += kl
		if uint32(len(payload)-i) < vl {
			return nil, ErrShortFieldValue
		}
		val := make([]byte, vl)
		copy(val, payload[i:i+int(vl)])
		i += int(vl)
		fields = append(fields, Field{Key: key, Type: typeID, Value: val})
	}
	return fields, nil
}

func I64Bytes(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func I64FromBytes(b []byte) (int64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("tlv: invalid i64 length: %d", len(b))
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

package types

import (
	"github.com/spacemeshos/go-scale"
)

// EncodeScale implements scale.Encodable.
func (i *Item) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeByteSliceWithLimit(enc, []byte(i.ID), MaxIDLength)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeByteSliceWithLimit(enc, []byte(i.Name), MaxNameLength)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		var bought byte
		if i.Bought {
			bought = 1
		}
		n, err := scale.EncodeByte(enc, bought)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeUint32(enc, uint32(i.Position))
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, uint64(i.CreatedAt))
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, uint64(i.UpdatedAt))
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DecodeScale implements scale.Decodable.
func (i *Item) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeByteSliceWithLimit(dec, MaxIDLength)
		if err != nil {
			return total, err
		}
		total += n
		i.ID = string(field)
	}
	{
		field, n, err := scale.DecodeByteSliceWithLimit(dec, MaxNameLength)
		if err != nil {
			return total, err
		}
		total += n
		i.Name = string(field)
	}
	{
		field, n, err := scale.DecodeByte(dec)
		if err != nil {
			return total, err
		}
		total += n
		i.Bought = field != 0
	}
	{
		field, n, err := scale.DecodeUint32(dec)
		if err != nil {
			return total, err
		}
		total += n
		i.Position = int32(field)
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		i.CreatedAt = int64(field)
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		i.UpdatedAt = int64(field)
	}
	return total, nil
}

package hcclient

import (
	"github.com/democosm/hcfabric/cell"
	"github.com/democosm/hcfabric/hcerr"
)

// getAs decodes a GET response's value cell with decode, generalizing
// the per-type Get wrappers below the same way hctree.newNumericParameter
// generalizes the tree's per-type constructors over one trait.
func getAs[T any](sf *Client, pid uint16, decode func(*cell.Cell) (T, error)) (T, hcerr.Code, error) {
	var zero T
	value, code, err := sf.GetCell(pid)
	if err != nil || code != hcerr.None {
		return zero, code, err
	}
	v, derr := decode(value)
	if derr != nil {
		return zero, hcerr.Type, nil
	}
	return v, hcerr.None, nil
}

// setAs encodes v with encode and issues SET for pid.
func setAs[T any](sf *Client, pid uint16, v T, encode func(*cell.Cell, T) *cell.Cell) (hcerr.Code, error) {
	body := cell.New()
	encode(body, v)
	return sf.SetCell(pid, body)
}

// GetInt8 issues GET for an Int8-typed parameter.
func (sf *Client) GetInt8(pid uint16) (int8, hcerr.Code, error) {
	return getAs(sf, pid, (*cell.Cell).DecodeInt8)
}

// SetInt8 issues SET for an Int8-typed parameter.
func (sf *Client) SetInt8(pid uint16, v int8) (hcerr.Code, error) {
	return setAs(sf, pid, v, (*cell.Cell).AppendInt8)
}

// GetUint8 issues GET for a Uint8-typed parameter.
func (sf *Client) GetUint8(pid uint16) (uint8, hcerr.Code, error) {
	return getAs(sf, pid, (*cell.Cell).DecodeUint8)
}

// SetUint8 issues SET for a Uint8-typed parameter.
func (sf *Client) SetUint8(pid uint16, v uint8) (hcerr.Code, error) {
	return setAs(sf, pid, v, (*cell.Cell).AppendUint8)
}

// GetInt16 issues GET for an Int16-typed parameter.
func (sf *Client) GetInt16(pid uint16) (int16, hcerr.Code, error) {
	return getAs(sf, pid, (*cell.Cell).DecodeInt16)
}

// SetInt16 issues SET for an Int16-typed parameter.
func (sf *Client) SetInt16(pid uint16, v int16) (hcerr.Code, error) {
	return setAs(sf, pid, v, (*cell.Cell).AppendInt16)
}

// GetUint16 issues GET for a Uint16-typed parameter.
func (sf *Client) GetUint16(pid uint16) (uint16, hcerr.Code, error) {
	return getAs(sf, pid, (*cell.Cell).DecodeUint16)
}

// SetUint16 issues SET for a Uint16-typed parameter.
func (sf *Client) SetUint16(pid uint16, v uint16) (hcerr.Code, error) {
	return setAs(sf, pid, v, (*cell.Cell).AppendUint16)
}

// GetInt32 issues GET for an Int32-typed parameter.
func (sf *Client) GetInt32(pid uint16) (int32, hcerr.Code, error) {
	return getAs(sf, pid, (*cell.Cell).DecodeInt32)
}

// SetInt32 issues SET for an Int32-typed parameter.
func (sf *Client) SetInt32(pid uint16, v int32) (hcerr.Code, error) {
	return setAs(sf, pid, v, (*cell.Cell).AppendInt32)
}

// GetUint32 issues GET for a Uint32-typed parameter.
func (sf *Client) GetUint32(pid uint16) (uint32, hcerr.Code, error) {
	return getAs(sf, pid, (*cell.Cell).DecodeUint32)
}

// SetUint32 issues SET for a Uint32-typed parameter.
func (sf *Client) SetUint32(pid uint16, v uint32) (hcerr.Code, error) {
	return setAs(sf, pid, v, (*cell.Cell).AppendUint32)
}

// GetInt64 issues GET for an Int64-typed parameter.
func (sf *Client) GetInt64(pid uint16) (int64, hcerr.Code, error) {
	return getAs(sf, pid, (*cell.Cell).DecodeInt64)
}

// SetInt64 issues SET for an Int64-typed parameter.
func (sf *Client) SetInt64(pid uint16, v int64) (hcerr.Code, error) {
	return setAs(sf, pid, v, (*cell.Cell).AppendInt64)
}

// GetUint64 issues GET for a Uint64-typed parameter.
func (sf *Client) GetUint64(pid uint16) (uint64, hcerr.Code, error) {
	return getAs(sf, pid, (*cell.Cell).DecodeUint64)
}

// SetUint64 issues SET for a Uint64-typed parameter.
func (sf *Client) SetUint64(pid uint16, v uint64) (hcerr.Code, error) {
	return setAs(sf, pid, v, (*cell.Cell).AppendUint64)
}

// GetFloat issues GET for a Float-typed parameter.
func (sf *Client) GetFloat(pid uint16) (float32, hcerr.Code, error) {
	return getAs(sf, pid, (*cell.Cell).DecodeFloat)
}

// SetFloat issues SET for a Float-typed parameter.
func (sf *Client) SetFloat(pid uint16, v float32) (hcerr.Code, error) {
	return setAs(sf, pid, v, (*cell.Cell).AppendFloat)
}

// GetDouble issues GET for a Double-typed parameter.
func (sf *Client) GetDouble(pid uint16) (float64, hcerr.Code, error) {
	return getAs(sf, pid, (*cell.Cell).DecodeDouble)
}

// SetDouble issues SET for a Double-typed parameter.
func (sf *Client) SetDouble(pid uint16, v float64) (hcerr.Code, error) {
	return setAs(sf, pid, v, (*cell.Cell).AppendDouble)
}

// GetIPv4 issues GET for an IPv4-typed parameter.
func (sf *Client) GetIPv4(pid uint16) (uint32, hcerr.Code, error) {
	return getAs(sf, pid, (*cell.Cell).DecodeIPv4)
}

// SetIPv4 issues SET for an IPv4-typed parameter.
func (sf *Client) SetIPv4(pid uint16, v uint32) (hcerr.Code, error) {
	return setAs(sf, pid, v, (*cell.Cell).AppendIPv4)
}

// GetBool issues GET for a Bool-typed parameter.
func (sf *Client) GetBool(pid uint16) (bool, hcerr.Code, error) {
	return getAs(sf, pid, (*cell.Cell).DecodeBool)
}

// SetBool issues SET for a Bool-typed parameter.
func (sf *Client) SetBool(pid uint16, v bool) (hcerr.Code, error) {
	return setAs(sf, pid, v, (*cell.Cell).AppendBool)
}

// GetString issues GET for a String-typed parameter.
func (sf *Client) GetString(pid uint16) (string, hcerr.Code, error) {
	return getAs(sf, pid, (*cell.Cell).DecodeString)
}

// SetString issues SET for a String-typed parameter.
func (sf *Client) SetString(pid uint16, v string) (hcerr.Code, error) {
	return setAs(sf, pid, v, (*cell.Cell).AppendString)
}

// getTblAs decodes an IGET response's value cell with decode, the
// indexed counterpart of getAs.
func getTblAs[T any](sf *Client, pid uint16, eid uint32, decode func(*cell.Cell) (T, error)) (T, hcerr.Code, error) {
	var zero T
	value, code, err := sf.GetCellTbl(pid, eid)
	if err != nil || code != hcerr.None {
		return zero, code, err
	}
	v, derr := decode(value)
	if derr != nil {
		return zero, hcerr.Type, nil
	}
	return v, hcerr.None, nil
}

// setTblAs encodes v with encode and issues ISET for pid/eid.
func setTblAs[T any](sf *Client, pid uint16, eid uint32, v T, encode func(*cell.Cell, T) *cell.Cell) (hcerr.Code, error) {
	body := cell.New()
	encode(body, v)
	return sf.SetCellTbl(pid, eid, body)
}

// GetTblInt32 issues IGET for an Int32-typed tabular parameter.
func (sf *Client) GetTblInt32(pid uint16, eid uint32) (int32, hcerr.Code, error) {
	return getTblAs(sf, pid, eid, (*cell.Cell).DecodeInt32)
}

// SetTblInt32 issues ISET for an Int32-typed tabular parameter.
func (sf *Client) SetTblInt32(pid uint16, eid uint32, v int32) (hcerr.Code, error) {
	return setTblAs(sf, pid, eid, v, (*cell.Cell).AppendInt32)
}

// GetTblUint32 issues IGET for a Uint32-typed tabular parameter.
func (sf *Client) GetTblUint32(pid uint16, eid uint32) (uint32, hcerr.Code, error) {
	return getTblAs(sf, pid, eid, (*cell.Cell).DecodeUint32)
}

// SetTblUint32 issues ISET for a Uint32-typed tabular parameter.
func (sf *Client) SetTblUint32(pid uint16, eid uint32, v uint32) (hcerr.Code, error) {
	return setTblAs(sf, pid, eid, v, (*cell.Cell).AppendUint32)
}

// GetTblFloat issues IGET for a Float-typed tabular parameter.
func (sf *Client) GetTblFloat(pid uint16, eid uint32) (float32, hcerr.Code, error) {
	return getTblAs(sf, pid, eid, (*cell.Cell).DecodeFloat)
}

// SetTblFloat issues ISET for a Float-typed tabular parameter.
func (sf *Client) SetTblFloat(pid uint16, eid uint32, v float32) (hcerr.Code, error) {
	return setTblAs(sf, pid, eid, v, (*cell.Cell).AppendFloat)
}

// GetTblString issues IGET for a String-typed tabular parameter.
func (sf *Client) GetTblString(pid uint16, eid uint32) (string, hcerr.Code, error) {
	return getTblAs(sf, pid, eid, (*cell.Cell).DecodeString)
}

// SetTblString issues ISET for a String-typed tabular parameter.
func (sf *Client) SetTblString(pid uint16, eid uint32, v string) (hcerr.Code, error) {
	return setTblAs(sf, pid, eid, v, (*cell.Cell).AppendString)
}

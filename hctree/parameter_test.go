package hctree

import (
	"bytes"
	"testing"

	"github.com/democosm/hcfabric/cell"
	"github.com/democosm/hcfabric/hcerr"
	"github.com/stretchr/testify/require"
)

func TestScalarGetSet(t *testing.T) {
	var stored uint32 = 42
	p, err := NewUint32Parameter("count", Readable|Writable,
		func() uint32 { return stored },
		func(v uint32) hcerr.Code { stored = v; return hcerr.None })
	require.NoError(t, err)

	out := cell.New()
	require.Equal(t, hcerr.None, p.GetCell(out))
	v, derr := cell.Wrap(out.Bytes()).DecodeUint32()
	require.NoError(t, derr)
	require.Equal(t, uint32(42), v)

	setCell := cell.New()
	setCell.AppendUint32(100)
	require.Equal(t, hcerr.None, p.SetCell(cell.Wrap(setCell.Bytes())))
	require.Equal(t, uint32(100), stored)
}

func TestScalarTypeMismatch(t *testing.T) {
	p, err := NewUint32Parameter("count", Writable, nil, func(uint32) hcerr.Code { return hcerr.None })
	require.NoError(t, err)

	c := cell.New()
	c.AppendString("x")
	require.Equal(t, hcerr.Type, p.SetCell(cell.Wrap(c.Bytes())))
}

func TestBoundsValidation(t *testing.T) {
	p, err := NewInt32Parameter("level", Writable, nil, func(int32) hcerr.Code { return hcerr.None })
	require.NoError(t, err)
	p.SetBounds(0, 10, 1)

	c := cell.New()
	c.AppendInt32(5)
	require.Equal(t, hcerr.None, p.SetCell(cell.Wrap(c.Bytes())))

	c2 := cell.New()
	c2.AppendInt32(20)
	require.Equal(t, hcerr.Range, p.SetCell(cell.Wrap(c2.Bytes())))
}

func TestValueEnumRoundtrip(t *testing.T) {
	var stored int32
	p, err := NewInt32Parameter("mode", Readable|Writable,
		func() int32 { return stored },
		func(v int32) hcerr.Code { stored = v; return hcerr.None })
	require.NoError(t, err)
	p.SetValueEnum(map[int64]string{0: "OFF", 1: "ON"})

	require.Equal(t, hcerr.None, p.SetStrLit("ON"))
	require.Equal(t, int32(1), stored)

	s, code := p.GetStr()
	require.Equal(t, hcerr.None, code)
	require.Equal(t, "ON", s)
}

func TestTabularParameter(t *testing.T) {
	rows := map[uint32]int32{0: 10, 1: 20}
	p, err := NewInt32TabularParameter("rows", Readable|Writable|TabularAccess,
		func(eid uint32) (int32, hcerr.Code) {
			v, ok := rows[eid]
			if !ok {
				return 0, hcerr.Eid
			}
			return v, hcerr.None
		},
		func(eid uint32, v int32) hcerr.Code {
			rows[eid] = v
			return hcerr.None
		})
	require.NoError(t, err)

	out := cell.New()
	require.Equal(t, hcerr.None, p.GetCellTbl(0, out))

	require.Equal(t, hcerr.Eid, p.GetCellTbl(99, cell.New()))

	require.Equal(t, hcerr.None, p.SetStrTbl(1, "30"))
	require.Equal(t, int32(30), rows[1])
}

func TestListParameter(t *testing.T) {
	var set []int32
	p, err := NewInt32ListParameter("members", Writable,
		func(v int32) hcerr.Code { set = append(set, v); return hcerr.None },
		func(v int32) hcerr.Code {
			for i, e := range set {
				if e == v {
					set = append(set[:i], set[i+1:]...)
					break
				}
			}
			return hcerr.None
		})
	require.NoError(t, err)

	require.Equal(t, hcerr.None, p.AddStr("5"))
	require.Equal(t, hcerr.None, p.AddStr("6"))
	require.Equal(t, []int32{5, 6}, set)

	require.Equal(t, hcerr.None, p.SubStr("5"))
	require.Equal(t, []int32{6}, set)
}

func TestCallableParameter(t *testing.T) {
	called := false
	p, err := NewCallableParameter("reset", Invokable, func() hcerr.Code {
		called = true
		return hcerr.None
	}, nil)
	require.NoError(t, err)

	require.Equal(t, hcerr.None, p.Call())
	require.True(t, called)
	require.Equal(t, hcerr.Access, p.CallTbl(0))
}

func TestFileParameterShortRead(t *testing.T) {
	data := []byte("hello world")
	p, err := NewFileParameter("blob", Readable|Writable|FileAccess,
		func(offset uint32, length uint16) ([]byte, hcerr.Code) {
			if int(offset) >= len(data) {
				return nil, hcerr.None
			}
			end := int(offset) + int(length)
			if end > len(data) {
				end = len(data)
			}
			return data[offset:end], hcerr.None
		},
		func(offset uint32, in []byte) hcerr.Code {
			if int(offset)+len(in) > len(data) {
				return hcerr.Overflow
			}
			copy(data[offset:], in)
			return hcerr.None
		})
	require.NoError(t, err)

	out := cell.New()
	require.Equal(t, hcerr.None, p.ReadCell(0, 100, out))
	require.Equal(t, data, out.Bytes())
}

func TestSaveValues(t *testing.T) {
	top := buildTree(t)
	var buf bytes.Buffer
	require.NoError(t, SaveValues(top, &buf))
	require.Contains(t, buf.String(), "/sys/net/ip = 10.0.0.1")
}

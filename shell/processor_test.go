package shell

import (
	"bytes"
	"testing"

	"github.com/democosm/hcfabric/hcerr"
	"github.com/democosm/hcfabric/hctree"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	require.Equal(t, []string{"/sys/ip", "=", "10.0.0.1"}, Tokenize(`/sys/ip=10.0.0.1`))
	require.Equal(t, []string{"p", "=", `"`, "hello world", `"`}, Tokenize(`p="hello world"`))
	require.Equal(t, []string{"p", "(", "3", ")"}, Tokenize(`p(3)`))
	require.Equal(t, []string{"p", "[", `"`, "ON", `"`, "]", "=", "1"}, Tokenize(`p["ON"]=1`))
}

func buildTestTree(t *testing.T) (*hctree.Container, *uint32, *bool) {
	top := hctree.NewRoot()
	sys, err := hctree.NewContainer("sys")
	require.NoError(t, err)
	require.NoError(t, top.AddContainer(sys))

	var stored uint32
	countParam, err := hctree.NewUint32Parameter("count", hctree.Readable|hctree.Writable,
		func() uint32 { return stored },
		func(v uint32) hcerr.Code { stored = v; return hcerr.None })
	require.NoError(t, err)
	require.NoError(t, sys.AddParameter(countParam))

	var called bool
	resetParam, err := hctree.NewCallableParameter("reset", hctree.Invokable,
		func() hcerr.Code { called = true; return hcerr.None }, nil)
	require.NoError(t, err)
	require.NoError(t, sys.AddParameter(resetParam))

	return top, &stored, &called
}

func TestProcessorSetAndCall(t *testing.T) {
	top, stored, called := buildTestTree(t)
	var buf bytes.Buffer
	p := NewProcessor(top, &buf)

	require.NoError(t, p.Execute(`cd sys`))
	require.NoError(t, p.Execute(`count=7`))
	require.Equal(t, uint32(7), *stored)

	require.NoError(t, p.Execute(`reset()`))
	require.True(t, *called)

	require.NoError(t, p.Execute(`ls count`))
	require.Contains(t, buf.String(), "count = 7")
}

func TestProcessorNoSuchParameter(t *testing.T) {
	top, _, _ := buildTestTree(t)
	var buf bytes.Buffer
	p := NewProcessor(top, &buf)

	require.NoError(t, p.Execute(`bogus = 1`))
	require.Contains(t, buf.String(), "No such parameter")
}

func TestProcessorUnrecognized(t *testing.T) {
	top, _, _ := buildTestTree(t)
	var buf bytes.Buffer
	p := NewProcessor(top, &buf)
	require.NoError(t, p.Execute(`cd sys`))

	require.NoError(t, p.Execute(`count = = =`))
	require.Contains(t, buf.String(), "Unrecognized command")
}

func TestProcessorExit(t *testing.T) {
	top, _, _ := buildTestTree(t)
	var buf bytes.Buffer
	p := NewProcessor(top, &buf)
	require.False(t, p.Exiting())
	require.NoError(t, p.Execute("exit"))
	require.True(t, p.Exiting())
}

func TestProcessorFindStartsAtTop(t *testing.T) {
	top, _, _ := buildTestTree(t)
	var buf bytes.Buffer
	p := NewProcessor(top, &buf)
	require.NoError(t, p.Execute(`cd sys`))

	require.NoError(t, p.Execute(`find count`))
	require.Contains(t, buf.String(), "/sys/count")
}

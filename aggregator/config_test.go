package aggregator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleXML = `
<server>
  <name>agg</name>
  <port>9000</port>
  <qport>9001</qport>
  <conn>
    <name>backend1</name>
    <timeout>500000</timeout>
    <udpsocket>
      <port>9100</port>
      <destipaddr>127.0.0.1</destipaddr>
      <destport>9200</destport>
    </udpsocket>
  </conn>
  <conn>
    <name>backend2</name>
    <timeout>500000</timeout>
    <slipframer>
      <maxpldsiz>4096</maxpldsiz>
      <tcpclient>
        <port>0</port>
        <srvipaddr>127.0.0.1</srvipaddr>
        <srvport>9300</srvport>
      </tcpclient>
    </slipframer>
  </conn>
</server>
`

func TestParseServerOK(t *testing.T) {
	cfg, err := ParseServer(strings.NewReader(sampleXML))
	require.NoError(t, err)
	require.Equal(t, "agg", cfg.Name)
	require.Equal(t, uint16(9000), cfg.Port)
	require.NotNil(t, cfg.QPort)
	require.Equal(t, uint16(9001), *cfg.QPort)
	require.Len(t, cfg.Conns, 2)

	require.Equal(t, "backend1", cfg.Conns[0].Name)
	require.NotNil(t, cfg.Conns[0].UDPSocket)
	require.Equal(t, "127.0.0.1", cfg.Conns[0].UDPSocket.DestIPAddr)

	require.Equal(t, "backend2", cfg.Conns[1].Name)
	require.NotNil(t, cfg.Conns[1].SLIPFramer)
	require.NotNil(t, cfg.Conns[1].SLIPFramer.TCPClient)
}

func TestParseServerMissingPort(t *testing.T) {
	_, err := ParseServer(strings.NewReader(`<server><name>agg</name><conn><name>c</name><timeout>1</timeout><udpsocket><port>1</port><destipaddr>a</destipaddr><destport>2</destport></udpsocket></conn></server>`))
	require.Error(t, err)
}

func TestParseServerNoConns(t *testing.T) {
	_, err := ParseServer(strings.NewReader(`<server><name>agg</name><port>1</port></server>`))
	require.Error(t, err)
}

func TestParseServerConnMissingTransport(t *testing.T) {
	_, err := ParseServer(strings.NewReader(`<server><name>agg</name><port>1</port><conn><name>c</name><timeout>1</timeout></conn></server>`))
	require.Error(t, err)
}

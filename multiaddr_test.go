package multiaddr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMA 测试辅助：构造多地址，失败直接终止
func newMA(t *testing.T, s string) Multiaddr {
	t.Helper()
	m, err := NewMultiaddr(s)
	require.NoError(t, err, "NewMultiaddr(%q)", s)
	return m
}

// TestNewMultiaddr 测试字符串构造
func TestNewMultiaddr(t *testing.T) {
	m := newMA(t, "/ip4/127.0.0.1/tcp/4001")
	assert.Equal(t, "/ip4/127.0.0.1/tcp/4001", m.String())

	_, err := NewMultiaddr("not-a-multiaddr")
	assert.ErrorIs(t, err, ErrInvalidMultiaddr)

	_, err = NewMultiaddr("/ip4/256.256.256.256/tcp/8080")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

// TestNewMultiaddrBytes 测试二进制构造
func TestNewMultiaddrBytes(t *testing.T) {
	orig := newMA(t, "/ip4/1.2.3.4/tcp/80")

	m, err := NewMultiaddrBytes(orig.Bytes())
	require.NoError(t, err)
	assert.True(t, m.Equal(orig))

	// 输入缓冲区被复制，外部修改不影响已建实例
	buf := append([]byte{}, orig.Bytes()...)
	m, err = NewMultiaddrBytes(buf)
	require.NoError(t, err)
	buf[len(buf)-1] = 0xFF
	assert.Equal(t, "/ip4/1.2.3.4/tcp/80", m.String())

	_, err = NewMultiaddrBytes([]byte{0x80})
	assert.ErrorIs(t, err, ErrInvalidMultiaddr)

	tcp := orig.Bytes()
	_, err = NewMultiaddrBytes(tcp[:len(tcp)-1])
	assert.ErrorIs(t, err, ErrTruncated)
}

// TestEmptyMultiaddr 测试零组件地址
func TestEmptyMultiaddr(t *testing.T) {
	e := Empty()
	assert.Equal(t, "", e.String())
	assert.Empty(t, e.Bytes())
	assert.Empty(t, e.Protocols())

	// 空字符串构造同样合法
	m := newMA(t, "")
	assert.True(t, m.Equal(e))

	// 空地址上的封装得到另一个地址本身的内容
	other := newMA(t, "/tcp/80")
	assert.True(t, e.Encapsulate(other).Equal(other))
	assert.True(t, other.Decapsulate(newMA(t, "/tcp/80")).Equal(e))
}

// TestEqual 测试相等性按二进制比较
func TestEqual(t *testing.T) {
	fromStr := newMA(t, "/ip4/127.0.0.1/udp/1234")

	fromBytes, err := NewMultiaddrBytes(fromStr.Bytes())
	require.NoError(t, err)

	// 构造路径不同，相等性只看二进制
	assert.True(t, fromStr.Equal(fromBytes))
	assert.True(t, fromBytes.Equal(fromStr))

	assert.False(t, fromStr.Equal(newMA(t, "/ip4/127.0.0.1/udp/1235")))
	assert.False(t, fromStr.Equal(nil))
}

// TestProtocolsList 测试协议序列提取
func TestProtocolsList(t *testing.T) {
	m := newMA(t, "/ip4/1.2.3.4/udp/443/quic-v1/webtransport")

	ps := m.Protocols()
	require.Len(t, ps, 4)
	assert.Equal(t, P_IP4, ps[0].Code)
	assert.Equal(t, P_UDP, ps[1].Code)
	assert.Equal(t, P_QUIC_V1, ps[2].Code)
	assert.Equal(t, P_WEBTRANSPORT, ps[3].Code)
}

// TestEncapsulate 测试封装
func TestEncapsulate(t *testing.T) {
	ip := newMA(t, "/ip4/127.0.0.1")
	tcp := newMA(t, "/tcp/80")

	m := ip.Encapsulate(tcp)
	assert.Equal(t, "/ip4/127.0.0.1/tcp/80", m.String())

	// 原地址不受影响（不可变）
	assert.Equal(t, "/ip4/127.0.0.1", ip.String())
	assert.Equal(t, "/tcp/80", tcp.String())

	// 封装 nil 返回自身内容
	assert.True(t, ip.Encapsulate(nil).Equal(ip))

	// 链式封装
	m = ip.Encapsulate(tcp).Encapsulate(newMA(t, "/http"))
	assert.Equal(t, "/ip4/127.0.0.1/tcp/80/http", m.String())
}

// TestDecapsulate 测试解封装
func TestDecapsulate(t *testing.T) {
	m := newMA(t, "/ip4/127.0.0.1/udp/1234/quic-v1")

	t.Run("Exact suffix", func(t *testing.T) {
		got := m.Decapsulate(newMA(t, "/udp/1234/quic-v1"))
		assert.Equal(t, "/ip4/127.0.0.1", got.String())
	})

	t.Run("Middle component removes tail too", func(t *testing.T) {
		got := m.Decapsulate(newMA(t, "/udp/1234"))
		assert.Equal(t, "/ip4/127.0.0.1", got.String())
	})

	t.Run("Miss returns original", func(t *testing.T) {
		got := m.Decapsulate(newMA(t, "/dns/example.com"))
		assert.True(t, got.Equal(m))
	})

	t.Run("Rightmost occurrence wins", func(t *testing.T) {
		dup := newMA(t, "/ip4/1.2.3.4/tcp/80/ip4/1.2.3.4/tcp/81")
		got := dup.Decapsulate(newMA(t, "/ip4/1.2.3.4"))
		assert.Equal(t, "/ip4/1.2.3.4/tcp/80", got.String())
	})
}

// TestDecapsulateString 测试按字符串片段解封装
func TestDecapsulateString(t *testing.T) {
	m := newMA(t, "/ip4/1.2.3.4/udp/1234/quic-v1")

	// "/udp" 不是完整多地址（udp 需要值），但作为片段可以对齐到组件边界
	got := m.DecapsulateString("/udp")
	assert.Equal(t, "/ip4/1.2.3.4", got.String())

	got = m.DecapsulateString("/quic-v1")
	assert.Equal(t, "/ip4/1.2.3.4/udp/1234", got.String())

	// 未命中返回原地址
	assert.True(t, m.DecapsulateString("/tcp").Equal(m))
	assert.True(t, m.DecapsulateString("").Equal(m))
}

// TestDecapsulateCode 测试按协议代码解封装
func TestDecapsulateCode(t *testing.T) {
	m := newMA(t, "/ip4/192.168.1.1/tcp/8080/udp/1234")

	got := m.DecapsulateCode(P_TCP)
	assert.Equal(t, "/ip4/192.168.1.1", got.String())

	got = m.DecapsulateCode(P_UDP)
	assert.Equal(t, "/ip4/192.168.1.1/tcp/8080", got.String())

	// 未命中返回原地址
	assert.True(t, m.DecapsulateCode(P_SCTP).Equal(m))

	// 最右一次出现
	dup := newMA(t, "/ip4/1.2.3.4/tcp/80/ip4/5.6.7.8/tcp/81")
	got = dup.DecapsulateCode(P_IP4)
	assert.Equal(t, "/ip4/1.2.3.4/tcp/80", got.String())
}

// TestValueForProtocol 测试取协议值
func TestValueForProtocol(t *testing.T) {
	m := newMA(t, "/ip4/1.2.3.4/tcp/80/http")

	v, err := m.ValueForProtocol(P_IP4)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.4", v)

	v, err = m.ValueForProtocol(P_TCP)
	require.NoError(t, err)
	assert.Equal(t, "80", v)

	// 无数据协议存在时返回空值、无错误
	v, err = m.ValueForProtocol(P_HTTP)
	require.NoError(t, err)
	assert.Equal(t, "", v)

	// 协议不在地址中
	_, err = m.ValueForProtocol(P_UDP)
	assert.ErrorIs(t, err, ErrProtocolNotFound)

	// 协议未注册
	_, err = m.ValueForProtocol(0x7FFFF0)
	assert.ErrorIs(t, err, ErrProtocolNotFound)
}

// TestMarshalRoundTrip 测试序列化接口
func TestMarshalRoundTrip(t *testing.T) {
	orig := newMA(t, "/ip6/::1/tcp/8080").(*multiaddr)

	t.Run("JSON", func(t *testing.T) {
		data, err := json.Marshal(orig)
		require.NoError(t, err)
		assert.Equal(t, `"/ip6/::1/tcp/8080"`, string(data))

		var m multiaddr
		require.NoError(t, json.Unmarshal(data, &m))
		assert.True(t, m.Equal(orig))
	})

	t.Run("Text", func(t *testing.T) {
		data, err := orig.MarshalText()
		require.NoError(t, err)

		var m multiaddr
		require.NoError(t, m.UnmarshalText(data))
		assert.True(t, m.Equal(orig))
	})

	t.Run("Binary", func(t *testing.T) {
		data, err := orig.MarshalBinary()
		require.NoError(t, err)

		var m multiaddr
		require.NoError(t, m.UnmarshalBinary(data))
		assert.True(t, m.Equal(orig))
	})

	t.Run("Unmarshal invalid", func(t *testing.T) {
		var m multiaddr
		assert.Error(t, m.UnmarshalText([]byte("not-a-multiaddr")))
		assert.Error(t, m.UnmarshalJSON([]byte(`42`)))
		assert.Error(t, m.UnmarshalBinary([]byte{0x80}))
	})
}

// TestCast 测试免验证构造
func TestCast(t *testing.T) {
	b, err := stringToBytes("/ip4/10.0.0.1/tcp/9000")
	require.NoError(t, err)

	m := Cast(b)
	assert.Equal(t, "/ip4/10.0.0.1/tcp/9000", m.String())
}

package multiaddr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestProtocolWithName 测试按名称查找协议
func TestProtocolWithName(t *testing.T) {
	tests := []struct {
		name     string
		wantCode int
	}{
		{"ip4", P_IP4},
		{"ip6", P_IP6},
		{"tcp", P_TCP},
		{"udp", P_UDP},
		{"dns", P_DNS},
		{"dnsaddr", P_DNSADDR},
		{"p2p", P_P2P},
		{"ipfs", P_P2P}, // 历史别名
		{"unix", P_UNIX},
		{"quic-v1", P_QUIC_V1},
		{"webrtc-direct", P_WEBRTC_DIRECT},
		{"certhash", P_CERTHASH},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ProtocolWithName(tt.name)
			require.NotZero(t, p.Code, "protocol should be registered")
			assert.Equal(t, tt.wantCode, p.Code)
		})
	}
}

// TestProtocolWithNameMiss 测试未注册名称返回零值
func TestProtocolWithNameMiss(t *testing.T) {
	assert.Zero(t, ProtocolWithName("nosuchproto").Code)
	assert.Zero(t, ProtocolWithName("IP4").Code, "lookup is case sensitive")
	assert.Zero(t, ProtocolWithName("").Code)
}

// TestProtocolCodes 测试协议代码与 multicodec 表对齐
func TestProtocolCodes(t *testing.T) {
	// 互操作契约：代码值不得漂移
	assert.Equal(t, 0x0004, P_IP4)
	assert.Equal(t, 0x0006, P_TCP)
	assert.Equal(t, 0x0029, P_IP6)
	assert.Equal(t, 0x0111, P_UDP)
	assert.Equal(t, 0x01A5, P_P2P)
	assert.Equal(t, 0x0190, P_UNIX)
	assert.Equal(t, 0x01CC, P_QUIC)
	assert.Equal(t, 0x01CD, P_QUIC_V1)
	assert.Equal(t, 0x0118, P_WEBRTC_DIRECT)
	assert.Equal(t, 0x0119, P_WEBRTC)
	assert.Equal(t, 0x01D1, P_WEBTRANSPORT)
	assert.Equal(t, 0x01D2, P_CERTHASH)
}

// TestByCodeByName 测试带错误返回的查找
func TestByCodeByName(t *testing.T) {
	p, err := ByCode(P_TCP)
	require.NoError(t, err)
	assert.Equal(t, "tcp", p.Name)

	_, err = ByCode(0x7FFFFF)
	assert.ErrorIs(t, err, ErrProtocolNotFound)

	p, err = ByName("udp")
	require.NoError(t, err)
	assert.Equal(t, P_UDP, p.Code)

	_, err = ByName("bogus")
	assert.ErrorIs(t, err, ErrProtocolNotFound)
}

// TestRegistryConsistency 测试注册表自身一致性
func TestRegistryConsistency(t *testing.T) {
	for code, p := range protocols {
		assert.Equal(t, code, p.Code, "map key must match protocol code")
		assert.Equal(t, codeToVarint(code), p.VCode, "%s: VCode must be precomputed varint", p.Name)
		if p.Size != 0 {
			assert.NotNil(t, p.Transcoder, "%s: sized protocol needs a transcoder", p.Name)
		}
	}

	for name, p := range protocolsByName {
		if name == "ipfs" {
			continue
		}
		assert.Equal(t, name, p.Name, "map key must match protocol name")
		byCode, ok := protocols[p.Code]
		require.True(t, ok, "%s must also be registered by code", name)
		assert.Equal(t, p.Name, byCode.Name)
	}
}

// TestIsValidName 测试名称有效性判断
func TestIsValidName(t *testing.T) {
	assert.True(t, IsValidName("tcp"))
	assert.True(t, IsValidName("ipfs"))
	assert.False(t, IsValidName("tcp4"))
}

// TestProtocolsWithString 测试从字符串提取协议序列
func TestProtocolsWithString(t *testing.T) {
	names, err := ProtocolsWithString("/ip4/127.0.0.1/tcp/4001/p2p/QmcgpsyWgH8Y8ajJz1Cu72KnS5uo2Aa2LpzU7kinSupNKC")
	require.NoError(t, err)
	assert.Equal(t, []string{"ip4", "tcp", "p2p"}, names)

	names, err = ProtocolsWithString("")
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = ProtocolsWithString("/nosuchproto/1")
	assert.ErrorIs(t, err, ErrInvalidMultiaddr)
}

package multiaddr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"strings"
)

// Multiaddr 是自描述的网络地址接口
//
// 实现是不可变的：所有变换操作返回新实例。
type Multiaddr interface {
	// Bytes 返回二进制表示（不要修改返回的字节，可能是共享的）
	Bytes() []byte

	// String 返回字符串表示
	String() string

	// Equal 判断两个地址是否相等（按二进制表示比较）
	Equal(Multiaddr) bool

	// Protocols 返回地址包含的协议列表
	Protocols() []Protocol

	// Encapsulate 封装另一个地址（缓冲区拼接）
	Encapsulate(Multiaddr) Multiaddr

	// Decapsulate 解封装：移除从最右一次出现的 other 开始的所有组件。
	// 未找到时返回原地址。
	Decapsulate(Multiaddr) Multiaddr

	// DecapsulateString 同 Decapsulate，但接受字符串形式的地址片段
	//（如 "/udp"，不要求是完整可解析的多地址）。
	DecapsulateString(string) Multiaddr

	// DecapsulateCode 从右向左扫描组件，移除第一个匹配代码的组件
	// 及其之后的所有组件。未找到时返回原地址。
	DecapsulateCode(code int) Multiaddr

	// ValueForProtocol 获取指定协议代码的第一个值
	ValueForProtocol(code int) (string, error)

	// ToTCPAddr 转换为 TCP 地址
	ToTCPAddr() (*net.TCPAddr, error)

	// ToUDPAddr 转换为 UDP 地址
	ToUDPAddr() (*net.UDPAddr, error)
}

// multiaddr 是 Multiaddr 接口的实现
//
// 规范形态就是二进制缓冲区本身；字符串表示按需生成。
type multiaddr struct {
	bytes []byte
}

// NewMultiaddr 从字符串创建多地址
//
// 空字符串是合法输入，得到零组件多地址。
func NewMultiaddr(s string) (Multiaddr, error) {
	b, err := stringToBytes(s)
	if err != nil {
		return nil, err
	}
	return &multiaddr{bytes: b}, nil
}

// NewMultiaddrBytes 从字节创建多地址
func NewMultiaddrBytes(b []byte) (Multiaddr, error) {
	if err := validateBytes(b); err != nil {
		return nil, err
	}
	// 复制一份避免外部修改
	buf := make([]byte, len(b))
	copy(buf, b)
	return &multiaddr{bytes: buf}, nil
}

// Cast 从字节强制创建多地址（不验证）
// 警告：仅用于已知有效的地址
func Cast(b []byte) Multiaddr {
	return &multiaddr{bytes: b}
}

// Empty 返回零组件的空多地址
func Empty() Multiaddr {
	return &multiaddr{}
}

// Bytes 返回二进制表示
func (m *multiaddr) Bytes() []byte {
	return m.bytes
}

// String 返回字符串表示
func (m *multiaddr) String() string {
	s, err := bytesToString(m.bytes)
	if err != nil {
		// 构造时已验证，不应该发生
		panic(fmt.Errorf("multiaddr failed to convert to string: %w", err))
	}
	return s
}

// Equal 判断两个地址是否相等
func (m *multiaddr) Equal(other Multiaddr) bool {
	if other == nil {
		return false
	}
	return bytes.Equal(m.bytes, other.Bytes())
}

// Protocols 返回地址包含的协议列表
func (m *multiaddr) Protocols() []Protocol {
	var ps []Protocol
	b := m.bytes

	for len(b) > 0 {
		code, n, err := readVarintCode(b)
		if err != nil {
			// 构造时已验证，不应该发生
			panic(err)
		}
		b = b[n:]

		proto := ProtocolWithCode(code)
		if proto.Code == 0 {
			panic(fmt.Errorf("unknown protocol code: %d", code))
		}
		ps = append(ps, proto)

		// 跳过协议数据
		if proto.Size != 0 {
			prefixLen, dataLen, err := sizeForAddr(proto, b)
			if err != nil {
				panic(err)
			}
			b = b[prefixLen+dataLen:]
		}
	}

	return ps
}

// Encapsulate 封装另一个地址
//
// 两个合法缓冲区的拼接仍是合法缓冲区（组件之间没有跨组件状态），
// 所以封装就是纯拼接，永不失败。
func (m *multiaddr) Encapsulate(other Multiaddr) Multiaddr {
	if other == nil {
		return m
	}

	mb := m.bytes
	ob := other.Bytes()

	result := make([]byte, len(mb)+len(ob))
	copy(result, mb)
	copy(result[len(mb):], ob)

	return &multiaddr{bytes: result}
}

// Decapsulate 解封装（按字符串形式匹配最右出现）
func (m *multiaddr) Decapsulate(other Multiaddr) Multiaddr {
	if other == nil {
		return m
	}
	return m.DecapsulateString(other.String())
}

// DecapsulateString 解封装
//
// 在自身字符串形式中查找 s 的最右一次组件对齐出现；找到则返回其前缀，
// 否则返回原地址。组件对齐通过“前缀必须能重新解析”保证。
func (m *multiaddr) DecapsulateString(s string) Multiaddr {
	if s == "" {
		return m
	}

	ms := m.String()
	for idx := strings.LastIndex(ms, s); idx != -1; idx = strings.LastIndex(ms[:idx], s) {
		prefix := ms[:idx]
		if ma, err := NewMultiaddr(prefix); err == nil {
			return ma
		}
	}
	return m
}

// DecapsulateCode 按协议代码解封装
func (m *multiaddr) DecapsulateCode(code int) Multiaddr {
	b := m.bytes
	lastMatch := -1

	offset := 0
	for offset < len(b) {
		c, n, err := readVarintCode(b[offset:])
		if err != nil {
			break
		}
		if c == code {
			lastMatch = offset
		}

		proto := ProtocolWithCode(c)
		if proto.Code == 0 {
			break
		}

		prefixLen, dataLen, err := sizeForAddr(proto, b[offset+n:])
		if err != nil {
			break
		}
		offset += n + prefixLen + dataLen
	}

	if lastMatch < 0 {
		return m
	}
	return &multiaddr{bytes: b[:lastMatch]}
}

// ValueForProtocol 获取指定协议代码的第一个值
func (m *multiaddr) ValueForProtocol(code int) (string, error) {
	proto := ProtocolWithCode(code)
	if proto.Code == 0 {
		return "", fmt.Errorf("%w: code %d", ErrProtocolNotFound, code)
	}

	b := m.bytes

	for len(b) > 0 {
		currentCode, n, err := readVarintCode(b)
		if err != nil {
			return "", err
		}
		b = b[n:]

		currentProto := ProtocolWithCode(currentCode)
		if currentProto.Code == 0 {
			return "", fmt.Errorf("%w: unknown protocol code %d", ErrInvalidMultiaddr, currentCode)
		}

		// 无数据协议
		if currentProto.Size == 0 {
			if currentCode == code {
				// 找到了，但无值
				return "", nil
			}
			continue
		}

		prefixLen, dataLen, err := sizeForAddr(currentProto, b)
		if err != nil {
			return "", err
		}

		valueBytes := b[prefixLen : prefixLen+dataLen]
		b = b[prefixLen+dataLen:]

		if currentCode == code {
			return currentProto.Transcoder.BytesToString(valueBytes)
		}
	}

	return "", fmt.Errorf("%w: %s not in multiaddr", ErrProtocolNotFound, proto.Name)
}

// MarshalBinary 实现 encoding.BinaryMarshaler
func (m *multiaddr) MarshalBinary() ([]byte, error) {
	return m.Bytes(), nil
}

// UnmarshalBinary 实现 encoding.BinaryUnmarshaler
func (m *multiaddr) UnmarshalBinary(data []byte) error {
	ma, err := NewMultiaddrBytes(data)
	if err != nil {
		return err
	}
	*m = *(ma.(*multiaddr))
	return nil
}

// MarshalText 实现 encoding.TextMarshaler
func (m *multiaddr) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (m *multiaddr) UnmarshalText(data []byte) error {
	ma, err := NewMultiaddr(string(data))
	if err != nil {
		return err
	}
	*m = *(ma.(*multiaddr))
	return nil
}

// MarshalJSON 实现 json.Marshaler
func (m *multiaddr) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON 实现 json.Unmarshaler
func (m *multiaddr) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	ma, err := NewMultiaddr(s)
	if err != nil {
		return err
	}
	*m = *(ma.(*multiaddr))
	return nil
}

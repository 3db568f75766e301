package multiaddr

import (
	"fmt"
)

// Component 表示多地址的一个组件：(协议, 解码后的值)
type Component struct {
	protocol Protocol
	value    string
}

// Protocol 返回组件的协议
func (c Component) Protocol() Protocol {
	return c.protocol
}

// Value 返回组件的值（无数据协议为空字符串）
func (c Component) Value() string {
	return c.value
}

// Empty 判断是否为零值组件
func (c Component) Empty() bool {
	return c.protocol.Code == 0
}

// readComponent 从缓冲区头部读取一个组件
// 返回：(component, 消费的字节数, error)
func readComponent(b []byte) (Component, int, error) {
	code, n, err := readVarintCode(b)
	if err != nil {
		return Component{}, 0, err
	}

	proto := ProtocolWithCode(code)
	if proto.Code == 0 {
		return Component{}, 0, fmt.Errorf("%w: unknown protocol code %d", ErrInvalidMultiaddr, code)
	}

	offset := n
	var value string
	if proto.Size != 0 {
		prefixLen, dataLen, err := sizeForAddr(proto, b[offset:])
		if err != nil {
			return Component{}, 0, err
		}
		offset += prefixLen
		if len(b) < offset+dataLen {
			return Component{}, 0, fmt.Errorf("%w: protocol %s needs %d bytes, have %d",
				ErrTruncated, proto.Name, dataLen, len(b)-offset)
		}
		value, err = proto.Transcoder.BytesToString(b[offset : offset+dataLen])
		if err != nil {
			return Component{}, 0, err
		}
		offset += dataLen
	}

	return Component{protocol: proto, value: value}, offset, nil
}

// SplitFirst 分离多地址的第一个组件和剩余部分
//
// 空多地址返回 (零值组件, nil)。
func SplitFirst(m Multiaddr) (Component, Multiaddr) {
	if m == nil {
		return Component{}, nil
	}

	b := m.Bytes()
	if len(b) == 0 {
		return Component{}, nil
	}

	comp, n, err := readComponent(b)
	if err != nil {
		// 构造时已验证，不应该发生
		return Component{}, nil
	}

	var rest Multiaddr
	if n < len(b) {
		rest = &multiaddr{bytes: b[n:]}
	}
	return comp, rest
}

// SplitLast 分离多地址的最后一个组件
// 返回：(前面的剩余部分, 最后一个组件)
//
// 单组件地址的剩余部分为 nil；空多地址返回 (nil, 零值组件)。
func SplitLast(m Multiaddr) (Multiaddr, Component) {
	if m == nil {
		return nil, Component{}
	}

	b := m.Bytes()
	if len(b) == 0 {
		return nil, Component{}
	}

	var last Component
	lastOffset := 0
	offset := 0
	for offset < len(b) {
		comp, n, err := readComponent(b[offset:])
		if err != nil {
			return nil, Component{}
		}
		last = comp
		lastOffset = offset
		offset += n
	}

	if lastOffset == 0 {
		return nil, last
	}
	return &multiaddr{bytes: b[:lastOffset]}, last
}

// ForEach 依次访问多地址中的每个组件
// 回调函数返回 false 时停止遍历。遍历是惰性的，可重复调用。
func ForEach(m Multiaddr, fn func(Component) bool) {
	if m == nil {
		return
	}

	b := m.Bytes()
	for len(b) > 0 {
		comp, n, err := readComponent(b)
		if err != nil {
			return
		}
		if !fn(comp) {
			return
		}
		b = b[n:]
	}
}

// Components 返回多地址的全部组件
func Components(m Multiaddr) []Component {
	var cs []Component
	ForEach(m, func(c Component) bool {
		cs = append(cs, c)
		return true
	})
	return cs
}

// JoinAddrs 按顺序拼接多个多地址
func JoinAddrs(addrs ...Multiaddr) Multiaddr {
	var size int
	for _, a := range addrs {
		if a != nil {
			size += len(a.Bytes())
		}
	}

	buf := make([]byte, 0, size)
	for _, a := range addrs {
		if a != nil {
			buf = append(buf, a.Bytes()...)
		}
	}
	return &multiaddr{bytes: buf}
}

// Split 分离传输地址和 P2P 组件
// 输入：/ip4/1.2.3.4/tcp/4001/p2p/12D3KooW...
// 输出：/ip4/1.2.3.4/tcp/4001, 12D3KooW...
func Split(m Multiaddr) (transport Multiaddr, peerID string) {
	if m == nil {
		return nil, ""
	}

	b := m.Bytes()
	offset := 0
	for offset < len(b) {
		comp, n, err := readComponent(b[offset:])
		if err != nil {
			return m, ""
		}
		if comp.Protocol().Code == P_P2P {
			if offset == 0 {
				return nil, comp.Value()
			}
			return &multiaddr{bytes: b[:offset]}, comp.Value()
		}
		offset += n
	}
	return m, ""
}

// Join 合并传输地址和 P2P 组件
func Join(transport Multiaddr, peerID string) Multiaddr {
	if peerID == "" {
		return transport
	}

	p2pAddr, err := NewMultiaddr("/p2p/" + peerID)
	if err != nil {
		// 无法构造 P2P 组件时只返回传输地址
		return transport
	}

	if transport == nil {
		return p2pAddr
	}
	return transport.Encapsulate(p2pAddr)
}

// FilterAddrs 过滤多地址列表
func FilterAddrs(addrs []Multiaddr, filter func(Multiaddr) bool) []Multiaddr {
	result := make([]Multiaddr, 0, len(addrs))
	for _, addr := range addrs {
		if filter(addr) {
			result = append(result, addr)
		}
	}
	return result
}

// UniqueAddrs 去重多地址列表（保持顺序）
func UniqueAddrs(addrs []Multiaddr) []Multiaddr {
	seen := make(map[string]bool)
	result := make([]Multiaddr, 0, len(addrs))

	for _, addr := range addrs {
		s := string(addr.Bytes())
		if !seen[s] {
			seen[s] = true
			result = append(result, addr)
		}
	}
	return result
}

// HasProtocol 检查多地址是否包含指定协议
func HasProtocol(m Multiaddr, code int) bool {
	if m == nil {
		return false
	}

	found := false
	ForEach(m, func(c Component) bool {
		if c.Protocol().Code == code {
			found = true
			return false
		}
		return true
	})
	return found
}

// GetPeerID 从多地址中提取 PeerID（如果有）
func GetPeerID(m Multiaddr) (string, error) {
	if m == nil {
		return "", fmt.Errorf("nil multiaddr")
	}

	_, peerID := Split(m)
	if peerID == "" {
		return "", fmt.Errorf("%w: no p2p component", ErrProtocolNotFound)
	}
	return peerID, nil
}

// WithPeerID 为多地址添加或替换 PeerID
func WithPeerID(m Multiaddr, peerID string) (Multiaddr, error) {
	if m == nil {
		return nil, fmt.Errorf("nil multiaddr")
	}

	// 移除现有的 P2P 组件（如果有）
	transport, _ := Split(m)
	return Join(transport, peerID), nil
}

// WithoutPeerID 移除多地址中的 PeerID
func WithoutPeerID(m Multiaddr) Multiaddr {
	if m == nil {
		return nil
	}

	transport, _ := Split(m)
	return transport
}

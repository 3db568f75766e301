package multiaddr

import (
	"fmt"
	"net"
	"strconv"
)

// ipValue 取多地址中的 IP 值（先试 ip4，再试 ip6）
func (m *multiaddr) ipValue() (net.IP, error) {
	ipStr, err := m.ValueForProtocol(P_IP4)
	if err != nil {
		ipStr, err = m.ValueForProtocol(P_IP6)
		if err != nil {
			return nil, fmt.Errorf("%w: no IP address in multiaddr", ErrProtocolNotFound)
		}
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return nil, fmt.Errorf("%w: invalid IP address %q", ErrInvalidValue, ipStr)
	}
	return ip, nil
}

// portValue 取指定传输协议的端口值
func (m *multiaddr) portValue(code int) (int, error) {
	portStr, err := m.ValueForProtocol(code)
	if err != nil {
		return 0, err
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid port %q", ErrInvalidValue, portStr)
	}
	return port, nil
}

// ToTCPAddr 将多地址转换为 *net.TCPAddr
func (m *multiaddr) ToTCPAddr() (*net.TCPAddr, error) {
	ip, err := m.ipValue()
	if err != nil {
		return nil, err
	}

	port, err := m.portValue(P_TCP)
	if err != nil {
		return nil, err
	}

	return &net.TCPAddr{IP: ip, Port: port}, nil
}

// ToUDPAddr 将多地址转换为 *net.UDPAddr
func (m *multiaddr) ToUDPAddr() (*net.UDPAddr, error) {
	ip, err := m.ipValue()
	if err != nil {
		return nil, err
	}

	port, err := m.portValue(P_UDP)
	if err != nil {
		return nil, err
	}

	return &net.UDPAddr{IP: ip, Port: port}, nil
}

// ipProtoName 返回 IP 对应的协议名（ip4 或 ip6）及其规范文本
func ipProtoName(ip net.IP) (string, net.IP) {
	if ip4 := ip.To4(); ip4 != nil {
		return "ip4", ip4
	}
	return "ip6", ip
}

// FromTCPAddr 从 *net.TCPAddr 创建多地址
func FromTCPAddr(addr *net.TCPAddr) (Multiaddr, error) {
	if addr == nil {
		return nil, fmt.Errorf("nil TCP address")
	}

	proto, ip := ipProtoName(addr.IP)
	return NewMultiaddr(fmt.Sprintf("/%s/%s/tcp/%d", proto, ip, addr.Port))
}

// FromUDPAddr 从 *net.UDPAddr 创建多地址
func FromUDPAddr(addr *net.UDPAddr) (Multiaddr, error) {
	if addr == nil {
		return nil, fmt.Errorf("nil UDP address")
	}

	proto, ip := ipProtoName(addr.IP)
	return NewMultiaddr(fmt.Sprintf("/%s/%s/udp/%d", proto, ip, addr.Port))
}

// FromNetAddr 从 net.Addr 创建多地址
func FromNetAddr(addr net.Addr) (Multiaddr, error) {
	if addr == nil {
		return nil, fmt.Errorf("nil address")
	}

	switch a := addr.(type) {
	case *net.TCPAddr:
		return FromTCPAddr(a)
	case *net.UDPAddr:
		return FromUDPAddr(a)
	case *net.UnixAddr:
		return NewMultiaddr("/unix" + a.Name)
	default:
		return nil, fmt.Errorf("unsupported address type: %T", addr)
	}
}

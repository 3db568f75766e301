package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/miekg/dns"
)

// Backend 定义解析器所需的 DNS 传输能力
//
// 三类查询都感知 context，可被独立取消或超时。
// 域名不存在（NXDOMAIN）或无对应记录时返回空结果和 nil 错误；
// 只有真正的查询故障才返回 error。
type Backend interface {
	// QueryA 查询 A 记录（IPv4）
	QueryA(ctx context.Context, name string) ([]net.IP, error)

	// QueryAAAA 查询 AAAA 记录（IPv6）
	QueryAAAA(ctx context.Context, name string) ([]net.IP, error)

	// QueryTXT 查询 TXT 记录
	QueryTXT(ctx context.Context, name string) ([]string, error)
}

// netBackend 基于 *net.Resolver 的默认 Backend
type netBackend struct {
	r *net.Resolver
}

// NewNetBackend 创建基于 *net.Resolver 的 Backend
//
// r 为 nil 时使用 net.DefaultResolver。
func NewNetBackend(r *net.Resolver) Backend {
	if r == nil {
		r = net.DefaultResolver
	}
	return &netBackend{r: r}
}

func (b *netBackend) QueryA(ctx context.Context, name string) ([]net.IP, error) {
	return b.lookupIP(ctx, "ip4", name)
}

func (b *netBackend) QueryAAAA(ctx context.Context, name string) ([]net.IP, error) {
	return b.lookupIP(ctx, "ip6", name)
}

func (b *netBackend) lookupIP(ctx context.Context, network, name string) ([]net.IP, error) {
	ips, err := b.r.LookupIP(ctx, network, name)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return ips, nil
}

func (b *netBackend) QueryTXT(ctx context.Context, name string) ([]string, error) {
	records, err := b.r.LookupTXT(ctx, name)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return records, nil
}

// isNotFound 判断是否为 NXDOMAIN / 无记录
func isNotFound(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr) && dnsErr.IsNotFound
}

// ClientBackend 基于 miekg/dns 客户端的 Backend
//
// 直接向指定的 DNS 服务器发起查询，绕过系统解析器。
// 用于需要固定上游（如 "8.8.8.8:53"）的场景。
type ClientBackend struct {
	client *dns.Client
	server string
}

// NewClientBackend 创建直连指定服务器的 Backend
//
// server 格式: <ip>:<port>，例如 "8.8.8.8:53"。
func NewClientBackend(server string) *ClientBackend {
	return &ClientBackend{
		client: new(dns.Client),
		server: server,
	}
}

func (b *ClientBackend) QueryA(ctx context.Context, name string) ([]net.IP, error) {
	resp, err := b.exchange(ctx, name, dns.TypeA)
	if err != nil || resp == nil {
		return nil, err
	}

	var ips []net.IP
	for _, rr := range resp.Answer {
		if a, ok := rr.(*dns.A); ok {
			ips = append(ips, a.A)
		}
	}
	return ips, nil
}

func (b *ClientBackend) QueryAAAA(ctx context.Context, name string) ([]net.IP, error) {
	resp, err := b.exchange(ctx, name, dns.TypeAAAA)
	if err != nil || resp == nil {
		return nil, err
	}

	var ips []net.IP
	for _, rr := range resp.Answer {
		if aaaa, ok := rr.(*dns.AAAA); ok {
			ips = append(ips, aaaa.AAAA)
		}
	}
	return ips, nil
}

func (b *ClientBackend) QueryTXT(ctx context.Context, name string) ([]string, error) {
	resp, err := b.exchange(ctx, name, dns.TypeTXT)
	if err != nil || resp == nil {
		return nil, err
	}

	var records []string
	for _, rr := range resp.Answer {
		if txt, ok := rr.(*dns.TXT); ok {
			// 长 TXT 记录按 255 字节分段传输，拼回完整字符串
			records = append(records, strings.Join(txt.Txt, ""))
		}
	}
	return records, nil
}

// exchange 发起一次查询；NXDOMAIN 返回 (nil, nil)
func (b *ClientBackend) exchange(ctx context.Context, name string, qtype uint16) (*dns.Msg, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), qtype)
	m.RecursionDesired = true

	resp, _, err := b.client.ExchangeContext(ctx, m, b.server)
	if err != nil {
		return nil, err
	}
	switch resp.Rcode {
	case dns.RcodeSuccess:
		return resp, nil
	case dns.RcodeNameError:
		return nil, nil
	default:
		return nil, fmt.Errorf("dns query for %s failed: %s", name, dns.RcodeToString[resp.Rcode])
	}
}

// StaticBackend 返回固定记录的 Backend
//
// 用于测试和离线场景。键为完整查询名（TXT 记录含 _dnsaddr. 前缀）。
type StaticBackend struct {
	// A 记录：域名 → IPv4 列表
	A map[string][]net.IP

	// AAAA 记录：域名 → IPv6 列表
	AAAA map[string][]net.IP

	// TXT 记录：域名 → 记录列表
	TXT map[string][]string
}

func (b *StaticBackend) QueryA(ctx context.Context, name string) ([]net.IP, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]net.IP(nil), b.A[name]...), nil
}

func (b *StaticBackend) QueryAAAA(ctx context.Context, name string) ([]net.IP, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]net.IP(nil), b.AAAA[name]...), nil
}

func (b *StaticBackend) QueryTXT(ctx context.Context, name string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]string(nil), b.TXT[name]...), nil
}

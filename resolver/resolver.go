// Package resolver 实现 multiaddr 的 DNS 解析
//
// 支持 /dns、/dns4、/dns6 和 /dnsaddr 四种可解析协议：
//
//   - /dns4/<域名>/... 通过 A 记录解析为 /ip4/<ip>/...
//   - /dns6/<域名>/... 通过 AAAA 记录解析为 /ip6/<ip>/...
//   - /dns/<域名>/... 并发查询 A 和 AAAA，结果按 A 在前 AAAA 在后排列
//   - /dnsaddr/<域名>/... 查询 _dnsaddr.<域名> 的 TXT 记录，
//     取 "dnsaddr=" 前缀的完整 multiaddr；嵌套的 /dnsaddr/ 结果会
//     在最大递归深度内继续解析
//
// 解析后的每个候选地址都会带上原地址中被解析组件之后的剩余部分，
// 因此 /dns4/example.com/tcp/443 解析出的地址都保留 /tcp/443；
// dnsaddr 地址携带的 /p2p/<peerid> 后缀用于过滤 TXT 记录中
// 属于其它节点的地址。
//
// 核心解析器不做缓存，每次调用都重新查询 DNS；
// 需要缓存时用 CachingResolver 包装。
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	multiaddr "github.com/dep2p/go-multiaddr"
	"github.com/dep2p/go-multiaddr/internal/logger"
)

// 包级别日志实例
var log = logger.Logger("resolver")

// 常量定义
const (
	// DNSAddrPrefix dnsaddr TXT 记录前缀
	DNSAddrPrefix = "dnsaddr="

	// DNSAddrDomainPrefix dnsaddr 查询域名前缀
	DNSAddrDomainPrefix = "_dnsaddr."

	// DefaultTimeout 默认单次解析调用的总超时
	DefaultTimeout = 5 * time.Second

	// DefaultMaxDepth 默认最大递归深度
	DefaultMaxDepth = 32
)

// 错误定义
var (
	// ErrResolutionTimeout 解析调用整体超时
	ErrResolutionTimeout = errors.New("resolution timed out")

	// ErrRecursionLimit 超过 dnsaddr 最大递归深度
	ErrRecursionLimit = errors.New("max recursion depth exceeded")
)

// Resolver multiaddr DNS 解析器
//
// 零个或多个 Resolve 调用可并发进行；Resolver 自身无可变状态。
type Resolver struct {
	backend  Backend
	timeout  time.Duration
	maxDepth int
}

// Option 解析器配置选项
type Option func(*Resolver)

// WithBackend 设置 DNS 传输后端
func WithBackend(b Backend) Option {
	return func(r *Resolver) {
		r.backend = b
	}
}

// WithTimeout 设置单次解析调用的总超时
//
// 超时覆盖整个调用（含全部子查询与递归），而非每个子查询。
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.timeout = d
	}
}

// WithMaxDepth 设置 dnsaddr 最大递归深度
func WithMaxDepth(depth int) Option {
	return func(r *Resolver) {
		r.maxDepth = depth
	}
}

// New 创建解析器
//
// 默认使用系统解析器（net.DefaultResolver）、5 秒超时、递归深度 32。
func New(opts ...Option) *Resolver {
	r := &Resolver{
		backend:  NewNetBackend(nil),
		timeout:  DefaultTimeout,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// resolvable 判断协议是否可解析
func resolvable(code int) bool {
	switch code {
	case multiaddr.P_DNS, multiaddr.P_DNS4, multiaddr.P_DNS6, multiaddr.P_DNSADDR:
		return true
	default:
		return false
	}
}

// Resolve 解析多地址
//
// 非可解析地址（首组件不是 dns/dns4/dns6/dnsaddr）原样返回 [m]，
// 因此对已解析的地址幂等。域名不存在时返回空列表和 nil 错误；
// 任一子查询失败则整个调用失败，不返回部分结果。
func (r *Resolver) Resolve(ctx context.Context, m multiaddr.Multiaddr) ([]multiaddr.Multiaddr, error) {
	if m == nil {
		return nil, nil
	}

	// 整个调用共享一个超时
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	out, err := r.resolve(ctx, m, r.maxDepth)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrResolutionTimeout, m)
		}
		return nil, err
	}
	return out, nil
}

// resolve 按首组件分派一次解析
func (r *Resolver) resolve(ctx context.Context, m multiaddr.Multiaddr, depth int) ([]multiaddr.Multiaddr, error) {
	first, rest := multiaddr.SplitFirst(m)
	if !resolvable(first.Protocol().Code) {
		return []multiaddr.Multiaddr{m}, nil
	}

	// 移除可能的尾随点
	domain := strings.TrimSuffix(first.Value(), ".")
	if domain == "" {
		return []multiaddr.Multiaddr{m}, nil
	}

	if first.Protocol().Code == multiaddr.P_DNSADDR {
		return r.resolveDNSADDR(ctx, domain, rest, depth)
	}
	return r.resolveDNS(ctx, first.Protocol().Code, domain, rest)
}

// resolveDNS 解析 dns/dns4/dns6 地址
//
// dns 同时需要 A 和 AAAA 两个子查询，并发执行；
// 无论完成顺序如何，结果固定按 A 在前 AAAA 在后排列。
func (r *Resolver) resolveDNS(ctx context.Context, code int, domain string, rest multiaddr.Multiaddr) ([]multiaddr.Multiaddr, error) {
	var v4, v6 []net.IP

	g, gctx := errgroup.WithContext(ctx)
	if code == multiaddr.P_DNS || code == multiaddr.P_DNS4 {
		g.Go(func() error {
			ips, err := r.backend.QueryA(gctx, domain)
			v4 = ips
			return err
		})
	}
	if code == multiaddr.P_DNS || code == multiaddr.P_DNS6 {
		g.Go(func() error {
			ips, err := r.backend.QueryAAAA(gctx, domain)
			v6 = ips
			return err
		})
	}
	// 子查询失败使整个调用失败，不返回部分地址族
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debug("dns query done", "domain", domain, "a", len(v4), "aaaa", len(v6))

	var out []multiaddr.Multiaddr
	for _, ip := range v4 {
		out = appendIP(out, "ip4", ip, rest)
	}
	for _, ip := range v6 {
		out = appendIP(out, "ip6", ip, rest)
	}
	return out, nil
}

// appendIP 将 IP 组装为候选地址并补上剩余部分
func appendIP(out []multiaddr.Multiaddr, proto string, ip net.IP, rest multiaddr.Multiaddr) []multiaddr.Multiaddr {
	ma, err := multiaddr.NewMultiaddr("/" + proto + "/" + ip.String())
	if err != nil {
		// 后端返回了错误地址族的记录，忽略
		return out
	}
	if rest != nil {
		ma = ma.Encapsulate(rest)
	}
	return append(out, ma)
}

// resolveDNSADDR 解析 dnsaddr 地址
func (r *Resolver) resolveDNSADDR(ctx context.Context, domain string, rest multiaddr.Multiaddr, depth int) ([]multiaddr.Multiaddr, error) {
	if depth <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrRecursionLimit, domain)
	}

	records, err := r.backend.QueryTXT(ctx, DNSAddrDomainPrefix+domain)
	if err != nil {
		return nil, err
	}

	log.Debug("dnsaddr query done", "domain", domain, "records", len(records))

	// 原地址携带的 peer id（如果有）
	var peerID string
	if rest != nil {
		peerID, _ = multiaddr.GetPeerID(rest)
	}

	var out []multiaddr.Multiaddr
	for _, rec := range records {
		if !strings.HasPrefix(rec, DNSAddrPrefix) {
			continue
		}

		cand, err := multiaddr.NewMultiaddr(strings.TrimPrefix(rec, DNSAddrPrefix))
		if err != nil {
			log.Debug("skipping invalid dnsaddr record", "record", rec, "err", err)
			continue
		}

		// 嵌套 dnsaddr：在深度限制内继续解析
		expanded := []multiaddr.Multiaddr{cand}
		if firstCode(cand) == multiaddr.P_DNSADDR {
			expanded, err = r.resolve(ctx, cand, depth-1)
			if err != nil {
				return nil, err
			}
		}

		for _, e := range expanded {
			if keep := attachSuffix(e, rest, peerID); keep != nil {
				out = append(out, keep)
			}
		}
	}
	return out, nil
}

// attachSuffix 对 dnsaddr 候选地址执行过滤和重组
//
// TXT 记录可能枚举多个节点的地址：携带不同 peer id 的候选被丢弃；
// 已含原后缀的候选保持原样；无 peer id 的候选补上原地址的剩余部分。
func attachSuffix(cand multiaddr.Multiaddr, rest multiaddr.Multiaddr, peerID string) multiaddr.Multiaddr {
	if rest == nil {
		return cand
	}

	candPeer, _ := multiaddr.GetPeerID(cand)
	if candPeer != "" {
		if peerID != "" && candPeer != peerID {
			return nil
		}
		// 带 peer id 的候选已是完整地址
		return cand
	}
	if strings.HasSuffix(cand.String(), rest.String()) {
		return cand
	}
	return cand.Encapsulate(rest)
}

// firstCode 返回首组件的协议代码
func firstCode(m multiaddr.Multiaddr) int {
	c, _ := multiaddr.SplitFirst(m)
	return c.Protocol().Code
}

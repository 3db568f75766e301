package resolver

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	multiaddr "github.com/dep2p/go-multiaddr"
)

// 缓存默认参数
const (
	// DefaultCacheSize 默认缓存条目数
	DefaultCacheSize = 128

	// DefaultCacheTTL 默认缓存有效期
	DefaultCacheTTL = 5 * time.Minute
)

// CachingResolver 带 TTL 缓存的解析器装饰器
//
// 核心 Resolver 每次调用都重新查询 DNS；需要缓存时用本类型包装。
// 只缓存成功结果（含空结果），错误不缓存。
type CachingResolver struct {
	inner *Resolver
	cache *expirable.LRU[string, []multiaddr.Multiaddr]
}

// NewCachingResolver 创建缓存装饰器
//
// size <= 0 时使用 DefaultCacheSize，ttl <= 0 时使用 DefaultCacheTTL。
func NewCachingResolver(inner *Resolver, size int, ttl time.Duration) *CachingResolver {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachingResolver{
		inner: inner,
		cache: expirable.NewLRU[string, []multiaddr.Multiaddr](size, nil, ttl),
	}
}

// Resolve 解析多地址，优先命中缓存
func (c *CachingResolver) Resolve(ctx context.Context, m multiaddr.Multiaddr) ([]multiaddr.Multiaddr, error) {
	if m == nil {
		return nil, nil
	}

	key := string(m.Bytes())
	if out, ok := c.cache.Get(key); ok {
		// 返回副本，调用方可以随意改动切片
		return append([]multiaddr.Multiaddr(nil), out...), nil
	}

	out, err := c.inner.Resolve(ctx, m)
	if err != nil {
		return nil, err
	}

	c.cache.Add(key, out)
	return append([]multiaddr.Multiaddr(nil), out...), nil
}

// Purge 清空缓存
func (c *CachingResolver) Purge() {
	c.cache.Purge()
}

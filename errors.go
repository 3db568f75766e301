package multiaddr

import "errors"

// 错误分类
//
// 解析与编解码函数通过 fmt.Errorf("%w", ...) 包装下列哨兵错误，
// 调用方用 errors.Is 判断类别。
var (
	// ErrInvalidMultiaddr 多地址字符串或二进制结构非法
	ErrInvalidMultiaddr = errors.New("invalid multiaddr")

	// ErrProtocolNotFound 注册表中不存在该协议，或多地址中不含该协议
	ErrProtocolNotFound = errors.New("protocol not found")

	// ErrInvalidValue 协议值非法（词法正确但取值不合法）
	ErrInvalidValue = errors.New("invalid protocol value")

	// ErrTruncated 二进制数据不足以容纳声明的负载
	ErrTruncated = errors.New("truncated multiaddr")

	// ErrMalformedVarint varint 编码非法（未终止或溢出）
	ErrMalformedVarint = errors.New("malformed varint")
)

package multiaddr

import (
	"bytes"
	"fmt"
	"strings"
)

// stringToBytes 将多地址字符串转换为二进制格式
//
// 空字符串（以及只含斜杠的字符串）是合法的零组件多地址，编码为空缓冲区。
func stringToBytes(s string) ([]byte, error) {
	// 去除尾部斜杠
	s = strings.TrimRight(s, "/")

	if len(s) == 0 {
		return nil, nil
	}

	if !strings.HasPrefix(s, "/") {
		return nil, fmt.Errorf("%w: must begin with '/': %q", ErrInvalidMultiaddr, s)
	}

	var buf bytes.Buffer

	// 跳过开头的空元素
	parts := strings.Split(s, "/")[1:]

	// 解析每个协议及其值
	for len(parts) > 0 {
		name := parts[0]
		proto := ProtocolWithName(name)
		if proto.Code == 0 {
			return nil, fmt.Errorf("%w: unknown protocol %q", ErrInvalidMultiaddr, name)
		}

		// 写入协议代码（varint）
		buf.Write(proto.VCode)
		parts = parts[1:]

		// 无数据协议，继续下一个
		if proto.Size == 0 {
			continue
		}

		// 协议需要值
		if len(parts) < 1 {
			return nil, fmt.Errorf("%w: protocol %s requires a value", ErrInvalidMultiaddr, name)
		}

		// 路径协议贪婪消费剩余所有部分（包括其中的 '/'）
		if proto.Path {
			parts = []string{"/" + strings.Join(parts, "/")}
		}

		// 使用 transcoder 转换值
		value := parts[0]
		valueBytes, err := proto.Transcoder.StringToBytes(value)
		if err != nil {
			return nil, fmt.Errorf("failed to convert value for protocol %s: %w", name, err)
		}

		// 变长协议写入长度前缀
		if proto.Size == LengthPrefixedVarSize {
			buf.Write(uvarintEncode(uint64(len(valueBytes))))
		}

		buf.Write(valueBytes)
		parts = parts[1:]
	}

	return buf.Bytes(), nil
}

// bytesToString 将二进制格式的多地址转换为字符串
//
// 空缓冲区对应零组件多地址，字符串表示为 ""。
func bytesToString(b []byte) (string, error) {
	var sb strings.Builder

	for len(b) > 0 {
		// 读取协议代码
		code, n, err := readVarintCode(b)
		if err != nil {
			return "", fmt.Errorf("%w: failed to read protocol code: %v", ErrInvalidMultiaddr, err)
		}
		b = b[n:]

		proto := ProtocolWithCode(code)
		if proto.Code == 0 {
			return "", fmt.Errorf("%w: unknown protocol code %d", ErrInvalidMultiaddr, code)
		}

		// 写入协议名称
		sb.WriteString("/")
		sb.WriteString(proto.Name)

		// 无数据协议，继续
		if proto.Size == 0 {
			continue
		}

		// 读取数据大小
		prefixLen, size, err := sizeForAddr(proto, b)
		if err != nil {
			return "", fmt.Errorf("failed to read length for protocol %s: %w", proto.Name, err)
		}
		b = b[prefixLen:]

		// 验证数据长度
		if len(b) < size {
			return "", fmt.Errorf("%w: protocol %s needs %d bytes, have %d", ErrTruncated, proto.Name, size, len(b))
		}

		valueBytes := b[:size]
		b = b[size:]

		// 转换为字符串
		valueStr, err := proto.Transcoder.BytesToString(valueBytes)
		if err != nil {
			return "", fmt.Errorf("failed to convert bytes for protocol %s: %w", proto.Name, err)
		}

		// 路径协议的值自带前导 '/'
		if proto.Path && strings.HasPrefix(valueStr, "/") {
			sb.WriteString(valueStr)
		} else {
			sb.WriteString("/")
			sb.WriteString(valueStr)
		}
	}

	return sb.String(), nil
}

// validateBytes 验证二进制多地址的格式
//
// 缓冲区必须被组件序列精确耗尽；残缺的尾部组件视为错误。
func validateBytes(b []byte) error {
	for len(b) > 0 {
		// 读取协议代码
		code, n, err := readVarintCode(b)
		if err != nil {
			return fmt.Errorf("%w: invalid protocol code: %v", ErrInvalidMultiaddr, err)
		}
		b = b[n:]

		proto := ProtocolWithCode(code)
		if proto.Code == 0 {
			return fmt.Errorf("%w: unknown protocol code %d", ErrInvalidMultiaddr, code)
		}

		// 无数据协议，继续
		if proto.Size == 0 {
			continue
		}

		// 确定数据大小
		prefixLen, size, err := sizeForAddr(proto, b)
		if err != nil {
			return fmt.Errorf("failed to read length for protocol %s: %w", proto.Name, err)
		}
		b = b[prefixLen:]

		// 验证数据长度
		if len(b) < size {
			return fmt.Errorf("%w: protocol %s needs %d bytes, have %d", ErrTruncated, proto.Name, size, len(b))
		}

		// 验证数据
		if err := proto.Transcoder.ValidateBytes(b[:size]); err != nil {
			return fmt.Errorf("invalid data for protocol %s: %w", proto.Name, err)
		}

		b = b[size:]
	}

	return nil
}

// sizeForAddr 计算协议数据部分的大小
// 返回：(length_prefix_bytes, data_bytes, error)
func sizeForAddr(proto Protocol, b []byte) (int, int, error) {
	if proto.Size == 0 {
		return 0, 0, nil
	}

	if proto.Size == LengthPrefixedVarSize {
		// 读取长度前缀
		length, n, err := uvarintDecode(b)
		if err != nil {
			return 0, 0, err
		}
		return n, int(length), nil
	}

	// 固定大小（位转字节）
	return 0, proto.Size / 8, nil
}

package multiaddr

import (
	"encoding/base32"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mr-tron/base58"
)

// Transcoder 接口定义了协议数据的编解码方法
type Transcoder interface {
	// StringToBytes 将字符串值转换为字节
	StringToBytes(string) ([]byte, error)

	// BytesToString 将字节转换为字符串值
	BytesToString([]byte) (string, error)

	// ValidateBytes 验证字节数据是否有效
	ValidateBytes([]byte) error
}

// NewTranscoderFromFunctions 从函数创建 Transcoder
func NewTranscoderFromFunctions(
	s2b func(string) ([]byte, error),
	b2s func([]byte) (string, error),
	val func([]byte) error,
) Transcoder {
	return &transcoderWrapper{s2b, b2s, val}
}

type transcoderWrapper struct {
	stringToBytes func(string) ([]byte, error)
	bytesToString func([]byte) (string, error)
	validateBytes func([]byte) error
}

func (t *transcoderWrapper) StringToBytes(s string) ([]byte, error) {
	return t.stringToBytes(s)
}

func (t *transcoderWrapper) BytesToString(b []byte) (string, error) {
	return t.bytesToString(b)
}

func (t *transcoderWrapper) ValidateBytes(b []byte) error {
	if t.validateBytes == nil {
		return nil
	}
	return t.validateBytes(b)
}

// IP4 Transcoder
var TranscoderIP4 = NewTranscoderFromFunctions(ip4StringToBytes, ip4BytesToString, nil)

func ip4StringToBytes(s string) ([]byte, error) {
	if strings.Contains(s, ":") {
		return nil, fmt.Errorf("%w: not an ip4 addr: %s", ErrInvalidValue, s)
	}
	ip := net.ParseIP(s).To4()
	if ip == nil {
		return nil, fmt.Errorf("%w: failed to parse ip4 addr: %s", ErrInvalidValue, s)
	}
	return ip, nil
}

func ip4BytesToString(b []byte) (string, error) {
	if len(b) != 4 {
		return "", fmt.Errorf("%w: invalid ip4 length: %d", ErrInvalidValue, len(b))
	}
	return net.IP(b).String(), nil
}

// IP6 Transcoder
var TranscoderIP6 = NewTranscoderFromFunctions(ip6StringToBytes, ip6BytesToString, nil)

func ip6StringToBytes(s string) ([]byte, error) {
	// zone id 不进入 16 字节负载，须以 /ip6zone/<zone>/ip6/<addr> 表示
	if strings.Contains(s, "%") {
		return nil, fmt.Errorf("%w: ip6 zone must be given as /ip6zone/: %s", ErrInvalidValue, s)
	}
	ip := net.ParseIP(s).To16()
	if ip == nil {
		return nil, fmt.Errorf("%w: failed to parse ip6 addr: %s", ErrInvalidValue, s)
	}
	return ip, nil
}

func ip6BytesToString(b []byte) (string, error) {
	if len(b) != 16 {
		return "", fmt.Errorf("%w: invalid ip6 length: %d", ErrInvalidValue, len(b))
	}
	ip := net.IP(b)
	// IPv4-mapped 地址保持 ::ffff: 前缀形式，避免缩写成 ip4 文本
	if ip4 := ip.To4(); ip4 != nil {
		return "::ffff:" + ip4.String(), nil
	}
	return ip.String(), nil
}

// IP6Zone Transcoder
var TranscoderIP6Zone = NewTranscoderFromFunctions(ip6ZoneStringToBytes, ip6ZoneBytesToString, ip6ZoneValidateBytes)

func ip6ZoneStringToBytes(s string) ([]byte, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("%w: empty ip6zone", ErrInvalidValue)
	}
	if strings.Contains(s, "/") {
		return nil, fmt.Errorf("%w: IPv6 zone ID contains '/': %s", ErrInvalidValue, s)
	}
	return []byte(s), nil
}

func ip6ZoneBytesToString(b []byte) (string, error) {
	if len(b) == 0 {
		return "", fmt.Errorf("%w: empty ip6zone", ErrInvalidValue)
	}
	return string(b), nil
}

func ip6ZoneValidateBytes(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("%w: empty ip6zone", ErrInvalidValue)
	}
	// '/' 会破坏 multiaddr 字符串解析
	if strings.Contains(string(b), "/") {
		return fmt.Errorf("%w: IPv6 zone ID contains '/': %s", ErrInvalidValue, string(b))
	}
	return nil
}

// IPCIDR Transcoder
var TranscoderIPCIDR = NewTranscoderFromFunctions(ipCIDRStringToBytes, ipCIDRBytesToString, nil)

func ipCIDRStringToBytes(s string) ([]byte, error) {
	ipMask, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid cidr mask: %s", ErrInvalidValue, s)
	}
	return []byte{byte(ipMask)}, nil
}

func ipCIDRBytesToString(b []byte) (string, error) {
	if len(b) != 1 {
		return "", fmt.Errorf("%w: invalid cidr length: %d", ErrInvalidValue, len(b))
	}
	return strconv.Itoa(int(b[0])), nil
}

// Port Transcoder (TCP/UDP/SCTP/DCCP)
var TranscoderPort = NewTranscoderFromFunctions(portStringToBytes, portBytesToString, nil)

func portStringToBytes(s string) ([]byte, error) {
	// 十进制、范围 [0, 65535]
	port, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse port %q: %v", ErrInvalidValue, s, err)
	}
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, uint16(port))
	return b, nil
}

func portBytesToString(b []byte) (string, error) {
	if len(b) != 2 {
		return "", fmt.Errorf("%w: invalid port length: %d", ErrInvalidValue, len(b))
	}
	return strconv.Itoa(int(binary.BigEndian.Uint16(b))), nil
}

// DNS Transcoder (DNS/DNS4/DNS6/DNSADDR)
var TranscoderDNS = NewTranscoderFromFunctions(dnsStringToBytes, dnsBytesToString, dnsValidateBytes)

func dnsStringToBytes(s string) ([]byte, error) {
	if err := dnsValidateBytes([]byte(s)); err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func dnsBytesToString(b []byte) (string, error) {
	if err := dnsValidateBytes(b); err != nil {
		return "", err
	}
	return string(b), nil
}

func dnsValidateBytes(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("%w: empty DNS name", ErrInvalidValue)
	}
	if !utf8.Valid(b) {
		return fmt.Errorf("%w: DNS name is not valid UTF-8", ErrInvalidValue)
	}
	if i := strings.IndexByte(string(b), '/'); i >= 0 {
		return fmt.Errorf("%w: DNS name contains '/': %s", ErrInvalidValue, string(b))
	}
	return nil
}

// P2P Transcoder (PeerID)
//
// PeerID 文本形式是 base58btc 编码的 multihash（CIDv0 形式，如 Qm.../12D3KooW...）。
// 二进制形式即 multihash 本体：varint(hash code) + varint(digest len) + digest。
var TranscoderP2P = NewTranscoderFromFunctions(p2pStringToBytes, p2pBytesToString, p2pValidateBytes)

func p2pStringToBytes(s string) ([]byte, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("%w: empty peer ID", ErrInvalidValue)
	}
	m, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: peer ID is not valid base58: %v", ErrInvalidValue, err)
	}
	if err := validateMultihash(m); err != nil {
		return nil, err
	}
	return m, nil
}

func p2pBytesToString(b []byte) (string, error) {
	if err := validateMultihash(b); err != nil {
		return "", err
	}
	return base58.Encode(b), nil
}

func p2pValidateBytes(b []byte) error {
	return validateMultihash(b)
}

// validateMultihash 校验 multihash 结构：
// varint(hash code) + varint(digest len) + digest，长度必须严格匹配。
func validateMultihash(b []byte) error {
	if len(b) < 2 {
		return fmt.Errorf("%w: multihash too short", ErrInvalidValue)
	}
	_, n, err := uvarintDecode(b)
	if err != nil {
		return fmt.Errorf("%w: bad multihash code: %v", ErrInvalidValue, err)
	}
	length, n2, err := uvarintDecode(b[n:])
	if err != nil {
		return fmt.Errorf("%w: bad multihash length: %v", ErrInvalidValue, err)
	}
	if uint64(len(b)-n-n2) != length {
		return fmt.Errorf("%w: multihash digest length mismatch: declared %d, have %d",
			ErrInvalidValue, length, len(b)-n-n2)
	}
	return nil
}

// Unix Transcoder（路径协议）
var TranscoderUnix = NewTranscoderFromFunctions(unixStringToBytes, unixBytesToString, unixValidateBytes)

func unixStringToBytes(s string) ([]byte, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("%w: empty unix path", ErrInvalidValue)
	}
	return []byte(s), nil
}

func unixBytesToString(b []byte) (string, error) {
	if err := unixValidateBytes(b); err != nil {
		return "", err
	}
	return string(b), nil
}

func unixValidateBytes(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("%w: empty unix path", ErrInvalidValue)
	}
	if !utf8.Valid(b) {
		return fmt.Errorf("%w: unix path is not valid UTF-8", ErrInvalidValue)
	}
	return nil
}

// Onion Transcoder
var TranscoderOnion = NewTranscoderFromFunctions(onionStringToBytes, onionBytesToString, nil)

func onionStringToBytes(s string) ([]byte, error) {
	host, port, err := onionParts(s, 10)
	if err != nil {
		return nil, err
	}

	// 组装：10 字节地址 + 2 字节端口
	result := make([]byte, 12)
	copy(result[:10], host)
	binary.BigEndian.PutUint16(result[10:], port)
	return result, nil
}

func onionBytesToString(b []byte) (string, error) {
	if len(b) != 12 {
		return "", fmt.Errorf("%w: invalid onion length: %d", ErrInvalidValue, len(b))
	}
	addr := strings.ToLower(base32.StdEncoding.EncodeToString(b[:10]))
	port := binary.BigEndian.Uint16(b[10:])
	return fmt.Sprintf("%s:%d", addr, port), nil
}

// Onion3 Transcoder
var TranscoderOnion3 = NewTranscoderFromFunctions(onion3StringToBytes, onion3BytesToString, nil)

func onion3StringToBytes(s string) ([]byte, error) {
	host, port, err := onionParts(s, 35)
	if err != nil {
		return nil, err
	}

	// 组装：35 字节地址 + 2 字节端口
	result := make([]byte, 37)
	copy(result[:35], host)
	binary.BigEndian.PutUint16(result[35:], port)
	return result, nil
}

func onion3BytesToString(b []byte) (string, error) {
	if len(b) != 37 {
		return "", fmt.Errorf("%w: invalid onion3 length: %d", ErrInvalidValue, len(b))
	}
	addr := strings.ToLower(base32.StdEncoding.EncodeToString(b[:35]))
	port := binary.BigEndian.Uint16(b[35:])
	return fmt.Sprintf("%s:%d", addr, port), nil
}

// onionParts 解析 <base32host>:<port> 形式的 onion 地址
func onionParts(s string, hostLen int) ([]byte, uint16, error) {
	addr := strings.Split(s, ":")
	if len(addr) != 2 {
		return nil, 0, fmt.Errorf("%w: onion address must be <host>:<port>: %s", ErrInvalidValue, s)
	}

	// onion 主机名是 base32 编码（可带 .onion 后缀）
	onionHost := strings.TrimSuffix(addr[0], ".onion")
	host, err := base32.StdEncoding.DecodeString(strings.ToUpper(onionHost))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to decode onion host: %v", ErrInvalidValue, err)
	}
	if len(host) != hostLen {
		return nil, 0, fmt.Errorf("%w: invalid onion host length: %d", ErrInvalidValue, len(host))
	}

	port, err := strconv.ParseUint(addr[1], 10, 16)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to parse onion port: %v", ErrInvalidValue, err)
	}
	if port == 0 {
		return nil, 0, fmt.Errorf("%w: onion port must be > 0", ErrInvalidValue)
	}
	return host, uint16(port), nil
}

// Garlic64 Transcoder
var TranscoderGarlic64 = NewTranscoderFromFunctions(garlic64StringToBytes, garlic64BytesToString, nil)

func garlic64StringToBytes(s string) ([]byte, error) {
	// I2P 地址，base32 编码
	b, err := base32.StdEncoding.DecodeString(strings.ToUpper(s))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode garlic64: %v", ErrInvalidValue, err)
	}
	return b, nil
}

func garlic64BytesToString(b []byte) (string, error) {
	return strings.ToLower(base32.StdEncoding.EncodeToString(b)), nil
}

// Garlic32 Transcoder
var TranscoderGarlic32 = NewTranscoderFromFunctions(garlic32StringToBytes, garlic32BytesToString, nil)

func garlic32StringToBytes(s string) ([]byte, error) {
	// I2P 短地址，base32 编码
	b, err := base32.StdEncoding.DecodeString(strings.ToUpper(s))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode garlic32: %v", ErrInvalidValue, err)
	}
	return b, nil
}

func garlic32BytesToString(b []byte) (string, error) {
	return strings.ToLower(base32.StdEncoding.EncodeToString(b)), nil
}

// CertHash Transcoder
//
// 文本形式是 multibase base64url（前缀 'u'，无填充），负载是 multihash。
var TranscoderCertHash = NewTranscoderFromFunctions(certHashStringToBytes, certHashBytesToString, certHashValidateBytes)

func certHashStringToBytes(s string) ([]byte, error) {
	if len(s) < 2 || s[0] != 'u' {
		return nil, fmt.Errorf("%w: certhash must be multibase base64url ('u' prefix): %s", ErrInvalidValue, s)
	}
	b, err := base64.RawURLEncoding.DecodeString(s[1:])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode certhash: %v", ErrInvalidValue, err)
	}
	if err := validateMultihash(b); err != nil {
		return nil, err
	}
	return b, nil
}

func certHashBytesToString(b []byte) (string, error) {
	if err := validateMultihash(b); err != nil {
		return "", err
	}
	return "u" + base64.RawURLEncoding.EncodeToString(b), nil
}

func certHashValidateBytes(b []byte) error {
	return validateMultihash(b)
}

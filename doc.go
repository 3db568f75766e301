// Package multiaddr 提供多地址（Multiaddr）的实现
//
// Multiaddr 是一种自描述、可组合的网络地址格式，支持多种传输协议和地址类型。
//
// # 基本用法
//
//	// 创建多地址
//	ma, err := multiaddr.NewMultiaddr("/ip4/127.0.0.1/tcp/4001")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// 获取字符串表示
//	fmt.Println(ma.String()) // /ip4/127.0.0.1/tcp/4001
//
//	// 获取二进制表示
//	bytes := ma.Bytes()
//
//	// 封装另一个地址
//	p2p, _ := multiaddr.NewMultiaddr("/p2p/QmYyQSo1c1Ym7orWxLYvCrM2EmxFTANf8wXmmE7DWjhx5N")
//	full := ma.Encapsulate(p2p)
//
//	// 解封装（按协议代码）
//	base := full.DecapsulateCode(multiaddr.P_P2P)
//
// # 地址格式
//
// 字符串格式：
//
//	/ip4/127.0.0.1/tcp/4001
//	/ip6/::1/tcp/8080
//	/ip4/192.168.1.1/udp/4001/quic-v1
//	/dns4/example.com/tcp/443/tls
//	/dnsaddr/bootstrap.example.com/p2p/QmYyQSo1c1Ym7orWxLYvCrM2EmxFTANf8wXmmE7DWjhx5N
//	/unix/var/run/node.sock
//
// 二进制格式是各组件的串联，每个组件为：
//
//	varint(protocol_code) + (固定长度数据 | varint(length) + 数据)
//
// 两种表示之间可以无损互转；多地址的同一性由二进制表示定义。
// 零组件的空多地址是合法的，其字符串表示为 ""。
//
// # 不可变性
//
// Multiaddr 一经构造即不可变。Encapsulate / Decapsulate / DecapsulateCode
// 等变换操作总是返回新实例，因此多地址可以在并发环境下安全共享。
//
// # 协议注册表
//
// 所有协议代码与 multiformats/multicodec 表完全对齐：
// https://github.com/multiformats/multicodec/blob/master/table.csv
//
// 注册表在包初始化时构建，之后只读，不支持运行时注册。
//
// # DNS 解析
//
// /dns、/dns4、/dns6、/dnsaddr 地址的解析由子包
// github.com/dep2p/go-multiaddr/resolver 提供。
package multiaddr

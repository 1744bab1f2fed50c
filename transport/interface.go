// Package transport 提供了网络传输层的双工通道抽象
// 供 networkmanager 的各类 socket 包装类型复用
//
// 主要组件:
//   - Duplex: 双向通道泛型接口
//
// 该包不关心连接、超时、序列化或 topic，这些由 iomanager 和
// networkmanager 负责；transport 只负责把底层 socket 的读写
// goroutine 套进统一的 "写入 channel / 读出 channel / 就绪信号" 形状
package transport

import "context"

// Duplex 是双向 channel 通道的泛型接口
// 类型参数:
//   - I: 写入方向的消息类型（发往底层 socket）
//   - O: 读出方向的消息类型（来自底层 socket）
type Duplex[I, O any] interface {
	// SendChan 返回发送消息的 channel
	// 向该 channel 写入的值会被异步写往底层 socket
	SendChan() chan<- I

	// RecvChan 返回接收消息的 channel
	// 从该 channel 读取的值来自底层 socket
	RecvChan() <-chan O

	// Ready 返回就绪信号 channel
	// 当底层 socket 资源可用时，该 channel 会被关闭
	Ready() <-chan struct{}

	// Run 启动双工通道的发送循环，直到 ctx 取消、写出出错或等待就绪超时
	// 接收方向不经过 Run，由底层 socket 包装调用 Produce 填充
	// 通常应在独立的 goroutine 中调用
	Run(ctx context.Context) error

	// Close 关闭双工通道并释放资源，可重复调用
	Close() error
}

// Package transport 提供了双工通道的默认实现
package transport

import (
	"context"
	"sync"
	"time"

	"github.com/gcrone/iomanager/configs"
	"github.com/gcrone/iomanager/utils/errors"
)

const (
	// readyTimeout 是等待底层 socket 就绪的最大时间
	readyTimeout = 10 * time.Second
)

// DuplexImpl 是 Duplex 接口的泛型实现
// 类型参数:
//   - I: 写入方向的消息类型
//   - O: 读出方向的消息类型
//
// 工作原理:
//   - 使用 channel 进行异步消息传递
//   - writer 函数负责把一条消息真正写往底层 socket，由具体 socket 包装注入
//   - ready channel 用于同步底层资源就绪状态
//   - send/recv channel 提供缓冲的消息队列
type DuplexImpl[I, O any] struct {
	writer     func(msg I) error // 实际写入函数（由外部设置）
	ready      chan struct{}     // 就绪信号 channel
	send       chan I            // 发送消息队列
	recv       chan O            // 接收消息队列
	closeOnce  sync.Once         // 确保只关闭一次
	writerOnce sync.Once         // 确保只设置一次 writer
}

// SendChan 返回发送消息的 channel
func (d *DuplexImpl[I, O]) SendChan() chan<- I {
	return d.send
}

// RecvChan 返回接收消息的 channel
func (d *DuplexImpl[I, O]) RecvChan() <-chan O {
	return d.recv
}

// Ready 返回就绪信号 channel
func (d *DuplexImpl[I, O]) Ready() <-chan struct{} {
	return d.ready
}

// SetWriter 设置实际的写入函数，只能调用一次
// 调用后会关闭 ready channel 通知资源就绪
func (d *DuplexImpl[I, O]) SetWriter(writer func(msg I) error) {
	d.writerOnce.Do(func() {
		d.writer = writer
		close(d.ready)
	})
}

// Produce 把收到的一条消息放入接收队列，由底层 socket 包装调用
func (d *DuplexImpl[I, O]) Produce(msg O) {
	d.recv <- msg
}

// Run 启动双工通道的发送循环：等待就绪后不断从 send channel 取出消息并写出
func (d *DuplexImpl[I, O]) Run(ctx context.Context) error {
	select {
	case <-time.After(readyTimeout):
		return errors.New("transport: timed out waiting for socket to become ready")
	case <-d.Ready():
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-d.send:
			if err := d.writer(msg); err != nil {
				return err
			}
		}
	}
}

// Close 关闭双工通道并释放资源，可重复调用但只会真正关闭一次
func (d *DuplexImpl[I, O]) Close() error {
	d.closeOnce.Do(func() {
		if d.recv != nil {
			close(d.recv)
		}
	})
	return nil
}

// NewDuplex 创建一个新的双工通道；创建后需调用 SetWriter 再调用 Run
func NewDuplex[I, O any]() *DuplexImpl[I, O] {
	bufferSize := configs.ChannelBufferSize
	return &DuplexImpl[I, O]{
		ready: make(chan struct{}),
		send:  make(chan I, bufferSize),
		recv:  make(chan O, bufferSize),
	}
}

// Command iomanager-demo wires a queue connection and an inproc network
// connection through the façade and sends one message across each of
// them every second until SIGINT or SIGTERM arrives, the way the teacher's cmd/main.go stood up a platform and
// waited on a signal to shut it down cleanly.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gcrone/iomanager/configs"
	"github.com/gcrone/iomanager/iomanager"
	"github.com/gcrone/iomanager/utils"
)

type reading struct {
	ID     string
	Sensor string
	Value  float64
}

func main() {
	netAddr := flag.String("addr", "inproc://iomanager-demo", "network connection address")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetLevel(logrus.InfoLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connections := []iomanager.ConnectionId{
		{
			UID:         "readings.local",
			ServiceType: iomanager.Queue,
			URI:         fmt.Sprintf("queue://ring:%d", configs.QueueCapacity),
		},
		{
			UID:         "readings.tx",
			ServiceType: iomanager.NetSender,
			URI:         *netAddr,
		},
		{
			UID:         "readings.rx",
			ServiceType: iomanager.NetReceiver,
			URI:         *netAddr,
		},
	}

	if err := iomanager.Configure(connections); err != nil {
		logrus.Fatalf("failed to configure iomanager: %v", err)
	}
	defer iomanager.Reset()

	queueTx, err := iomanager.GetSender[reading](iomanager.ConnectionRef{Name: "queue-tx", UID: "readings.local"})
	if err != nil {
		logrus.Fatalf("failed to get queue sender: %v", err)
	}
	queueRxRef := iomanager.ConnectionRef{Name: "queue-rx", UID: "readings.local"}
	if err := iomanager.AddCallback(queueRxRef, func(r reading) {
		logrus.Infof("queue callback delivered: %+v", r)
	}); err != nil {
		logrus.Fatalf("failed to add queue callback: %v", err)
	}
	defer iomanager.RemoveCallback[reading](queueRxRef)

	// The PULL socket binds the inproc endpoint, so it must be resolved
	// before the PUSH socket that connects to it.
	netRx, err := iomanager.GetReceiver[reading](iomanager.ConnectionRef{Name: "net-rx", UID: "readings.rx"})
	if err != nil {
		logrus.Fatalf("failed to get network receiver: %v", err)
	}
	netTx, err := iomanager.GetSender[reading](iomanager.ConnectionRef{Name: "net-tx", UID: "readings.tx"})
	if err != nil {
		logrus.Fatalf("failed to get network sender: %v", err)
	}

	go func() {
		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				return
			default:
			}
			r := reading{ID: utils.GenID(), Sensor: "demo", Value: float64(i)}
			if err := queueTx.Send(r, iomanager.Block, ""); err != nil {
				logrus.Warnf("queue send failed: %v", err)
			}
			if err := netTx.Send(r, 100*time.Millisecond, ""); err != nil {
				logrus.Warnf("network send failed: %v", err)
			}
			time.Sleep(time.Second)
		}
	}()

	go func() {
		for {
			r, err := netRx.Receive(iomanager.Block)
			if err != nil {
				return
			}
			logrus.Infof("network receive: %+v", r)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logrus.Infof("received signal: %v, shutting down...", sig)
	cancel()
}

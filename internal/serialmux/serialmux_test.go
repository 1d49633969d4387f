package serialmux

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSendCommandAppendsNewline(t *testing.T) {
	port := NewTestableSerialPort()
	mux := NewSerialMux(port)

	if err := mux.SendCommand("V:base_rotation=40"); err != nil {
		t.Fatalf("SendCommand: %v", err)
	}
	if got := string(port.GetWrittenData()); got != "V:base_rotation=40\n" {
		t.Errorf("written = %q, want trailing newline", got)
	}

	port.Reset()
	if err := mux.SendCommand("STOP\n"); err != nil {
		t.Fatalf("SendCommand: %v", err)
	}
	if got := string(port.GetWrittenData()); got != "STOP\n" {
		t.Errorf("written = %q, newline doubled", got)
	}
}

func TestSendCommandPropagatesWriteError(t *testing.T) {
	port := NewTestableSerialPort()
	port.WriteError = errors.New("bus fault")
	mux := NewSerialMux(port)

	if err := mux.SendCommand("PING"); err == nil {
		t.Fatal("expected write error")
	}
}

func TestMonitorFansOutLines(t *testing.T) {
	port := NewTestableSerialPort()
	port.BlockReads = true
	mux := NewSerialMux(port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go mux.Monitor(ctx)

	id, ch := mux.Subscribe()
	defer mux.Unsubscribe(id)

	// Fan-out drops lines when the subscriber is not ready, so keep feeding
	// until one lands.
	timeout := time.After(5 * time.Second)
	for {
		port.AddReadData([]byte("47,12.5,1830\n"))
		select {
		case line := <-ch:
			if line != "47,12.5,1830" {
				t.Fatalf("line = %q", line)
			}
			return
		case <-timeout:
			t.Fatal("subscriber never received a line")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestMonitorReturnsOnContextCancel(t *testing.T) {
	port := NewTestableSerialPort()
	port.BlockReads = true
	mux := NewSerialMux(port)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- mux.Monitor(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Monitor returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Monitor did not return after cancel")
	}
}

func TestMonitorReturnsReadError(t *testing.T) {
	port := NewTestableSerialPort()
	port.ReadError = errors.New("device unplugged")
	mux := NewSerialMux(port)

	err := mux.Monitor(context.Background())
	if err == nil || !strings.Contains(err.Error(), "device unplugged") {
		t.Errorf("Monitor returned %v, want read error", err)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	mux := NewSerialMux(NewTestableSerialPort())

	id, ch := mux.Subscribe()
	mux.Unsubscribe(id)

	if _, ok := <-ch; ok {
		t.Error("channel still open after unsubscribe")
	}
	// Unsubscribing twice is harmless.
	mux.Unsubscribe(id)
}

func TestCloseClosesSubscribersAndPort(t *testing.T) {
	port := NewTestableSerialPort()
	mux := NewSerialMux(port)

	_, ch1 := mux.Subscribe()
	_, ch2 := mux.Subscribe()

	if err := mux.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, ok := <-ch1; ok {
		t.Error("first subscriber channel still open after close")
	}
	if _, ok := <-ch2; ok {
		t.Error("second subscriber channel still open after close")
	}
	if !port.Closed {
		t.Error("port not closed")
	}
}

func TestSubscribeIDsAreUnique(t *testing.T) {
	mux := NewSerialMux(NewTestableSerialPort())
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, _ := mux.Subscribe()
		if seen[id] {
			t.Fatalf("duplicate subscriber ID %q", id)
		}
		seen[id] = true
	}
}

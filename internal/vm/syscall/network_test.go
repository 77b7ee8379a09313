package syscall

import (
	"testing"

	"github.com/snowlang/snow/internal/vm"
)

func TestSocketListenConnectAcceptSendRecv(t *testing.T) {
	tab := New()

	listenSock, err := tab.Invoke("SOCKET", []vm.Value{int64(0), int64(0)})
	if err != nil {
		t.Fatalf("SOCKET: %v", err)
	}
	if _, err := tab.Invoke("BIND", []vm.Value{listenSock, "127.0.0.1:0"}); err != nil {
		t.Fatalf("BIND: %v", err)
	}
	if _, err := tab.Invoke("LISTEN", []vm.Value{listenSock}); err != nil {
		t.Fatalf("LISTEN: %v", err)
	}

	addr, err := tab.Invoke("GETSOCKNAME", []vm.Value{listenSock})
	if err != nil {
		t.Fatalf("GETSOCKNAME: %v", err)
	}

	accepted := make(chan vm.Value, 1)
	acceptErr := make(chan error, 1)
	go func() {
		v, err := tab.Invoke("ACCEPT", []vm.Value{listenSock})
		accepted <- v
		acceptErr <- err
	}()

	clientSock, err := tab.Invoke("SOCKET", []vm.Value{int64(0), int64(0)})
	if err != nil {
		t.Fatalf("SOCKET (client): %v", err)
	}
	if _, err := tab.Invoke("CONNECT", []vm.Value{clientSock, addr.(string)}); err != nil {
		t.Fatalf("CONNECT: %v", err)
	}

	serverSock := <-accepted
	if err := <-acceptErr; err != nil {
		t.Fatalf("ACCEPT: %v", err)
	}
	if serverSock.(int64) == -1 {
		t.Fatal("ACCEPT reported failure")
	}

	if _, err := tab.Invoke("SEND", []vm.Value{clientSock, bytesToArray([]byte("ping"))}); err != nil {
		t.Fatalf("SEND: %v", err)
	}
	got, err := tab.Invoke("RECV", []vm.Value{serverSock, int64(16)})
	if err != nil {
		t.Fatalf("RECV: %v", err)
	}
	if string(arrayToBytes(got.(*vm.Array))) != "ping" {
		t.Fatalf("RECV = %q, want %q", string(arrayToBytes(got.(*vm.Array))), "ping")
	}

	if _, err := tab.Invoke("SHUTDOWN", []vm.Value{clientSock}); err != nil {
		t.Fatalf("SHUTDOWN client: %v", err)
	}
	if _, err := tab.Invoke("SHUTDOWN", []vm.Value{serverSock}); err != nil {
		t.Fatalf("SHUTDOWN server: %v", err)
	}
	if _, err := tab.Invoke("SHUTDOWN", []vm.Value{listenSock}); err != nil {
		t.Fatalf("SHUTDOWN listener: %v", err)
	}
}

func TestListenBeforeBindReportsInvalidArgument(t *testing.T) {
	tab := New()
	sock, err := tab.Invoke("SOCKET", []vm.Value{int64(0), int64(0)})
	if err != nil {
		t.Fatalf("SOCKET: %v", err)
	}
	got, err := tab.Invoke("LISTEN", []vm.Value{sock})
	if err != nil {
		t.Fatalf("LISTEN: %v", err)
	}
	if got.(int64) != -1 {
		t.Fatalf("LISTEN before BIND = %v, want -1", got)
	}
	if tab.errno != ErrInvalidArgument {
		t.Fatalf("errno = %d, want ErrInvalidArgument", tab.errno)
	}
}

func TestSendWithoutConnectionReportsInvalidArgument(t *testing.T) {
	tab := New()
	sock, err := tab.Invoke("SOCKET", []vm.Value{int64(0), int64(0)})
	if err != nil {
		t.Fatalf("SOCKET: %v", err)
	}
	got, err := tab.Invoke("SEND", []vm.Value{sock, bytesToArray([]byte("x"))})
	if err != nil {
		t.Fatalf("SEND: %v", err)
	}
	if got.(int64) != -1 {
		t.Fatalf("SEND on an unconnected socket = %v, want -1", got)
	}
	if tab.errno != ErrInvalidArgument {
		t.Fatalf("errno = %d, want ErrInvalidArgument", tab.errno)
	}
}

func TestGetAddrInfoResolvesLocalhost(t *testing.T) {
	tab := New()
	got, err := tab.Invoke("GETADDRINFO", []vm.Value{"localhost"})
	if err != nil {
		t.Fatalf("GETADDRINFO: %v", err)
	}
	if len(got.(*vm.Array).Elems) == 0 {
		t.Fatal("expected at least one resolved address for localhost")
	}
}

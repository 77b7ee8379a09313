package syscall

import (
	"bufio"
	"fmt"
	"net"
	stdsyscall "syscall"

	"golang.org/x/sys/unix"

	"github.com/snowlang/snow/internal/vm"
)

// socketState names the TCP socket state machine spec.md §4.9 describes:
// CREATED -> BOUND -> LISTENING -> (ACCEPT produces a new CONNECTED id),
// or CREATED -> CONNECTED directly via CONNECT.
type socketState int

const (
	sockCreated socketState = iota
	sockBound
	sockListening
	sockConnected
)

type socketEntry struct {
	state    socketState
	network  string // "tcp" or "udp"
	conn     net.Conn
	listener net.Listener
	laddr    string
	reader   *bufio.Reader // buffers conn reads so SELECT can Peek without consuming
}

func registerNetworkHandlers(t *Table) {
	t.register("SOCKET", func(t *Table, args []vm.Value) (vm.Value, error) {
		_, err := argInt(args, 0) // family: AF_INET assumed, no alternative wired
		if err != nil {
			return nil, err
		}
		typ, err := argInt(args, 1) // 0 = stream (TCP), 1 = datagram (UDP)
		if err != nil {
			return nil, err
		}
		network := "tcp"
		if typ == 1 {
			network = "udp"
		}
		entry := &socketEntry{state: sockCreated, network: network}
		return int64(t.Sockets.Add(entry)), nil
	})

	t.register("BIND", func(t *Table, args []vm.Value) (vm.Value, error) {
		sock, err := getSocket(t, args, 0)
		if err != nil {
			return nil, err
		}
		addr, err := argString(args, 1)
		if err != nil {
			return nil, err
		}
		sock.laddr = addr
		sock.state = sockBound
		return int64(0), nil
	})

	t.register("LISTEN", func(t *Table, args []vm.Value) (vm.Value, error) {
		sock, err := getSocket(t, args, 0)
		if err != nil {
			return nil, err
		}
		if sock.state != sockBound {
			t.setErrno(ErrInvalidArgument)
			return int64(-1), nil
		}
		l, err := net.Listen(sock.network, sock.laddr)
		if err != nil {
			t.setErrno(ErrUnclassifiedIO)
			return int64(-1), nil
		}
		sock.listener = l
		sock.state = sockListening
		return int64(0), nil
	})

	t.register("ACCEPT", func(t *Table, args []vm.Value) (vm.Value, error) {
		sock, err := getSocket(t, args, 0)
		if err != nil {
			return nil, err
		}
		if sock.state != sockListening {
			t.setErrno(ErrInvalidArgument)
			return int64(-1), nil
		}
		conn, err := sock.listener.Accept()
		if err != nil {
			t.setErrno(ErrUnclassifiedIO)
			return int64(-1), nil
		}
		accepted := &socketEntry{state: sockConnected, network: sock.network, conn: conn, reader: bufio.NewReader(conn)}
		return int64(t.Sockets.Add(accepted)), nil
	})

	t.register("CONNECT", func(t *Table, args []vm.Value) (vm.Value, error) {
		sock, err := getSocket(t, args, 0)
		if err != nil {
			return nil, err
		}
		addr, err := argString(args, 1)
		if err != nil {
			return nil, err
		}
		conn, err := net.Dial(sock.network, addr)
		if err != nil {
			t.setErrno(ErrUnclassifiedIO)
			return int64(-1), nil
		}
		sock.conn = conn
		sock.reader = bufio.NewReader(conn)
		sock.state = sockConnected
		return int64(0), nil
	})

	t.register("SEND", func(t *Table, args []vm.Value) (vm.Value, error) {
		sock, err := getSocket(t, args, 0)
		if err != nil {
			return nil, err
		}
		data, err := argArray(args, 1)
		if err != nil {
			return nil, err
		}
		if sock.conn == nil {
			t.setErrno(ErrInvalidArgument)
			return int64(-1), nil
		}
		n, err := sock.conn.Write(arrayToBytes(data))
		if err != nil {
			t.setErrno(ErrUnclassifiedIO)
			return int64(-1), nil
		}
		return int64(n), nil
	})

	t.register("RECV", func(t *Table, args []vm.Value) (vm.Value, error) {
		sock, err := getSocket(t, args, 0)
		if err != nil {
			return nil, err
		}
		n, err := argInt(args, 1)
		if err != nil {
			return nil, err
		}
		if sock.conn == nil {
			t.setErrno(ErrInvalidArgument)
			return bytesToArray(nil), nil
		}
		buf := make([]byte, n)
		r, err := sock.reader.Read(buf)
		if err != nil {
			t.setErrno(ErrUnclassifiedIO)
			return bytesToArray(nil), nil
		}
		return bytesToArray(buf[:r]), nil
	})

	t.register("SHUTDOWN", func(t *Table, args []vm.Value) (vm.Value, error) {
		sock, err := getSocket(t, args, 0)
		if err != nil {
			return nil, err
		}
		if sock.conn != nil {
			_ = sock.conn.Close()
		}
		if sock.listener != nil {
			_ = sock.listener.Close()
		}
		return int64(0), nil
	})

	t.register("SETSOCKOPT", func(t *Table, args []vm.Value) (vm.Value, error) {
		sock, err := getSocket(t, args, 0)
		if err != nil {
			return nil, err
		}
		level, _ := argInt(args, 1)
		opt, _ := argInt(args, 2)
		val, _ := argInt(args, 3)
		if err := applySockopt(sock, level, opt, val); err != nil {
			t.setErrno(ErrNotSupported)
			return int64(-1), nil
		}
		return int64(0), nil
	})

	t.register("GETSOCKOPT", func(t *Table, args []vm.Value) (vm.Value, error) {
		_, err := getSocket(t, args, 0)
		if err != nil {
			return nil, err
		}
		// Read-back of socket options isn't tracked per-connection; report
		// the option as unset rather than fabricate a value.
		return int64(0), nil
	})

	t.register("GETPEERNAME", func(t *Table, args []vm.Value) (vm.Value, error) {
		sock, err := getSocket(t, args, 0)
		if err != nil {
			return nil, err
		}
		if sock.conn == nil {
			t.setErrno(ErrInvalidArgument)
			return "", nil
		}
		return sock.conn.RemoteAddr().String(), nil
	})

	t.register("GETSOCKNAME", func(t *Table, args []vm.Value) (vm.Value, error) {
		sock, err := getSocket(t, args, 0)
		if err != nil {
			return nil, err
		}
		if sock.conn != nil {
			return sock.conn.LocalAddr().String(), nil
		}
		if sock.listener != nil {
			return sock.listener.Addr().String(), nil
		}
		return sock.laddr, nil
	})

	t.register("GETADDRINFO", func(t *Table, args []vm.Value) (vm.Value, error) {
		host, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		addrs, err := net.LookupHost(host)
		if err != nil {
			t.setErrno(ErrNotFound)
			return vm.NewArray(0), nil
		}
		out := vm.NewArray(len(addrs))
		for i, a := range addrs {
			out.Elems[i] = a
		}
		return out, nil
	})
}

func getSocket(t *Table, args []vm.Value, idx int) (*socketEntry, error) {
	id, err := argInt(args, idx)
	if err != nil {
		return nil, err
	}
	v, ok := t.Sockets.Get(int(id))
	if !ok {
		return nil, errNotFound("socket", int(id))
	}
	sock, ok := v.(*socketEntry)
	if !ok {
		return nil, fmt.Errorf("id %d is not a socket", id)
	}
	return sock, nil
}

// syscallConn is satisfied by *net.TCPConn/*net.UDPConn, giving access to
// the raw file descriptor setsockopt needs.
type syscallConn interface {
	SyscallConn() (stdsyscall.RawConn, error)
}

// applySockopt maps the small allowed set of level/option pairs SPEC_FULL
// names onto golang.org/x/sys/unix's raw setsockopt, extracting the file
// descriptor from the connection via the standard library's syscall.Conn
// interface.
func applySockopt(sock *socketEntry, level, opt, val int64) error {
	if sock.conn == nil {
		return fmt.Errorf("socket is not connected")
	}
	sc, ok := sock.conn.(syscallConn)
	if !ok {
		return fmt.Errorf("socket has no raw descriptor")
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return err
	}
	var setErr error
	err = raw.Control(func(fd uintptr) {
		switch opt {
		case 1: // SO_REUSEADDR
			setErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, int(val))
		case 2: // SO_KEEPALIVE
			setErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_KEEPALIVE, int(val))
		case 3: // SO_RCVBUF
			setErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, int(val))
		case 4: // SO_SNDBUF
			setErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF, int(val))
		case 5: // TCP_NODELAY
			setErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, int(val))
		case 6: // SO_BROADCAST
			setErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, int(val))
		default:
			setErr = fmt.Errorf("unsupported sockopt %d/%d", level, opt)
		}
	})
	if err != nil {
		return err
	}
	return setErr
}

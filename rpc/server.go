package rpc

import (
	"net"
	"net/http"
	"net/rpc"

	"github.com/mihkeltiks/mpi-probe/logger"
)

type Registrator func(any) error

// Server wraps a net/rpc server instance with its listener, so several
// servers can coexist within one process.
type Server struct {
	listener net.Listener
	rpc      *rpc.Server
}

// InitializeServer starts an rpc server on the given address
// (host:port, port 0 picks a free one) and begins serving in a
// background goroutine. The provided callback registers the services
// exposed to nodes.
func InitializeServer(address string, registerComponents func(Registrator)) (*Server, error) {
	rpcServer := rpc.NewServer()

	// register components
	registerComponents(rpcServer.Register)

	// register heartbeat
	rpcServer.Register(new(Health))

	listener, err := net.Listen("tcp", address)
	if err != nil {
		logger.Error("rpc server listen error: %v", err)
		return nil, err
	}

	logger.Verbose("rpc server listening on address: %v", listener.Addr())

	// The rpc server handles the CONNECT handshake itself when mounted
	// on the default rpc path, which keeps rpc.DialHTTP on the client
	// side working against an instance server.
	mux := http.NewServeMux()
	mux.Handle(rpc.DefaultRPCPath, rpcServer)

	server := &Server{listener: listener, rpc: rpcServer}

	go http.Serve(listener, mux)

	return server, nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

func (s *Server) Stop() {
	s.listener.Close()
}

type Health int

func (h *Health) Heartbeat(args *int, reply *int) error {
	return nil
}

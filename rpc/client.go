package rpc

import (
	"errors"
	"fmt"
	"net/rpc"

	"github.com/mihkeltiks/mpi-probe/logger"
)

type RPCClient struct {
	connection *rpc.Client
	address    string
}

func Connect(serverAddress string) (*RPCClient, error) {
	connection, err := rpc.DialHTTP("tcp", serverAddress)
	if err != nil {
		logger.Error("Failed to connect to rpc server at %v", serverAddress)
		return nil, err
	}

	client := RPCClient{
		connection: connection,
		address:    serverAddress,
	}

	return &client, nil
}

func (r *RPCClient) Disconnect() {
	if r.connection != nil {
		err := r.connection.Close()
		if err == nil {
			r.connection = nil
		}
	} else {
		logger.Debug("Already disconnected from rpc server at %v", r.address)
	}
}

func (r *RPCClient) Call(methodName string, args any, reply any) error {
	if r.connection == nil {
		return errors.New("not connected to rpc server")
	}

	return r.connection.Call(methodName, args, reply)
}

func (r *RPCClient) Heartbeat() {
	err := r.Call("Health.Heartbeat", new(int), new(int))

	if err != nil {
		panic(fmt.Sprintf("Heartbeat error: %v", err))
	}

	logger.Debug("Heartbeat ok (server %v)", r.address)
}

// Package monitor streams job lifecycle events to an external viewer
// over a websocket.
package monitor

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mihkeltiks/mpi-probe/logger"
)

var connection *websocket.Conn

const ADDRESS = "localhost:3496"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func SendMessage(value interface{}) {
	if connection == nil {
		return
	}

	err := connection.WriteJSON(value)
	if err != nil {
		logger.Warn("Error sending ws message: %v", err)
	}
}

func handler() func(http.ResponseWriter, *http.Request) {

	return func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("ws upgrade error: %v", err)
			return
		}

		if connection == nil {
			logger.Verbose("viewer connected to websocket")
		}

		connection = c
		defer c.Close()

		// the stream is one-directional; reading only to notice the
		// viewer going away
		for {
			_, _, err := c.ReadMessage()
			if err != nil {
				logger.Verbose("viewer disconnected from websocket")
				connection = nil
				break
			}
		}
	}
}

func InitServer() {
	http.HandleFunc("/", handler())

	logger.Verbose("starting websocket server for the job monitor")
	go http.ListenAndServe(ADDRESS, nil)
}

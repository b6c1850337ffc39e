// Package server exposes the option pricing library over HTTP as a small
// JSON service.
package server

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"
)

const (
	DefaultListenAddr = ":5000"
	ListenAddrEnvVar  = "OPTIONS_LISTEN_ADDR"
)

// Server wires the pricing handlers onto a gin engine. Handlers build a
// fresh pricer per request, so one Server serves concurrent requests.
type Server struct {
	engine *gin.Engine
}

func NewServer() *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	self := &Server{
		engine: engine,
	}
	engine.GET("/healthz", self.handleHealthz)
	engine.POST("/price", self.handlePrice)
	engine.POST("/implied_vol", self.handleImpliedVol)
	return self
}

// Engine returns the underlying gin engine, mainly so tests can drive the
// handlers without a listening socket.
func (self *Server) Engine() *gin.Engine {
	return self.engine
}

func (self *Server) Run(listenAddr string) error {
	if listenAddr == "" {
		listenAddr = DefaultListenAddr
	}
	msg := fmt.Sprintf("Pricing service listening on %s", listenAddr)
	glog.Info(msg)
	return self.engine.Run(listenAddr)
}

// ListenAddrFromEnv reads the listen address from the environment, falling
// back to the default when unset.
func ListenAddrFromEnv() string {
	listenAddr := os.Getenv(ListenAddrEnvVar)
	if listenAddr == "" {
		return DefaultListenAddr
	}
	return listenAddr
}

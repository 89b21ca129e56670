package utils

import (
	"fmt"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraceServerServesAndDrainsOnTerm(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "pong")
	})

	srv := &graceServer{
		Server:       &http.Server{Handler: mux},
		isGraceful:   false,
		signalChan:   make(chan os.Signal, 1),
		shutdownChan: make(chan struct{}),
	}

	ln, err := srv.getListener("127.0.0.1:0")
	require.NoError(t, err)
	srv.listener = ln

	go srv.handleSignals()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	srv.signalChan <- syscall.SIGTERM

	select {
	case <-srv.shutdownChan:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not drain after SIGTERM")
	}
	assert.ErrorIs(t, <-serveErr, http.ErrServerClosed)
}

func TestGraceListenerAdoptionRequiresInheritedFd(t *testing.T) {
	srv := &graceServer{isGraceful: true}
	// No fd 3 was passed down in a test binary, so adoption must fail
	// instead of silently binding a new socket.
	_, err := srv.getListener("127.0.0.1:0")
	assert.Error(t, err)
}

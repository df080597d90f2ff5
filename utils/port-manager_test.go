package utils

import (
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPortAvailable(t *testing.T) {
	// Test available port (dynamic allocation)
	assert.True(t, IsPortAvailable("127.0.0.1", 0), "Port 0 should always be available (OS picks free port)")
}

func TestIsPortAvailable_PortInUse(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "Failed to create test listener")
	defer listener.Close()

	addr := listener.Addr().(*net.TCPAddr)
	assert.False(t, IsPortAvailable("127.0.0.1", addr.Port), "Port %d should be unavailable", addr.Port)
}

func TestNormalizeListenAddr(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		want    string
		wantErr bool
	}{
		{"bare port", "12100", "localhost:12100", false},
		{"colon port", ":12100", "localhost:12100", false},
		{"host and port", "0.0.0.0:13000", "0.0.0.0:13000", false},
		{"empty", "", "", true},
		{"not a port", "abc", "", true},
		{"port out of range", "localhost:70000", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeListenAddr(tt.addr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnsureListenAddrFree(t *testing.T) {
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	port := listener.Addr().(*net.TCPAddr).Port
	assert.Error(t, EnsureListenAddrFree(fmt.Sprintf("localhost:%d", port)))
	assert.NoError(t, EnsureListenAddrFree("localhost:0"))
}

package ports_test

import (
	"testing"

	mocks "github.com/rafaelq80/livraria-react-sub000/internal/mocks/auth"
	"github.com/rafaelq80/livraria-react-sub000/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.AuthClient = (*mocks.MockAuthClient)(nil)
	var _ ports.SnapshotStore = (*mocks.MemorySnapshotStore)(nil)
	var _ ports.Notifier = (*mocks.RecordingNotifier)(nil)
}

// Package mocks provides gomock implementations of the session ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	client := mocks.NewMockAuthClient(ctrl)
//	client.EXPECT().Login(gomock.Any(), gomock.Any()).Return(identity, nil)
package mocks

// Generate mock for AuthClient interface from internal/ports package.
// This creates MockAuthClient with methods for all AuthClient interface methods:
// Login
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=auth_client_mock.go github.com/rafaelq80/livraria-react-sub000/internal/ports AuthClient

// Generate mock for SnapshotStore interface from internal/ports package.
// This creates MockSnapshotStore with methods for all SnapshotStore interface methods:
// Load, Save, Clear
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=snapshot_store_mock.go github.com/rafaelq80/livraria-react-sub000/internal/ports SnapshotStore

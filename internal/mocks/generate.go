// Package mocks provides gomock implementations of the service ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	lists := mocks.NewMockListStore(ctrl)
//	lists.EXPECT().ListItems(gomock.Any(), "accessi", gomock.Any()).Return(items, nil)
package mocks

// Generate mock for TokenProvider interface from internal/ports package.
// This creates MockTokenProvider with methods: AcquireTokenSilent, LoginRedirect
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=token_provider_mock.go github.com/target/totem-api/internal/ports TokenProvider

// Generate mock for ListStore interface from internal/ports package.
// This creates MockListStore with methods: ListItems, CreateItem, UpdateItemFields, FindLists
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=list_store_mock.go github.com/target/totem-api/internal/ports ListStore

// Generate mock for GraphDirectory interface from internal/ports package.
// This creates MockGraphDirectory with methods: Me, SearchSites, SiteByPath, SearchUsers, UserPhoto
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=graph_directory_mock.go github.com/target/totem-api/internal/ports GraphDirectory

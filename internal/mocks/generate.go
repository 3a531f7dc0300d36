// Package mocks provides mock implementations for testing the applyforge engine.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the port interfaces in internal/core. The generated files are checked in; to
// regenerate after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	repo := mocks.NewMockRecordRepository(ctrl)
//	repo.EXPECT().GetByID(gomock.Any(), "id").Return(rec, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=record_repository_mock.go github.com/applyforge/applyforge/internal/core RecordRepository

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=posting_repository_mock.go github.com/applyforge/applyforge/internal/core PostingRepository

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=resume_store_mock.go github.com/applyforge/applyforge/internal/core ResumeStore

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=quota_store_mock.go github.com/applyforge/applyforge/internal/core QuotaStore

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=governor_mock.go github.com/applyforge/applyforge/internal/core Governor

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=gateway_mock.go github.com/applyforge/applyforge/internal/core OptimizeGateway,Analyzer

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=platform_adapter_mock.go github.com/applyforge/applyforge/internal/core PlatformAdapter,SearchPager

package contract

import (
	"context"

	"github.com/huangsam/reposcore/schema"
	"github.com/stretchr/testify/mock"
)

// MockMetadataFetcher is a mock implementation of MetadataFetcher for testing.
type MockMetadataFetcher struct {
	mock.Mock
}

var _ MetadataFetcher = &MockMetadataFetcher{} // Compile-time check

// GetInfo implements the MetadataFetcher interface.
func (m *MockMetadataFetcher) GetInfo(ctx context.Context, repo schema.RepositoryCoordinates) (schema.RepositoryInfo, error) {
	args := m.Called(ctx, repo)
	return args.Get(0).(schema.RepositoryInfo), args.Error(1)
}

// MockProbe is a mock implementation of Probe for testing.
type MockProbe[T any] struct {
	mock.Mock
}

var _ Probe[schema.TestingMetrics] = &MockProbe[schema.TestingMetrics]{} // Compile-time check

// Analyze implements the Probe interface.
func (m *MockProbe[T]) Analyze(ctx context.Context, repo schema.RepositoryCoordinates) (T, error) {
	args := m.Called(ctx, repo)
	fragment, _ := args.Get(0).(T)
	return fragment, args.Error(1)
}

// NewMockProbeSet returns a ProbeSet of fresh mocks along with the mocks themselves.
func NewMockProbeSet() (ProbeSet, *MockProbeSet) {
	mocks := &MockProbeSet{
		CodeQuality:   &MockProbe[schema.CodeQualityMetrics]{},
		Documentation: &MockProbe[schema.DocumentationMetrics]{},
		Testing:       &MockProbe[schema.TestingMetrics]{},
		Community:     &MockProbe[schema.CommunityMetrics]{},
		Security:      &MockProbe[schema.SecurityMetrics]{},
		Dependencies:  &MockProbe[schema.DependencyMetrics]{},
	}
	set := ProbeSet{
		CodeQuality:   mocks.CodeQuality,
		Documentation: mocks.Documentation,
		Testing:       mocks.Testing,
		Community:     mocks.Community,
		Security:      mocks.Security,
		Dependencies:  mocks.Dependencies,
	}
	return set, mocks
}

// MockProbeSet holds typed mocks for every probe.
type MockProbeSet struct {
	CodeQuality   *MockProbe[schema.CodeQualityMetrics]
	Documentation *MockProbe[schema.DocumentationMetrics]
	Testing       *MockProbe[schema.TestingMetrics]
	Community     *MockProbe[schema.CommunityMetrics]
	Security      *MockProbe[schema.SecurityMetrics]
	Dependencies  *MockProbe[schema.DependencyMetrics]
}

// AssertExpectations asserts expectations on every probe mock.
func (s *MockProbeSet) AssertExpectations(t mock.TestingT) {
	s.CodeQuality.AssertExpectations(t)
	s.Documentation.AssertExpectations(t)
	s.Testing.AssertExpectations(t)
	s.Community.AssertExpectations(t)
	s.Security.AssertExpectations(t)
	s.Dependencies.AssertExpectations(t)
}

package usecase

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"msg-generator/internal/config"
	"msg-generator/internal/domain/models"
	"msg-generator/internal/generator"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Name() string {
	return "mock"
}

func (m *MockPublisher) Publish(ctx context.Context, cid string, gen generator.Generator) (models.RunReport, error) {
	args := m.Called(ctx, cid, gen)
	return args.Get(0).(models.RunReport), args.Error(1)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) SaveRun(ctx context.Context, report models.RunReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockRunRepository) ListRuns(ctx context.Context, limit int) ([]models.RunReport, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]models.RunReport), args.Error(1)
}

type MockHTTPServer struct {
	mock.Mock
}

func (m *MockHTTPServer) Start() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockHTTPServer) Shutdown(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func testConfig(workers int) *config.Config {
	return &config.Config{
		Label:   "load",
		Workers: workers,
		Generation: models.GenerationConfig{
			Count: 4, Size: 16, AppID: "a1", AppName: "app", Topic: "t1",
		},
	}
}

// drain makes the mock publisher consume the generator it is handed.
func drain(args mock.Arguments) {
	gen := args.Get(2).(generator.Generator)
	generator.Collect(args.Get(0).(context.Context), gen)
}

func TestApplication_Start(t *testing.T) {
	mockHTTP := new(MockHTTPServer)
	mockHTTP.On("Start").Return(nil)

	app := NewApplication(testConfig(1), new(MockPublisher), nil, mockHTTP)

	assert.NoError(t, app.Start(context.Background()))
	mockHTTP.AssertExpectations(t)
}

func TestApplication_StartWithoutHTTP(t *testing.T) {
	app := NewApplication(testConfig(1), new(MockPublisher), nil, nil)
	assert.NoError(t, app.Start(context.Background()))
}

func TestApplication_Run_SingleWorkerUsesBareLabel(t *testing.T) {
	mockPublisher := new(MockPublisher)
	mockPublisher.On("Publish", mock.Anything, "load", mock.Anything).
		Run(drain).
		Return(models.RunReport{CorrelationID: "load", Sent: 4}, nil)

	mockRuns := new(MockRunRepository)
	mockRuns.On("SaveRun", mock.Anything, mock.MatchedBy(func(r models.RunReport) bool {
		return r.CorrelationID == "load" && r.Sent == 4
	})).Return(nil)

	app := NewApplication(testConfig(1), mockPublisher, mockRuns, nil)
	reports, err := app.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, 4, reports[0].Sent)
	mockPublisher.AssertExpectations(t)
	mockRuns.AssertExpectations(t)
}

func TestApplication_Run_WorkersGetIndexedIDs(t *testing.T) {
	mockPublisher := new(MockPublisher)
	for _, cid := range []string{"load_1", "load_2", "load_3"} {
		mockPublisher.On("Publish", mock.Anything, cid, mock.Anything).
			Run(drain).
			Return(models.RunReport{CorrelationID: cid, Sent: 4}, nil)
	}

	app := NewApplication(testConfig(3), mockPublisher, nil, nil)
	reports, err := app.Run(context.Background())
	require.NoError(t, err)

	var cids []string
	for _, r := range reports {
		cids = append(cids, r.CorrelationID)
	}
	sort.Strings(cids)
	assert.Equal(t, []string{"load_1", "load_2", "load_3"}, cids)
	mockPublisher.AssertExpectations(t)
}

func TestApplication_Run_PublisherError(t *testing.T) {
	mockPublisher := new(MockPublisher)
	mockPublisher.On("Publish", mock.Anything, "load", mock.Anything).
		Return(models.RunReport{CorrelationID: "load", Failed: 4}, errors.New("broker down"))

	mockRuns := new(MockRunRepository)
	mockRuns.On("SaveRun", mock.Anything, mock.Anything).Return(errors.New("database error"))

	app := NewApplication(testConfig(1), mockPublisher, mockRuns, nil)
	_, err := app.Run(context.Background())

	assert.ErrorContains(t, err, "broker down")
	mockRuns.AssertExpectations(t)
}

func TestApplication_Shutdown(t *testing.T) {
	mockPublisher := new(MockPublisher)
	mockHTTP := new(MockHTTPServer)
	mockPublisher.On("Close").Return(nil)
	mockHTTP.On("Shutdown", mock.Anything).Return(errors.New("timeout"))

	app := NewApplication(testConfig(1), mockPublisher, nil, mockHTTP)

	assert.NoError(t, app.Shutdown(context.Background()))
	mockPublisher.AssertExpectations(t)
	mockHTTP.AssertExpectations(t)
}

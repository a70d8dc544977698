package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oasbridge/oasbridge/internal/domain"
	"github.com/oasbridge/oasbridge/internal/formdata"
	"github.com/oasbridge/oasbridge/internal/schema"
	"github.com/oasbridge/oasbridge/internal/usecase"
)

// MockForwarder is a mock implementation of the Forwarder interface.
type MockForwarder struct {
	mock.Mock
}

func (m *MockForwarder) Forward(ctx context.Context, req *http.Request) (*http.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*http.Response)
	return resp, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func okResponse() *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(`{"result":{"data":{"message":"hi"}}}`)),
	}
}

func greetRegistry() *domain.Registry {
	return domain.NewRegistry().
		Register(domain.NewProcedure("greet").
			In(schema.Object(schema.Prop("name", schema.String()))).
			Out(schema.Object(schema.Prop("message", schema.String()))).
			Via("/greet", "get"))
}

func greetDoc() *domain.Doc {
	routes := domain.ReverseLookup{}
	routes.Add("/api/greet", "get", "greet")
	return &domain.Doc{Routes: routes}
}

func TestTranslateGetRequest(t *testing.T) {
	forwarder := new(MockForwarder)
	uc := usecase.NewTranslateRequestUseCase(greetDoc(), greetRegistry(), forwarder, "/internal", testLogger())

	var forwarded *http.Request
	forwarder.On("Forward", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			forwarded = args.Get(1).(*http.Request)
		}).
		Return(okResponse(), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "https://h/api/greet?name=Ada", nil)
	req.Header.Set("Authorization", "Bearer tok")

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NotNil(t, forwarded)
	assert.Equal(t, http.MethodGet, forwarded.Method)
	assert.Equal(t, "/internal/greet", forwarded.URL.Path)
	assert.Equal(t, `{"name":"Ada"}`, forwarded.URL.Query().Get("input"))
	assert.Equal(t, "Bearer tok", forwarded.Header.Get("Authorization"))

	forwarder.AssertExpectations(t)
}

func TestTranslateCollapsesMethodsToPost(t *testing.T) {
	tests := []struct {
		name       string
		inMethod   string
		routeVerb  string
		wantMethod string
	}{
		{name: "get stays get", inMethod: http.MethodGet, routeVerb: "get", wantMethod: http.MethodGet},
		{name: "post stays post", inMethod: http.MethodPost, routeVerb: "post", wantMethod: http.MethodPost},
		{name: "put collapses", inMethod: http.MethodPut, routeVerb: "put", wantMethod: http.MethodPost},
		{name: "delete collapses", inMethod: http.MethodDelete, routeVerb: "delete", wantMethod: http.MethodPost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := domain.NewRegistry().
				Register(domain.NewProcedure("touch").Via("/touch", tt.routeVerb))
			routes := domain.ReverseLookup{}
			routes.Add("/api/touch", tt.routeVerb, "touch")

			forwarder := new(MockForwarder)
			var forwarded *http.Request
			forwarder.On("Forward", mock.Anything, mock.Anything).
				Run(func(args mock.Arguments) {
					forwarded = args.Get(1).(*http.Request)
				}).
				Return(okResponse(), nil).Once()

			uc := usecase.NewTranslateRequestUseCase(&domain.Doc{Routes: routes}, reg, forwarder, "/internal", testLogger())
			req := httptest.NewRequest(tt.inMethod, "https://h/api/touch", nil)

			_, err := uc.Execute(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMethod, forwarded.Method)
			assert.Equal(t, "/internal/touch", forwarded.URL.Path)
			// No input schema, so the query is left untouched.
			assert.Empty(t, forwarded.URL.RawQuery)
		})
	}
}

func TestTranslateUnknownRouteIs404(t *testing.T) {
	forwarder := new(MockForwarder)
	uc := usecase.NewTranslateRequestUseCase(greetDoc(), greetRegistry(), forwarder, "/internal", testLogger())

	req := httptest.NewRequest(http.MethodGet, "https://h/api/missing", nil)
	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "Not found", string(body))
	forwarder.AssertNotCalled(t, "Forward", mock.Anything, mock.Anything)
}

func TestTranslateMethodMismatchIs404(t *testing.T) {
	forwarder := new(MockForwarder)
	uc := usecase.NewTranslateRequestUseCase(greetDoc(), greetRegistry(), forwarder, "/internal", testLogger())

	req := httptest.NewRequest(http.MethodPost, "https://h/api/greet", nil)
	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	forwarder.AssertNotCalled(t, "Forward", mock.Anything, mock.Anything)
}

func TestTranslateStaleRouteIs404(t *testing.T) {
	// Route resolves but the procedure is gone from the live registry.
	forwarder := new(MockForwarder)
	uc := usecase.NewTranslateRequestUseCase(greetDoc(), domain.NewRegistry(), forwarder, "/internal", testLogger())

	req := httptest.NewRequest(http.MethodGet, "https://h/api/greet", nil)
	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	forwarder.AssertNotCalled(t, "Forward", mock.Anything, mock.Anything)
}

func TestTranslateCoercionErrorPropagates(t *testing.T) {
	reg := domain.NewRegistry().
		Register(domain.NewProcedure("matrix").
			In(schema.Object(schema.Prop("m", schema.Array(schema.Array(schema.Number()))))).
			Via("/matrix", "get"))
	routes := domain.ReverseLookup{}
	routes.Add("/api/matrix", "get", "matrix")

	forwarder := new(MockForwarder)
	uc := usecase.NewTranslateRequestUseCase(&domain.Doc{Routes: routes}, reg, forwarder, "/internal", testLogger())

	req := httptest.NewRequest(http.MethodGet, "https://h/api/matrix?m=1", nil)
	_, err := uc.Execute(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, formdata.ErrNestedArray)
	forwarder.AssertNotCalled(t, "Forward", mock.Anything, mock.Anything)
}

func TestTranslateArrayQueryInput(t *testing.T) {
	reg := domain.NewRegistry().
		Register(domain.NewProcedure("listPosts").
			In(schema.Object(schema.Prop("ids", schema.Array(schema.Number())))).
			Via("/posts", "get"))
	routes := domain.ReverseLookup{}
	routes.Add("/api/posts", "get", "listPosts")

	forwarder := new(MockForwarder)
	var forwarded *http.Request
	forwarder.On("Forward", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			forwarded = args.Get(1).(*http.Request)
		}).
		Return(okResponse(), nil).Once()

	uc := usecase.NewTranslateRequestUseCase(&domain.Doc{Routes: routes}, reg, forwarder, "/internal", testLogger())
	req := httptest.NewRequest(http.MethodGet, "https://h/api/posts?ids=1&ids=2", nil)

	_, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, `{"ids":[1,2]}`, forwarded.URL.Query().Get("input"))
}

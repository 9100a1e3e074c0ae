package router

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hr-agent/backend/internal/dataset"
	"github.com/hr-agent/backend/internal/intent"
	"github.com/hr-agent/backend/internal/predict"
	"github.com/hr-agent/backend/internal/session"
	"github.com/hr-agent/backend/internal/storage/models"
)

type stubSource struct {
	rows []map[string]any
	err  error
}

func (s *stubSource) Load(ctx context.Context) ([]map[string]any, error) {
	return s.rows, s.err
}

type stubText struct {
	translated  string
	defined     string
	fallback    string
	err         error
	defineCalls int
}

func (s *stubText) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.translated != "" {
		return s.translated, nil
	}
	return text, nil
}

func (s *stubText) Define(ctx context.Context, concept string) (string, error) {
	s.defineCalls++
	return s.defined, s.err
}

func (s *stubText) Fallback(ctx context.Context, query string) (string, error) {
	return s.fallback, s.err
}

type memoryHistory struct {
	records []*models.QueryRecord
}

func (m *memoryHistory) InsertQueryRecord(record *models.QueryRecord) error {
	m.records = append(m.records, record)
	return nil
}

func testRows() []map[string]any {
	row := func(id, dept, status, gender string, extra map[string]any) map[string]any {
		m := map[string]any{
			"Employee_ID":        id,
			"Department":         dept,
			"Status":             status,
			"Gender":             gender,
			"Salary":             "60000",
			"Age":                "30",
			"Experience_Years":   "4",
			"Engagement_Score":   "3.5",
			"Performance_Rating": "4",
			"Hire_Date":          "2020-01-15",
		}
		for k, v := range extra {
			m[k] = v
		}
		return m
	}

	return []map[string]any{
		row("E1", "Engineering", "Active", "Female", nil),
		row("E2", "Engineering", "Active", "Male", nil),
		row("E3", "Engineering", "Active", "Female", nil),
		row("E4", "Engineering", "Active", "Male", nil),
		row("E5", "Engineering", "Active", "Female", nil),
		row("E6", "Sales", "Active", "Male", nil),
		row("E7", "Sales", "Active", "Female", nil),
		row("E8", "Sales", "Active", "Male", nil),
		row("E9", "Sales", "Resigned", "Female", map[string]any{"Exit_Date": "2022-06-30"}),
	}
}

func testModel() *predict.Model {
	return &predict.Model{
		Version:  "test",
		Features: predict.RequiredFeatures,
		Means:    []float64{30, 60000, 4, 3.5, 4},
		Stds:     []float64{10, 20000, 3, 1, 1},
		Weights:  []float64{0.5, -0.2, -0.3, -0.8, -0.4},
		Bias:     -0.5,
		Metrics:  map[string]float64{"AUC": 0.84, "Precision": 0.61, "Recall": 0.72},
	}
}

func newTestRouter(src dataset.Source, text TextService, history HistoryStore) *Router {
	opts := Options{
		Loader:    dataset.NewLoader(src, time.Minute),
		Extractor: intent.NewExtractor(),
		Predictor: predict.NewAdapter(testModel()),
		History:   history,
	}
	if text != nil {
		opts.Text = text
	}
	return New(opts)
}

func TestProcessQuery_EmptyInput(t *testing.T) {
	r := newTestRouter(&stubSource{rows: testRows()}, nil, nil)
	conv := session.NewConversation()

	resp := r.ProcessQuery(context.Background(), conv, "   ", "en")

	assert.Equal(t, KindText, resp.Kind)
	assert.Equal(t, msgEmptyInput, resp.Text)
	assert.NotEmpty(t, resp.ID)
}

func TestProcessQuery_Greeting(t *testing.T) {
	r := newTestRouter(&stubSource{rows: testRows()}, nil, nil)

	resp := r.ProcessQuery(context.Background(), session.NewConversation(), "hello", "en")

	assert.Equal(t, msgGreeting, resp.Text)
}

func TestProcessQuery_OutOfDomain(t *testing.T) {
	r := newTestRouter(&stubSource{rows: testRows()}, nil, nil)

	resp := r.ProcessQuery(context.Background(), session.NewConversation(), "what's the weather like", "en")

	assert.Equal(t, KindText, resp.Kind)
	assert.Equal(t, msgOutOfDomain, resp.Text)
}

func TestProcessQuery_DatasetUnavailable(t *testing.T) {
	r := newTestRouter(&stubSource{err: errors.New("connection refused")}, nil, nil)

	resp := r.ProcessQuery(context.Background(), session.NewConversation(), "show headcount", "en")

	assert.Equal(t, msgDataUnavailable, resp.Text)
}

func TestProcessQuery_ScalarMetric(t *testing.T) {
	r := newTestRouter(&stubSource{rows: testRows()}, nil, nil)

	resp := r.ProcessQuery(context.Background(), session.NewConversation(), "show headcount", "en")

	require.Equal(t, KindTable, resp.Kind)
	require.NotNil(t, resp.Table)
	require.Len(t, resp.Table.Rows, 1)
	assert.Equal(t, []string{"Active Headcount", "8"}, resp.Table.Rows[0])
}

func TestProcessQuery_GroupedBarChart(t *testing.T) {
	r := newTestRouter(&stubSource{rows: testRows()}, nil, nil)

	resp := r.ProcessQuery(context.Background(), session.NewConversation(),
		"show headcount by department as a bar chart", "en")

	require.Equal(t, KindChart, resp.Kind)
	require.NotNil(t, resp.Chart)
	assert.Equal(t, intent.ChartBar, resp.Chart.Type)
	assert.Equal(t, []string{"Engineering", "Sales"}, resp.Chart.Labels)
	assert.Equal(t, []float64{5, 3}, resp.Chart.Values)
}

func TestProcessQuery_GroupedWithoutChartIsTable(t *testing.T) {
	r := newTestRouter(&stubSource{rows: testRows()}, nil, nil)

	resp := r.ProcessQuery(context.Background(), session.NewConversation(), "headcount by department", "en")

	require.Equal(t, KindTable, resp.Kind)
	assert.Len(t, resp.Table.Rows, 2)
}

func TestProcessQuery_UnsupportedBreakdownMessage(t *testing.T) {
	rows := []map[string]any{
		{"Employee_ID": "E1", "Status": "Active", "Department": "Sales"},
	}
	r := newTestRouter(&stubSource{rows: rows}, nil, nil)

	resp := r.ProcessQuery(context.Background(), session.NewConversation(), "headcount by location", "en")

	assert.Equal(t, KindText, resp.Kind)
	assert.Equal(t, "Active Headcount data not available.", resp.Text)
}

func TestProcessQuery_ModelMetrics(t *testing.T) {
	r := newTestRouter(&stubSource{rows: testRows()}, nil, nil)

	resp := r.ProcessQuery(context.Background(), session.NewConversation(), "show model auc", "en")

	require.Equal(t, KindTable, resp.Kind)
	require.Len(t, resp.Table.Rows, 3)
	assert.Equal(t, []string{"AUC", "0.840"}, resp.Table.Rows[0])
	assert.Equal(t, []string{"Precision", "0.610"}, resp.Table.Rows[1])
	assert.Equal(t, []string{"Recall", "0.720"}, resp.Table.Rows[2])
}

func TestProcessQuery_Predictions(t *testing.T) {
	r := newTestRouter(&stubSource{rows: testRows()}, nil, nil)

	resp := r.ProcessQuery(context.Background(), session.NewConversation(), "who will leave next", "en")

	require.Equal(t, KindPredictions, resp.Kind)
	require.Len(t, resp.Predictions, 9)

	for i := 1; i < len(resp.Predictions); i++ {
		assert.GreaterOrEqual(t, resp.Predictions[i-1].Risk, resp.Predictions[i].Risk)
	}
}

func TestProcessQuery_PredictionMissingColumns(t *testing.T) {
	rows := []map[string]any{
		{"Employee_ID": "E1", "Status": "Active", "Age": "30", "Salary": "50000", "Experience_Years": "4"},
	}
	r := newTestRouter(&stubSource{rows: rows}, nil, nil)

	resp := r.ProcessQuery(context.Background(), session.NewConversation(), "predict attrition risk", "en")

	assert.Equal(t, KindText, resp.Kind)
	assert.Contains(t, resp.Text, "Engagement_Score")
	assert.Contains(t, resp.Text, "Performance_Rating")
}

func TestProcessQuery_PredictionChart(t *testing.T) {
	r := newTestRouter(&stubSource{rows: testRows()}, nil, nil)

	resp := r.ProcessQuery(context.Background(), session.NewConversation(), "chart the flight risk", "en")

	require.Equal(t, KindChart, resp.Kind)
	assert.Equal(t, []string{"High", "Medium", "Low"}, resp.Chart.Labels)
}

func TestProcessQuery_Definition(t *testing.T) {
	text := &stubText{defined: "Attrition is the rate at which employees leave."}
	r := newTestRouter(&stubSource{rows: testRows()}, text, nil)

	resp := r.ProcessQuery(context.Background(), session.NewConversation(), "what is attrition", "en")

	assert.Equal(t, KindText, resp.Kind)
	assert.Equal(t, text.defined, resp.Text)
	assert.Equal(t, 1, text.defineCalls)
}

func TestProcessQuery_DefinitionServiceDown(t *testing.T) {
	text := &stubText{err: errors.New("llm down")}
	r := newTestRouter(&stubSource{rows: testRows()}, text, nil)

	resp := r.ProcessQuery(context.Background(), session.NewConversation(), "what is attrition", "en")

	assert.Equal(t, msgServiceUnavailable, resp.Text)
}

func TestProcessQuery_TranslationFailure(t *testing.T) {
	text := &stubText{err: errors.New("llm down")}
	r := newTestRouter(&stubSource{rows: testRows()}, text, nil)

	resp := r.ProcessQuery(context.Background(), session.NewConversation(), "zeig mir den personalbestand", "de")

	assert.Equal(t, msgTranslationFailed, resp.Text)
}

func TestProcessQuery_TranslatedQueryIsRouted(t *testing.T) {
	text := &stubText{translated: "show headcount"}
	r := newTestRouter(&stubSource{rows: testRows()}, text, nil)

	resp := r.ProcessQuery(context.Background(), session.NewConversation(), "zeig mir den personalbestand", "de")

	require.Equal(t, KindTable, resp.Kind)
	assert.Equal(t, []string{"Active Headcount", "8"}, resp.Table.Rows[0])
}

func TestProcessQuery_FallbackForUnregisteredMetric(t *testing.T) {
	text := &stubText{fallback: "Promotions are reviewed every cycle."}
	r := newTestRouter(&stubSource{rows: testRows()}, text, nil)

	resp := r.ProcessQuery(context.Background(), session.NewConversation(), "tell me about promotion outcomes", "en")

	assert.Equal(t, KindText, resp.Kind)
	assert.Equal(t, text.fallback, resp.Text)
}

func TestProcessQuery_ConversationLog(t *testing.T) {
	r := newTestRouter(&stubSource{rows: testRows()}, nil, nil)
	conv := session.NewConversation()

	r.ProcessQuery(context.Background(), conv, "headcount by department as a pie chart", "en")

	messages := conv.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, session.RoleUser, messages[0].Role)
	assert.Equal(t, session.RoleAssistant, messages[1].Role)
	assert.Equal(t, "[Chart generated]", messages[1].Content)
}

func TestProcessQuery_PersistsRecord(t *testing.T) {
	history := &memoryHistory{}
	r := newTestRouter(&stubSource{rows: testRows()}, nil, history)
	conv := session.NewConversation()

	resp := r.ProcessQuery(context.Background(), conv, "headcount by department", "en")

	require.Len(t, history.records, 1)
	record := history.records[0]
	assert.Equal(t, resp.ID, record.ID)
	assert.Equal(t, conv.ID, record.SessionID)
	assert.Equal(t, "headcount by department", record.QueryText)
	assert.Equal(t, "headcount", record.Metric)
	assert.Equal(t, "DEPARTMENT", record.Dimension)
	assert.Equal(t, "table", record.ResponseKind)
}

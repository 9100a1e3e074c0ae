package router

import (
	"github.com/hr-agent/backend/internal/predict"
	"github.com/hr-agent/backend/internal/render"
	"github.com/hr-agent/backend/internal/session"
)

// ResponseKind tags the one shape a terminal response takes.
type ResponseKind string

const (
	KindText        ResponseKind = "text"
	KindTable       ResponseKind = "table"
	KindChart       ResponseKind = "chart"
	KindPredictions ResponseKind = "predictions"
)

// Response is the single terminal answer for one request. Exactly one of
// Text, Table, Chart, Predictions is populated, per Kind.
type Response struct {
	ID          string               `json:"id"`
	Kind        ResponseKind         `json:"kind"`
	Text        string               `json:"text,omitempty"`
	Table       *render.TableView    `json:"table,omitempty"`
	Chart       *render.ChartSpec    `json:"chart,omitempty"`
	Predictions []predict.Prediction `json:"predictions,omitempty"`
	LatencyMS   int                  `json:"latency_ms"`
}

func textResponse(text string) *Response {
	return &Response{Kind: KindText, Text: text}
}

func tableResponse(table *render.TableView) *Response {
	return &Response{Kind: KindTable, Table: table}
}

func chartResponse(chart *render.ChartSpec) *Response {
	return &Response{Kind: KindChart, Chart: chart}
}

func predictionsResponse(predictions []predict.Prediction) *Response {
	return &Response{Kind: KindPredictions, Predictions: predictions}
}

// logContent is what gets appended to the conversation: chart and
// prediction payloads live only in the response, the log keeps a marker.
func (r *Response) logContent() string {
	switch r.Kind {
	case KindText:
		return r.Text
	case KindTable:
		return r.Table.Title
	case KindChart:
		return session.ChartMarker
	case KindPredictions:
		return "[Attrition risk ranking generated]"
	}
	return ""
}

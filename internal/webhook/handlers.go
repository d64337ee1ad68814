package webhook

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ca-srg/cyberrag/internal/metrics"
)

var webhookTracer = otel.Tracer("cyberrag/webhook")

// DialogflowRequest is the subset of a Dialogflow ES fulfillment request we read.
type DialogflowRequest struct {
	QueryResult struct {
		QueryText string `json:"queryText"`
	} `json:"queryResult"`
}

// DialogflowResponse is the fulfillment reply.
type DialogflowResponse struct {
	FulfillmentText string `json:"fulfillmentText"`
}

// AnswerRequest is the plain API request body.
type AnswerRequest struct {
	QueryText string `json:"query_text"`
}

// AnswerResponse is the plain API response body.
type AnswerResponse struct {
	AnswerText string `json:"answer_text"`
}

func (s *Server) handleWebhook(c *gin.Context) {
	var req DialogflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Malformed bodies read as an empty query.
		s.logger.Printf("event=decode route=webhook status=error err=%v", err)
	}
	text := s.answer(c, metrics.ChannelWebhook, req.QueryResult.QueryText)
	c.JSON(http.StatusOK, DialogflowResponse{FulfillmentText: text})
}

func (s *Server) handleAnswer(c *gin.Context) {
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Printf("event=decode route=answer status=error err=%v", err)
	}
	text := s.answer(c, metrics.ChannelAPI, req.QueryText)
	c.JSON(http.StatusOK, AnswerResponse{AnswerText: text})
}

func (s *Server) answer(c *gin.Context, channel metrics.Channel, query string) string {
	ctx, span := webhookTracer.Start(c.Request.Context(), "webhook.answer")
	defer span.End()
	span.SetAttributes(
		attribute.String("webhook.channel", string(channel)),
		attribute.String("webhook.request_id", c.GetString(requestIDKey)),
	)

	metrics.RecordInvocation(channel)
	return s.answerer.Answer(ctx, query)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"time"

	"money-mate/internal/dto"
	"money-mate/internal/models"
	"money-mate/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Ingester interface {
	Prepare(ctx context.Context, req dto.IngestRequest) (*service.Batch, error)
	Commit(ctx context.Context, batch *service.Batch, onProgress func(service.Progress)) (*service.IngestResult, error)
}

type Processor interface {
	Process(ctx context.Context, req service.ProcessRequest) (*service.ProcessResult, error)
	ListUnprocessed(ctx context.Context, limit int, userID *uuid.UUID) ([]*models.Message, error)
}

type StatusReader interface {
	Status(ctx context.Context, userID *uuid.UUID) (*dto.ProcessingStatus, error)
}

const ndjsonContentType = "application/x-ndjson"

type MessageHandler struct {
	ingester      Ingester
	processor     Processor
	status        StatusReader
	ingestTimeout time.Duration
	logger        *zap.Logger
}

func NewMessageHandler(ingester Ingester, processor Processor, status StatusReader, ingestTimeout time.Duration, logger *zap.Logger) *MessageHandler {
	if ingestTimeout <= 0 {
		ingestTimeout = 2 * time.Minute
	}
	return &MessageHandler{
		ingester:      ingester,
		processor:     processor,
		status:        status,
		ingestTimeout: ingestTimeout,
		logger:        logger,
	}
}

// Ingest godoc
// @Summary Ingest a batch of SMS messages
// @Description Stores messages for a user, skipping duplicates. Progress is streamed as NDJSON events
// @Description ending in a "complete" or "error" event; pass stream=false for a single JSON response.
// @Tags messages
// @Accept json
// @Produce application/x-ndjson
// @Param request body dto.IngestRequest true "Messages"
// @Param stream query bool false "Stream progress events" default(true)
// @Security Bearer
// @Success 200 {object} dto.IngestCompleteEvent
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /messages/ingest [post]
func (h *MessageHandler) Ingest(c *fiber.Ctx) error {
	var req dto.IngestRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := authorize(c, req.UserID); err != nil {
		return respondError(c, h.logger, err, "Message sync failed")
	}

	batch, err := h.ingester.Prepare(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err, "Message sync failed")
	}

	// the write outlives the request so a client disconnect cannot leave it half done
	ctx, cancel := context.WithTimeout(context.Background(), h.ingestTimeout)

	if !c.QueryBool("stream", true) {
		defer cancel()
		result, err := h.ingester.Commit(ctx, batch, nil)
		if err != nil {
			return respondError(c, h.logger, err, "Message sync failed")
		}
		return c.JSON(completeEvent(result))
	}

	progress := make(chan any, 64)
	final := make(chan any, 1)

	go func() {
		defer cancel()
		result, err := h.ingester.Commit(ctx, batch, func(p service.Progress) {
			select {
			case progress <- dto.IngestProgressEvent{Type: dto.EventProgress, Inserted: p.Inserted, Processed: p.Processed, Total: p.Total}:
			default:
				// slow reader; progress is best effort
			}
		})
		if err != nil {
			h.logger.Error("Message sync failed", zap.String("user_id", batch.UserID.String()), zap.Error(err))
			final <- dto.IngestErrorEvent{Type: dto.EventError, Error: "Message sync failed"}
			return
		}
		final <- completeEvent(result)
	}()

	c.Set(fiber.HeaderContentType, ndjsonContentType)
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		enc := json.NewEncoder(w)
		write := func(ev any) {
			if err := enc.Encode(ev); err == nil {
				_ = w.Flush()
			}
		}
		for {
			select {
			case ev := <-progress:
				write(ev)
			case ev := <-final:
			drain:
				for {
					select {
					case p := <-progress:
						write(p)
					default:
						break drain
					}
				}
				write(ev)
				return
			}
		}
	})
	return nil
}

func completeEvent(r *service.IngestResult) dto.IngestCompleteEvent {
	return dto.IngestCompleteEvent{
		Type:          dto.EventComplete,
		InsertedCount: r.Inserted,
		Duplicates:    r.Duplicates,
		Skipped:       r.Skipped,
		Total:         r.Total,
	}
}

// Process godoc
// @Summary Run a processing pass
// @Description Classifies unprocessed messages, extracts transactions and marks the messages processed
// @Tags messages
// @Accept json
// @Produce json
// @Param request body dto.ProcessRequest false "Limit and optional user scope"
// @Security Bearer
// @Success 200 {object} dto.ProcessResponse
// @Failure 400 {object} map[string]string
// @Router /messages/process [post]
func (h *MessageHandler) Process(c *fiber.Ctx) error {
	var req dto.ProcessRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	userID, err := scopeUser(c, req.UserID)
	if err != nil {
		return respondError(c, h.logger, err, "Processing failed")
	}

	pr := service.ProcessRequest{UserID: userID}
	if req.Limit != nil {
		pr.Limit = *req.Limit
	}

	result, err := h.processor.Process(c.UserContext(), pr)
	if err != nil {
		return respondError(c, h.logger, err, "Processing failed")
	}

	categories := make(map[string]int, len(result.Categories))
	for category, n := range result.Categories {
		categories[string(category)] = n
	}
	return c.JSON(dto.ProcessResponse{
		Processed:           result.Processed,
		TransactionsCreated: result.TransactionsCreated,
		DuplicatesFiltered:  result.DuplicatesFiltered,
		Categories:          categories,
	})
}

// ProcessingStatus godoc
// @Summary Processing progress
// @Tags messages
// @Produce json
// @Param user_id query string false "Restrict to one user"
// @Security Bearer
// @Success 200 {object} dto.ProcessingStatus
// @Router /messages/processing-status [get]
func (h *MessageHandler) ProcessingStatus(c *fiber.Ctx) error {
	userID, err := scopeUser(c, c.Query("user_id"))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to get processing status")
	}

	status, err := h.status.Status(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to get processing status")
	}
	return c.JSON(status)
}

// Unprocessed godoc
// @Summary List unprocessed messages
// @Tags messages
// @Produce json
// @Param limit query int false "Limit" default(1000)
// @Param user_id query string false "Restrict to one user"
// @Security Bearer
// @Success 200 {object} dto.UnprocessedResponse
// @Router /messages/unprocessed [get]
func (h *MessageHandler) Unprocessed(c *fiber.Ctx) error {
	userID, err := scopeUser(c, c.Query("user_id"))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list messages")
	}

	messages, err := h.processor.ListUnprocessed(c.UserContext(), c.QueryInt("limit", 1000), userID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list messages")
	}

	resp := dto.UnprocessedResponse{Messages: make([]dto.MessageResponse, 0, len(messages))}
	for _, m := range messages {
		resp.Messages = append(resp.Messages, toMessageResponse(m))
	}
	resp.Count = len(resp.Messages)
	return c.JSON(resp)
}

func toMessageResponse(m *models.Message) dto.MessageResponse {
	resp := dto.MessageResponse{
		ID:          m.ID.String(),
		UserID:      m.UserID.String(),
		Sender:      m.Sender,
		MessageBody: m.Body,
		Status:      string(m.Status),
		ReceivedAt:  m.ReceivedAt.Format(time.RFC3339),
		Processed:   m.Processed,
	}
	if m.Category != nil {
		category := string(*m.Category)
		resp.Category = &category
	}
	return resp
}

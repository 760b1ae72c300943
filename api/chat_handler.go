package api

import (
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"rentnest/domain"
	"rentnest/errors"
	"rentnest/search"
	"rentnest/services"
)

var validate = validator.New()

type ChatHandler struct {
	log   *slog.Logger
	chats services.IChatService
}

func NewChatHandler(log *slog.Logger, chats services.IChatService) *ChatHandler {
	return &ChatHandler{log: log, chats: chats}
}

type CreateChatRequest struct {
	ListingID    string   `json:"listingId" validate:"required"`
	Participants []string `json:"participants" validate:"required,min=1,dive,required"`
}

type ChatResponse struct {
	ID           string            `json:"id"`
	ListingID    string            `json:"listingId"`
	Participants []string          `json:"participants"`
	Messages     []MessageResponse `json:"messages"`
	CreatedAt    int64             `json:"createdAt"`
}

type MessageResponse struct {
	Sender   string `json:"sender"`
	Username string `json:"username,omitempty"`
	Text     string `json:"text"`
	SentAt   int64  `json:"sentAt"`
}

func (h *ChatHandler) Create(c *fiber.Ctx) error {
	var req CreateChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	chat, err := h.chats.CreateChat(req.ListingID, req.Participants)
	if err != nil {
		h.log.Error("Failed to create chat", "listing_id", req.ListingID, "error", err)
		return errors.MapToHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toChatResponse(chat))
}

func (h *ChatHandler) Get(c *fiber.Ctx) error {
	chat, err := h.chats.GetChat(c.Params("id"))
	if err != nil {
		return errors.MapToHTTPError(err)
	}
	return c.JSON(toChatResponse(chat))
}

type SearchResponse struct {
	Hits []search.Hit `json:"hits"`
}

func (h *ChatHandler) Search(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing query parameter q")
	}
	limit := c.QueryInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}

	hits, err := h.chats.SearchMessages(c.UserContext(),
		c.Params("id"), claimsFrom(c).UserID, query, limit)
	if err != nil {
		return errors.MapToHTTPError(err)
	}
	return c.JSON(SearchResponse{Hits: hits})
}

func toChatResponse(chat domain.Chat) ChatResponse {
	return ChatResponse{
		ID:           chat.ID.String(),
		ListingID:    chat.ListingID,
		Participants: chat.Participants,
		Messages: lo.Map(chat.Messages, func(m domain.Message, _ int) MessageResponse {
			return MessageResponse{
				Sender:   m.Sender,
				Username: m.SenderName,
				Text:     m.Text,
				SentAt:   m.SentAt.UnixMilli(),
			}
		}),
		CreatedAt: chat.CreatedAt.UnixMilli(),
	}
}

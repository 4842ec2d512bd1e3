package therapy

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sereno/sereno/internal/platform/httperr"
	"github.com/sereno/sereno/internal/platform/websocket"
	"github.com/sereno/sereno/pkg/pagination"
)

// groundingReply is the canned response sent for every chat message until a
// real counselling backend is attached.
const groundingReply = "Try the 5-4-3-2-1 technique focusing on your senses."

// Service serves therapy content and the chat log.
type Service struct {
	materials MaterialRepository
	chat      ChatRepository
	events    websocket.EventPublisher
	logger    zerolog.Logger
}

func NewService(materials MaterialRepository, chat ChatRepository, events websocket.EventPublisher, logger zerolog.Logger) *Service {
	return &Service{materials: materials, chat: chat, events: events, logger: logger}
}

// ListVideos returns all video sections.
func (s *Service) ListVideos(ctx context.Context) ([]*VideoSection, error) {
	materials, err := s.materials.ListByType(ctx, MaterialVideo)
	if err != nil {
		return nil, httperr.Server("Failed to fetch videos", err)
	}

	out := make([]*VideoSection, 0, len(materials))
	for _, m := range materials {
		out = append(out, videoSectionOf(m))
	}
	return out, nil
}

// GetVideo returns one video section with its playback URL.
func (s *Service) GetVideo(ctx context.Context, sectionID int64) (*VideoContent, error) {
	m, err := s.materials.GetByID(ctx, sectionID, MaterialVideo)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("Video not found")
	}
	if err != nil {
		return nil, httperr.Server("Failed to fetch video content", err)
	}
	return &VideoContent{
		VideoSection: *videoSectionOf(m),
		Description:  m.Description,
		VideoURL:     m.VideoURL,
	}, nil
}

// ListEbooks returns all ebooks with display ids.
func (s *Service) ListEbooks(ctx context.Context) ([]*Ebook, error) {
	materials, err := s.materials.ListByType(ctx, MaterialEbook)
	if err != nil {
		return nil, httperr.Server("Failed to fetch ebooks", err)
	}

	out := make([]*Ebook, 0, len(materials))
	for _, m := range materials {
		out = append(out, ebookOf(m))
	}
	return out, nil
}

// GetEbook returns one ebook with its download URL.
func (s *Service) GetEbook(ctx context.Context, rawID string) (*EbookContent, error) {
	id, err := ParseEbookID(rawID)
	if err != nil {
		return nil, httperr.NotFound("Ebook not found")
	}

	m, err := s.materials.GetByID(ctx, id, MaterialEbook)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("Ebook not found")
	}
	if err != nil {
		return nil, httperr.Server("Failed to fetch ebook content", err)
	}

	description := m.Description
	if description == "" {
		description = defaultEbookDescription
	}
	return &EbookContent{
		Ebook:       *ebookOf(m),
		Description: description,
		PDFURL:      m.PDFURL,
	}, nil
}

// ChatHistory returns one page of a user's chat log, newest first. An empty
// log is an empty page.
func (s *Service) ChatHistory(ctx context.Context, suffererID int64, p pagination.Params) (*ChatHistoryPage, error) {
	entries, total, err := s.chat.ListBySufferer(ctx, suffererID, p.Limit, p.Offset())
	if err != nil {
		return nil, httperr.Server("Failed to fetch chat history", err)
	}

	items := make([]*ChatMessage, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.toMessage())
	}
	return &ChatHistoryPage{Page: p.Page, Limit: p.Limit, Total: total, Items: items}, nil
}

// SendChat persists the user message with its reply and notifies the
// user's chat topic.
func (s *Service) SendChat(ctx context.Context, in *ChatInput) (*ChatExchange, error) {
	if in.SuffererID <= 0 || strings.TrimSpace(in.Message) == "" {
		return nil, httperr.Validation("Missing sufferer_id or message")
	}

	user := &ChatEntry{SuffererID: in.SuffererID, Sender: SenderUser, Message: in.Message}
	ai := &ChatEntry{SuffererID: in.SuffererID, Sender: SenderAI, Message: groundingReply}
	if err := s.chat.InsertExchange(ctx, user, ai); err != nil {
		return nil, httperr.DB("Failed to save chat", err)
	}

	exchange := &ChatExchange{Message: user.toMessage(), AIResponse: ai.toMessage()}
	if in.MessageType != "" {
		exchange.Message.MessageType = in.MessageType
	}

	if s.events != nil {
		evt := websocket.NewEvent("chat.message", websocket.ChatTopic(in.SuffererID), exchange)
		if err := s.events.Publish(ctx, evt); err != nil {
			s.logger.Warn().Err(err).Int64("sufferer_id", in.SuffererID).Msg("chat event not published")
		}
	}
	return exchange, nil
}

func videoSectionOf(m *Material) *VideoSection {
	return &VideoSection{
		ID:              m.ID,
		Title:           m.Title,
		DurationMinutes: m.Duration,
		ThumbnailURL:    m.ImageURL,
	}
}

func ebookOf(m *Material) *Ebook {
	author := m.Author
	if author == "" {
		author = defaultAuthor
	}
	return &Ebook{
		ID:       FormatEbookID(m.ID),
		Title:    m.Title,
		Author:   author,
		CoverURL: m.ImageURL,
	}
}

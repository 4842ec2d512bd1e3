package therapy

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	MaterialVideo = "video"
	MaterialEbook = "ebook"

	SenderUser = "user"
	SenderAI   = "ai"

	defaultAuthor           = "H. Wardana, M.Psi."
	defaultEbookDescription = "Exercises and worksheets for CBT practice."
)

// Material is one row of therapy content, either a video section or an
// ebook. Columns not relevant to the type stay empty.
type Material struct {
	ID          int64
	Type        string
	Title       string
	Description string
	Author      string
	Duration    int
	ImageURL    string
	VideoURL    string
	PDFURL      string
	CreatedAt   time.Time
}

// VideoSection is the list item shape for videos.
type VideoSection struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	DurationMinutes int    `json:"durationMinutes"`
	ThumbnailURL    string `json:"thumbnailUrl"`
}

// VideoContent is the detail shape for one video.
type VideoContent struct {
	VideoSection
	Description string `json:"description"`
	VideoURL    string `json:"videoUrl"`
}

// Ebook is the list item shape for ebooks; display ids are zero-padded.
type Ebook struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	CoverURL string `json:"coverUrl"`
}

// EbookContent is the detail shape for one ebook.
type EbookContent struct {
	Ebook
	Description string `json:"description"`
	PDFURL      string `json:"pdfUrl"`
}

// ChatMessage is one chat turn as rendered to the client.
type ChatMessage struct {
	ID          string    `json:"id"`
	Sender      string    `json:"sender"`
	Message     string    `json:"message"`
	MessageType string    `json:"messageType"`
	SentAt      time.Time `json:"sentAt"`
}

// ChatEntry is one stored chat row.
type ChatEntry struct {
	ID         int64
	SuffererID int64
	Sender     string
	Message    string
	CreatedAt  time.Time
}

// ChatInput is the send request body.
type ChatInput struct {
	SuffererID  int64  `json:"sufferer_id"`
	Message     string `json:"message"`
	MessageType string `json:"messageType"`
}

// ChatExchange pairs a sent message with its reply.
type ChatExchange struct {
	Message    *ChatMessage `json:"message"`
	AIResponse *ChatMessage `json:"aiResponse"`
}

// ChatHistoryPage is one page of chat history, newest first.
type ChatHistoryPage struct {
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Total int            `json:"total"`
	Items []*ChatMessage `json:"items"`
}

// FormatEbookID renders the zero-padded display id, e.g. "e_03".
func FormatEbookID(id int64) string {
	return fmt.Sprintf("e_%02d", id)
}

// ParseEbookID accepts the display form or a bare numeric id.
func ParseEbookID(s string) (int64, error) {
	s = strings.TrimPrefix(s, "e_")
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}

func formatChatID(id int64) string {
	return "c_" + strconv.FormatInt(id, 10)
}

func (e *ChatEntry) toMessage() *ChatMessage {
	return &ChatMessage{
		ID:          formatChatID(e.ID),
		Sender:      e.Sender,
		Message:     e.Message,
		MessageType: "text",
		SentAt:      e.CreatedAt,
	}
}

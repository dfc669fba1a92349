package queue

import (
	"log/slog"

	"github.com/samber/do"
)

const bufferSize = 64

var _ do.Shutdownable = (*Service)(nil)

// Service buffers inbound Telegram events between the poll loop and the
// processing loop. Add never blocks; events arriving while the buffer is full
// are dropped with a warning.
type Service struct {
	queue chan Message
}

// Message is one inbound Telegram event, already reduced to the fields the
// processing loop needs.
type Message struct {
	ChatID      int64
	MessageID   int
	UserID      int64
	Username    string
	FirstName   string
	Text        string
	Caption     string
	IsCommand   bool
	Command     string
	CommandArgs string
	Photos      []Photo
}

// Photo is one size variant of an uploaded photo.
type Photo struct {
	FileID   string
	FileSize int
	Width    int
	Height   int
}

func New(_ *do.Injector) (*Service, error) {
	return &Service{
		queue: make(chan Message, bufferSize),
	}, nil
}

func (s *Service) Add(msg Message) {
	defer func() {
		if r := recover(); r != nil {

		}
	}()

	select {
	case s.queue <- msg:
	default:
		slog.Warn("message queue is full",
			"chat_id", msg.ChatID,
			"user_id", msg.UserID)
	}
}

func (s *Service) Channel() <-chan Message {
	return s.queue
}

func (s *Service) Shutdown() error {
	close(s.queue)

	return nil
}

package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daygrid/core/internal/domain/entities"
	"github.com/daygrid/core/internal/infrastructure/logger"
	"github.com/daygrid/core/internal/ports"
)

var youtubeIDPattern = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)

// LinkService handles links attached to todos
type LinkService struct {
	linkRepo ports.LinkRepository
	todoRepo ports.TodoRepository
	logger   *logger.Logger
}

// NewLinkService creates a new link service
func NewLinkService(linkRepo ports.LinkRepository, todoRepo ports.TodoRepository, logger *logger.Logger) *LinkService {
	return &LinkService{
		linkRepo: linkRepo,
		todoRepo: todoRepo,
		logger:   logger,
	}
}

// AddLink attaches a link to a todo. The link type is detected from the URL.
func (s *LinkService) AddLink(ctx context.Context, userID, todoID uuid.UUID, req ports.AddLinkRequest) (*entities.TodoLink, error) {
	if err := s.checkTodo(ctx, userID, todoID); err != nil {
		return nil, err
	}

	label := strings.TrimSpace(req.Label)
	url := strings.TrimSpace(req.URL)
	if label == "" || url == "" {
		return nil, fmt.Errorf("label and url are required")
	}

	link := &entities.TodoLink{
		ID:        uuid.New(),
		UserID:    userID,
		TodoID:    todoID,
		Label:     label,
		URL:       url,
		Type:      entities.DetectLinkType(url),
		CreatedAt: time.Now(),
	}

	if err := s.linkRepo.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to create link: %w", err)
	}

	s.logger.Info("Link added successfully", "link_id", link.ID, "todo_id", todoID, "type", link.Type)

	decorateLink(link)
	return link, nil
}

// DeleteLink removes a link owned by the user
func (s *LinkService) DeleteLink(ctx context.Context, userID, linkID uuid.UUID) error {
	link, err := s.linkRepo.GetByID(ctx, linkID)
	if err != nil {
		return fmt.Errorf("link not found: %w", err)
	}
	if link.UserID != userID {
		return entities.ErrUnauthorized
	}

	if err := s.linkRepo.Delete(ctx, linkID); err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	s.logger.Info("Link deleted successfully", "link_id", linkID)

	return nil
}

// ListLinks lists a todo's links in creation order
func (s *LinkService) ListLinks(ctx context.Context, userID, todoID uuid.UUID) ([]*entities.TodoLink, error) {
	if err := s.checkTodo(ctx, userID, todoID); err != nil {
		return nil, err
	}

	links, err := s.linkRepo.ListByTodo(ctx, todoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	for _, link := range links {
		decorateLink(link)
	}
	return links, nil
}

// decorateLink fills the derived fields a stored link row does not carry.
func decorateLink(link *entities.TodoLink) {
	if link.Type == entities.LinkTypeYouTube {
		link.EmbedURL = YouTubeEmbedURL(link.URL)
	}
}

// YouTubeEmbedURL derives the embeddable player URL from a YouTube link.
// Returns empty when no 11-character video id can be extracted.
func YouTubeEmbedURL(url string) string {
	m := youtubeIDPattern.FindStringSubmatch(url)
	if m == nil || len(m[2]) != 11 {
		return ""
	}
	return "https://www.youtube.com/embed/" + m[2]
}

func (s *LinkService) checkTodo(ctx context.Context, userID, todoID uuid.UUID) error {
	todo, err := s.todoRepo.GetByID(ctx, todoID)
	if err != nil {
		return fmt.Errorf("todo not found: %w", err)
	}
	if todo.UserID != userID {
		return entities.ErrUnauthorized
	}
	return nil
}

package topicpage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"skripta.hr/forum/internal/entity"
	attachmentrepository "skripta.hr/forum/internal/modules/attachment/repository"
	bookmarkrepository "skripta.hr/forum/internal/modules/bookmark/repository"
	pollservice "skripta.hr/forum/internal/modules/poll/service"
	reactionrepository "skripta.hr/forum/internal/modules/reaction/repository"
	replyrepository "skripta.hr/forum/internal/modules/reply/repository"
	topicrepository "skripta.hr/forum/internal/modules/topic/repository"
	"skripta.hr/forum/pkg/apperror"
)

// Only the page queries matter here; everything else panics if touched.
type stubTopics struct {
	topicrepository.TopicRepository
	topic *entity.Topic
}

func (s *stubTopics) FindBySlug(ctx context.Context, slug string) (*entity.Topic, error) {
	if s.topic != nil && s.topic.Slug == slug {
		return s.topic, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubReplies struct {
	replyrepository.ReplyRepository
	replies []entity.Reply
	err     error
}

func (s *stubReplies) FindByTopicID(ctx context.Context, topicID uuid.UUID) ([]entity.Reply, error) {
	return s.replies, s.err
}

type stubAttachments struct {
	attachmentrepository.AttachmentRepository
	rows []entity.Attachment
	err  error
}

func (s *stubAttachments) FindForTopicPage(ctx context.Context, topicID uuid.UUID, replyIDs []uuid.UUID) ([]entity.Attachment, error) {
	return s.rows, s.err
}

type stubReactions struct {
	reactionrepository.ReactionRepository
	rows []entity.Reaction
	err  error
}

func (s *stubReactions) FindForTopicPage(ctx context.Context, topicID uuid.UUID, replyIDs []uuid.UUID) ([]entity.Reaction, error) {
	return s.rows, s.err
}

type stubBookmarks struct {
	bookmarkrepository.BookmarkRepository
	bookmarked bool
	err        error
}

func (s *stubBookmarks) IsBookmarked(ctx context.Context, userID, topicID uuid.UUID) (bool, error) {
	return s.bookmarked, s.err
}

type stubPolls struct {
	pollservice.PollService
	result *pollservice.PollResult
	err    error
}

func (s *stubPolls) GetForTopic(ctx context.Context, topicID uuid.UUID, userID *uuid.UUID) (*pollservice.PollResult, error) {
	return s.result, s.err
}

func TestLoadUnknownSlugReturnsNotFound(t *testing.T) {
	l := NewLoader(&stubTopics{}, &stubReplies{}, &stubAttachments{}, &stubReactions{}, &stubBookmarks{}, &stubPolls{}, nil)

	page, err := l.Load(context.Background(), "nepostojeca-tema", nil, "10.0.0.1")
	if page != nil {
		t.Fatalf("expected nil page for unknown slug, got %+v", page)
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestLoadRendersWhenSubQueriesFail(t *testing.T) {
	topic := &entity.Topic{
		ID:    uuid.New(),
		Slug:  "priprema-za-kolokvij",
		Title: "Priprema za kolokvij",
	}
	reply := entity.Reply{ID: uuid.New(), TopicID: topic.ID, Content: "prvi odgovor"}
	userID := uuid.New()

	l := NewLoader(
		&stubTopics{topic: topic},
		&stubReplies{replies: []entity.Reply{reply}},
		&stubAttachments{err: errors.New("attachments table unavailable")},
		&stubReactions{err: errors.New("reactions table unavailable")},
		&stubBookmarks{err: errors.New("bookmarks table unavailable")},
		&stubPolls{err: errors.New("poll lookup failed")},
		nil,
	)

	page, err := l.Load(context.Background(), topic.Slug, &userID, "")
	if err != nil {
		t.Fatalf("page should render despite failed sub-queries, got %v", err)
	}
	if page == nil {
		t.Fatal("expected a page")
	}
	if page.Topic.Title != topic.Title {
		t.Fatalf("unexpected topic title %q", page.Topic.Title)
	}
	if len(page.Replies) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(page.Replies))
	}
	if len(page.Replies[0].Reactions.Counts) != 0 {
		t.Fatalf("expected empty reaction counts, got %v", page.Replies[0].Reactions.Counts)
	}
	if len(page.Replies[0].Attachments) != 0 {
		t.Fatalf("expected no attachments, got %v", page.Replies[0].Attachments)
	}
	if page.Poll != nil {
		t.Fatalf("expected nil poll, got %+v", page.Poll)
	}
	if page.IsBookmarked {
		t.Fatal("bookmark state should default to false when the query fails")
	}
}

func TestLoadDegradesWhenRepliesFail(t *testing.T) {
	topic := &entity.Topic{ID: uuid.New(), Slug: "upis-na-diplomski", Title: "Upis na diplomski"}

	l := NewLoader(
		&stubTopics{topic: topic},
		&stubReplies{err: errors.New("replies table unavailable")},
		&stubAttachments{},
		&stubReactions{},
		&stubBookmarks{},
		&stubPolls{},
		nil,
	)

	page, err := l.Load(context.Background(), topic.Slug, nil, "10.0.0.1")
	if err != nil {
		t.Fatalf("page should render without replies, got %v", err)
	}
	if len(page.Replies) != 0 {
		t.Fatalf("expected empty replies, got %d", len(page.Replies))
	}
	if page.Replies == nil {
		t.Fatal("replies should be an empty slice, not nil")
	}
}

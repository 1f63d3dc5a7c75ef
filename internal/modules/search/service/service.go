package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"skripta.hr/forum/internal/entity"
)

const topicIndex = "topics"

// TopicDocument is the searchable projection of a topic.
type TopicDocument struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Slug      string   `json:"slug"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	Author    string   `json:"author"`
	CreatedAt int64    `json:"created_at"`
}

type SearchHit struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Slug     string   `json:"slug"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Author   string   `json:"author"`
}

type SearchService interface {
	IndexTopic(ctx context.Context, topic *entity.Topic) error
	DeleteTopic(ctx context.Context, topicID uuid.UUID) error
	Search(ctx context.Context, query string, page, limit int) ([]SearchHit, int64, error)
}

type searchService struct {
	client meilisearch.ServiceManager
}

// NewSearchService configures the topics index. A nil client turns search
// into a no-op so the forum keeps working without meilisearch.
func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{client: client}
	if client != nil {
		s.configureIndex()
	}
	return s
}

func (s *searchService) configureIndex() {
	index := s.client.Index(topicIndex)
	if _, err := index.UpdateSearchableAttributes(&[]string{"title", "content", "tags", "category"}); err != nil {
		log.Printf("failed to configure searchable attributes: %v", err)
	}
	if _, err := index.UpdateSortableAttributes(&[]string{"created_at"}); err != nil {
		log.Printf("failed to configure sortable attributes: %v", err)
	}
}

func (s *searchService) IndexTopic(ctx context.Context, topic *entity.Topic) error {
	if s.client == nil {
		return nil
	}

	doc := TopicDocument{
		ID:        topic.ID.String(),
		Title:     topic.Title,
		Content:   topic.Content,
		Slug:      topic.Slug,
		CreatedAt: topic.CreatedAt.Unix(),
	}
	doc.Category = topic.Category.Name
	doc.Author = topic.Author.Username
	for _, tag := range topic.Tags {
		doc.Tags = append(doc.Tags, tag.Name)
	}

	primaryKey := "id"
	task, err := s.client.Index(topicIndex).AddDocuments([]TopicDocument{doc}, &primaryKey)
	if err != nil {
		return fmt.Errorf("failed to index topic %s: %w", topic.ID, err)
	}
	log.Printf("indexed topic %s, task id: %d", topic.ID, task.TaskUID)

	return nil
}

func (s *searchService) DeleteTopic(ctx context.Context, topicID uuid.UUID) error {
	if s.client == nil {
		return nil
	}

	if _, err := s.client.Index(topicIndex).DeleteDocument(topicID.String()); err != nil {
		return fmt.Errorf("failed to delete topic %s from index: %w", topicID, err)
	}

	return nil
}

func (s *searchService) Search(ctx context.Context, query string, page, limit int) ([]SearchHit, int64, error) {
	if s.client == nil {
		return nil, 0, nil
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	result, err := s.client.Index(topicIndex).Search(query, &meilisearch.SearchRequest{
		Offset: int64((page - 1) * limit),
		Limit:  int64(limit),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("search failed: %w", err)
	}

	// Hit fields arrive as raw JSON and are decoded per field.
	hits := make([]SearchHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		sh := SearchHit{
			ID:       stringField(hit, "id"),
			Title:    stringField(hit, "title"),
			Slug:     stringField(hit, "slug"),
			Category: stringField(hit, "category"),
			Author:   stringField(hit, "author"),
		}
		if raw, ok := hit["tags"]; ok {
			if err := json.Unmarshal(raw, &sh.Tags); err != nil {
				log.Printf("failed to decode tags for hit %s: %v", sh.ID, err)
			}
		}
		hits = append(hits, sh)
	}

	return hits, result.EstimatedTotalHits, nil
}

func stringField(hit meilisearch.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return v
}
